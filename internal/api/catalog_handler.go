package api

import (
	"aloop3/flow/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type CreateCustomExerciseRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// ListExerciseTypes godoc
// @Summary List exercise types
// @Description Predefined catalog entries followed by the caller's custom exercises.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ExerciseType
// @Router /exercise-types [get]
func (h *CatalogHandler) ListExerciseTypes(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	types, err := h.catalogService.ListExerciseTypes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// CreateCustomExercise godoc
// @Summary Add a custom exercise to the caller's catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateCustomExerciseRequest true "Custom exercise"
// @Success 201 {object} domain.CustomExercise
// @Failure 400 {object} gin.H "Invalid or CUSTOM category"
// @Failure 409 {object} gin.H "Name clashes with a predefined or existing custom exercise"
// @Router /exercise-types/custom [post]
func (h *CatalogHandler) CreateCustomExercise(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req CreateCustomExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	created, err := h.catalogService.CreateCustomExercise(c.Request.Context(), userID, req.Name, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
