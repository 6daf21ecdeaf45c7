package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BlockHandler serves training blocks, their days and the day templates.
type BlockHandler struct {
	blockService service.BlockService
	access       service.AccessChecker
}

func NewBlockHandler(blockService service.BlockService, access service.AccessChecker) *BlockHandler {
	return &BlockHandler{blockService: blockService, access: access}
}

// --- DTOs ---

type CreateBlockRequest struct {
	AthleteID     string `json:"athleteId" binding:"required"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate" binding:"required"`
	NumberOfWeeks int    `json:"numberOfWeeks" binding:"required"`
	DaysPerWeek   int    `json:"daysPerWeek" binding:"required"`
}

type UpdateDayRequest struct {
	Focus *string `json:"focus"`
	Notes *string `json:"notes"`
}

type DayExerciseRequest struct {
	ExerciseType string   `json:"exerciseType" binding:"required"`
	Category     *string  `json:"category"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Weight       float64  `json:"weight"`
	RPE          *float64 `json:"rpe"`
	Notes        string   `json:"notes"`
	Order        *int     `json:"order"`
}

type UpdateDayExerciseRequest struct {
	ExerciseType *string  `json:"exerciseType"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	RPE          *float64 `json:"rpe"`
	Notes        *string  `json:"notes"`
	Order        *int     `json:"order"`
}

type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// --- Blocks ---

// CreateBlock godoc
// @Summary Create a training block for an athlete
// @Description Lays out numberOfWeeks weeks of daysPerWeek days starting at startDate.
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param block body CreateBlockRequest true "Block"
// @Success 201 {object} service.BlockSchedule
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Athlete not on the coach's roster"
// @Router /blocks [post]
func (h *BlockHandler) CreateBlock(c *gin.Context) {
	coachID, ok := requesterID(c)
	if !ok {
		return
	}
	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sched, err := h.blockService.CreateBlock(c.Request.Context(), coachID, service.CreateBlockInput{
		AthleteID:     req.AthleteID,
		Title:         req.Title,
		Description:   req.Description,
		StartDate:     req.StartDate,
		NumberOfWeeks: req.NumberOfWeeks,
		DaysPerWeek:   req.DaysPerWeek,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}

// ListAthleteBlocks godoc
// @Summary List an athlete's blocks
// @Tags Blocks
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Success 200 {array} domain.Block
// @Router /athletes/{athleteId}/blocks [get]
func (h *BlockHandler) ListAthleteBlocks(c *gin.Context) {
	athleteID := c.Param("athleteId")
	if !authorizeAthlete(c, h.access, athleteID) {
		return
	}
	blocks, err := h.blockService.ListAthleteBlocks(c.Request.Context(), athleteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

// GetSchedule godoc
// @Summary Get a block with its weeks and days
// @Tags Blocks
// @Produce json
// @Security BearerAuth
// @Param blockId path string true "Block ID"
// @Success 200 {object} service.BlockSchedule
// @Failure 404 {object} gin.H "Block not found"
// @Router /blocks/{blockId} [get]
func (h *BlockHandler) GetSchedule(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	blockID := c.Param("blockId")
	if _, err := h.blockService.AuthorizeBlock(c.Request.Context(), userID, blockID); err != nil {
		respondError(c, err)
		return
	}
	sched, err := h.blockService.GetSchedule(c.Request.Context(), blockID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// DeleteBlock godoc
// @Summary Delete a block and everything scheduled under it
// @Tags Blocks
// @Produce json
// @Security BearerAuth
// @Param blockId path string true "Block ID"
// @Success 200 {object} DeleteResponse "Number of child records removed"
// @Router /blocks/{blockId} [delete]
func (h *BlockHandler) DeleteBlock(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	blockID := c.Param("blockId")
	if _, err := h.blockService.AuthorizeBlock(c.Request.Context(), userID, blockID); err != nil {
		respondError(c, err)
		return
	}
	deleted, err := h.blockService.DeleteBlock(c.Request.Context(), blockID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted})
}

// --- Days ---

// UpdateDay godoc
// @Summary Update a day's focus or notes
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param day body UpdateDayRequest true "Fields to change"
// @Success 200 {object} domain.Day
// @Router /days/{dayId} [patch]
func (h *BlockHandler) UpdateDay(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	dayID := c.Param("dayId")
	var req UpdateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, _, err := h.blockService.AuthorizeDay(c.Request.Context(), userID, dayID); err != nil {
		respondError(c, err)
		return
	}
	day, err := h.blockService.UpdateDay(c.Request.Context(), dayID, req.Focus, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// AddDayExercise godoc
// @Summary Add a planned exercise to a day
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param exercise body DayExerciseRequest true "Template"
// @Success 201 {object} domain.DayExercise
// @Router /days/{dayId}/exercises [post]
func (h *BlockHandler) AddDayExercise(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	dayID := c.Param("dayId")
	var req DayExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, _, err := h.blockService.AuthorizeDay(c.Request.Context(), userID, dayID); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.blockService.AddDayExercise(c.Request.Context(), dayID, service.DayExerciseInput{
		ExerciseType: req.ExerciseType,
		Category:     req.Category,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		RPE:          req.RPE,
		Notes:        req.Notes,
		Order:        req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListDayExercises godoc
// @Summary List the planned exercises of a day
// @Tags Blocks
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 200 {array} domain.DayExercise
// @Router /days/{dayId}/exercises [get]
func (h *BlockHandler) ListDayExercises(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	dayID := c.Param("dayId")
	if _, _, err := h.blockService.AuthorizeDay(c.Request.Context(), userID, dayID); err != nil {
		respondError(c, err)
		return
	}
	list, err := h.blockService.ListDayExercises(c.Request.Context(), dayID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateDayExercise godoc
// @Summary Update a planned exercise
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayExerciseId path string true "Day exercise ID"
// @Param exercise body UpdateDayExerciseRequest true "Fields to change"
// @Success 200 {object} domain.DayExercise
// @Router /day-exercises/{dayExerciseId} [patch]
func (h *BlockHandler) UpdateDayExercise(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	id := c.Param("dayExerciseId")
	var req UpdateDayExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, err := h.blockService.AuthorizeDayExercise(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.blockService.UpdateDayExercise(c.Request.Context(), id, domain.DayExerciseUpdate{
		ExerciseType: req.ExerciseType,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		RPE:          req.RPE,
		Notes:        req.Notes,
		Order:        req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteDayExercise godoc
// @Summary Remove a planned exercise
// @Tags Blocks
// @Security BearerAuth
// @Param dayExerciseId path string true "Day exercise ID"
// @Success 204
// @Router /day-exercises/{dayExerciseId} [delete]
func (h *BlockHandler) DeleteDayExercise(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	id := c.Param("dayExerciseId")
	if _, err := h.blockService.AuthorizeDayExercise(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.blockService.DeleteDayExercise(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// authorizeAthlete aborts unless the caller may act on athleteID.
func authorizeAthlete(c *gin.Context, access service.AccessChecker, athleteID string) bool {
	userID, ok := requesterID(c)
	if !ok {
		return false
	}
	allowed, err := access.CanAccessAthlete(c.Request.Context(), userID, athleteID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !allowed {
		respondError(c, service.ErrAccessDenied)
		return false
	}
	return true
}
