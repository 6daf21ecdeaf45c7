package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler handles exercises of tracked workouts and their per-set data.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	workoutService  service.WorkoutService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, workoutService service.WorkoutService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, workoutService: workoutService}
}

// --- DTOs ---

type CreateExerciseRequest struct {
	ExerciseType string   `json:"exerciseType" binding:"required"`
	Category     *string  `json:"category"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Weight       float64  `json:"weight"`
	Unit         string   `json:"unit"`
	RPE          *float64 `json:"rpe"`
	Notes        string   `json:"notes"`
	Order        *int     `json:"order"`
}

type UpdateExerciseRequest struct {
	ExerciseType *string  `json:"exerciseType"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	Unit         *string  `json:"unit"`
	RPE          *float64 `json:"rpe"`
	Notes        *string  `json:"notes"`
	Order        *int     `json:"order"`
	Status       *string  `json:"status"`
}

type UpdateExerciseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TrackSetRequest struct {
	SetNumber int      `json:"setNumber" binding:"required,min=1"`
	Reps      int      `json:"reps" binding:"min=0"`
	Weight    float64  `json:"weight" binding:"min=0"`
	Unit      *string  `json:"unit"`
	RPE       *float64 `json:"rpe"`
	Completed bool     `json:"completed"`
	Notes     string   `json:"notes"`
}

type ReorderSetsRequest struct {
	Order []int `json:"order" binding:"required"`
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to a tracked workout
// @Description The unit defaults to the athlete's preference resolved for the exercise type.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exercise body CreateExerciseRequest true "Exercise"
// @Success 201 {object} domain.Exercise
// @Failure 409 {object} gin.H "Workout was logged, not tracked"
// @Router /workouts/{workoutId}/exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	workoutID := c.Param("workoutId")
	if _, err := h.workoutService.AuthorizeWorkout(c.Request.Context(), userID, workoutID); err != nil {
		respondError(c, err)
		return
	}
	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), service.CreateExerciseInput{
		WorkoutID:    workoutID,
		ExerciseType: req.ExerciseType,
		Category:     req.Category,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		Unit:         req.Unit,
		RPE:          req.RPE,
		Notes:        req.Notes,
		Order:        req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListWorkoutExercises godoc
// @Summary List a workout's exercises
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {array} domain.Exercise
// @Router /workouts/{workoutId}/exercises [get]
func (h *ExerciseHandler) ListWorkoutExercises(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	workoutID := c.Param("workoutId")
	if _, err := h.workoutService.AuthorizeWorkout(c.Request.Context(), userID, workoutID); err != nil {
		respondError(c, err)
		return
	}
	list, err := h.exerciseService.ListWorkoutExercises(c.Request.Context(), workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetExercise godoc
// @Summary Get an exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, ok := h.authorize(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise godoc
// @Summary Update an exercise's planned fields
// @Description Recorded sets are never touched by this call.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body UpdateExerciseRequest true "Fields to change"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId} [patch]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, ok := h.authorize(c); !ok {
		return
	}
	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), c.Param("exerciseId"), domain.ExerciseUpdate{
		ExerciseType: req.ExerciseType,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		Unit:         req.Unit,
		RPE:          req.RPE,
		Notes:        req.Notes,
		Order:        req.Order,
		Status:       req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExerciseStatus godoc
// @Summary Set an exercise's status
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param status body UpdateExerciseStatusRequest true "Status"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId}/status [put]
func (h *ExerciseHandler) UpdateExerciseStatus(c *gin.Context) {
	var req UpdateExerciseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, ok := h.authorize(c); !ok {
		return
	}
	exercise, err := h.exerciseService.UpdateExerciseStatus(c.Request.Context(), c.Param("exerciseId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204
// @Router /exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), c.Param("exerciseId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TrackSet godoc
// @Summary Record one set
// @Description Upserts the set by number. The first call captures the planned snapshot.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param set body TrackSetRequest true "Set"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId}/sets [post]
func (h *ExerciseHandler) TrackSet(c *gin.Context) {
	var req TrackSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, ok := h.authorize(c); !ok {
		return
	}
	exercise, err := h.exerciseService.TrackSet(c.Request.Context(), c.Param("exerciseId"), service.TrackSetInput{
		SetNumber: req.SetNumber,
		Reps:      req.Reps,
		Weight:    req.Weight,
		Unit:      req.Unit,
		RPE:       req.RPE,
		Completed: req.Completed,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteSet godoc
// @Summary Delete a recorded set
// @Description Remaining sets are renumbered from 1.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param setNumber path int true "Set number"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId}/sets/{setNumber} [delete]
func (h *ExerciseHandler) DeleteSet(c *gin.Context) {
	setNumber, err := strconv.Atoi(c.Param("setNumber"))
	if err != nil || setNumber < 1 {
		abortWithError(c, http.StatusBadRequest, "setNumber must be a positive integer")
		return
	}
	if _, ok := h.authorize(c); !ok {
		return
	}
	exercise, err := h.exerciseService.DeleteSet(c.Request.Context(), c.Param("exerciseId"), setNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// ReorderSets godoc
// @Summary Reorder recorded sets
// @Description order lists every current set number exactly once, in the new order.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param order body ReorderSetsRequest true "New order"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId}/sets/order [put]
func (h *ExerciseHandler) ReorderSets(c *gin.Context) {
	var req ReorderSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, ok := h.authorize(c); !ok {
		return
	}
	exercise, err := h.exerciseService.ReorderSets(c.Request.Context(), c.Param("exerciseId"), req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) authorize(c *gin.Context) (*domain.Exercise, bool) {
	userID, ok := requesterID(c)
	if !ok {
		return nil, false
	}
	exercise, err := h.exerciseService.AuthorizeExercise(c.Request.Context(), userID, c.Param("exerciseId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return exercise, true
}
