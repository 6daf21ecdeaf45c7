package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves tracked and logged workouts.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	blockService   service.BlockService
	access         service.AccessChecker
}

func NewWorkoutHandler(workoutService service.WorkoutService, blockService service.BlockService, access service.AccessChecker) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, blockService: blockService, access: access}
}

// --- DTOs ---

// WorkoutResponse adds the effective status, which is derived unless set explicitly.
type WorkoutResponse struct {
	*domain.Workout
	Status domain.WorkoutStatus `json:"status"`
}

func mapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	return WorkoutResponse{Workout: w, Status: w.Status()}
}

type LoggedSetRequest struct {
	SetNumber int      `json:"setNumber" binding:"required"`
	Reps      int      `json:"reps"`
	Weight    float64  `json:"weight"`
	Unit      string   `json:"unit"`
	RPE       *float64 `json:"rpe"`
	Completed bool     `json:"completed"`
	Notes     string   `json:"notes"`
}

type LoggedExerciseRequest struct {
	ExerciseType string             `json:"exerciseType" binding:"required"`
	Category     *string            `json:"category"`
	Notes        string             `json:"notes"`
	Sets         []LoggedSetRequest `json:"sets" binding:"dive"`
}

type LogWorkoutRequest struct {
	Date      string                  `json:"date"`
	Notes     string                  `json:"notes"`
	Status    string                  `json:"status"`
	Exercises []LoggedExerciseRequest `json:"exercises" binding:"dive"`
}

type UpdateWorkoutRequest struct {
	Notes  *string `json:"notes"`
	Date   *string `json:"date"`
	Status *string `json:"status"`
}

type VolumeResponse struct {
	WorkoutID string  `json:"workoutId"`
	Volume    float64 `json:"volume"`
}

// --- Day scoped ---

// CreateWorkoutFromDay godoc
// @Summary Start tracking a day
// @Description Creates a tracked workout for the day's athlete, with one exercise per planned template.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 201 {object} WorkoutResponse
// @Failure 409 {object} gin.H "A workout already exists for this day"
// @Router /days/{dayId}/workout [post]
func (h *WorkoutHandler) CreateWorkoutFromDay(c *gin.Context) {
	block, ok := h.authorizeDay(c)
	if !ok {
		return
	}
	workout, err := h.workoutService.CreateWorkoutFromDay(c.Request.Context(), block.AthleteID, c.Param("dayId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapWorkoutToResponse(workout))
}

// GetWorkoutForDay godoc
// @Summary Get the workout recorded for a day
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Nothing recorded yet"
// @Router /days/{dayId}/workout [get]
func (h *WorkoutHandler) GetWorkoutForDay(c *gin.Context) {
	block, ok := h.authorizeDay(c)
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkoutForDay(c.Request.Context(), block.AthleteID, c.Param("dayId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapWorkoutToResponse(workout))
}

// LogWorkout godoc
// @Summary Log a finished session after the fact
// @Description Replaces any previous log for the same day.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param workout body LogWorkoutRequest true "Logged session"
// @Success 200 {object} WorkoutResponse
// @Failure 409 {object} gin.H "The day is already tracked live"
// @Router /days/{dayId}/log [put]
func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	var req LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	block, ok := h.authorizeDay(c)
	if !ok {
		return
	}

	in := service.LogWorkoutInput{Date: req.Date, Notes: req.Notes, Status: req.Status}
	for _, ex := range req.Exercises {
		logged := service.LoggedExerciseInput{ExerciseType: ex.ExerciseType, Category: ex.Category, Notes: ex.Notes}
		for _, s := range ex.Sets {
			logged.Sets = append(logged.Sets, service.LoggedSetInput{
				SetNumber: s.SetNumber,
				Reps:      s.Reps,
				Weight:    s.Weight,
				Unit:      s.Unit,
				RPE:       s.RPE,
				Completed: s.Completed,
				Notes:     s.Notes,
			})
		}
		in.Exercises = append(in.Exercises, logged)
	}

	workout, err := h.workoutService.LogWorkout(c.Request.Context(), block.AthleteID, c.Param("dayId"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapWorkoutToResponse(workout))
}

// --- Workout scoped ---

// ListAthleteWorkouts godoc
// @Summary List an athlete's workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Success 200 {array} WorkoutResponse
// @Router /athletes/{athleteId}/workouts [get]
func (h *WorkoutHandler) ListAthleteWorkouts(c *gin.Context) {
	athleteID := c.Param("athleteId")
	if !authorizeAthlete(c, h.access, athleteID) {
		return
	}
	workouts, err := h.workoutService.ListAthleteWorkouts(c.Request.Context(), athleteID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = mapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetWorkout godoc
// @Summary Get a workout with its exercises
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Router /workouts/{workoutId} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	if _, ok := h.authorizeWorkout(c); !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapWorkoutToResponse(workout))
}

// UpdateWorkout godoc
// @Summary Update notes, date or an explicit status
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param workout body UpdateWorkoutRequest true "Fields to change"
// @Success 200 {object} WorkoutResponse
// @Router /workouts/{workoutId} [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, ok := h.authorizeWorkout(c); !ok {
		return
	}
	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), c.Param("workoutId"), domain.WorkoutUpdate{
		Notes:  req.Notes,
		Date:   req.Date,
		Status: req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapWorkoutToResponse(workout))
}

// StartSession godoc
// @Summary Record the session start time
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Router /workouts/{workoutId}/start [post]
func (h *WorkoutHandler) StartSession(c *gin.Context) {
	if _, ok := h.authorizeWorkout(c); !ok {
		return
	}
	workout, err := h.workoutService.StartSession(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapWorkoutToResponse(workout))
}

// FinishSession godoc
// @Summary Record the session finish time
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Session was never started"
// @Router /workouts/{workoutId}/finish [post]
func (h *WorkoutHandler) FinishSession(c *gin.Context) {
	if _, ok := h.authorizeWorkout(c); !ok {
		return
	}
	workout, err := h.workoutService.FinishSession(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapWorkoutToResponse(workout))
}

// DeleteWorkout godoc
// @Summary Delete a workout and its exercises
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} DeleteResponse "Number of exercises removed"
// @Router /workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	if _, ok := h.authorizeWorkout(c); !ok {
		return
	}
	deleted, err := h.workoutService.DeleteWorkout(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted})
}

// GetVolume godoc
// @Summary Total completed volume of a workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} VolumeResponse
// @Router /workouts/{workoutId}/volume [get]
func (h *WorkoutHandler) GetVolume(c *gin.Context) {
	if _, ok := h.authorizeWorkout(c); !ok {
		return
	}
	workoutID := c.Param("workoutId")
	volume, err := h.workoutService.CalculateVolume(c.Request.Context(), workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, VolumeResponse{WorkoutID: workoutID, Volume: volume})
}

func (h *WorkoutHandler) authorizeDay(c *gin.Context) (*domain.Block, bool) {
	userID, ok := requesterID(c)
	if !ok {
		return nil, false
	}
	_, block, err := h.blockService.AuthorizeDay(c.Request.Context(), userID, c.Param("dayId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return block, true
}

func (h *WorkoutHandler) authorizeWorkout(c *gin.Context) (*domain.Workout, bool) {
	userID, ok := requesterID(c)
	if !ok {
		return nil, false
	}
	workout, err := h.workoutService.AuthorizeWorkout(c.Request.Context(), userID, c.Param("workoutId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return workout, true
}
