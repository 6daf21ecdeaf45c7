package api

import (
	"aloop3/flow/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler exposes read-only analytics over an athlete's history.
// Parameter validation and access checks live in the service so every
// endpoint reports errors in the same order.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type AllTimeMaxResponse struct {
	AthleteID    string  `json:"athleteId"`
	ExerciseType string  `json:"exerciseType"`
	MaxWeight    float64 `json:"maxWeight"`
}

// MaxWeightHistory godoc
// @Summary Heaviest completed set per training day
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param athleteId query string true "Athlete ID"
// @Param exerciseType query string true "Exercise type"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {array} service.MaxWeightPoint
// @Router /analytics/max-weight [get]
func (h *AnalyticsHandler) MaxWeightHistory(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	points, err := h.analyticsService.MaxWeightHistory(c.Request.Context(), userID, service.MaxWeightQuery{
		AthleteID:    c.Query("athleteId"),
		ExerciseType: c.Query("exerciseType"),
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// VolumeOverTime godoc
// @Summary Completed volume bucketed by week, month or year
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param athleteId query string true "Athlete ID"
// @Param timePeriod query string true "week, month or year"
// @Param exerciseType query string false "Restrict to one exercise type"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {array} service.VolumePoint
// @Router /analytics/volume [get]
func (h *AnalyticsHandler) VolumeOverTime(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	points, err := h.analyticsService.VolumeOverTime(c.Request.Context(), userID, service.VolumeQuery{
		AthleteID:    c.Query("athleteId"),
		TimePeriod:   c.Query("timePeriod"),
		ExerciseType: c.Query("exerciseType"),
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// ExerciseFrequency godoc
// @Summary How often an exercise was trained in the trailing period
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param athleteId query string true "Athlete ID"
// @Param exerciseType query string true "Exercise type"
// @Param timePeriod query string true "week, month or year"
// @Success 200 {object} service.ExerciseFrequency
// @Router /analytics/frequency [get]
func (h *AnalyticsHandler) ExerciseFrequency(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	freq, err := h.analyticsService.ExerciseFrequency(c.Request.Context(), userID, service.FrequencyQuery{
		AthleteID:    c.Query("athleteId"),
		ExerciseType: c.Query("exerciseType"),
		TimePeriod:   c.Query("timePeriod"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, freq)
}

// AllTimeMaxWeight godoc
// @Summary Heaviest completed set ever, 0 without history
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param athleteId query string true "Athlete ID"
// @Param exerciseType query string true "Exercise type"
// @Success 200 {object} AllTimeMaxResponse
// @Router /analytics/all-time-max [get]
func (h *AnalyticsHandler) AllTimeMaxWeight(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	athleteID, exerciseType := c.Query("athleteId"), c.Query("exerciseType")
	best, err := h.analyticsService.AllTimeMaxWeight(c.Request.Context(), userID, athleteID, exerciseType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AllTimeMaxResponse{AthleteID: athleteID, ExerciseType: exerciseType, MaxWeight: best})
}

// BlockVolume godoc
// @Summary Completed volume of a block, total and per week
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param blockId path string true "Block ID"
// @Success 200 {object} service.BlockVolume
// @Router /analytics/blocks/{blockId}/volume [get]
func (h *AnalyticsHandler) BlockVolume(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	vol, err := h.analyticsService.BlockVolume(c.Request.Context(), userID, c.Param("blockId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vol)
}

// CompareBlocks godoc
// @Summary Compare the completed volume of two blocks
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param athleteId query string true "Athlete ID"
// @Param blockId1 query string true "Baseline block"
// @Param blockId2 query string true "Compared block"
// @Success 200 {object} service.BlockComparison
// @Router /analytics/blocks/compare [get]
func (h *AnalyticsHandler) CompareBlocks(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	cmp, err := h.analyticsService.CompareBlocks(c.Request.Context(), userID, service.CompareBlocksQuery{
		AthleteID: c.Query("athleteId"),
		BlockID1:  c.Query("blockId1"),
		BlockID2:  c.Query("blockId2"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}
