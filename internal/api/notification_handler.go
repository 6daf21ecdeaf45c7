package api

import (
	"aloop3/flow/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary List the coach's workout completion notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	coachID, ok := requesterID(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	list, err := h.notificationService.ListForCoach(c.Request.Context(), coachID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Security BearerAuth
// @Param notificationId path string true "Notification ID"
// @Success 204
// @Failure 404 {object} gin.H "Notification not found"
// @Router /notifications/{notificationId}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	coachID, ok := requesterID(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), coachID, c.Param("notificationId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportHistory godoc
// @Summary Export an athlete's training history to object storage
// @Description Returns a presigned URL to download the JSON document.
// @Tags Export
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Success 201 {object} service.ExportResult
// @Router /athletes/{athleteId}/exports [post]
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	res, err := h.exportService.ExportHistory(c.Request.Context(), userID, c.Param("athleteId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
