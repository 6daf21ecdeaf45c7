package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var (
	badRequestErrors = []error{
		service.ErrMissingParameter,
		service.ErrInvalidDate,
		service.ErrInvalidTimePeriod,
		service.ErrSameBlock,
		service.ErrInvalidCategory,
		service.ErrCustomCategoryNotAllowed,
		service.ErrInvalidRole,
		service.ErrNoSchedule,
	}
	forbiddenErrors = []error{
		service.ErrAccessDenied,
		service.ErrNotACoach,
		service.ErrNotAnAthlete,
	}
	notFoundErrors = []error{
		service.ErrUserNotFound,
		service.ErrWorkoutNotFound,
		service.ErrExerciseNotFound,
		service.ErrBlockNotFound,
		service.ErrDayNotFound,
		service.ErrDayExerciseNotFound,
		service.ErrNotificationNotFound,
	}
	conflictErrors = []error{
		service.ErrUserAlreadyExists,
		service.ErrPredefinedNameConflict,
		service.ErrCustomNameConflict,
		service.ErrWorkoutAlreadyExists,
		service.ErrWorkoutKindConflict,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusForError maps service and domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case domain.IsValidationError(err), isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case isAny(err, forbiddenErrors):
		return http.StatusForbidden
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts the request with the status matching err. Internal errors
// are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		log.WithField("path", c.FullPath()).Errorf("internal error: %s", err)
		abortWithError(c, code, "Internal Server Error")
		return
	}
	abortWithError(c, code, err.Error())
}

func bindError(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
}
