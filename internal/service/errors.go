package service

import (
	"aloop3/flow/internal/domain"
	"errors"
	"strings"
)

// --- Error Definitions ---
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrBlockNotFound        = errors.New("block not found")
	ErrDayNotFound          = errors.New("day not found")
	ErrDayExerciseNotFound  = errors.New("day exercise not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrAccessDenied      = errors.New("access denied")
	ErrMissingParameter  = errors.New("missing required parameter")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTimePeriod = errors.New("invalid time period, must be one of: week, month, year")
	ErrNoSchedule        = errors.New("block has no schedule")
	ErrSameBlock         = errors.New("cannot compare a block with itself")

	ErrInvalidCategory          = errors.New("invalid category, valid categories are: " + strings.Join(domain.ValidCategoryNames(), ", "))
	ErrCustomCategoryNotAllowed = errors.New("custom exercises must declare a real category, CUSTOM is not allowed")
	ErrPredefinedNameConflict   = errors.New("an exercise with this name already exists in the predefined catalog")
	ErrCustomNameConflict       = errors.New("you already have a custom exercise with this name")

	ErrWorkoutAlreadyExists = errors.New("a workout already exists for this athlete and day")
	ErrWorkoutKindConflict  = errors.New("workout for this day is tracked live, record sets on its exercises instead")
)
