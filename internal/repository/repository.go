package repository

import (
	"aloop3/flow/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrConflict     = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Ids are assigned by the service layer before Create is called. Create stamps
// CreatedAt/UpdatedAt where the entity has them. Updates are plain $set writes,
// last writer wins.

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	AddAthleteToCoach(ctx context.Context, coachID, athleteID string) error
	SetCoachForAthlete(ctx context.Context, athleteID, coachID string) error
	GetAthletesByCoachID(ctx context.Context, coachID string) ([]domain.User, error)
	// UpdateCustomExercises replaces the whole custom exercise list.
	UpdateCustomExercises(ctx context.Context, userID string, exercises []domain.CustomExercise) error
	UpdateWeightPreference(ctx context.Context, userID string, pref domain.UnitPreference) error
}

// BlockRepository defines the interface for interacting with training blocks.
type BlockRepository interface {
	Create(ctx context.Context, block *domain.Block) error
	GetByID(ctx context.Context, id string) (*domain.Block, error)
	GetByAthleteID(ctx context.Context, athleteID string) ([]domain.Block, error)
	Update(ctx context.Context, block *domain.Block) error
	Delete(ctx context.Context, id string) error
}

// WeekRepository defines the interface for block weeks.
type WeekRepository interface {
	Create(ctx context.Context, week *domain.Week) error
	GetByID(ctx context.Context, id string) (*domain.Week, error)
	GetByBlockID(ctx context.Context, blockID string) ([]domain.Week, error)
	Delete(ctx context.Context, id string) error
}

// DayRepository defines the interface for scheduled days.
type DayRepository interface {
	Create(ctx context.Context, day *domain.Day) error
	GetByID(ctx context.Context, id string) (*domain.Day, error)
	GetByWeekID(ctx context.Context, weekID string) ([]domain.Day, error)
	Update(ctx context.Context, day *domain.Day) error
	Delete(ctx context.Context, id string) error
}

// DayExerciseRepository defines the interface for day template exercises.
type DayExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.DayExercise) error
	GetByID(ctx context.Context, id string) (*domain.DayExercise, error)
	GetByDayID(ctx context.Context, dayID string) ([]domain.DayExercise, error)
	Update(ctx context.Context, exercise *domain.DayExercise) error
	Delete(ctx context.Context, id string) error
}

// WorkoutRepository defines the interface for interacting with workout data.
// Create returns ErrConflict when the athlete already has a workout for the day.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) error
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	GetByAthleteAndDay(ctx context.Context, athleteID, dayID string) (*domain.Workout, error)
	GetByAthleteID(ctx context.Context, athleteID string) ([]domain.Workout, error)
	GetByDayIDs(ctx context.Context, dayIDs []string) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id string) error
}

// ExerciseRepository defines the interface for workout-scoped exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	GetByWorkoutID(ctx context.Context, workoutID string) ([]domain.Exercise, error)
	GetByWorkoutIDs(ctx context.Context, workoutIDs []string) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	// UpdateSets writes setsData, sets and status only.
	UpdateSets(ctx context.Context, exercise *domain.Exercise) error
	// CapturePlannedSets stores the snapshot only if none is stored yet and reports
	// whether this call wrote it.
	CapturePlannedSets(ctx context.Context, exerciseID string, planned []domain.SetRecord) (bool, error)
	Delete(ctx context.Context, id string) error
}

// NotificationRepository defines the interface for coach notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	GetByCoachID(ctx context.Context, coachID string, unreadOnly bool) ([]domain.Notification, error)
	ExistsForWorkout(ctx context.Context, workoutID, coachID string) (bool, error)
	MarkRead(ctx context.Context, id string) error
}
