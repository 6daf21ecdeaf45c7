package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/repository"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateExerciseInput is what a coach or athlete sends to add an exercise to a workout.
type CreateExerciseInput struct {
	WorkoutID    string
	ExerciseType string
	Category     *string
	Sets         int
	Reps         int
	Weight       float64
	Unit         string
	RPE          *float64
	Notes        string
	Order        *int
}

// TrackSetInput records the actual performance of one set.
type TrackSetInput struct {
	SetNumber int
	Reps      int
	Weight    float64
	Unit      *string
	RPE       *float64
	Completed bool
	Notes     string
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, in CreateExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	ListWorkoutExercises(ctx context.Context, workoutID string) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID string, update domain.ExerciseUpdate) (*domain.Exercise, error)
	UpdateExerciseStatus(ctx context.Context, exerciseID, status string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID string) error

	TrackSet(ctx context.Context, exerciseID string, in TrackSetInput) (*domain.Exercise, error)
	DeleteSet(ctx context.Context, exerciseID string, setNumber int) (*domain.Exercise, error)
	ReorderSets(ctx context.Context, exerciseID string, newOrder []int) (*domain.Exercise, error)

	ResolveUnit(ctx context.Context, exerciseType domain.ExerciseType, explicit, athleteID string) (domain.WeightUnit, error)
	// AuthorizeExercise loads the exercise and checks that requesterID may act on
	// the athlete owning its workout.
	AuthorizeExercise(ctx context.Context, requesterID, exerciseID string) (*domain.Exercise, error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	workoutRepo  repository.WorkoutRepository
	userRepo     repository.UserRepository
	catalog      CatalogService
	access       AccessChecker
	metrics      *metrics.Manager
}

func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	catalog CatalogService,
	access AccessChecker,
	metricsManager *metrics.Manager,
) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		workoutRepo:  workoutRepo,
		userRepo:     userRepo,
		catalog:      catalog,
		access:       access,
		metrics:      metricsManager,
	}
}

// CreateExercise adds a planned exercise to a tracked workout. The unit is resolved
// once here and stored; later preference changes do not touch it.
func (s *exerciseService) CreateExercise(ctx context.Context, in CreateExerciseInput) (*domain.Exercise, error) {
	workout, err := s.workoutRepo.GetByID(ctx, in.WorkoutID)
	if err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	if workout.Kind != domain.WorkoutKindTracked {
		return nil, &domain.ValidationError{Field: "workoutId", Reason: "exercises can only be added to tracked workouts"}
	}

	exType, err := s.catalog.ResolveExerciseType(ctx, workout.AthleteID, in.ExerciseType, in.Category)
	if err != nil {
		return nil, err
	}
	unit, err := s.ResolveUnit(ctx, exType, in.Unit, workout.AthleteID)
	if err != nil {
		return nil, err
	}

	exercise, err := domain.NewExercise(domain.NewExerciseParams{
		ID:           uuid.NewString(),
		WorkoutID:    workout.ID,
		ExerciseType: exType,
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       domain.WeightData{Value: in.Weight, Unit: unit},
		RPE:          in.RPE,
		Notes:        in.Notes,
		Order:        in.Order,
	})
	if err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapNotFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) ListWorkoutExercises(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetByWorkoutID(ctx, workoutID)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID string, update domain.ExerciseUpdate) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := exercise.ApplyUpdate(update); err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, mapNotFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) UpdateExerciseStatus(ctx context.Context, exerciseID, status string) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := exercise.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.UpdateSets(ctx, exercise); err != nil {
		return nil, mapNotFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID string) error {
	return mapNotFound(s.exerciseRepo.Delete(ctx, exerciseID), ErrExerciseNotFound)
}

// TrackSet records one set. Concurrent calls on the same exercise race on setsData
// and the later write wins; the planned snapshot is stored only by the first caller,
// and the returned exercise always carries the stored one.
func (s *exerciseService) TrackSet(ctx context.Context, exerciseID string, in TrackSetInput) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	record := domain.SetRecord{
		SetNumber: in.SetNumber,
		Reps:      in.Reps,
		Weight:    domain.WeightData{Value: in.Weight, Unit: trackedSetUnit(exercise, in)},
		Completed: in.Completed,
		RPE:       in.RPE,
		Notes:     in.Notes,
	}
	captured, err := exercise.TrackSet(record)
	if err != nil {
		return nil, err
	}

	if captured {
		wrote, err := s.exerciseRepo.CapturePlannedSets(ctx, exercise.ID, exercise.PlannedSetsData)
		if err != nil {
			return nil, mapNotFound(err, ErrExerciseNotFound)
		}
		if !wrote {
			log.Debugf("planned sets of exercise %s were captured by a concurrent request", exercise.ID)
			stored, err := s.exerciseRepo.GetByID(ctx, exercise.ID)
			if err != nil {
				return nil, mapNotFound(err, ErrExerciseNotFound)
			}
			exercise.PlannedSetsData = stored.PlannedSetsData
		}
	}
	if err := s.exerciseRepo.UpdateSets(ctx, exercise); err != nil {
		return nil, mapNotFound(err, ErrExerciseNotFound)
	}

	if s.metrics != nil {
		s.metrics.CounterSetsTracked.Inc()
	}
	return exercise, nil
}

// trackedSetUnit: explicit kg/lb, then the unit already stored for this set number,
// then the exercise's unit.
func trackedSetUnit(exercise *domain.Exercise, in TrackSetInput) domain.WeightUnit {
	if in.Unit != nil {
		if u, ok := domain.ParseExplicitUnit(*in.Unit); ok {
			return u
		}
		if *in.Unit != "" {
			// Invalid value: keep it so record validation reports it.
			return domain.WeightUnit(*in.Unit)
		}
	}
	if existing, ok := exercise.FindSet(in.SetNumber); ok && existing.Weight.Unit != "" {
		return existing.Weight.Unit
	}
	if exercise.Weight.Unit != "" {
		return exercise.Weight.Unit
	}
	return domain.ResolveUnit(exercise.ExerciseCategory, "", nil)
}

// DeleteSet removes a set and renumbers the rest. Deleting a missing set is a no-op.
func (s *exerciseService) DeleteSet(ctx context.Context, exerciseID string, setNumber int) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if !exercise.DeleteSet(setNumber) {
		return exercise, nil
	}
	if err := s.exerciseRepo.UpdateSets(ctx, exercise); err != nil {
		return nil, mapNotFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) ReorderSets(ctx context.Context, exerciseID string, newOrder []int) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := exercise.ReorderSets(newOrder); err != nil {
		return nil, err
	}
	if len(newOrder) <= 1 {
		return exercise, nil
	}
	if err := s.exerciseRepo.UpdateSets(ctx, exercise); err != nil {
		return nil, mapNotFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

// ResolveUnit loads the athlete's preference when athleteID is set. An unknown
// athlete resolves as if no preference was stored.
func (s *exerciseService) ResolveUnit(ctx context.Context, exerciseType domain.ExerciseType, explicit, athleteID string) (domain.WeightUnit, error) {
	if u, ok := domain.ParseExplicitUnit(explicit); ok {
		return u, nil
	}
	var pref *domain.UnitPreference
	if athleteID != "" {
		athlete, err := s.userRepo.GetByID(ctx, athleteID)
		switch {
		case err == nil:
			pref = athlete.UnitPreference()
		case !errors.Is(err, repository.ErrNotFound):
			return "", err
		}
	}
	return domain.ResolveUnit(exerciseType.Category, explicit, pref), nil
}

func (s *exerciseService) AuthorizeExercise(ctx context.Context, requesterID, exerciseID string) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	workout, err := s.workoutRepo.GetByID(ctx, exercise.WorkoutID)
	if err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	if err := requireAccess(ctx, s.access, requesterID, workout.AthleteID); err != nil {
		return nil, err
	}
	return exercise, nil
}
