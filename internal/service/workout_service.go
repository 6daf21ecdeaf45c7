package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// LogWorkoutInput is an after-the-fact log of a whole session.
type LogWorkoutInput struct {
	Date      string // defaults to the day's date
	Notes     string
	Status    string // optional explicit status
	Exercises []LoggedExerciseInput
}

type LoggedExerciseInput struct {
	ExerciseType string
	Category     *string
	Notes        string
	Sets         []LoggedSetInput
}

type LoggedSetInput struct {
	SetNumber int
	Reps      int
	Weight    float64
	Unit      string
	RPE       *float64
	Completed bool
	Notes     string
}

type WorkoutService interface {
	CreateWorkoutFromDay(ctx context.Context, athleteID, dayID string) (*domain.Workout, error)
	LogWorkout(ctx context.Context, athleteID, dayID string, in LogWorkoutInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, workoutID string) (*domain.Workout, error)
	GetWorkoutForDay(ctx context.Context, athleteID, dayID string) (*domain.Workout, error)
	ListAthleteWorkouts(ctx context.Context, athleteID string) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, workoutID string, update domain.WorkoutUpdate) (*domain.Workout, error)
	StartSession(ctx context.Context, workoutID string) (*domain.Workout, error)
	FinishSession(ctx context.Context, workoutID string) (*domain.Workout, error)
	// DeleteWorkout removes the workout and, best effort, its exercises. It returns
	// how many exercises were deleted.
	DeleteWorkout(ctx context.Context, workoutID string) (int, error)
	CalculateVolume(ctx context.Context, workoutID string) (float64, error)
	AuthorizeWorkout(ctx context.Context, requesterID, workoutID string) (*domain.Workout, error)
}

type workoutService struct {
	workoutRepo     repository.WorkoutRepository
	exerciseRepo    repository.ExerciseRepository
	dayRepo         repository.DayRepository
	dayExerciseRepo repository.DayExerciseRepository
	userRepo        repository.UserRepository
	catalog         CatalogService
	notifications   NotificationService
	access          AccessChecker
	metrics         *metrics.Manager
	now             func() time.Time
}

func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	dayRepo repository.DayRepository,
	dayExerciseRepo repository.DayExerciseRepository,
	userRepo repository.UserRepository,
	catalog CatalogService,
	notifications NotificationService,
	access AccessChecker,
	metricsManager *metrics.Manager,
) WorkoutService {
	return &workoutService{
		workoutRepo:     workoutRepo,
		exerciseRepo:    exerciseRepo,
		dayRepo:         dayRepo,
		dayExerciseRepo: dayExerciseRepo,
		userRepo:        userRepo,
		catalog:         catalog,
		notifications:   notifications,
		access:          access,
		metrics:         metricsManager,
		now:             time.Now,
	}
}

// CreateWorkoutFromDay starts a tracked workout for the day, copying the day's
// template exercises as planned exercises.
func (s *workoutService) CreateWorkoutFromDay(ctx context.Context, athleteID, dayID string) (*domain.Workout, error) {
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayNotFound)
	}
	if _, err := s.workoutRepo.GetByAthleteAndDay(ctx, athleteID, dayID); err == nil {
		return nil, ErrWorkoutAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	pref, err := s.athletePreference(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	templates, err := s.dayExerciseRepo.GetByDayID(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("load day exercises: %w", err)
	}

	workout, err := domain.NewWorkout(uuid.NewString(), athleteID, dayID, day.Date, domain.WorkoutKindTracked)
	if err != nil {
		return nil, err
	}
	exercises := make([]domain.Exercise, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		ex, err := domain.NewExercise(domain.NewExerciseParams{
			ID:           uuid.NewString(),
			WorkoutID:    workout.ID,
			ExerciseType: t.Type(),
			Sets:         t.Sets,
			Reps:         t.Reps,
			Weight:       domain.WeightData{Value: t.Weight, Unit: domain.ResolveUnit(t.ExerciseCategory, "", pref)},
			RPE:          t.RPE,
			Notes:        t.Notes,
			Order:        t.Order,
		})
		if err != nil {
			return nil, fmt.Errorf("copy day exercise %s: %w", t.ID, err)
		}
		exercises = append(exercises, *ex)
	}

	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrWorkoutAlreadyExists
		}
		return nil, fmt.Errorf("create workout: %w", err)
	}
	for i := range exercises {
		if err := s.exerciseRepo.Create(ctx, &exercises[i]); err != nil {
			return nil, fmt.Errorf("create workout exercise: %w", err)
		}
	}
	workout.Exercises = exercises
	log.Debugf("created workout %s for athlete %s from day %s with %d exercises", workout.ID, athleteID, dayID, len(exercises))
	return workout, nil
}

// LogWorkout records a finished session in one call. A second log for the same
// athlete and day replaces the first one's content.
func (s *workoutService) LogWorkout(ctx context.Context, athleteID, dayID string, in LogWorkoutInput) (*domain.Workout, error) {
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayNotFound)
	}
	date := in.Date
	if date == "" {
		date = day.Date
	}

	existing, err := s.workoutRepo.GetByAthleteAndDay(ctx, athleteID, dayID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Kind != domain.WorkoutKindLogged {
		return nil, ErrWorkoutKindConflict
	}

	workout := existing
	wasCompleted := false
	if workout == nil {
		if workout, err = domain.NewWorkout(uuid.NewString(), athleteID, dayID, date, domain.WorkoutKindLogged); err != nil {
			return nil, err
		}
	} else {
		wasCompleted = workout.Status() == domain.WorkoutStatusCompleted
	}

	completed, err := s.buildCompletedExercises(ctx, athleteID, in.Exercises)
	if err != nil {
		return nil, err
	}
	update := domain.WorkoutUpdate{Notes: &in.Notes, Date: &date}
	if in.Status != "" {
		update.Status = &in.Status
	}
	if err := workout.ApplyUpdate(update); err != nil {
		return nil, err
	}
	workout.CompletedExercises = completed

	if existing == nil {
		err = s.workoutRepo.Create(ctx, workout)
	} else {
		err = s.workoutRepo.Update(ctx, workout)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrWorkoutAlreadyExists
		}
		return nil, fmt.Errorf("save logged workout: %w", err)
	}

	if !wasCompleted {
		s.onMaybeCompleted(ctx, workout)
	}
	return workout, nil
}

func (s *workoutService) buildCompletedExercises(ctx context.Context, athleteID string, inputs []LoggedExerciseInput) ([]domain.CompletedExercise, error) {
	pref, err := s.athletePreference(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CompletedExercise, 0, len(inputs))
	for _, in := range inputs {
		exType, err := s.catalog.ResolveExerciseType(ctx, athleteID, in.ExerciseType, in.Category)
		if err != nil {
			return nil, err
		}
		ce, err := domain.NewCompletedExercise(uuid.NewString(), exType, in.Notes)
		if err != nil {
			return nil, err
		}
		for _, st := range in.Sets {
			unit := domain.ResolveUnit(exType.Category, st.Unit, pref)
			set, err := domain.NewSet(uuid.NewString(), st.SetNumber, st.Reps, st.Weight, unit, st.RPE, st.Completed, st.Notes)
			if err != nil {
				return nil, err
			}
			if err := ce.AddSet(*set); err != nil {
				return nil, err
			}
		}
		out = append(out, *ce)
	}
	return out, nil
}

func (s *workoutService) athletePreference(ctx context.Context, athleteID string) (*domain.UnitPreference, error) {
	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return athlete.UnitPreference(), nil
}

// loadExercises attaches the exercise documents of a tracked workout.
func (s *workoutService) loadExercises(ctx context.Context, workout *domain.Workout) error {
	if workout.Kind != domain.WorkoutKindTracked {
		return nil
	}
	exercises, err := s.exerciseRepo.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return fmt.Errorf("load exercises of workout %s: %w", workout.ID, err)
	}
	workout.Exercises = exercises
	return nil
}

func (s *workoutService) GetWorkout(ctx context.Context, workoutID string) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	if err := s.loadExercises(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) GetWorkoutForDay(ctx context.Context, athleteID, dayID string) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByAthleteAndDay(ctx, athleteID, dayID)
	if err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	if err := s.loadExercises(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) ListAthleteWorkouts(ctx context.Context, athleteID string) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(workouts))
	for _, w := range workouts {
		if w.Kind == domain.WorkoutKindTracked {
			ids = append(ids, w.ID)
		}
	}
	if len(ids) == 0 {
		return workouts, nil
	}
	exercises, err := s.exerciseRepo.GetByWorkoutIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byWorkout := make(map[string][]domain.Exercise, len(ids))
	for _, e := range exercises {
		byWorkout[e.WorkoutID] = append(byWorkout[e.WorkoutID], e)
	}
	for i := range workouts {
		workouts[i].Exercises = byWorkout[workouts[i].ID]
	}
	return workouts, nil
}

// UpdateWorkout validates every field before writing. Moving the workout into
// completed notifies the athlete's coach.
func (s *workoutService) UpdateWorkout(ctx context.Context, workoutID string, update domain.WorkoutUpdate) (*domain.Workout, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	wasCompleted := workout.Status() == domain.WorkoutStatusCompleted
	if err := workout.ApplyUpdate(update); err != nil {
		return nil, err
	}
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	if !wasCompleted {
		s.onMaybeCompleted(ctx, workout)
	}
	return workout, nil
}

func (s *workoutService) StartSession(ctx context.Context, workoutID string) (*domain.Workout, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err := workout.StartSession(s.now()); err != nil {
		return nil, err
	}
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

func (s *workoutService) FinishSession(ctx context.Context, workoutID string) (*domain.Workout, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err := workout.FinishSession(s.now()); err != nil {
		return nil, err
	}
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	s.onMaybeCompleted(ctx, workout)
	return workout, nil
}

// onMaybeCompleted never fails the caller's write; notification errors are logged.
func (s *workoutService) onMaybeCompleted(ctx context.Context, workout *domain.Workout) {
	if workout.Status() != domain.WorkoutStatusCompleted {
		return
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsCompleted.Inc()
	}
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.NotifyWorkoutCompleted(ctx, workout); err != nil {
		log.Errorf("notify coach about workout %s: %s", workout.ID, err)
	}
}

func (s *workoutService) DeleteWorkout(ctx context.Context, workoutID string) (int, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var errs error
	for _, e := range workout.Exercises {
		if err := s.exerciseRepo.Delete(ctx, e.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("exercise %s: %w", e.ID, err))
			continue
		}
		deleted++
	}
	if errs != nil {
		log.Warnf("workout %s: %d of %d exercises not deleted: %s",
			workoutID, len(multierr.Errors(errs)), len(workout.Exercises), errs)
	}

	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		return deleted, mapNotFound(err, ErrWorkoutNotFound)
	}
	return deleted, nil
}

func (s *workoutService) CalculateVolume(ctx context.Context, workoutID string) (float64, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return 0, err
	}
	return workout.CalculateVolume(), nil
}

func (s *workoutService) AuthorizeWorkout(ctx context.Context, requesterID, workoutID string) (*domain.Workout, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err := requireAccess(ctx, s.access, requesterID, workout.AthleteID); err != nil {
		return nil, err
	}
	return workout, nil
}
