package service_test

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseService_FirstTrackedSetCapturesPlan(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 3)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Bench Press", 225)
	require.Equal(t, domain.UnitKg, ex.Weight.Unit)

	got, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{
		SetNumber: 1,
		Reps:      5,
		Weight:    230,
		Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseStatusInProgress, got.Status)
	assert.Equal(t, 1, got.Sets)
	require.NotNil(t, got.PlannedSetsData)
	assert.Empty(t, got.PlannedSetsData)
	assert.Equal(t, domain.WeightData{Value: 230, Unit: domain.UnitKg}, got.SetsData[0].Weight)

	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, got.SetsData, stored.SetsData)
	assert.True(t, stored.HasPlannedSnapshot())
	assert.Empty(t, stored.PlannedSetsData)

	_, err = e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 2, Reps: 5, Weight: 230, Completed: true})
	require.NoError(t, err)
	stored, err = e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Len(t, stored.SetsData, 2)
	assert.Empty(t, stored.PlannedSetsData, "snapshot is written once")

	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.CounterSetsTracked))
}

// staleReadExerciseRepo serves its first GetByID from before a concurrent
// request stored the planned snapshot.
type staleReadExerciseRepo struct {
	*fakeExerciseRepo
	reads int
}

func (r *staleReadExerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	ex, err := r.fakeExerciseRepo.GetByID(ctx, id)
	r.reads++
	if err == nil && r.reads == 1 {
		ex.PlannedSetsData = nil
	}
	return ex, err
}

func TestExerciseService_TrackSetReturnsStoredSnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)

	firstWrite := []domain.SetRecord{{SetNumber: 1, Reps: 3, Weight: domain.WeightData{Value: 90, Unit: domain.UnitKg}}}
	wrote, err := e.exercises.CapturePlannedSets(ctx, ex.ID, firstWrite)
	require.NoError(t, err)
	require.True(t, wrote)

	repo := &staleReadExerciseRepo{fakeExerciseRepo: e.exercises}
	svc := service.NewExerciseService(repo, e.workouts, e.users, e.catalogSvc, service.NewRosterAccessChecker(e.users), e.metrics)

	got, err := svc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 1, Reps: 5, Weight: 100, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, firstWrite, got.PlannedSetsData)
	assert.Equal(t, 2, repo.reads)

	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, firstWrite, stored.PlannedSetsData)
	assert.Equal(t, got.SetsData, stored.SetsData)
}

func TestExerciseService_ConcurrentTrackingKeepsEmptySnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(setNumber int) {
			defer wg.Done()
			_, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{
				SetNumber: setNumber, Reps: 5, Weight: 100, Completed: true,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PlannedSetsData)
	assert.Empty(t, stored.PlannedSetsData)
	// Last write wins on setsData, so only a lower bound holds.
	assert.NotEmpty(t, stored.SetsData)
	assert.Equal(t, float64(n), testutil.ToFloat64(e.metrics.CounterSetsTracked))
}

func TestExerciseService_TrackedSetUnit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Deadlift", 140)

	got, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 1, Reps: 3, Weight: 315, Unit: ptr("lb")})
	require.NoError(t, err)
	assert.Equal(t, domain.UnitLb, got.SetsData[0].Weight.Unit)

	// Re-recording the set without a unit keeps the one already stored.
	got, err = e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 1, Reps: 3, Weight: 320, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, domain.UnitLb, got.SetsData[0].Weight.Unit)

	// A new set falls back to the exercise unit.
	got, err = e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 2, Reps: 3, Weight: 145})
	require.NoError(t, err)
	assert.Equal(t, domain.UnitKg, got.SetsData[1].Weight.Unit)

	_, err = e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 3, Reps: 3, Weight: 10, Unit: ptr("stone")})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Len(t, stored.SetsData, 2, "rejected set is not persisted")
}

func TestExerciseService_ResolveUnit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	barbell := domain.NewExerciseType("Squat")
	dumbbell := domain.NewExerciseType("Hammer Curl")

	tests := []struct {
		name      string
		exType    domain.ExerciseType
		explicit  string
		athleteID string
		pref      domain.UnitPreference
		want      domain.WeightUnit
	}{
		{name: "explicit wins", exType: barbell, explicit: "lb", athleteID: e.athlete.ID, pref: domain.PreferenceKg, want: domain.UnitLb},
		{name: "auto barbell", exType: barbell, athleteID: e.athlete.ID, pref: domain.PreferenceAuto, want: domain.UnitKg},
		{name: "auto dumbbell", exType: dumbbell, athleteID: e.athlete.ID, pref: domain.PreferenceAuto, want: domain.UnitLb},
		{name: "kg everywhere", exType: dumbbell, athleteID: e.athlete.ID, pref: domain.PreferenceKg, want: domain.UnitKg},
		{name: "invalid explicit ignored", exType: barbell, explicit: "KG", athleteID: e.athlete.ID, pref: domain.PreferenceLb, want: domain.UnitLb},
		{name: "unknown athlete", exType: barbell, athleteID: "ghost", want: domain.UnitLb},
		{name: "no athlete", exType: barbell, want: domain.UnitLb},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.pref != "" {
				require.NoError(t, e.users.UpdateWeightPreference(ctx, e.athlete.ID, tc.pref))
			}
			got, err := e.exerciseSvc.ResolveUnit(ctx, tc.exType, tc.explicit, tc.athleteID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExerciseService_CreateUsesAthletePreference(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.UpdateWeightPreference(ctx, e.athlete.ID, domain.PreferenceLb))
	sched := e.newSchedule(t, "2024-01-01", 1, 1)

	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 225)
	assert.Equal(t, domain.UnitLb, ex.Weight.Unit)
	assert.Equal(t, domain.CategoryBarbell, ex.ExerciseCategory)
	assert.True(t, ex.IsPredefined)
	assert.Equal(t, domain.ExerciseStatusPlanned, ex.Status)
	assert.Empty(t, ex.SetsData)
	assert.Nil(t, ex.PlannedSetsData)
}

func TestExerciseService_CreateRejectsLoggedWorkout(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	w, err := e.workoutSvc.LogWorkout(ctx, e.athlete.ID, sched.Weeks[0].Days[0].ID, service.LogWorkoutInput{})
	require.NoError(t, err)

	_, err = e.exerciseSvc.CreateExercise(ctx, service.CreateExerciseInput{
		WorkoutID: w.ID, ExerciseType: "Squat", Sets: 3, Reps: 5, Weight: 100,
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	_, err = e.exerciseSvc.CreateExercise(ctx, service.CreateExerciseInput{
		WorkoutID: "missing", ExerciseType: "Squat", Sets: 3, Reps: 5,
	})
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}

func TestExerciseService_DeleteSetRenumbers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)

	for i, completed := range []bool{true, false, true} {
		_, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{
			SetNumber: i + 1, Reps: 5, Weight: 100 + float64(i), Completed: completed,
		})
		require.NoError(t, err)
	}

	got, err := e.exerciseSvc.DeleteSet(ctx, ex.ID, 2)
	require.NoError(t, err)
	require.Len(t, got.SetsData, 2)
	assert.Equal(t, 1, got.SetsData[0].SetNumber)
	assert.Equal(t, 2, got.SetsData[1].SetNumber)
	assert.Equal(t, 102.0, got.SetsData[1].Weight.Value)
	assert.Equal(t, domain.ExerciseStatusCompleted, got.Status)
	assert.Equal(t, 2, got.Sets)

	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, got.SetsData, stored.SetsData)
	assert.Equal(t, domain.ExerciseStatusCompleted, stored.Status)

	// Missing set numbers leave the exercise untouched.
	got, err = e.exerciseSvc.DeleteSet(ctx, ex.ID, 9)
	require.NoError(t, err)
	assert.Len(t, got.SetsData, 2)
}

func TestExerciseService_ReorderSets(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)
	for i := 1; i <= 3; i++ {
		_, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: i, Reps: i, Weight: 100})
		require.NoError(t, err)
	}

	_, err := e.exerciseSvc.ReorderSets(ctx, ex.ID, []int{3, 1})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), "must contain all existing set numbers")

	got, err := e.exerciseSvc.ReorderSets(ctx, ex.ID, []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, repsOf(got.SetsData))

	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, repsOf(stored.SetsData))
	for i, r := range stored.SetsData {
		assert.Equal(t, i+1, r.SetNumber)
	}
}

func repsOf(records []domain.SetRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Reps
	}
	return out
}

func TestExerciseService_UpdateKeepsSets(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)
	_, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 1, Reps: 5, Weight: 100, Completed: true})
	require.NoError(t, err)

	got, err := e.exerciseSvc.UpdateExercise(ctx, ex.ID, domain.ExerciseUpdate{Notes: ptr("felt fast"), Weight: ptr(105.0)})
	require.NoError(t, err)
	assert.Equal(t, "felt fast", got.Notes)
	assert.Equal(t, 105.0, got.Weight.Value)
	assert.Len(t, got.SetsData, 1)

	_, err = e.exerciseSvc.UpdateExercise(ctx, ex.ID, domain.ExerciseUpdate{Notes: ptr("x"), Reps: ptr(0)})
	require.Error(t, err)
	stored, err := e.exercises.GetByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "felt fast", stored.Notes, "invalid update writes nothing")

	got, err = e.exerciseSvc.UpdateExerciseStatus(ctx, ex.ID, "skipped")
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseStatusSkipped, got.Status)
	_, err = e.exerciseSvc.UpdateExerciseStatus(ctx, ex.ID, "done")
	assert.True(t, domain.IsValidationError(err))
}

func TestExerciseService_NotFound(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.exerciseSvc.GetExercise(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
	_, err = e.exerciseSvc.TrackSet(ctx, "nope", service.TrackSetInput{SetNumber: 1, Reps: 1, Weight: 1})
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
	_, err = e.exerciseSvc.DeleteSet(ctx, "nope", 1)
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
	assert.ErrorIs(t, e.exerciseSvc.DeleteExercise(ctx, "nope"), service.ErrExerciseNotFound)
}

func TestExerciseService_AuthorizeExercise(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)

	_, err := e.exerciseSvc.AuthorizeExercise(ctx, e.athlete.ID, ex.ID)
	assert.NoError(t, err)
	_, err = e.exerciseSvc.AuthorizeExercise(ctx, e.coach.ID, ex.ID)
	assert.NoError(t, err)
	_, err = e.exerciseSvc.AuthorizeExercise(ctx, "stranger", ex.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}
