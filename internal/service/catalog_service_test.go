package service_test

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateCustomExercise(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	created, err := e.catalogSvc.CreateCustomExercise(ctx, e.athlete.ID, "  Sled Push ", "machine")
	require.NoError(t, err)
	assert.Equal(t, domain.CustomExercise{Name: "Sled Push", Category: domain.CategoryMachine}, *created)

	tests := []struct {
		name     string
		userID   string
		exercise string
		category string
		wantErr  error
	}{
		{name: "invalid category", userID: e.athlete.ID, exercise: "Sled Pull", category: "kettlebell", wantErr: service.ErrInvalidCategory},
		{name: "custom category", userID: e.athlete.ID, exercise: "Sled Pull", category: "CUSTOM", wantErr: service.ErrCustomCategoryNotAllowed},
		{name: "predefined name", userID: e.athlete.ID, exercise: "bench press", category: "BARBELL", wantErr: service.ErrPredefinedNameConflict},
		{name: "duplicate", userID: e.athlete.ID, exercise: "SLED PUSH", category: "CABLE", wantErr: service.ErrCustomNameConflict},
		{name: "unknown user", userID: "ghost", exercise: "Sled Pull", category: "MACHINE", wantErr: service.ErrUserNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.catalogSvc.CreateCustomExercise(ctx, tc.userID, tc.exercise, tc.category)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err = e.catalogSvc.CreateCustomExercise(ctx, e.athlete.ID, " ", "MACHINE")
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, service.ErrInvalidCategory.Error(), "BARBELL, DUMBBELL, BODYWEIGHT, MACHINE, CABLE, CUSTOM")

	user, err := e.users.GetByID(ctx, e.athlete.ID)
	require.NoError(t, err)
	assert.Len(t, user.CustomExercises, 1)
}

func TestCatalogService_ListExerciseTypes(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.catalogSvc.CreateCustomExercise(ctx, e.athlete.ID, "Sled Push", "MACHINE")
	require.NoError(t, err)

	types, err := e.catalogSvc.ListExerciseTypes(ctx, e.athlete.ID)
	require.NoError(t, err)
	predefined := domain.PredefinedExerciseNames()
	require.Len(t, types, len(predefined)+1)
	for _, typ := range types[:len(predefined)] {
		assert.True(t, typ.IsPredefined, typ.Name)
	}
	last := types[len(types)-1]
	assert.Equal(t, domain.ExerciseType{Name: "Sled Push", Category: domain.CategoryMachine}, last)

	// Custom entries are per user.
	coachTypes, err := e.catalogSvc.ListExerciseTypes(ctx, e.coach.ID)
	require.NoError(t, err)
	assert.Len(t, coachTypes, len(predefined))
}

func TestCatalogService_ResolveExerciseType(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.catalogSvc.CreateCustomExercise(ctx, e.athlete.ID, "Sled Push", "MACHINE")
	require.NoError(t, err)

	tests := []struct {
		name     string
		exercise string
		category *string
		want     domain.ExerciseType
	}{
		{name: "predefined", exercise: "Deadlift", want: domain.ExerciseType{Name: "Deadlift", Category: domain.CategoryBarbell, IsPredefined: true}},
		{name: "explicit category", exercise: "Deadlift", category: ptr("dumbbell"), want: domain.ExerciseType{Name: "Deadlift", Category: domain.CategoryDumbbell}},
		{name: "custom entry", exercise: "sled push", want: domain.ExerciseType{Name: "Sled Push", Category: domain.CategoryMachine}},
		{name: "unknown", exercise: "Tire Flip", want: domain.ExerciseType{Name: "Tire Flip", Category: domain.CategoryCustom}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.catalogSvc.ResolveExerciseType(ctx, e.athlete.ID, tc.exercise, tc.category)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err = e.catalogSvc.ResolveExerciseType(ctx, e.athlete.ID, "Deadlift", ptr("chains"))
	assert.ErrorIs(t, err, service.ErrInvalidCategory)
}
