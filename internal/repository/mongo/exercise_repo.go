// internal/repository/mongo/exercise_repo.go
package mongo

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" || exercise.WorkoutID == "" {
		return errors.New("exercise requires id and workoutId")
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, exercise)
	return err
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	return findByID[domain.Exercise](ctx, r.collection, id)
}

var exerciseSort = bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}

func (r *mongoExerciseRepository) GetByWorkoutID(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	return findAll[domain.Exercise](ctx, r.collection, bson.M{"workoutId": workoutID}, options.Find().SetSort(exerciseSort))
}

func (r *mongoExerciseRepository) GetByWorkoutIDs(ctx context.Context, workoutIDs []string) ([]domain.Exercise, error) {
	if len(workoutIDs) == 0 {
		return []domain.Exercise{}, nil
	}
	filter := bson.M{"workoutId": bson.M{"$in": workoutIDs}}
	return findAll[domain.Exercise](ctx, r.collection, filter, options.Find().SetSort(exerciseSort))
}

// Update writes the plan fields and status. Set tracking goes through UpdateSets.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	exercise.UpdatedAt = time.Now().UTC()
	return updateByID(ctx, r.collection, exercise.ID, bson.M{
		"exerciseType":     exercise.ExerciseType,
		"exerciseCategory": exercise.ExerciseCategory,
		"isPredefined":     exercise.IsPredefined,
		"sets":             exercise.Sets,
		"reps":             exercise.Reps,
		"weight":           exercise.Weight,
		"rpe":              exercise.RPE,
		"status":           exercise.Status,
		"notes":            exercise.Notes,
		"order":            exercise.Order,
		"updatedAt":        exercise.UpdatedAt,
	})
}

// UpdateSets is a plain overwrite; concurrent writers race and the last one wins.
func (r *mongoExerciseRepository) UpdateSets(ctx context.Context, exercise *domain.Exercise) error {
	exercise.UpdatedAt = time.Now().UTC()
	return updateByID(ctx, r.collection, exercise.ID, bson.M{
		"setsData":  exercise.SetsData,
		"sets":      exercise.Sets,
		"status":    exercise.Status,
		"updatedAt": exercise.UpdatedAt,
	})
}

// CapturePlannedSets only matches documents whose snapshot is still null or missing,
// so the first writer keeps its snapshot even under concurrent tracking.
func (r *mongoExerciseRepository) CapturePlannedSets(ctx context.Context, exerciseID string, planned []domain.SetRecord) (bool, error) {
	if planned == nil {
		planned = []domain.SetRecord{}
	}
	filter := bson.M{"_id": exerciseID, "plannedSetsData": nil}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"plannedSetsData": planned}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoExerciseRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

// EnsureExerciseIndexes creates necessary indexes. Call during startup.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}}},
		{Keys: bson.D{{Key: "exerciseType", Value: 1}}},
	})
}
