// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. The unique (athleteId, dayId) index turns a second
// workout for the same day into ErrConflict.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == "" || workout.AthleteID == "" || workout.DayID == "" {
		return errors.New("workout requires id, athleteId and dayId")
	}
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	return findByID[domain.Workout](ctx, r.collection, id)
}

func (r *mongoWorkoutRepository) GetByAthleteAndDay(ctx context.Context, athleteID, dayID string) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"athleteId": athleteID, "dayId": dayID}
	if err := r.collection.FindOne(ctx, filter).Decode(&workout); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByAthleteID returns the athlete's workouts ordered by date.
func (r *mongoWorkoutRepository) GetByAthleteID(ctx context.Context, athleteID string) ([]domain.Workout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[domain.Workout](ctx, r.collection, bson.M{"athleteId": athleteID}, opts)
}

func (r *mongoWorkoutRepository) GetByDayIDs(ctx context.Context, dayIDs []string) ([]domain.Workout, error) {
	if len(dayIDs) == 0 {
		return []domain.Workout{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[domain.Workout](ctx, r.collection, bson.M{"dayId": bson.M{"$in": dayIDs}}, opts)
}

// Update writes the mutable workout fields. AthleteID and DayID never change.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == "" {
		return errors.New("workout ID is required for update")
	}
	workout.UpdatedAt = time.Now().UTC()
	return updateByID(ctx, r.collection, workout.ID, bson.M{
		"date":               workout.Date,
		"notes":              workout.Notes,
		"status":             workout.ExplicitStatus,
		"completedExercises": workout.CompletedExercises,
		"startTime":          workout.StartTime,
		"finishTime":         workout.FinishTime,
		"updatedAt":          workout.UpdatedAt,
	})
}

func (r *mongoWorkoutRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// One workout per athlete per day
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "dayId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "dayId", Value: 1}},
		},
	})
}
