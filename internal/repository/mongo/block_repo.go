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

const (
	blockCollectionName       = "blocks"
	weekCollectionName        = "weeks"
	dayCollectionName         = "days"
	dayExerciseCollectionName = "day_exercises"
)

type mongoBlockRepository struct {
	collection *mongo.Collection
}

// NewMongoBlockRepository creates a new Block repository.
func NewMongoBlockRepository(db *mongo.Database) repository.BlockRepository {
	return &mongoBlockRepository{collection: db.Collection(blockCollectionName)}
}

func (r *mongoBlockRepository) Create(ctx context.Context, block *domain.Block) error {
	if block.ID == "" || block.AthleteID == "" {
		return errors.New("block requires id and athleteId")
	}
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, block)
	return err
}

func (r *mongoBlockRepository) GetByID(ctx context.Context, id string) (*domain.Block, error) {
	return findByID[domain.Block](ctx, r.collection, id)
}

// GetByAthleteID returns the athlete's blocks, most recent start first.
func (r *mongoBlockRepository) GetByAthleteID(ctx context.Context, athleteID string) ([]domain.Block, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	return findAll[domain.Block](ctx, r.collection, bson.M{"athleteId": athleteID}, opts)
}

func (r *mongoBlockRepository) Update(ctx context.Context, block *domain.Block) error {
	block.UpdatedAt = time.Now().UTC()
	return updateByID(ctx, r.collection, block.ID, bson.M{
		"title":         block.Title,
		"description":   block.Description,
		"startDate":     block.StartDate,
		"endDate":       block.EndDate,
		"status":        block.Status,
		"numberOfWeeks": block.NumberOfWeeks,
		"updatedAt":     block.UpdatedAt,
	})
}

func (r *mongoBlockRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

// EnsureBlockIndexes creates necessary indexes. Call during startup.
func EnsureBlockIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "athleteId", Value: 1}, {Key: "startDate", Value: -1}}},
		{Keys: bson.D{{Key: "coachId", Value: 1}}},
	})
}

type mongoWeekRepository struct {
	collection *mongo.Collection
}

func NewMongoWeekRepository(db *mongo.Database) repository.WeekRepository {
	return &mongoWeekRepository{collection: db.Collection(weekCollectionName)}
}

func (r *mongoWeekRepository) Create(ctx context.Context, week *domain.Week) error {
	if week.ID == "" || week.BlockID == "" {
		return errors.New("week requires id and blockId")
	}
	_, err := r.collection.InsertOne(ctx, week)
	return err
}

func (r *mongoWeekRepository) GetByID(ctx context.Context, id string) (*domain.Week, error) {
	return findByID[domain.Week](ctx, r.collection, id)
}

func (r *mongoWeekRepository) GetByBlockID(ctx context.Context, blockID string) ([]domain.Week, error) {
	opts := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}})
	return findAll[domain.Week](ctx, r.collection, bson.M{"blockId": blockID}, opts)
}

func (r *mongoWeekRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

func EnsureWeekIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blockId", Value: 1}, {Key: "weekNumber", Value: 1}}},
	})
}

type mongoDayRepository struct {
	collection *mongo.Collection
}

func NewMongoDayRepository(db *mongo.Database) repository.DayRepository {
	return &mongoDayRepository{collection: db.Collection(dayCollectionName)}
}

func (r *mongoDayRepository) Create(ctx context.Context, day *domain.Day) error {
	if day.ID == "" || day.WeekID == "" {
		return errors.New("day requires id and weekId")
	}
	_, err := r.collection.InsertOne(ctx, day)
	return err
}

func (r *mongoDayRepository) GetByID(ctx context.Context, id string) (*domain.Day, error) {
	return findByID[domain.Day](ctx, r.collection, id)
}

func (r *mongoDayRepository) GetByWeekID(ctx context.Context, weekID string) ([]domain.Day, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})
	return findAll[domain.Day](ctx, r.collection, bson.M{"weekId": weekID}, opts)
}

func (r *mongoDayRepository) Update(ctx context.Context, day *domain.Day) error {
	return updateByID(ctx, r.collection, day.ID, bson.M{
		"date":  day.Date,
		"focus": day.Focus,
		"notes": day.Notes,
	})
}

func (r *mongoDayRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

func EnsureDayIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "weekId", Value: 1}, {Key: "dayNumber", Value: 1}}},
	})
}

type mongoDayExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoDayExerciseRepository(db *mongo.Database) repository.DayExerciseRepository {
	return &mongoDayExerciseRepository{collection: db.Collection(dayExerciseCollectionName)}
}

func (r *mongoDayExerciseRepository) Create(ctx context.Context, exercise *domain.DayExercise) error {
	if exercise.ID == "" || exercise.DayID == "" {
		return errors.New("day exercise requires id and dayId")
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, exercise)
	return err
}

func (r *mongoDayExerciseRepository) GetByID(ctx context.Context, id string) (*domain.DayExercise, error) {
	return findByID[domain.DayExercise](ctx, r.collection, id)
}

func (r *mongoDayExerciseRepository) GetByDayID(ctx context.Context, dayID string) ([]domain.DayExercise, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})
	return findAll[domain.DayExercise](ctx, r.collection, bson.M{"dayId": dayID}, opts)
}

func (r *mongoDayExerciseRepository) Update(ctx context.Context, exercise *domain.DayExercise) error {
	exercise.UpdatedAt = time.Now().UTC()
	return updateByID(ctx, r.collection, exercise.ID, bson.M{
		"exerciseType":     exercise.ExerciseType,
		"exerciseCategory": exercise.ExerciseCategory,
		"isPredefined":     exercise.IsPredefined,
		"sets":             exercise.Sets,
		"reps":             exercise.Reps,
		"weight":           exercise.Weight,
		"rpe":              exercise.RPE,
		"notes":            exercise.Notes,
		"order":            exercise.Order,
		"updatedAt":        exercise.UpdatedAt,
	})
}

func (r *mongoDayExerciseRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

func EnsureDayExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dayId", Value: 1}, {Key: "order", Value: 1}}},
	})
}
