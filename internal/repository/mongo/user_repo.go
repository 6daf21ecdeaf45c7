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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" || user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return errors.New("user id, email, password hash, and role are required")
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by id.
func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddAthleteToCoach adds an athlete's ID to a coach's AthleteIDs array.
func (r *mongoUserRepository) AddAthleteToCoach(ctx context.Context, coachID, athleteID string) error {
	filter := bson.M{"_id": coachID, "role": domain.RoleCoach}
	update := bson.M{
		"$addToSet": bson.M{"athleteIds": athleteID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// SetCoachForAthlete sets the CoachID field for a specific athlete.
func (r *mongoUserRepository) SetCoachForAthlete(ctx context.Context, athleteID, coachID string) error {
	filter := bson.M{"_id": athleteID, "role": domain.RoleAthlete}
	update := bson.M{"$set": bson.M{"coachId": coachID, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, filter, update)
}

// GetAthletesByCoachID retrieves all athletes on a coach's roster.
func (r *mongoUserRepository) GetAthletesByCoachID(ctx context.Context, coachID string) ([]domain.User, error) {
	coach, err := r.GetByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if len(coach.AthleteIDs) == 0 {
		return []domain.User{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": coach.AthleteIDs}}
	return findAll[domain.User](ctx, r.collection, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// UpdateCustomExercises overwrites the whole list.
func (r *mongoUserRepository) UpdateCustomExercises(ctx context.Context, userID string, exercises []domain.CustomExercise) error {
	update := bson.M{"$set": bson.M{"customExercises": exercises, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, bson.M{"_id": userID}, update)
}

func (r *mongoUserRepository) UpdateWeightPreference(ctx context.Context, userID string, pref domain.UnitPreference) error {
	update := bson.M{"$set": bson.M{"weightUnitPreference": pref, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, bson.M{"_id": userID}, update)
}

func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true), // only athletes have a coach
		},
	})
}

// findAll runs a find and decodes every document. It never returns a nil slice.
func findAll[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func deleteByID(ctx context.Context, collection *mongo.Collection, id string) error {
	result, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func findByID[T any](ctx context.Context, collection *mongo.Collection, id string) (*T, error) {
	var out T
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func updateByID(ctx context.Context, collection *mongo.Collection, id string, set bson.M) error {
	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
