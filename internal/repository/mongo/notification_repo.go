package mongo

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(notificationCollectionName)}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" || n.CoachID == "" || n.WorkoutID == "" {
		return errors.New("notification requires id, coachId and workoutId")
	}
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *mongoNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	return findByID[domain.Notification](ctx, r.collection, id)
}

// GetByCoachID lists newest first.
func (r *mongoNotificationRepository) GetByCoachID(ctx context.Context, coachID string, unreadOnly bool) ([]domain.Notification, error) {
	filter := bson.M{"coachId": coachID}
	if unreadOnly {
		filter["isRead"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[domain.Notification](ctx, r.collection, filter, opts)
}

func (r *mongoNotificationRepository) ExistsForWorkout(ctx context.Context, workoutID, coachID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"workoutId": workoutID, "coachId": coachID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkRead is the only mutation a notification accepts.
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id string) error {
	return updateByID(ctx, r.collection, id, bson.M{"isRead": true})
}

func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "coachId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}
