package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a notification repository backed by MongoDB.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	if n.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("notification requires userId")
	}
	n.ID = primitive.NewObjectID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, err
	}
	return n.ID, nil
}

// ListByUser pages by _id. ObjectIDs grow with insertion time so the cursor
// is stable while new notifications arrive.
func (r *mongoNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, cursor *primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	filter := bson.M{"userId": userID}
	if cursor != nil {
		filter["_id"] = bson.M{"$lt": *cursor}
	}
	findOptions := pageOptions(0, limit).SetSort(bson.D{{Key: "_id", Value: -1}})

	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notifications := []domain.Notification{}
	if err = cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
}

// MarkRead returns ErrNotFound when the notification does not belong to userID.
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{"userId": userID, "isRead": false}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": at}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}}},
		{
			// Read notifications expire after 90 days
			Keys:    bson.D{{Key: "readAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60).SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
