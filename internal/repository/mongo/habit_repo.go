package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const habitCollectionName = "habits"

type mongoHabitRepository struct {
	collection *mongo.Collection
}

// NewMongoHabitRepository creates a habit repository backed by MongoDB.
func NewMongoHabitRepository(db *mongo.Database) repository.HabitRepository {
	return &mongoHabitRepository{
		collection: db.Collection(habitCollectionName),
	}
}

func (r *mongoHabitRepository) Upsert(ctx context.Context, habit *domain.Habit) (*domain.Habit, error) {
	now := time.Now().UTC()
	filter := bson.M{"clientId": habit.ClientID, "type": habit.Type, "date": habit.Date}

	set := bson.M{"value": habit.Value, "updatedAt": now}
	// Omitted unit and notes keep what the entry already has.
	if habit.Unit != "" {
		set["unit"] = habit.Unit
	}
	if habit.Notes != "" {
		set["notes"] = habit.Notes
	}
	onInsert := bson.M{"createdAt": now}
	if habit.Label != "" {
		onInsert["label"] = habit.Label
	}

	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.Habit
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *mongoHabitRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Habit, error) {
	filter := bson.M{
		"clientId": clientID,
		"date":     bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	habits := []domain.Habit{}
	if err = cursor.All(ctx, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// EnsureHabitIndexes makes (clientId, type, date) unique so concurrent logs
// of the same day converge on one entry.
func EnsureHabitIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "clientId", Value: 1},
			{Key: "type", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}
