package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and creator are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return primitive.NilObjectID, err
	}
	return exercise.ID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// List returns one page of the library sorted by name.
func (r *mongoExerciseRepository) List(ctx context.Context, f domain.ExerciseFilter, skip, limit int64) ([]domain.Exercise, int64, error) {
	filter := bson.M{}
	if f.PrimaryMuscle != "" {
		filter["primaryMuscle"] = f.PrimaryMuscle
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.Search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := pageOptions(skip, limit).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, 0, err
	}
	return exercises, total, nil
}

// Update modifies an existing exercise.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	exercise.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":          exercise.Name,
			"description":   exercise.Description,
			"primaryMuscle": exercise.PrimaryMuscle,
			"category":      exercise.Category,
			"difficulty":    exercise.Difficulty,
			"equipment":     exercise.Equipment,
			"isPublic":      exercise.IsPublic,
			"updatedAt":     exercise.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise by ID.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("exercise_name")},
		{Keys: bson.D{{Key: "primaryMuscle", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
