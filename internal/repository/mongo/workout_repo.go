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

const workoutCollectionName = "workout_logs"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new workout log repository backed by MongoDB.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout log with its embedded exercises and sets.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.WorkoutLog) (primitive.ObjectID, error) {
	if workout.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires clientId")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Date.IsZero() {
		workout.Date = now
	}
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

// GetByID retrieves a workout log by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var workout domain.WorkoutLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByClient returns a page of the client's logs, most recent first.
func (r *mongoWorkoutRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID, skip, limit int64) ([]domain.WorkoutLog, int64, error) {
	filter := bson.M{"clientId": clientID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	workouts, err := r.find(ctx, filter, pageOptions(skip, limit).SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	return workouts, total, nil
}

func (r *mongoWorkoutRepository) LatestCompleted(ctx context.Context, clientID primitive.ObjectID, limit int64) ([]domain.WorkoutLog, error) {
	filter := bson.M{"clientId": clientID, "status": domain.WorkoutCompleted}
	return r.find(ctx, filter, pageOptions(0, limit).SetSort(bson.D{{Key: "date", Value: -1}}))
}

// CompletedDates only projects the date field.
func (r *mongoWorkoutRepository) CompletedDates(ctx context.Context, clientID primitive.ObjectID) ([]time.Time, error) {
	filter := bson.M{"clientId": clientID, "status": domain.WorkoutCompleted}
	findOptions := options.Find().
		SetProjection(bson.M{"date": 1}).
		SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date time.Time `bson:"date"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.Date)
	}
	return dates, nil
}

func (r *mongoWorkoutRepository) CountCompleted(ctx context.Context, clientID primitive.ObjectID, from, to *time.Time) (int64, error) {
	filter := bson.M{"clientId": clientID, "status": domain.WorkoutCompleted}
	dateRange := bson.M{}
	if from != nil {
		dateRange["$gte"] = *from
	}
	if to != nil {
		dateRange["$lte"] = *to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	return r.collection.CountDocuments(ctx, filter)
}

func (r *mongoWorkoutRepository) SetsForWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	findOptions := options.FindOne().SetProjection(bson.M{"exercises": 1})

	var workout domain.WorkoutLog
	err := r.collection.FindOne(ctx, bson.M{"_id": workoutID}, findOptions).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []domain.WorkoutSet{}, nil
		}
		return nil, err
	}
	return workout.Sets(), nil
}

func (r *mongoWorkoutRepository) CountUsingExercise(ctx context.Context, exerciseID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"exercises.exerciseId": exerciseID})
}

// Transition is a single conditional update: the status filter guarantees a
// log leaves an open state at most once even under concurrent requests.
func (r *mongoWorkoutRepository) Transition(ctx context.Context, id, clientID primitive.ObjectID, from []domain.WorkoutStatus, t domain.WorkoutTransition) (*domain.WorkoutLog, error) {
	filter := bson.M{
		"_id":      id,
		"clientId": clientID,
		"status":   bson.M{"$in": from},
	}

	set := bson.M{
		"status":    t.To,
		"updatedAt": time.Now().UTC(),
	}
	if t.Date != nil {
		set["date"] = *t.Date
	}
	if t.DurationMin != nil {
		set["durationMin"] = *t.DurationMin
	}
	if t.Exercises != nil {
		set["exercises"] = t.Exercises
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var workout domain.WorkoutLog
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// Delete removes a workout log unless it has been completed.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": domain.WorkoutCompleted}}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.WorkoutLog, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.WorkoutLog{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// EnsureWorkoutIndexes creates necessary indexes for the workout logs collection.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Streak, weekly count and history queries
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "status", Value: 1}, {Key: "date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "exercises.exerciseId", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "assignedBy", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
