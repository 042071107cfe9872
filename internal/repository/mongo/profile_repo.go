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

const (
	trainerProfileCollection = "trainer_profiles"
	clientProfileCollection  = "client_profiles"
)

// mongoProfileRepository implements repository.ProfileRepository
type mongoProfileRepository struct {
	trainers *mongo.Collection
	clients  *mongo.Collection
}

// NewMongoProfileRepository creates a profile repository backed by MongoDB.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		trainers: db.Collection(trainerProfileCollection),
		clients:  db.Collection(clientProfileCollection),
	}
}

func findProfile[T any](ctx context.Context, collection *mongo.Collection, filter bson.M) (*T, error) {
	var profile T
	if err := collection.FindOne(ctx, filter).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// upsertProfile applies set to the profile of userID, inserting it if missing,
// and returns the stored document.
func upsertProfile[T any](ctx context.Context, collection *mongo.Collection, userID primitive.ObjectID, set bson.M) (*T, error) {
	now := time.Now().UTC()
	onInsert := bson.M{"createdAt": now}
	if set == nil {
		set = bson.M{}
		onInsert["profileCompleted"] = false
		onInsert["updatedAt"] = now
	} else {
		set["updatedAt"] = now
	}

	update := bson.M{"$setOnInsert": onInsert}
	if len(set) > 0 {
		update["$set"] = set
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var profile T
	err := collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *mongoProfileRepository) GetTrainerByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	return findProfile[domain.TrainerProfile](ctx, r.trainers, bson.M{"userId": userID})
}

func (r *mongoProfileRepository) GetTrainerByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error) {
	return findProfile[domain.TrainerProfile](ctx, r.trainers, bson.M{"_id": id})
}

// ListTrainers returns every trainer profile, newest first.
func (r *mongoProfileRepository) ListTrainers(ctx context.Context) ([]domain.TrainerProfile, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.trainers.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []domain.TrainerProfile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *mongoProfileRepository) EnsureTrainer(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	return upsertProfile[domain.TrainerProfile](ctx, r.trainers, userID, nil)
}

// SaveTrainer writes the editable trainer fields and marks the profile complete.
func (r *mongoProfileRepository) SaveTrainer(ctx context.Context, p *domain.TrainerProfile) (*domain.TrainerProfile, error) {
	return upsertProfile[domain.TrainerProfile](ctx, r.trainers, p.UserID, bson.M{
		"bio":              p.Bio,
		"specialties":      p.Specialties,
		"certifications":   p.Certifications,
		"experience":       p.Experience,
		"profileCompleted": true,
	})
}

func (r *mongoProfileRepository) GetClientByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error) {
	return findProfile[domain.ClientProfile](ctx, r.clients, bson.M{"userId": userID})
}

func (r *mongoProfileRepository) GetClientByID(ctx context.Context, id primitive.ObjectID) (*domain.ClientProfile, error) {
	return findProfile[domain.ClientProfile](ctx, r.clients, bson.M{"_id": id})
}

func (r *mongoProfileRepository) GetClientsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ClientProfile, error) {
	if len(ids) == 0 {
		return []domain.ClientProfile{}, nil
	}
	cursor, err := r.clients.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []domain.ClientProfile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *mongoProfileRepository) EnsureClient(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error) {
	return upsertProfile[domain.ClientProfile](ctx, r.clients, userID, nil)
}

// SaveClient writes the editable client fields and marks the profile complete.
func (r *mongoProfileRepository) SaveClient(ctx context.Context, p *domain.ClientProfile) (*domain.ClientProfile, error) {
	return upsertProfile[domain.ClientProfile](ctx, r.clients, p.UserID, bson.M{
		"fitnessGoals":     p.FitnessGoals,
		"heightCm":         p.HeightCm,
		"weightKg":         p.WeightKg,
		"profileCompleted": true,
	})
}

// EnsureTrainerProfileIndexes makes userId unique so upserts cannot create duplicates.
func EnsureTrainerProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func EnsureClientProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
