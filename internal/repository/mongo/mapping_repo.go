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

const mappingCollectionName = "trainer_client_mappings"

// mongoMappingRepository implements repository.MappingRepository
type mongoMappingRepository struct {
	collection *mongo.Collection
}

// NewMongoMappingRepository creates a new mapping repository backed by MongoDB.
func NewMongoMappingRepository(db *mongo.Database) repository.MappingRepository {
	return &mongoMappingRepository{
		collection: db.Collection(mappingCollectionName),
	}
}

// Create inserts a new active mapping. The partial unique index on active
// pairs turns a concurrent duplicate into ErrConflict.
func (r *mongoMappingRepository) Create(ctx context.Context, mapping *domain.TrainerClientMapping) (primitive.ObjectID, error) {
	if mapping.TrainerID == primitive.NilObjectID || mapping.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("mapping requires trainerId and clientId")
	}

	mapping.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	mapping.IsActive = true
	mapping.StartDate = now
	mapping.CreatedAt = now
	mapping.UpdatedAt = now
	if mapping.Type == "" {
		mapping.Type = domain.MappingPrimary
	}
	mapping.IsPrimary = mapping.Type == domain.MappingPrimary

	if _, err := r.collection.InsertOne(ctx, mapping); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	return mapping.ID, nil
}

// GetByID retrieves a mapping by its ID.
func (r *mongoMappingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerClientMapping, error) {
	var mapping domain.TrainerClientMapping
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&mapping)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// CountActive counts active mappings between a trainer and a client profile.
func (r *mongoMappingRepository) CountActive(ctx context.Context, trainerID, clientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"trainerId": trainerID,
		"clientId":  clientID,
		"isActive":  true,
	})
}

func (r *mongoMappingRepository) CountActiveByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"trainerId": trainerID, "isActive": true})
}

// ListActiveByTrainer returns the trainer's active mappings, most recent first.
func (r *mongoMappingRepository) ListActiveByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerClientMapping, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	return r.find(ctx, bson.M{"trainerId": trainerID, "isActive": true}, findOptions)
}

// GetActivePrimaryByClient returns the client's most recent active primary mapping.
func (r *mongoMappingRepository) GetActivePrimaryByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainerClientMapping, error) {
	var mapping domain.TrainerClientMapping
	filter := bson.M{"clientId": clientID, "isActive": true, "isPrimary": true}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "startDate", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&mapping)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// List returns a page of mappings, newest first.
func (r *mongoMappingRepository) List(ctx context.Context, activeOnly bool, skip, limit int64) ([]domain.TrainerClientMapping, int64, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	mappings, err := r.find(ctx, filter, pageOptions(skip, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	return mappings, total, nil
}

// Deactivate ends an active mapping in a single conditional update.
func (r *mongoMappingRepository) Deactivate(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (*domain.TrainerClientMapping, error) {
	filter := bson.M{"_id": id, "isActive": true}
	set := bson.M{
		"isActive":  false,
		"endDate":   at,
		"updatedAt": at,
	}
	if reason != "" {
		set["reason"] = reason
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mapping domain.TrainerClientMapping
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&mapping)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *mongoMappingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.TrainerClientMapping, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	mappings := []domain.TrainerClientMapping{}
	if err = cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

// EnsureMappingIndexes creates necessary indexes for the mappings collection.
func EnsureMappingIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// At most one active mapping per trainer/client pair
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}).
				SetName("uniq_active_pair"),
		},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "isActive", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
