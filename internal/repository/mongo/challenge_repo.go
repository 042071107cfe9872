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
	challengeCollectionName   = "challenges"
	participantCollectionName = "challenge_participants"
)

type mongoChallengeRepository struct {
	challenges   *mongo.Collection
	participants *mongo.Collection
}

// NewMongoChallengeRepository creates a challenge repository backed by MongoDB.
func NewMongoChallengeRepository(db *mongo.Database) repository.ChallengeRepository {
	return &mongoChallengeRepository{
		challenges:   db.Collection(challengeCollectionName),
		participants: db.Collection(participantCollectionName),
	}
}

func (r *mongoChallengeRepository) Create(ctx context.Context, challenge *domain.Challenge) (primitive.ObjectID, error) {
	challenge.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	challenge.CreatedAt = now
	challenge.UpdatedAt = now

	if _, err := r.challenges.InsertOne(ctx, challenge); err != nil {
		return primitive.NilObjectID, err
	}
	return challenge.ID, nil
}

func (r *mongoChallengeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.challenges.FindOne(ctx, bson.M{"_id": id}).Decode(&challenge); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *mongoChallengeRepository) ListByStatus(ctx context.Context, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	cursor, err := r.challenges.Find(ctx, bson.M{"status": status}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	challenges := []domain.Challenge{}
	if err = cursor.All(ctx, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *mongoChallengeRepository) AddParticipant(ctx context.Context, p *domain.ChallengeParticipant) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	if _, err := r.participants.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	return p.ID, nil
}

func (r *mongoChallengeRepository) CountParticipants(ctx context.Context, challengeIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(challengeIDs))
	if len(challengeIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"challengeId": bson.M{"$in": challengeIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$challengeId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.participants.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func EnsureChallengeIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "startDate", Value: -1}},
	})
	return err
}

// EnsureParticipantIndexes makes a user's membership in a challenge unique.
func EnsureParticipantIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "challengeId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
