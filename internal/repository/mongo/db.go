package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Use a separate context for the ping, as the initial connection might have succeeded
	// but the server might be unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are
// collected so one bad collection does not hide the others.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for name, ensure := range map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:         EnsureUserIndexes,
		trainerProfileCollection:   EnsureTrainerProfileIndexes,
		clientProfileCollection:    EnsureClientProfileIndexes,
		mappingCollectionName:      EnsureMappingIndexes,
		exerciseCollectionName:     EnsureExerciseIndexes,
		workoutCollectionName:      EnsureWorkoutIndexes,
		notificationCollectionName: EnsureNotificationIndexes,
		habitCollectionName:        EnsureHabitIndexes,
		challengeCollectionName:    EnsureChallengeIndexes,
		participantCollectionName:  EnsureParticipantIndexes,
	} {
		if err := ensure(ctx, db.Collection(name)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// pageOptions builds find options for skip/limit pagination. A non-positive
// limit returns everything.
func pageOptions(skip, limit int64) *options.FindOptions {
	opts := options.Find()
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}
