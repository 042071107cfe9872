package repository

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	// List returns one page of users; an empty role matches every role.
	List(ctx context.Context, role domain.Role, skip, limit int64) ([]domain.User, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.UserStatus) (*domain.User, error)
}

// ProfileRepository stores trainer and client profiles. Both are keyed by
// user ID for upserts.
type ProfileRepository interface {
	GetTrainerByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
	GetTrainerByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error)
	ListTrainers(ctx context.Context) ([]domain.TrainerProfile, error)
	// EnsureTrainer returns the user's trainer profile, creating an empty one if missing.
	EnsureTrainer(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
	SaveTrainer(ctx context.Context, profile *domain.TrainerProfile) (*domain.TrainerProfile, error)

	GetClientByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error)
	GetClientByID(ctx context.Context, id primitive.ObjectID) (*domain.ClientProfile, error)
	GetClientsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ClientProfile, error)
	EnsureClient(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error)
	SaveClient(ctx context.Context, profile *domain.ClientProfile) (*domain.ClientProfile, error)
}

// MappingRepository stores trainer-client mappings.
type MappingRepository interface {
	// Create returns ErrConflict when an active mapping for the pair already exists.
	Create(ctx context.Context, mapping *domain.TrainerClientMapping) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerClientMapping, error)
	CountActive(ctx context.Context, trainerID, clientID primitive.ObjectID) (int64, error)
	CountActiveByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error)
	ListActiveByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerClientMapping, error)
	GetActivePrimaryByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainerClientMapping, error)
	List(ctx context.Context, activeOnly bool, skip, limit int64) ([]domain.TrainerClientMapping, int64, error)
	// Deactivate ends an active mapping. Returns ErrNotFound when no active mapping has that ID.
	Deactivate(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (*domain.TrainerClientMapping, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, filter domain.ExerciseFilter, skip, limit int64) ([]domain.Exercise, int64, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout logs.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	ListByClient(ctx context.Context, clientID primitive.ObjectID, skip, limit int64) ([]domain.WorkoutLog, int64, error)
	LatestCompleted(ctx context.Context, clientID primitive.ObjectID, limit int64) ([]domain.WorkoutLog, error)

	// CompletedDates returns the Date of every COMPLETED log of the client.
	CompletedDates(ctx context.Context, clientID primitive.ObjectID) ([]time.Time, error)
	// CountCompleted counts COMPLETED logs; nil bounds are open, set bounds are inclusive.
	CountCompleted(ctx context.Context, clientID primitive.ObjectID, from, to *time.Time) (int64, error)
	// SetsForWorkout returns every set of the log; an unknown log yields no sets.
	SetsForWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error)
	// CountUsingExercise counts logs that reference the exercise.
	CountUsingExercise(ctx context.Context, exerciseID primitive.ObjectID) (int64, error)

	// Transition applies t only if the log belongs to clientID and is in one of
	// the from statuses. Returns ErrNotFound when nothing matched.
	Transition(ctx context.Context, id, clientID primitive.ObjectID, from []domain.WorkoutStatus, t domain.WorkoutTransition) (*domain.WorkoutLog, error)
	// Delete removes a log that is not COMPLETED. Returns ErrNotFound when nothing matched.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	// ListByUser returns up to limit notifications older than cursor (newest first).
	ListByUser(ctx context.Context, userID primitive.ObjectID, cursor *primitive.ObjectID, limit int64) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID, at time.Time) (int64, error)
}

// HabitRepository stores daily habit entries.
type HabitRepository interface {
	// Upsert writes the entry for (ClientID, Type, Date), creating it if
	// missing. Label is only set on creation.
	Upsert(ctx context.Context, habit *domain.Habit) (*domain.Habit, error)
	// ListByClient returns entries with from <= date <= to, newest first.
	ListByClient(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Habit, error)
}

// ChallengeRepository stores challenges and their participants.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *domain.Challenge) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Challenge, error)
	// ListByStatus returns challenges with the status, latest start first.
	ListByStatus(ctx context.Context, status domain.ChallengeStatus) ([]domain.Challenge, error)
	// AddParticipant returns ErrConflict when the user already joined.
	AddParticipant(ctx context.Context, p *domain.ChallengeParticipant) (primitive.ObjectID, error)
	// CountParticipants maps each challenge ID to its participant count.
	// Challenges without participants are absent from the map.
	CountParticipants(ctx context.Context, challengeIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}
