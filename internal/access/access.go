// Package access decides who may invoke an operation and whether a trainer
// may act on a particular client.
package access

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not permitted")
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID primitive.ObjectID
	Role   domain.Role
}

// Authorize fails with ErrUnauthenticated for a nil caller and with
// ErrForbidden when the caller's role is not in allowed.
func Authorize(caller *Caller, allowed ...domain.Role) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if !slices.Contains(allowed, caller.Role) {
		return ErrForbidden
	}
	return nil
}

// TrainerProfileLookup resolves a trainer user to its profile.
type TrainerProfileLookup interface {
	GetTrainerByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
}

// ActiveMappingCounter counts active trainer-client mappings.
type ActiveMappingCounter interface {
	CountActive(ctx context.Context, trainerID, clientID primitive.ObjectID) (int64, error)
}

// Checker answers ownership questions against storage.
type Checker struct {
	profiles TrainerProfileLookup
	mappings ActiveMappingCounter
}

func NewChecker(profiles TrainerProfileLookup, mappings ActiveMappingCounter) *Checker {
	return &Checker{profiles: profiles, mappings: mappings}
}

// CanTrainerAccessClient reports whether the trainer identified by its user
// ID has exactly one active mapping to the client profile. A user without a
// trainer profile gets false. Storage errors are returned unchanged.
func (c *Checker) CanTrainerAccessClient(ctx context.Context, trainerUserID, clientProfileID primitive.ObjectID) (bool, error) {
	trainer, err := c.profiles.GetTrainerByUserID(ctx, trainerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	count, err := c.mappings.CountActive(ctx, trainer.ID, clientProfileID)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}
