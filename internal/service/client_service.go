package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FitnessGoals a client may pick.
var FitnessGoals = []string{
	"LOSE_WEIGHT", "BUILD_MUSCLE", "IMPROVE_ENDURANCE",
	"INCREASE_FLEXIBILITY", "BUILD_STRENGTH",
	"IMPROVE_HEALTH", "SPORT_PERFORMANCE", "OTHER",
}

type ClientProfileInput struct {
	FitnessGoals []string
	HeightCm     *float64
	WeightKg     *float64
}

// AssignedTrainer is the client's primary coach card.
type AssignedTrainer struct {
	MappingID        primitive.ObjectID `json:"mappingId"`
	Type             domain.MappingType `json:"type"`
	StartDate        time.Time          `json:"startDate"`
	TrainerProfileID primitive.ObjectID `json:"trainerId"`
	User             *UserBrief         `json:"user,omitempty"`
	Bio              string             `json:"bio,omitempty"`
	Specialties      []string           `json:"specialties,omitempty"`
	Experience       *int               `json:"experience,omitempty"`
}

type ClientService interface {
	// GetProfile returns the client's profile, creating an empty one if missing.
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ClientProfileInput) (*domain.ClientProfile, error)
	// GetTrainer returns the active primary trainer, or nil when unmapped.
	GetTrainer(ctx context.Context, userID primitive.ObjectID) (*AssignedTrainer, error)
}

type clientService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	mappingRepo repository.MappingRepository
}

func NewClientService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, mappingRepo repository.MappingRepository) ClientService {
	return &clientService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		mappingRepo: mappingRepo,
	}
}

func (s *clientService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error) {
	profile, err := s.profileRepo.EnsureClient(ctx, userID)
	if err != nil {
		return nil, unavailable("get client profile", err)
	}
	return profile, nil
}

func inRange(v *float64, lo, hi float64) bool {
	return v == nil || (*v >= lo && *v <= hi)
}

func (s *clientService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ClientProfileInput) (*domain.ClientProfile, error) {
	if !inRange(in.HeightCm, 50, 300) {
		return nil, invalid("height must be between 50 and 300 cm")
	}
	if !inRange(in.WeightKg, 20, 500) {
		return nil, invalid("weight must be between 20 and 500 kg")
	}
	goals := make([]string, 0, len(in.FitnessGoals))
	for _, g := range in.FitnessGoals {
		g = strings.ToUpper(strings.TrimSpace(g))
		if !slices.Contains(FitnessGoals, g) {
			return nil, invalid(fmt.Sprintf("unknown fitness goal %q", g))
		}
		goals = append(goals, g)
	}

	profile, err := s.profileRepo.SaveClient(ctx, &domain.ClientProfile{
		UserID:       userID,
		FitnessGoals: goals,
		HeightCm:     in.HeightCm,
		WeightKg:     in.WeightKg,
	})
	if err != nil {
		return nil, unavailable("save client profile", err)
	}
	return profile, nil
}

func (s *clientService) GetTrainer(ctx context.Context, userID primitive.ObjectID) (*AssignedTrainer, error) {
	client, err := s.profileRepo.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable("get client profile", err)
	}

	mapping, err := s.mappingRepo.GetActivePrimaryByClient(ctx, client.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable("get primary mapping", err)
	}

	trainer, err := s.profileRepo.GetTrainerByID(ctx, mapping.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable("get trainer profile", err)
	}

	card := &AssignedTrainer{
		MappingID:        mapping.ID,
		Type:             mapping.Type,
		StartDate:        mapping.StartDate,
		TrainerProfileID: trainer.ID,
		Bio:              trainer.Bio,
		Specialties:      trainer.Specialties,
		Experience:       trainer.Experience,
	}
	user, err := s.userRepo.GetByID(ctx, trainer.UserID)
	switch {
	case err == nil:
		card.User = briefOf(user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, unavailable("get trainer user", err)
	}
	return card, nil
}
