package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HabitInput struct {
	Type  domain.HabitType
	Label string
	Date  time.Time
	Value float64
	Unit  string
	Notes string
}

type HabitService interface {
	// List returns the caller's entries between the two days, inclusive.
	// A caller without a client profile has no entries.
	List(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Habit, error)
	// Log records the value of one habit for one day, replacing an earlier
	// entry of the same type and day.
	Log(ctx context.Context, userID primitive.ObjectID, in HabitInput) (*domain.Habit, error)
}

type habitService struct {
	profileRepo repository.ProfileRepository
	habitRepo   repository.HabitRepository
	now         func() time.Time
}

func NewHabitService(profileRepo repository.ProfileRepository, habitRepo repository.HabitRepository, now func() time.Time) HabitService {
	if now == nil {
		now = time.Now
	}
	return &habitService{profileRepo: profileRepo, habitRepo: habitRepo, now: now}
}

func (s *habitService) List(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Habit, error) {
	from, to = dayKey(from), dayKey(to)
	if to.Before(from) {
		return nil, invalid("endDate must not be before startDate")
	}

	profile, err := s.profileRepo.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Habit{}, nil
		}
		return nil, unavailable("get client profile", err)
	}

	habits, err := s.habitRepo.ListByClient(ctx, profile.ID, from, to)
	if err != nil {
		return nil, unavailable("list habits", err)
	}
	return habits, nil
}

func (s *habitService) Log(ctx context.Context, userID primitive.ObjectID, in HabitInput) (*domain.Habit, error) {
	if !in.Type.Valid() {
		return nil, invalid(fmt.Sprintf("unknown habit type %q", in.Type))
	}
	if in.Value < 0 {
		return nil, invalid("value cannot be negative")
	}
	day := dayKey(in.Date)
	if day.After(dayKey(s.now())) {
		return nil, invalid("habit date cannot be in the future")
	}

	profile, err := s.profileRepo.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientProfileNotFound
		}
		return nil, unavailable("get client profile", err)
	}

	habit, err := s.habitRepo.Upsert(ctx, &domain.Habit{
		ClientID: profile.ID,
		Type:     in.Type,
		Label:    in.Label,
		Date:     day,
		Value:    in.Value,
		Unit:     in.Unit,
		Notes:    in.Notes,
	})
	if err != nil {
		return nil, unavailable("log habit", err)
	}
	return habit, nil
}
