package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeNotOpen  = errors.New("only active challenges can be joined")
	ErrAlreadyJoined     = errors.New("already joined this challenge")
)

const maxChallengeNameLength = 200

type ChallengeInput struct {
	Name        string
	Description string
	Type        domain.ChallengeType
	// Status defaults to DRAFT.
	Status    domain.ChallengeStatus
	StartDate time.Time
	EndDate   time.Time
	Rules     map[string]any
}

// ChallengeSummary is a challenge with its participant count.
type ChallengeSummary struct {
	domain.Challenge
	ParticipantCount int64 `json:"participantCount"`
}

type ChallengeService interface {
	// List returns challenges with the status, ACTIVE when status is empty.
	List(ctx context.Context, status domain.ChallengeStatus) ([]ChallengeSummary, error)
	Create(ctx context.Context, in ChallengeInput) (*domain.Challenge, error)
	Join(ctx context.Context, userID, challengeID primitive.ObjectID) (*domain.ChallengeParticipant, error)
}

type challengeService struct {
	challengeRepo repository.ChallengeRepository
	now           func() time.Time
}

func NewChallengeService(challengeRepo repository.ChallengeRepository) ChallengeService {
	return &challengeService{challengeRepo: challengeRepo, now: time.Now}
}

func (s *challengeService) List(ctx context.Context, status domain.ChallengeStatus) ([]ChallengeSummary, error) {
	if status == "" {
		status = domain.ChallengeActive
	}
	if !status.Valid() {
		return nil, invalid(fmt.Sprintf("unknown challenge status %q", status))
	}

	challenges, err := s.challengeRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, unavailable("list challenges", err)
	}
	ids := make([]primitive.ObjectID, 0, len(challenges))
	for _, c := range challenges {
		ids = append(ids, c.ID)
	}
	counts, err := s.challengeRepo.CountParticipants(ctx, ids)
	if err != nil {
		return nil, unavailable("count participants", err)
	}

	summaries := make([]ChallengeSummary, 0, len(challenges))
	for _, c := range challenges {
		summaries = append(summaries, ChallengeSummary{Challenge: c, ParticipantCount: counts[c.ID]})
	}
	return summaries, nil
}

func (s *challengeService) Create(ctx context.Context, in ChallengeInput) (*domain.Challenge, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, invalid("name is required")
	case len(name) > maxChallengeNameLength:
		return nil, invalid("name is too long")
	case !in.Type.Valid():
		return nil, invalid(fmt.Sprintf("unknown challenge type %q", in.Type))
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return nil, invalid("startDate and endDate are required")
	case in.EndDate.Before(in.StartDate):
		return nil, invalid("endDate must not be before startDate")
	}
	if in.Status == "" {
		in.Status = domain.ChallengeDraft
	}
	if !in.Status.Valid() {
		return nil, invalid(fmt.Sprintf("unknown challenge status %q", in.Status))
	}

	challenge := &domain.Challenge{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Status:      in.Status,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Rules:       in.Rules,
	}
	if _, err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, unavailable("create challenge", err)
	}
	return challenge, nil
}

func (s *challengeService) Join(ctx context.Context, userID, challengeID primitive.ObjectID) (*domain.ChallengeParticipant, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, unavailable("get challenge", err)
	}
	if challenge.Status != domain.ChallengeActive {
		return nil, ErrChallengeNotOpen
	}

	participant := &domain.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      userID,
		JoinedAt:    s.now().UTC(),
	}
	if _, err = s.challengeRepo.AddParticipant(ctx, participant); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyJoined
		}
		return nil, unavailable("join challenge", err)
	}
	return participant, nil
}
