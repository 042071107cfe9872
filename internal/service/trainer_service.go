package service

import (
	"alcyxob/fitcoach/internal/access"
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

// --- Error Definitions ---
var (
	ErrTrainerProfileNotFound = errors.New("trainer profile not found")
	ErrClientAccessDenied     = errors.New("client not assigned to you")
)

// Specialties a trainer may list on the profile.
var TrainerSpecialties = []string{
	"WEIGHT_LOSS", "MUSCLE_GAIN", "POWERLIFTING", "CROSSFIT",
	"YOGA", "REHABILITATION", "NUTRITION", "CARDIO",
	"FLEXIBILITY", "SPORTS_PERFORMANCE",
}

const (
	maxBioLength     = 2000
	maxExperienceYrs = 50
	recentWorkouts   = 10
)

// ClientAccessChecker is satisfied by *access.Checker.
type ClientAccessChecker interface {
	CanTrainerAccessClient(ctx context.Context, trainerUserID, clientProfileID primitive.ObjectID) (bool, error)
}

type TrainerProfileInput struct {
	Bio            string
	Specialties    []string
	Certifications []string
	Experience     *int
}

// WorkoutBrief is the summary line of a workout log.
type WorkoutBrief struct {
	ID          primitive.ObjectID   `json:"id"`
	Title       string               `json:"title,omitempty"`
	Status      domain.WorkoutStatus `json:"status"`
	Date        time.Time            `json:"date"`
	DurationMin *int                 `json:"durationMin,omitempty"`
}

func briefOfWorkout(w *domain.WorkoutLog) *WorkoutBrief {
	return &WorkoutBrief{ID: w.ID, Title: w.Title, Status: w.Status, Date: w.Date, DurationMin: w.DurationMin}
}

// ClientSummary is one roster card on the trainer dashboard.
type ClientSummary struct {
	MappingID        primitive.ObjectID `json:"mappingId"`
	MappingType      domain.MappingType `json:"mappingType"`
	StartDate        time.Time          `json:"startDate"`
	ClientProfileID  primitive.ObjectID `json:"clientProfileId"`
	User             *UserBrief         `json:"user,omitempty"`
	FitnessGoals     []string           `json:"fitnessGoals,omitempty"`
	ProfileCompleted bool               `json:"profileCompleted"`
	LastWorkout      *WorkoutBrief      `json:"lastWorkout"`
}

// ClientDetail is the full view of one client.
type ClientDetail struct {
	Profile        *domain.ClientProfile `json:"profile"`
	User           *UserBrief            `json:"user,omitempty"`
	Stats          *Stats                `json:"stats"`
	RecentWorkouts []WorkoutBrief        `json:"recentWorkouts"`
}

type TrainerService interface {
	// GetProfile returns the trainer's profile, creating an empty one if missing.
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in TrainerProfileInput) (*domain.TrainerProfile, error)
	// ListClients returns the active roster, empty for a user without a profile.
	ListClients(ctx context.Context, userID primitive.ObjectID) ([]ClientSummary, error)
	GetClientDetail(ctx context.Context, caller *access.Caller, clientProfileID primitive.ObjectID) (*ClientDetail, error)
}

type trainerService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	mappingRepo repository.MappingRepository
	workoutRepo repository.WorkoutRepository
	checker     ClientAccessChecker
	progress    ProgressService
}

func NewTrainerService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	mappingRepo repository.MappingRepository,
	workoutRepo repository.WorkoutRepository,
	checker ClientAccessChecker,
	progress ProgressService,
) TrainerService {
	return &trainerService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		mappingRepo: mappingRepo,
		workoutRepo: workoutRepo,
		checker:     checker,
		progress:    progress,
	}
}

func (s *trainerService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	profile, err := s.profileRepo.EnsureTrainer(ctx, userID)
	if err != nil {
		return nil, unavailable("get trainer profile", err)
	}
	return profile, nil
}

func (s *trainerService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in TrainerProfileInput) (*domain.TrainerProfile, error) {
	if len(in.Bio) > maxBioLength {
		return nil, invalid(fmt.Sprintf("bio must be at most %d characters", maxBioLength))
	}
	if in.Experience != nil && (*in.Experience < 0 || *in.Experience > maxExperienceYrs) {
		return nil, invalid(fmt.Sprintf("experience must be between 0 and %d years", maxExperienceYrs))
	}
	specialties := make([]string, 0, len(in.Specialties))
	for _, sp := range in.Specialties {
		sp = strings.ToUpper(strings.TrimSpace(sp))
		if !slices.Contains(TrainerSpecialties, sp) {
			return nil, invalid(fmt.Sprintf("unknown specialty %q", sp))
		}
		specialties = append(specialties, sp)
	}

	profile, err := s.profileRepo.SaveTrainer(ctx, &domain.TrainerProfile{
		UserID:         userID,
		Bio:            strings.TrimSpace(in.Bio),
		Specialties:    specialties,
		Certifications: in.Certifications,
		Experience:     in.Experience,
	})
	if err != nil {
		return nil, unavailable("save trainer profile", err)
	}
	return profile, nil
}

func (s *trainerService) ListClients(ctx context.Context, userID primitive.ObjectID) ([]ClientSummary, error) {
	trainer, err := s.profileRepo.GetTrainerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []ClientSummary{}, nil
		}
		return nil, unavailable("get trainer profile", err)
	}

	mappings, err := s.mappingRepo.ListActiveByTrainer(ctx, trainer.ID)
	if err != nil {
		return nil, unavailable("list mappings", err)
	}
	if len(mappings) == 0 {
		return []ClientSummary{}, nil
	}

	clientIDs := make([]primitive.ObjectID, 0, len(mappings))
	for _, m := range mappings {
		clientIDs = append(clientIDs, m.ClientID)
	}
	clients, err := s.profileRepo.GetClientsByIDs(ctx, clientIDs)
	if err != nil {
		return nil, unavailable("get clients", err)
	}
	profiles := make(map[primitive.ObjectID]*domain.ClientProfile, len(clients))
	userIDs := make([]primitive.ObjectID, 0, len(clients))
	for i := range clients {
		profiles[clients[i].ID] = &clients[i]
		userIDs = append(userIDs, clients[i].UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, unavailable("get client users", err)
	}
	byUser := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		byUser[users[i].ID] = &users[i]
	}

	summaries := make([]ClientSummary, 0, len(mappings))
	for _, m := range mappings {
		profile, ok := profiles[m.ClientID]
		if !ok {
			continue
		}
		summary := ClientSummary{
			MappingID:        m.ID,
			MappingType:      m.Type,
			StartDate:        m.StartDate,
			ClientProfileID:  profile.ID,
			User:             briefOf(byUser[profile.UserID]),
			FitnessGoals:     profile.FitnessGoals,
			ProfileCompleted: profile.ProfileCompleted,
		}
		latest, err := s.workoutRepo.LatestCompleted(ctx, profile.ID, 1)
		if err != nil {
			return nil, unavailable("last workout", err)
		}
		if len(latest) > 0 {
			summary.LastWorkout = briefOfWorkout(&latest[0])
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetClientDetail is open to admins and to the client's mapped trainers.
func (s *trainerService) GetClientDetail(ctx context.Context, caller *access.Caller, clientProfileID primitive.ObjectID) (*ClientDetail, error) {
	if caller.Role != domain.RoleAdmin {
		if _, err := s.profileRepo.GetTrainerByUserID(ctx, caller.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTrainerProfileNotFound
			}
			return nil, unavailable("get trainer profile", err)
		}
		ok, err := s.checker.CanTrainerAccessClient(ctx, caller.UserID, clientProfileID)
		if err != nil {
			return nil, unavailable("check client access", err)
		}
		if !ok {
			return nil, ErrClientAccessDenied
		}
	}

	profile, err := s.profileRepo.GetClientByID(ctx, clientProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, unavailable("get client", err)
	}

	detail := &ClientDetail{Profile: profile}
	user, err := s.userRepo.GetByID(ctx, profile.UserID)
	switch {
	case err == nil:
		detail.User = briefOf(user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, unavailable("get client user", err)
	}

	workouts, err := s.workoutRepo.LatestCompleted(ctx, profile.ID, recentWorkouts)
	if err != nil {
		return nil, unavailable("recent workouts", err)
	}
	detail.RecentWorkouts = make([]WorkoutBrief, 0, len(workouts))
	for i := range workouts {
		detail.RecentWorkouts = append(detail.RecentWorkouts, *briefOfWorkout(&workouts[i]))
	}

	if detail.Stats, err = s.progress.GetStats(ctx, profile.ID); err != nil {
		return nil, err
	}
	return detail, nil
}
