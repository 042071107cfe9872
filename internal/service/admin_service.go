package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrTrainerNotFound   = errors.New("trainer not found")
	ErrClientNotFound    = errors.New("client not found")
	ErrMappingExists     = errors.New("this client is already assigned to this trainer")
	ErrMappingNotFound   = errors.New("mapping not found")
	ErrMappingInactive   = errors.New("mapping is already inactive")
	ErrCannotChangeSelf  = errors.New("cannot change the status of your own account")
	ErrInvalidUserStatus = errors.New("invalid user status")
)

// UserBrief is the public identity shown next to profiles and mappings.
type UserBrief struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func briefOf(u *domain.User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{ID: u.ID, Name: u.Name, Email: u.Email}
}

// TrainerOverview is a trainer profile with its active client count.
type TrainerOverview struct {
	domain.TrainerProfile
	User          *UserBrief `json:"user,omitempty"`
	ActiveClients int64      `json:"activeClients"`
}

// MappingView is a mapping with both parties resolved to users.
type MappingView struct {
	domain.TrainerClientMapping
	Trainer *UserBrief `json:"trainer,omitempty"`
	Client  *UserBrief `json:"client,omitempty"`
}

// UserDetail is a user with whichever profile its role carries.
type UserDetail struct {
	domain.User
	TrainerProfile *domain.TrainerProfile `json:"trainerProfile"`
	ClientProfile  *domain.ClientProfile  `json:"clientProfile"`
}

// AssignInput describes a new trainer-client mapping. IDs are profile IDs.
type AssignInput struct {
	TrainerID primitive.ObjectID
	ClientID  primitive.ObjectID
	Type      domain.MappingType
	Reason    string
}

type AdminService interface {
	ListUsers(ctx context.Context, role domain.Role, page Page) (*PageResult[domain.User], error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*UserDetail, error)
	UpdateUserStatus(ctx context.Context, actorID, userID primitive.ObjectID, status domain.UserStatus) (*domain.User, error)
	ListTrainers(ctx context.Context) ([]TrainerOverview, error)
	ListMappings(ctx context.Context, activeOnly bool, page Page) (*PageResult[MappingView], error)
	// AssignClient creates an active mapping and notifies the client.
	AssignClient(ctx context.Context, in AssignInput) (*domain.TrainerClientMapping, error)
	// RemoveMapping soft-deactivates a mapping, keeping it for history.
	RemoveMapping(ctx context.Context, mappingID primitive.ObjectID, reason string) (*domain.TrainerClientMapping, error)
}

type adminService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	mappingRepo repository.MappingRepository
	publisher   notify.Publisher
	log         *zap.Logger
	now         func() time.Time
}

func NewAdminService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	mappingRepo repository.MappingRepository,
	publisher notify.Publisher,
	log *zap.Logger,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		mappingRepo: mappingRepo,
		publisher:   publisher,
		log:         log.Named("admin"),
		now:         time.Now,
	}
}

func (s *adminService) ListUsers(ctx context.Context, role domain.Role, page Page) (*PageResult[domain.User], error) {
	if role != "" && !role.Valid() {
		return nil, invalid(fmt.Sprintf("unknown role %q", role))
	}
	users, total, err := s.userRepo.List(ctx, role, page.Skip(), page.Size)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return newPageResult(users, total, page), nil
}

func (s *adminService) GetUser(ctx context.Context, userID primitive.ObjectID) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("get user", err)
	}
	user.PasswordHash = ""
	detail := &UserDetail{User: *user}

	// A missing profile is normal for admins and for users who never opened one.
	switch user.Role {
	case domain.RoleTrainer:
		detail.TrainerProfile, err = s.profileRepo.GetTrainerByUserID(ctx, userID)
	case domain.RoleClient:
		detail.ClientProfile, err = s.profileRepo.GetClientByUserID(ctx, userID)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, unavailable("get user profile", err)
	}
	return detail, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, actorID, userID primitive.ObjectID, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidUserStatus
	}
	if actorID == userID {
		return nil, ErrCannotChangeSelf
	}
	user, err := s.userRepo.UpdateStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("update user status", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminService) ListTrainers(ctx context.Context) ([]TrainerOverview, error) {
	profiles, err := s.profileRepo.ListTrainers(ctx)
	if err != nil {
		return nil, unavailable("list trainers", err)
	}

	userIDs := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := s.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	overviews := make([]TrainerOverview, 0, len(profiles))
	for _, p := range profiles {
		count, err := s.mappingRepo.CountActiveByTrainer(ctx, p.ID)
		if err != nil {
			return nil, unavailable("count trainer clients", err)
		}
		overviews = append(overviews, TrainerOverview{
			TrainerProfile: p,
			User:           briefOf(users[p.UserID]),
			ActiveClients:  count,
		})
	}
	return overviews, nil
}

func (s *adminService) ListMappings(ctx context.Context, activeOnly bool, page Page) (*PageResult[MappingView], error) {
	mappings, total, err := s.mappingRepo.List(ctx, activeOnly, page.Skip(), page.Size)
	if err != nil {
		return nil, unavailable("list mappings", err)
	}

	// Resolve profile IDs to user IDs, then users in one query
	trainerUsers := map[primitive.ObjectID]primitive.ObjectID{}
	clientUsers := map[primitive.ObjectID]primitive.ObjectID{}
	var clientIDs []primitive.ObjectID
	for _, m := range mappings {
		if _, ok := trainerUsers[m.TrainerID]; !ok {
			trainer, err := s.profileRepo.GetTrainerByID(ctx, m.TrainerID)
			switch {
			case err == nil:
				trainerUsers[m.TrainerID] = trainer.UserID
			case errors.Is(err, repository.ErrNotFound):
				trainerUsers[m.TrainerID] = primitive.NilObjectID
			default:
				return nil, unavailable("resolve trainer", err)
			}
		}
		clientIDs = append(clientIDs, m.ClientID)
	}
	clients, err := s.profileRepo.GetClientsByIDs(ctx, clientIDs)
	if err != nil {
		return nil, unavailable("resolve clients", err)
	}
	for _, c := range clients {
		clientUsers[c.ID] = c.UserID
	}

	userIDs := make([]primitive.ObjectID, 0, len(trainerUsers)+len(clientUsers))
	for _, id := range trainerUsers {
		userIDs = append(userIDs, id)
	}
	for _, id := range clientUsers {
		userIDs = append(userIDs, id)
	}
	users, err := s.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]MappingView, 0, len(mappings))
	for _, m := range mappings {
		views = append(views, MappingView{
			TrainerClientMapping: m,
			Trainer:              briefOf(users[trainerUsers[m.TrainerID]]),
			Client:               briefOf(users[clientUsers[m.ClientID]]),
		})
	}
	return newPageResult(views, total, page), nil
}

func (s *adminService) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.User, error) {
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, unavailable("resolve users", err)
	}
	byID := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}

func (s *adminService) AssignClient(ctx context.Context, in AssignInput) (*domain.TrainerClientMapping, error) {
	if in.Type == "" {
		in.Type = domain.MappingPrimary
	}
	if !in.Type.Valid() {
		return nil, invalid(fmt.Sprintf("unknown mapping type %q", in.Type))
	}

	trainer, err := s.profileRepo.GetTrainerByID(ctx, in.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, unavailable("get trainer", err)
	}
	client, err := s.profileRepo.GetClientByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, unavailable("get client", err)
	}

	existing, err := s.mappingRepo.CountActive(ctx, trainer.ID, client.ID)
	if err != nil {
		return nil, unavailable("check mapping", err)
	}
	if existing > 0 {
		return nil, ErrMappingExists
	}

	mapping := &domain.TrainerClientMapping{
		TrainerID: trainer.ID,
		ClientID:  client.ID,
		Type:      in.Type,
		Reason:    in.Reason,
	}
	if _, err = s.mappingRepo.Create(ctx, mapping); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMappingExists
		}
		return nil, unavailable("create mapping", err)
	}

	trainerName := "A trainer"
	if u, err := s.userRepo.GetByID(ctx, trainer.UserID); err == nil && u.Name != "" {
		trainerName = u.Name
	} else if err != nil {
		s.log.Warn("trainer name lookup failed", zap.String("trainerId", trainer.ID.Hex()), zap.Error(err))
	}
	s.publisher.Publish(notify.Event{
		UserID:  client.UserID,
		Type:    domain.NotificationTrainerAssigned,
		Title:   "Trainer Assigned",
		Message: fmt.Sprintf("%s has been assigned to coach you.", trainerName),
		Data:    map[string]any{"mappingId": mapping.ID.Hex(), "trainerId": trainer.ID.Hex()},
	})

	return mapping, nil
}

func (s *adminService) RemoveMapping(ctx context.Context, mappingID primitive.ObjectID, reason string) (*domain.TrainerClientMapping, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, unavailable("get mapping", err)
	}
	if !mapping.IsActive {
		return nil, ErrMappingInactive
	}

	updated, err := s.mappingRepo.Deactivate(ctx, mappingID, reason, s.now().UTC())
	if err != nil {
		// Deactivated concurrently between the read and the update
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMappingInactive
		}
		return nil, unavailable("deactivate mapping", err)
	}
	return updated, nil
}
