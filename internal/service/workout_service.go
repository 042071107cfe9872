package service

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/repository"
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound       = errors.New("workout not found")
	ErrWorkoutNotOwner       = errors.New("workout does not belong to you")
	ErrWorkoutClosed         = errors.New("workout is already completed or skipped")
	ErrWorkoutAlreadyStarted = errors.New("workout is already in progress")
	ErrWorkoutCompleted      = errors.New("completed workouts cannot be deleted")
	ErrClientProfileNotFound = errors.New("client profile not found")
)

// StreakMilestones are the streak lengths, in days, that notify the client.
var StreakMilestones = []int{3, 7, 14, 30, 60, 100}

const defaultWorkoutTitle = "Workout"

// MaxBackdate bounds how far back a self-logged workout may be dated.
const MaxBackdate = 7 * 24 * time.Hour

type AssignWorkoutInput struct {
	ClientID    primitive.ObjectID // ClientProfile.ID
	Title       string
	Notes       string
	ScheduledAt *time.Time
	Exercises   []domain.WorkoutExercise
}

type LogWorkoutInput struct {
	Title       string
	Notes       string
	Date        *time.Time // defaults to now
	DurationMin *int
	Exercises   []domain.WorkoutExercise
}

type CompleteWorkoutInput struct {
	DurationMin *int
	Exercises   []domain.WorkoutExercise // nil keeps the assigned exercises
}

// WorkoutDetail is a workout log with its lifted volume.
type WorkoutDetail struct {
	domain.WorkoutLog
	TotalVolume float64 `json:"totalVolume"`
}

type WorkoutService interface {
	// List and Stats resolve the target client from the caller: clients see
	// their own history, trainers and admins must name a client.
	List(ctx context.Context, caller *access.Caller, clientID *primitive.ObjectID, page Page) (*PageResult[domain.WorkoutLog], error)
	Stats(ctx context.Context, caller *access.Caller, clientID *primitive.ObjectID) (*Stats, error)
	Get(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) (*WorkoutDetail, error)

	Assign(ctx context.Context, caller *access.Caller, in AssignWorkoutInput) (*domain.WorkoutLog, error)
	Log(ctx context.Context, caller *access.Caller, in LogWorkoutInput) (*domain.WorkoutLog, error)
	Start(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) (*domain.WorkoutLog, error)
	Complete(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID, in CompleteWorkoutInput) (*domain.WorkoutLog, error)
	Skip(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) (*domain.WorkoutLog, error)
	Delete(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) error
}

type workoutService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	workoutRepo repository.WorkoutRepository
	checker     ClientAccessChecker
	progress    ProgressService
	publisher   notify.Publisher
	log         *zap.Logger
	now         func() time.Time
}

func NewWorkoutService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	workoutRepo repository.WorkoutRepository,
	checker ClientAccessChecker,
	progress ProgressService,
	publisher notify.Publisher,
	log *zap.Logger,
	now func() time.Time,
) WorkoutService {
	if now == nil {
		now = time.Now
	}
	return &workoutService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		workoutRepo: workoutRepo,
		checker:     checker,
		progress:    progress,
		publisher:   publisher,
		log:         log.Named("workout"),
		now:         now,
	}
}

// --- Lookups and access ---

func (s *workoutService) callerClient(ctx context.Context, caller *access.Caller) (*domain.ClientProfile, error) {
	profile, err := s.profileRepo.GetClientByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientProfileNotFound
		}
		return nil, unavailable("get client profile", err)
	}
	return profile, nil
}

func (s *workoutService) getWorkout(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	w, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, unavailable("get workout", err)
	}
	return w, nil
}

func (s *workoutService) requireTrainerAccess(ctx context.Context, caller *access.Caller, clientID primitive.ObjectID) error {
	ok, err := s.checker.CanTrainerAccessClient(ctx, caller.UserID, clientID)
	if err != nil {
		return unavailable("check client access", err)
	}
	if !ok {
		return ErrClientAccessDenied
	}
	return nil
}

// checkAccess allows admins, the owning client and mapped trainers.
func (s *workoutService) checkAccess(ctx context.Context, caller *access.Caller, clientID primitive.ObjectID) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleTrainer:
		return s.requireTrainerAccess(ctx, caller, clientID)
	default:
		own, err := s.callerClient(ctx, caller)
		if err != nil {
			if errors.Is(err, ErrClientProfileNotFound) {
				return ErrWorkoutNotOwner
			}
			return err
		}
		if own.ID != clientID {
			return ErrWorkoutNotOwner
		}
		return nil
	}
}

// targetClient returns the client profile a listing is about. ok is false
// for a client caller without a profile, which reads as empty history.
func (s *workoutService) targetClient(ctx context.Context, caller *access.Caller, requested *primitive.ObjectID) (id primitive.ObjectID, ok bool, err error) {
	if caller.Role == domain.RoleClient {
		own, err := s.callerClient(ctx, caller)
		if err != nil {
			if errors.Is(err, ErrClientProfileNotFound) {
				return primitive.NilObjectID, false, nil
			}
			return primitive.NilObjectID, false, err
		}
		return own.ID, true, nil
	}

	if requested == nil {
		return primitive.NilObjectID, false, invalid("clientId is required")
	}
	if caller.Role == domain.RoleTrainer {
		if err := s.requireTrainerAccess(ctx, caller, *requested); err != nil {
			return primitive.NilObjectID, false, err
		}
	}
	return *requested, true, nil
}

// --- Reads ---

func (s *workoutService) List(ctx context.Context, caller *access.Caller, clientID *primitive.ObjectID, page Page) (*PageResult[domain.WorkoutLog], error) {
	target, ok, err := s.targetClient(ctx, caller, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newPageResult[domain.WorkoutLog](nil, 0, page), nil
	}

	workouts, total, err := s.workoutRepo.ListByClient(ctx, target, page.Skip(), page.Size)
	if err != nil {
		return nil, unavailable("list workouts", err)
	}
	return newPageResult(workouts, total, page), nil
}

func (s *workoutService) Stats(ctx context.Context, caller *access.Caller, clientID *primitive.ObjectID) (*Stats, error) {
	target, ok, err := s.targetClient(ctx, caller, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Stats{}, nil
	}
	return s.progress.GetStats(ctx, target)
}

func (s *workoutService) Get(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	w, err := s.getWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err = s.checkAccess(ctx, caller, w.ClientID); err != nil {
		return nil, err
	}

	volume, err := s.progress.GetTotalVolume(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return &WorkoutDetail{WorkoutLog: *w, TotalVolume: volume}, nil
}

// --- Writes ---

func validateExercises(exercises []domain.WorkoutExercise) error {
	for i, ex := range exercises {
		if ex.ExerciseID == primitive.NilObjectID {
			return invalid(fmt.Sprintf("exercise %d: exerciseId is required", i))
		}
		for _, set := range ex.Sets {
			switch {
			case set.SetNumber < 1:
				return invalid(fmt.Sprintf("exercise %d: setNumber must be positive", i))
			case set.Reps != nil && *set.Reps < 0:
				return invalid(fmt.Sprintf("exercise %d set %d: reps cannot be negative", i, set.SetNumber))
			case set.WeightKg != nil && *set.WeightKg < 0:
				return invalid(fmt.Sprintf("exercise %d set %d: weight cannot be negative", i, set.SetNumber))
			case set.RPE != nil && (*set.RPE < 1 || *set.RPE > 10):
				return invalid(fmt.Sprintf("exercise %d set %d: rpe must be between 1 and 10", i, set.SetNumber))
			case set.DurationSec != nil && *set.DurationSec < 0, set.RestSec != nil && *set.RestSec < 0:
				return invalid(fmt.Sprintf("exercise %d set %d: durations cannot be negative", i, set.SetNumber))
			}
		}
	}
	return nil
}

func orderedExercises(exercises []domain.WorkoutExercise) []domain.WorkoutExercise {
	if exercises == nil {
		return nil
	}
	out := slices.Clone(exercises)
	slices.SortStableFunc(out, func(a, b domain.WorkoutExercise) int { return cmp.Compare(a.OrderIndex, b.OrderIndex) })
	for i := range out {
		if out[i].Sets == nil {
			out[i].Sets = []domain.WorkoutSet{}
		}
	}
	return out
}

func titleOr(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return defaultWorkoutTitle
}

// Assign creates an ASSIGNED log for a client. Trainers need an active mapping.
func (s *workoutService) Assign(ctx context.Context, caller *access.Caller, in AssignWorkoutInput) (*domain.WorkoutLog, error) {
	if err := validateExercises(in.Exercises); err != nil {
		return nil, err
	}

	var assignedBy *primitive.ObjectID
	if caller.Role == domain.RoleTrainer {
		if err := s.requireTrainerAccess(ctx, caller, in.ClientID); err != nil {
			return nil, err
		}
		trainer, err := s.profileRepo.GetTrainerByUserID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrClientAccessDenied
			}
			return nil, unavailable("get trainer profile", err)
		}
		assignedBy = &trainer.ID
	}

	client, err := s.profileRepo.GetClientByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, unavailable("get client", err)
	}

	date := s.now().UTC()
	if in.ScheduledAt != nil {
		date = in.ScheduledAt.UTC()
	}
	workout := &domain.WorkoutLog{
		ClientID:    client.ID,
		AssignedBy:  assignedBy,
		Title:       titleOr(in.Title),
		Notes:       in.Notes,
		Status:      domain.WorkoutAssigned,
		Date:        date,
		ScheduledAt: in.ScheduledAt,
		Exercises:   orderedExercises(in.Exercises),
	}
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}
	if _, err = s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, unavailable("create workout", err)
	}

	s.publisher.Publish(notify.Event{
		UserID:  client.UserID,
		Type:    domain.NotificationWorkoutAssigned,
		Title:   "New Workout Assigned",
		Message: fmt.Sprintf("You have a new workout: %s.", workout.Title),
		Data:    map[string]any{"workoutId": workout.ID.Hex()},
	})
	return workout, nil
}

// Log records a workout the client already did; it is stored COMPLETED.
func (s *workoutService) Log(ctx context.Context, caller *access.Caller, in LogWorkoutInput) (*domain.WorkoutLog, error) {
	if err := validateExercises(in.Exercises); err != nil {
		return nil, err
	}
	if in.DurationMin != nil && *in.DurationMin < 0 {
		return nil, invalid("duration cannot be negative")
	}
	now := s.now().UTC()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
		if date.After(now) {
			return nil, invalid("workout date cannot be in the future")
		}
		if date.Before(now.Add(-MaxBackdate)) {
			return nil, invalid("workout date is too far in the past")
		}
	}
	client, err := s.callerClient(ctx, caller)
	if err != nil {
		return nil, err
	}

	workout := &domain.WorkoutLog{
		ClientID:    client.ID,
		Title:       titleOr(in.Title),
		Notes:       in.Notes,
		Status:      domain.WorkoutCompleted,
		Date:        date,
		DurationMin: in.DurationMin,
		Exercises:   orderedExercises(in.Exercises),
	}
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}
	if _, err = s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, unavailable("create workout", err)
	}

	s.afterCompletion(ctx, client, workout)
	return workout, nil
}

// transition moves the caller's own workout out of one of the from states.
// The repository applies it as one conditional update, so concurrent
// requests cannot both succeed.
func (s *workoutService) transition(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID, from []domain.WorkoutStatus, t domain.WorkoutTransition) (*domain.WorkoutLog, *domain.ClientProfile, error) {
	w, err := s.getWorkout(ctx, workoutID)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.callerClient(ctx, caller)
	if err != nil {
		if errors.Is(err, ErrClientProfileNotFound) {
			return nil, nil, ErrWorkoutNotOwner
		}
		return nil, nil, err
	}
	if w.ClientID != client.ID {
		return nil, nil, ErrWorkoutNotOwner
	}
	if !slices.Contains(from, w.Status) {
		if w.Status == domain.WorkoutInProgress {
			return nil, nil, ErrWorkoutAlreadyStarted
		}
		return nil, nil, ErrWorkoutClosed
	}

	updated, err := s.workoutRepo.Transition(ctx, w.ID, client.ID, from, t)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrWorkoutClosed
		}
		return nil, nil, unavailable("update workout", err)
	}
	return updated, client, nil
}

func (s *workoutService) Start(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) (*domain.WorkoutLog, error) {
	w, _, err := s.transition(ctx, caller, workoutID,
		[]domain.WorkoutStatus{domain.WorkoutAssigned},
		domain.WorkoutTransition{To: domain.WorkoutInProgress})
	return w, err
}

// Complete closes an open workout, optionally replacing its exercises and
// sets in the same write.
func (s *workoutService) Complete(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID, in CompleteWorkoutInput) (*domain.WorkoutLog, error) {
	if err := validateExercises(in.Exercises); err != nil {
		return nil, err
	}
	if in.DurationMin != nil && *in.DurationMin < 0 {
		return nil, invalid("duration cannot be negative")
	}

	now := s.now().UTC()
	w, client, err := s.transition(ctx, caller, workoutID,
		[]domain.WorkoutStatus{domain.WorkoutAssigned, domain.WorkoutInProgress},
		domain.WorkoutTransition{
			To:          domain.WorkoutCompleted,
			Date:        &now,
			DurationMin: in.DurationMin,
			Exercises:   orderedExercises(in.Exercises),
		})
	if err != nil {
		return nil, err
	}

	s.afterCompletion(ctx, client, w)
	return w, nil
}

func (s *workoutService) Skip(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) (*domain.WorkoutLog, error) {
	w, _, err := s.transition(ctx, caller, workoutID,
		[]domain.WorkoutStatus{domain.WorkoutAssigned, domain.WorkoutInProgress},
		domain.WorkoutTransition{To: domain.WorkoutSkipped})
	return w, err
}

func (s *workoutService) Delete(ctx context.Context, caller *access.Caller, workoutID primitive.ObjectID) error {
	w, err := s.getWorkout(ctx, workoutID)
	if err != nil {
		return err
	}
	if caller.Role != domain.RoleAdmin {
		if err = s.requireTrainerAccess(ctx, caller, w.ClientID); err != nil {
			return err
		}
	}
	if w.Status == domain.WorkoutCompleted {
		return ErrWorkoutCompleted
	}

	if err = s.workoutRepo.Delete(ctx, w.ID); err != nil {
		// Completed between the read and the delete
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutCompleted
		}
		return unavailable("delete workout", err)
	}
	return nil
}

// --- Events ---

// afterCompletion emits the completion and milestone events. Failures are
// logged; the workout is already stored.
func (s *workoutService) afterCompletion(ctx context.Context, client *domain.ClientProfile, w *domain.WorkoutLog) {
	if w.AssignedBy != nil {
		s.notifyTrainer(ctx, client, w)
	}

	today := dayKey(s.now())
	if !dayKey(w.Date).Equal(today) {
		return
	}
	streak, err := s.progress.CalculateStreak(ctx, client.ID)
	if err != nil {
		s.log.Warn("streak check failed", zap.String("clientId", client.ID.Hex()), zap.Error(err))
		return
	}
	if !slices.Contains(StreakMilestones, streak) {
		return
	}

	// Only the first completion of the day reaches a new streak length
	end := today.AddDate(0, 0, 1).Add(-time.Millisecond)
	count, err := s.workoutRepo.CountCompleted(ctx, client.ID, &today, &end)
	if err != nil {
		s.log.Warn("milestone check failed", zap.String("clientId", client.ID.Hex()), zap.Error(err))
		return
	}
	if count != 1 {
		return
	}

	s.publisher.Publish(notify.Event{
		UserID:  client.UserID,
		Type:    domain.NotificationStreakMilestone,
		Title:   fmt.Sprintf("%d-Day Streak!", streak),
		Message: fmt.Sprintf("You have trained %d days in a row. Keep it up!", streak),
		Data:    map[string]any{"streak": streak},
	})
}

func (s *workoutService) notifyTrainer(ctx context.Context, client *domain.ClientProfile, w *domain.WorkoutLog) {
	trainer, err := s.profileRepo.GetTrainerByID(ctx, *w.AssignedBy)
	if err != nil {
		s.log.Warn("assigning trainer lookup failed", zap.String("workoutId", w.ID.Hex()), zap.Error(err))
		return
	}

	clientName := "Your client"
	if u, err := s.userRepo.GetByID(ctx, client.UserID); err == nil && u.Name != "" {
		clientName = u.Name
	}
	s.publisher.Publish(notify.Event{
		UserID:  trainer.UserID,
		Type:    domain.NotificationWorkoutCompleted,
		Title:   "Workout Completed",
		Message: fmt.Sprintf("%s completed %s.", clientName, w.Title),
		Data:    map[string]any{"workoutId": w.ID.Hex(), "clientId": client.ID.Hex()},
	})
}
