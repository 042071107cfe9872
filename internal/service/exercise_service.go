package service

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrExerciseInUse        = errors.New("cannot delete an exercise that is used in existing workouts")
)

const defaultDifficulty = "INTERMEDIATE"

// ExerciseInput carries the editable fields of an exercise.
type ExerciseInput struct {
	Name          string
	Description   string
	PrimaryMuscle string
	Category      string
	Difficulty    string
	Equipment     []string
	IsPublic      *bool // nil keeps the current value (public on create)
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, caller *access.Caller, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter domain.ExerciseFilter, page Page) (*PageResult[domain.Exercise], error)
	// UpdateExercise and DeleteExercise are allowed for admins and the creator.
	UpdateExercise(ctx context.Context, caller *access.Caller, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, caller *access.Caller, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	workoutRepo  repository.WorkoutRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, workoutRepo repository.WorkoutRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		workoutRepo:  workoutRepo,
	}
}

func (in *ExerciseInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("exercise name is required")
	}
	in.PrimaryMuscle = strings.ToUpper(strings.TrimSpace(in.PrimaryMuscle))
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	in.Difficulty = strings.ToUpper(strings.TrimSpace(in.Difficulty))
	if in.PrimaryMuscle == "" || in.Category == "" {
		return invalid("primary muscle and category are required")
	}
	if in.Difficulty == "" {
		in.Difficulty = defaultDifficulty
	}
	return nil
}

// CreateExercise adds an exercise to the library on behalf of the caller.
func (s *exerciseService) CreateExercise(ctx context.Context, caller *access.Caller, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		Name:          in.Name,
		Description:   in.Description,
		PrimaryMuscle: in.PrimaryMuscle,
		Category:      in.Category,
		Difficulty:    in.Difficulty,
		Equipment:     in.Equipment,
		CreatedBy:     caller.UserID,
		IsPublic:      in.IsPublic == nil || *in.IsPublic,
	}

	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, unavailable("create exercise", err)
	}
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, unavailable("get exercise", err)
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, filter domain.ExerciseFilter, page Page) (*PageResult[domain.Exercise], error) {
	filter.PrimaryMuscle = strings.ToUpper(filter.PrimaryMuscle)
	filter.Category = strings.ToUpper(filter.Category)
	filter.Difficulty = strings.ToUpper(filter.Difficulty)
	filter.Search = strings.TrimSpace(filter.Search)

	exercises, total, err := s.exerciseRepo.List(ctx, filter, page.Skip(), page.Size)
	if err != nil {
		return nil, unavailable("list exercises", err)
	}
	return newPageResult(exercises, total, page), nil
}

// ownedExercise loads the exercise and checks the caller may change it.
func (s *exerciseService) ownedExercise(ctx context.Context, caller *access.Caller, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleAdmin && exercise.CreatedBy != caller.UserID {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

// UpdateExercise replaces the editable fields, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, caller *access.Caller, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	existing, err := s.ownedExercise(ctx, caller, exerciseID)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.PrimaryMuscle = in.PrimaryMuscle
	existing.Category = in.Category
	existing.Difficulty = in.Difficulty
	existing.Equipment = in.Equipment
	if in.IsPublic != nil {
		existing.IsPublic = *in.IsPublic
	}

	if err = s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, unavailable("update exercise", err)
	}
	return existing, nil
}

// DeleteExercise removes an unused exercise, ensuring ownership.
func (s *exerciseService) DeleteExercise(ctx context.Context, caller *access.Caller, exerciseID primitive.ObjectID) error {
	if _, err := s.ownedExercise(ctx, caller, exerciseID); err != nil {
		return err
	}

	inUse, err := s.workoutRepo.CountUsingExercise(ctx, exerciseID)
	if err != nil {
		return unavailable("check exercise usage", err)
	}
	if inUse > 0 {
		return ErrExerciseInUse
	}

	if err = s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return unavailable("delete exercise", err)
	}
	return nil
}
