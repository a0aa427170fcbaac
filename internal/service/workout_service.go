package service

import (
	"context"
	"errors"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound = errors.New("workout not found")
)

// --- Service Interface ---
type WorkoutService interface {
	GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	GetWorkoutByID(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error)
	// UpdateWorkoutTitle is the only edit a finished workout supports.
	UpdateWorkoutTitle(ctx context.Context, workoutID primitive.ObjectID, title string) (*domain.Workout, error)
}

// --- Service Implementation ---

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
	}
}

// GetHistory lists the user's finished workouts, newest first.
func (s *workoutService) GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.GetByUserID(ctx, userID)
}

// GetWorkoutByID retrieves a single finished workout.
func (s *workoutService) GetWorkoutByID(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// UpdateWorkoutTitle renames a finished workout.
func (s *workoutService) UpdateWorkoutTitle(ctx context.Context, workoutID primitive.ObjectID, title string) (*domain.Workout, error) {
	if title == "" {
		return nil, ErrValidationFailed
	}

	if err := s.workoutRepo.UpdateTitle(ctx, workoutID, title); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.workoutRepo.GetByID(ctx, workoutID)
}
