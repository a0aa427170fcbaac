package repository

import (
	"context"

	"mstolbov/liftlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
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
}

// ExerciseRepository defines the interface for interacting with the exercise
// catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetMetaByIDs returns display metadata (name, type) for the given ids.
	// Unknown ids are skipped, not errors.
	GetMetaByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ExerciseMeta, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RoutineRepository defines the interface for interacting with routine
// header records. The exercise/set composition lives in the two
// repositories below.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Routine, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RoutineExerciseRepository manages the per-exercise configuration rows of a
// routine. At most one row exists per (routineId, exerciseId); Upsert
// enforces that by updating in place when the row already exists.
type RoutineExerciseRepository interface {
	ListByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error)
	Upsert(ctx context.Context, rex *domain.RoutineExercise) error
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
}

// RoutineSetRepository manages the persisted target sets of a routine.
// Set rows have no stable identity across edits, so writes go through
// ReplaceForExercise: delete every row for (routineId, exerciseId), then
// insert the new list in order, as one unit.
type RoutineSetRepository interface {
	ListByRoutineID(ctx context.Context, routineID primitive.ObjectID, exerciseIDs []primitive.ObjectID) ([]domain.RoutineSet, error)
	ReplaceForExercise(ctx context.Context, routineID, exerciseID primitive.ObjectID, sets []domain.Set) error
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with finished
// workout records.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) error
}
