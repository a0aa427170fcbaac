package service

import (
	"context"
	"errors"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"
	"mstolbov/liftlog/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRoutineNotFound = errors.New("routine not found")
)

// RoutineExerciseDetail combines one exercise's configuration row with its
// catalog metadata and persisted target sets.
type RoutineExerciseDetail struct {
	Exercise domain.ExerciseMeta    `json:"exercise"`
	Config   domain.RoutineExercise `json:"config"`
	Sets     []domain.RoutineSet    `json:"sets"`
}

// RoutineDetail is a routine with its full composition, ready for display.
type RoutineDetail struct {
	Routine   domain.Routine          `json:"routine"`
	Exercises []RoutineExerciseDetail `json:"exercises"`
}

// --- Service Interface ---
type RoutineService interface {
	CreateRoutine(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Routine, error)
	GetRoutines(ctx context.Context, userID primitive.ObjectID) ([]domain.Routine, error)
	GetRoutineDetail(ctx context.Context, routineID primitive.ObjectID) (*RoutineDetail, error)
	DeleteRoutine(ctx context.Context, routineID primitive.ObjectID) error

	// CreateFromEntries persists a live session's exercises as a brand new
	// routine ("save workout as routine").
	CreateFromEntries(ctx context.Context, userID primitive.ObjectID, name string, order []primitive.ObjectID, entries map[primitive.ObjectID]*domain.ExerciseEntry) (*domain.Routine, error)
}

// --- Service Implementation ---

// routineService implements the RoutineService interface.
type routineService struct {
	routineRepo         repository.RoutineRepository
	routineExerciseRepo repository.RoutineExerciseRepository
	routineSetRepo      repository.RoutineSetRepository
	exerciseRepo        repository.ExerciseRepository
	synchronizer        *session.Synchronizer
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(
	routineRepo repository.RoutineRepository,
	routineExerciseRepo repository.RoutineExerciseRepository,
	routineSetRepo repository.RoutineSetRepository,
	exerciseRepo repository.ExerciseRepository,
) RoutineService {
	return &routineService{
		routineRepo:         routineRepo,
		routineExerciseRepo: routineExerciseRepo,
		routineSetRepo:      routineSetRepo,
		exerciseRepo:        exerciseRepo,
		synchronizer:        session.NewSynchronizer(routineRepo, routineExerciseRepo, routineSetRepo),
	}
}

// CreateRoutine creates an empty routine header owned by the user.
func (s *routineService) CreateRoutine(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Routine, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}

	routine := &domain.Routine{
		UserID:    &userID,
		Name:      name,
		CreatedBy: "user",
	}
	routineID, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}
	return s.routineRepo.GetByID(ctx, routineID)
}

// GetRoutines lists the user's routines, newest first.
func (s *routineService) GetRoutines(ctx context.Context, userID primitive.ObjectID) ([]domain.Routine, error) {
	return s.routineRepo.GetByUserID(ctx, userID)
}

// GetRoutineDetail assembles a routine's full composition: header, per
// exercise configuration, catalog metadata and target sets in order.
func (s *routineService) GetRoutineDetail(ctx context.Context, routineID primitive.ObjectID) (*RoutineDetail, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}

	rexs, err := s.routineExerciseRepo.ListByRoutineID(ctx, routineID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(rexs))
	for _, rex := range rexs {
		ids = append(ids, rex.ExerciseID)
	}

	routineSets, err := s.routineSetRepo.ListByRoutineID(ctx, routineID, ids)
	if err != nil {
		return nil, err
	}
	setsByExercise := make(map[primitive.ObjectID][]domain.RoutineSet)
	for _, rs := range routineSets {
		setsByExercise[rs.ExerciseID] = append(setsByExercise[rs.ExerciseID], rs)
	}

	metas, err := s.exerciseRepo.GetMetaByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	metaByID := make(map[primitive.ObjectID]domain.ExerciseMeta, len(metas))
	for _, m := range metas {
		metaByID[m.ID] = m
	}

	detail := &RoutineDetail{
		Routine:   *routine,
		Exercises: make([]RoutineExerciseDetail, 0, len(rexs)),
	}
	for _, rex := range rexs {
		sets := setsByExercise[rex.ExerciseID]
		if sets == nil {
			sets = []domain.RoutineSet{}
		}
		detail.Exercises = append(detail.Exercises, RoutineExerciseDetail{
			Exercise: metaByID[rex.ExerciseID],
			Config:   rex,
			Sets:     sets,
		})
	}
	return detail, nil
}

// DeleteRoutine removes the routine header and all of its composition rows.
func (s *routineService) DeleteRoutine(ctx context.Context, routineID primitive.ObjectID) error {
	if err := s.routineRepo.Delete(ctx, routineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineNotFound
		}
		return err
	}
	if err := s.routineExerciseRepo.DeleteByRoutineID(ctx, routineID); err != nil {
		return err
	}
	return s.routineSetRepo.DeleteByRoutineID(ctx, routineID)
}

// CreateFromEntries creates a routine header and synchronizes the given
// entry mapping into it, reusing the session synchronizer.
func (s *routineService) CreateFromEntries(ctx context.Context, userID primitive.ObjectID, name string, order []primitive.ObjectID, entries map[primitive.ObjectID]*domain.ExerciseEntry) (*domain.Routine, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}

	routine := &domain.Routine{
		UserID:    &userID,
		Name:      name,
		CreatedBy: "user",
	}
	routineID, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}

	if err := s.synchronizer.Sync(ctx, routineID, name, order, entries); err != nil {
		return nil, err
	}
	return s.routineRepo.GetByID(ctx, routineID)
}
