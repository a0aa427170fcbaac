package session

import (
	"context"
	"errors"
	"fmt"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Synchronizer reconciles edited exercise entries back into a routine's
// persisted definition: the title is updated unconditionally, each entry's
// configuration row is upserted (never duplicated), and each entry's set
// list replaces the persisted one wholesale.
type Synchronizer struct {
	routines         repository.RoutineRepository
	routineExercises repository.RoutineExerciseRepository
	routineSets      repository.RoutineSetRepository
}

// NewSynchronizer creates a Synchronizer over the routine repositories.
func NewSynchronizer(
	routines repository.RoutineRepository,
	routineExercises repository.RoutineExerciseRepository,
	routineSets repository.RoutineSetRepository,
) *Synchronizer {
	return &Synchronizer{
		routines:         routines,
		routineExercises: routineExercises,
		routineSets:      routineSets,
	}
}

// Sync writes title and the full entry mapping back to the routine. order
// fixes each exercise's display position. Exercises are synced best-effort:
// a failing step aborts the remaining steps for that exercise only, and the
// first error is reported after every exercise has been attempted. The
// delete-then-reinsert of one exercise's sets is a single repository call,
// so a configuration row never ends up pointing at a half-replaced list.
func (s *Synchronizer) Sync(
	ctx context.Context,
	routineID primitive.ObjectID,
	title string,
	order []primitive.ObjectID,
	entries map[primitive.ObjectID]*domain.ExerciseEntry,
) error {
	if err := s.routines.UpdateName(ctx, routineID, title); err != nil {
		return fmt.Errorf("updating routine title: %w", err)
	}

	var errs []error
	for pos, exerciseID := range order {
		entry, ok := entries[exerciseID]
		if !ok {
			continue
		}

		rex := &domain.RoutineExercise{
			RoutineID:        routineID,
			ExerciseID:       exerciseID,
			Notes:            entry.Notes,
			RestTimerSeconds: entry.RestTimerSeconds,
			Unit:             entry.Unit,
			RepsType:         entry.RepsType,
			Position:         pos,
		}
		if err := s.routineExercises.Upsert(ctx, rex); err != nil {
			errs = append(errs, fmt.Errorf("syncing exercise %s: %w", exerciseID.Hex(), err))
			continue // leave this exercise's sets untouched
		}

		if err := s.routineSets.ReplaceForExercise(ctx, routineID, exerciseID, entry.Sets); err != nil {
			errs = append(errs, fmt.Errorf("replacing sets for exercise %s: %w", exerciseID.Hex(), err))
		}
	}

	return errors.Join(errs...)
}
