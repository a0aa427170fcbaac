package session

import (
	"context"
	"errors"
	"testing"

	"mstolbov/liftlog/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSyncUpdatesTitleUnconditionally(t *testing.T) {
	ts := newTestStore()
	userID := primitive.NewObjectID()
	routineID := ts.seedRoutine(userID, "Push Day", nil)

	synch := NewSynchronizer(ts.routines, ts.routineExercises, ts.routineSets)
	err := synch.Sync(context.Background(), routineID, "Push Day v2", nil, nil)
	require.NoError(t, err)

	routine, err := ts.routines.GetByID(context.Background(), routineID)
	require.NoError(t, err)
	require.Equal(t, "Push Day v2", routine.Name)
}

func TestSyncTitleFailureAbortsEverything(t *testing.T) {
	ts := newTestStore()
	userID := primitive.NewObjectID()
	exerciseID := ts.exercises.add("Bench Press", domain.ExerciseTypeWeighted)
	routineID := ts.seedRoutine(userID, "Push Day", nil)
	ts.routines.updateNameErr = errors.New("connection reset")

	entries := map[primitive.ObjectID]*domain.ExerciseEntry{
		exerciseID: {ExerciseID: exerciseID, Sets: []domain.Set{{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5)}}},
	}

	synch := NewSynchronizer(ts.routines, ts.routineExercises, ts.routineSets)
	err := synch.Sync(context.Background(), routineID, "Push Day", []primitive.ObjectID{exerciseID}, entries)
	require.Error(t, err)

	rexs, _ := ts.routineExercises.ListByRoutineID(context.Background(), routineID)
	require.Empty(t, rexs)
}

func TestSyncUpsertsWithoutDuplicating(t *testing.T) {
	ts := newTestStore()
	userID := primitive.NewObjectID()
	exerciseID := ts.exercises.add("Bench Press", domain.ExerciseTypeWeighted)
	routineID := ts.seedRoutine(userID, "Push Day", nil)

	entries := map[primitive.ObjectID]*domain.ExerciseEntry{
		exerciseID: {
			ExerciseID:       exerciseID,
			Notes:            "pause at the bottom",
			RestTimerSeconds: 90,
			Unit:             domain.UnitKg,
			RepsType:         domain.RepsTypeFixed,
		},
	}
	order := []primitive.ObjectID{exerciseID}

	synch := NewSynchronizer(ts.routines, ts.routineExercises, ts.routineSets)
	require.NoError(t, synch.Sync(context.Background(), routineID, "Push Day", order, entries))

	entries[exerciseID].Notes = "no pause"
	require.NoError(t, synch.Sync(context.Background(), routineID, "Push Day", order, entries))

	rexs, _ := ts.routineExercises.ListByRoutineID(context.Background(), routineID)
	require.Len(t, rexs, 1)
	require.Equal(t, "no pause", rexs[0].Notes)
	require.Equal(t, 90, rexs[0].RestTimerSeconds)
}

func TestSyncReplacesSetListWholesale(t *testing.T) {
	ts := newTestStore()
	userID := primitive.NewObjectID()
	exerciseID := ts.exercises.add("Bench Press", domain.ExerciseTypeWeighted)
	routineID := ts.seedRoutine(userID, "Push Day", []seededExercise{
		{id: exerciseID, sets: []domain.Set{
			{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5)},
			{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5)},
			{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5)},
		}},
	})

	// Edit down to a single set.
	entries := map[primitive.ObjectID]*domain.ExerciseEntry{
		exerciseID: {ExerciseID: exerciseID, Sets: []domain.Set{
			{Weight: domain.FloatPtr(110), Reps: domain.IntPtr(3)},
		}},
	}

	synch := NewSynchronizer(ts.routines, ts.routineExercises, ts.routineSets)
	require.NoError(t, synch.Sync(context.Background(), routineID, "Push Day", []primitive.ObjectID{exerciseID}, entries))

	rows, _ := ts.routineSets.ListByRoutineID(context.Background(), routineID, []primitive.ObjectID{exerciseID})
	require.Len(t, rows, 1)
	require.Equal(t, 110.0, rows[0].WeightValue())
	require.Equal(t, 3, rows[0].RepsValue())
}

func TestSyncIsBestEffortPerExercise(t *testing.T) {
	ts := newTestStore()
	userID := primitive.NewObjectID()
	broken := ts.exercises.add("Bench Press", domain.ExerciseTypeWeighted)
	healthy := ts.exercises.add("Squat", domain.ExerciseTypeWeighted)
	routineID := ts.seedRoutine(userID, "Full Body", []seededExercise{
		{id: broken, sets: []domain.Set{{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5)}}},
	})
	ts.routineExercises.upsertErr[broken] = errors.New("write conflict")

	entries := map[primitive.ObjectID]*domain.ExerciseEntry{
		broken:  {ExerciseID: broken, Sets: []domain.Set{{Weight: domain.FloatPtr(200), Reps: domain.IntPtr(1)}}},
		healthy: {ExerciseID: healthy, Sets: []domain.Set{{Weight: domain.FloatPtr(140), Reps: domain.IntPtr(5)}}},
	}
	order := []primitive.ObjectID{broken, healthy}

	synch := NewSynchronizer(ts.routines, ts.routineExercises, ts.routineSets)
	err := synch.Sync(context.Background(), routineID, "Full Body", order, entries)
	require.Error(t, err)

	// The failing exercise keeps its old sets; the healthy one is synced.
	brokenRows, _ := ts.routineSets.ListByRoutineID(context.Background(), routineID, []primitive.ObjectID{broken})
	require.Len(t, brokenRows, 1)
	require.Equal(t, 100.0, brokenRows[0].WeightValue())

	healthyRows, _ := ts.routineSets.ListByRoutineID(context.Background(), routineID, []primitive.ObjectID{healthy})
	require.Len(t, healthyRows, 1)
	require.Equal(t, 140.0, healthyRows[0].WeightValue())
}

func TestSyncSkipsEntriesMissingFromOrder(t *testing.T) {
	ts := newTestStore()
	userID := primitive.NewObjectID()
	exerciseID := ts.exercises.add("Bench Press", domain.ExerciseTypeWeighted)
	routineID := ts.seedRoutine(userID, "Push Day", nil)

	// order references an exercise with no entry; nothing should be written.
	synch := NewSynchronizer(ts.routines, ts.routineExercises, ts.routineSets)
	err := synch.Sync(context.Background(), routineID, "Push Day", []primitive.ObjectID{exerciseID}, nil)
	require.NoError(t, err)

	rexs, _ := ts.routineExercises.ListByRoutineID(context.Background(), routineID)
	require.Empty(t, rexs)
}
