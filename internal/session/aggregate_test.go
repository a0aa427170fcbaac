package session

import (
	"testing"

	"mstolbov/liftlog/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func entriesOf(repsType domain.RepsType, sets ...domain.Set) map[primitive.ObjectID]*domain.ExerciseEntry {
	id := primitive.NewObjectID()
	return map[primitive.ObjectID]*domain.ExerciseEntry{
		id: {ExerciseID: id, RepsType: repsType, Sets: sets},
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	require.Equal(t, Stats{}, ComputeStats(nil))
	require.Equal(t, Stats{}, ComputeStats(entriesOf(domain.RepsTypeFixed)))
}

func TestComputeStatsCountsOnlyCompletedSets(t *testing.T) {
	stats := ComputeStats(entriesOf(domain.RepsTypeFixed,
		domain.Set{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5), Completed: true},
		domain.Set{Weight: domain.FloatPtr(50), Reps: domain.IntPtr(10), Completed: false},
	))
	require.Equal(t, Stats{TotalVolume: 500, TotalCompletedSets: 1}, stats)
}

func TestComputeStatsRangeUsesMidpoint(t *testing.T) {
	stats := ComputeStats(entriesOf(domain.RepsTypeRange,
		domain.Set{Weight: domain.FloatPtr(80), MinReps: domain.IntPtr(8), MaxReps: domain.IntPtr(12), Completed: true},
	))
	require.Equal(t, Stats{TotalVolume: 800, TotalCompletedSets: 1}, stats)
}

func TestComputeStatsRangeIgnoresStaleFixedReps(t *testing.T) {
	// A materialized set carries an explicit zeroed rep count even after the
	// entry switches to a range; only the range bounds may drive the volume.
	stats := ComputeStats(entriesOf(domain.RepsTypeRange,
		domain.Set{Weight: domain.FloatPtr(80), Reps: domain.IntPtr(0), MinReps: domain.IntPtr(8), MaxReps: domain.IntPtr(12), Completed: true},
	))
	require.Equal(t, Stats{TotalVolume: 800, TotalCompletedSets: 1}, stats)
}

func TestComputeStatsFixedIgnoresStaleRangeBounds(t *testing.T) {
	stats := ComputeStats(entriesOf(domain.RepsTypeFixed,
		domain.Set{Weight: domain.FloatPtr(80), Reps: domain.IntPtr(5), MinReps: domain.IntPtr(8), MaxReps: domain.IntPtr(12), Completed: true},
	))
	require.Equal(t, Stats{TotalVolume: 400, TotalCompletedSets: 1}, stats)
}

func TestComputeStatsDurationSetsAddNoVolume(t *testing.T) {
	stats := ComputeStats(entriesOf(domain.RepsTypeFixed,
		domain.Set{Duration: domain.IntPtr(60), Completed: true},
		domain.Set{Weight: domain.FloatPtr(40), Reps: domain.IntPtr(10), Completed: true},
	))
	require.Equal(t, Stats{TotalVolume: 400, TotalCompletedSets: 2}, stats)
}

func TestComputeStatsUnsetFieldsCountAsZero(t *testing.T) {
	stats := ComputeStats(entriesOf(domain.RepsTypeFixed,
		domain.Set{Completed: true},
	))
	require.Equal(t, Stats{TotalVolume: 0, TotalCompletedSets: 1}, stats)
}

func TestComputeStatsRoundsVolume(t *testing.T) {
	// Odd rep range midpoints and fractional plates round to the nearest
	// whole unit, once, over the summed total.
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	entries := map[primitive.ObjectID]*domain.ExerciseEntry{
		a: {ExerciseID: a, RepsType: domain.RepsTypeFixed, Sets: []domain.Set{
			{Weight: domain.FloatPtr(2.5), Reps: domain.IntPtr(5), Completed: true},
		}},
		b: {ExerciseID: b, RepsType: domain.RepsTypeRange, Sets: []domain.Set{
			{Weight: domain.FloatPtr(1), MinReps: domain.IntPtr(8), MaxReps: domain.IntPtr(9), Completed: true},
		}},
	}
	require.Equal(t, Stats{TotalVolume: 21, TotalCompletedSets: 2}, ComputeStats(entries))
}

func TestComputeStatsSumsAcrossEntries(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	entries := map[primitive.ObjectID]*domain.ExerciseEntry{
		a: {ExerciseID: a, Sets: []domain.Set{
			{Weight: domain.FloatPtr(100), Reps: domain.IntPtr(5), Completed: true},
		}},
		b: {ExerciseID: b, Sets: []domain.Set{
			{Weight: domain.FloatPtr(70), Reps: domain.IntPtr(10), Completed: true},
		}},
	}
	require.Equal(t, Stats{TotalVolume: 1200, TotalCompletedSets: 2}, ComputeStats(entries))
}
