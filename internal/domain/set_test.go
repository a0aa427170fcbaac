package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseOptionalInt(t *testing.T) {
	require.Nil(t, ParseOptionalInt(""))

	v := ParseOptionalInt("12")
	require.NotNil(t, v)
	require.Equal(t, 12, *v)

	// Malformed input falls back to 0 instead of erroring; the field stays
	// set so the user sees their edit took effect.
	v = ParseOptionalInt("12abc")
	require.NotNil(t, v)
	require.Equal(t, 0, *v)
}

func TestParseOptionalFloat(t *testing.T) {
	require.Nil(t, ParseOptionalFloat(""))

	v := ParseOptionalFloat("102.5")
	require.NotNil(t, v)
	require.Equal(t, 102.5, *v)

	v = ParseOptionalFloat("heavy")
	require.NotNil(t, v)
	require.Equal(t, 0.0, *v)
}

func TestEffectiveReps(t *testing.T) {
	fixed := Set{Reps: IntPtr(5)}
	require.Equal(t, 5.0, fixed.EffectiveReps(RepsTypeFixed))

	ranged := Set{MinReps: IntPtr(8), MaxReps: IntPtr(12)}
	require.Equal(t, 10.0, ranged.EffectiveReps(RepsTypeRange))

	oddRange := Set{MinReps: IntPtr(8), MaxReps: IntPtr(9)}
	require.Equal(t, 8.5, oddRange.EffectiveReps(RepsTypeRange))

	// The entry's reps type selects the active fields; stale values in the
	// others never leak into the result.
	both := Set{Reps: IntPtr(0), MinReps: IntPtr(8), MaxReps: IntPtr(12)}
	require.Equal(t, 10.0, both.EffectiveReps(RepsTypeRange))
	require.Equal(t, 0.0, both.EffectiveReps(RepsTypeFixed))

	durationOnly := Set{Duration: IntPtr(60)}
	require.Equal(t, 0.0, durationOnly.EffectiveReps(RepsTypeFixed))

	require.Equal(t, 0.0, (&Set{}).EffectiveReps(RepsTypeFixed))
	require.Equal(t, 0.0, (&Set{}).EffectiveReps(RepsTypeRange))
}

func TestValueAccessorsTreatNilAsZero(t *testing.T) {
	var s Set
	require.Equal(t, 0.0, s.WeightValue())
	require.Equal(t, 0, s.RepsValue())
	require.Equal(t, 0, s.DurationValue())

	s = Set{Weight: FloatPtr(80), Reps: IntPtr(10), Duration: IntPtr(45)}
	require.Equal(t, 80.0, s.WeightValue())
	require.Equal(t, 10, s.RepsValue())
	require.Equal(t, 45, s.DurationValue())
}

func TestDefaultSetShapes(t *testing.T) {
	weighted := DefaultSet(ExerciseTypeWeighted)
	require.NotNil(t, weighted.Weight)
	require.NotNil(t, weighted.Reps)
	require.Nil(t, weighted.Duration)
	require.Equal(t, SetTypeNormal, weighted.Type)

	bodyweight := DefaultSet(ExerciseTypeBodyweight)
	require.Nil(t, bodyweight.Weight)
	require.NotNil(t, bodyweight.Reps)

	duration := DefaultSet(ExerciseTypeDuration)
	require.Nil(t, duration.Weight)
	require.Nil(t, duration.Reps)
	require.NotNil(t, duration.Duration)

	unknown := DefaultSet(ExerciseType("yoga"))
	require.Nil(t, unknown.Weight)
	require.Nil(t, unknown.Reps)
	require.Nil(t, unknown.Duration)
}

func TestNewExerciseEntryDefaults(t *testing.T) {
	entry := NewExerciseEntry(primitive.NewObjectID())
	require.Equal(t, UnitKg, entry.Unit)
	require.Equal(t, RepsTypeFixed, entry.RepsType)
	require.Zero(t, entry.RestTimerSeconds)
	require.Empty(t, entry.Sets)
}
