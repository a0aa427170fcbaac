package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseEntry is the per-exercise state held while a session is live or a
// routine is being edited: the exercise's configuration plus its ordered set
// list. Entries exist only in memory; the Routine Synchronizer flattens them
// back into RoutineExercise/RoutineSet records on save.
type ExerciseEntry struct {
	ExerciseID       primitive.ObjectID
	Notes            string
	RestTimerSeconds int // 0 = rest timer disabled
	Unit             WeightUnit
	RepsType         RepsType
	Sets             []Set
}

// NewExerciseEntry returns the default configuration for a freshly added
// exercise: no sets, rest timer off, kg, fixed reps.
func NewExerciseEntry(exerciseID primitive.ObjectID) *ExerciseEntry {
	return &ExerciseEntry{
		ExerciseID: exerciseID,
		Unit:       UnitKg,
		RepsType:   RepsTypeFixed,
		Sets:       []Set{},
	}
}

// DefaultSet builds the zero-valued set appropriate for an exercise type:
// weighted exercises track weight and reps, bodyweight only reps, duration
// exercises only seconds. Unknown types start fully unset.
func DefaultSet(exerciseType ExerciseType) Set {
	switch exerciseType {
	case ExerciseTypeWeighted:
		return Set{Weight: FloatPtr(0), Reps: IntPtr(0), Type: SetTypeNormal}
	case ExerciseTypeBodyweight:
		return Set{Reps: IntPtr(0), Type: SetTypeNormal}
	case ExerciseTypeDuration:
		return Set{Duration: IntPtr(0), Type: SetTypeNormal}
	default:
		return Set{Type: SetTypeNormal}
	}
}
