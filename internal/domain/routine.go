package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routine is a reusable, user-authored workout template. The exercises and
// target sets live in their own collections (RoutineExercise, RoutineSet) so
// the synchronizer can upsert/replace them independently.
type Routine struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	CreatedBy string              `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// RoutineExercise is the per-exercise configuration row of a routine.
// At most one row exists per (routineId, exerciseId).
type RoutineExercise struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID        primitive.ObjectID `bson:"routineId" json:"routineId"`
	ExerciseID       primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RestTimerSeconds int                `bson:"restTimerSeconds" json:"restTimerSeconds"`
	Unit             WeightUnit         `bson:"unit" json:"unit"`
	RepsType         RepsType           `bson:"repsType" json:"repsType"`
	Position         int                `bson:"position" json:"position"` // display order within the routine
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RoutineSet is one persisted target set of a routine exercise. Rows carry no
// stable identity across edits: saving a routine replaces the whole list for
// an exercise positionally.
type RoutineSet struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID  primitive.ObjectID `bson:"routineId" json:"routineId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Position   int                `bson:"position" json:"position"`
	Set        `bson:",inline"`
}
