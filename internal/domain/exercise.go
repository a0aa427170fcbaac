package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseType determines which Set fields are meaningful for an exercise.
type ExerciseType string

const (
	ExerciseTypeWeighted   ExerciseType = "weighted"
	ExerciseTypeBodyweight ExerciseType = "bodyweight"
	ExerciseTypeDuration   ExerciseType = "duration"
)

// Exercise is a catalog entry: the immutable definition users pick exercises
// from. Sessions and routines reference it by ID and never copy more than the
// display metadata (name, type).
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Type        ExerciseType       `bson:"type" json:"type"`
	MuscleGroup string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g. "Chest", "Legs", "Back"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	// MediaObjectKey points at the demo image/video in object storage.
	// Never exposed directly; handlers return a presigned URL instead.
	MediaObjectKey string `bson:"mediaObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseMeta is the display subset sessions keep per loaded exercise.
type ExerciseMeta struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
	Type ExerciseType       `bson:"type" json:"type"`
}
