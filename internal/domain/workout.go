package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is the finalized historical record of one completed session.
// Written exactly once when the session finishes; only the title may be
// edited afterwards. Statistics are stored as scalars computed at finish
// time — raw per-set history is not part of this record.
type Workout struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	RoutineID *primitive.ObjectID `bson:"routineId,omitempty" json:"routineId,omitempty"`
	Date      string              `bson:"date" json:"date"` // ISO 8601, UTC
	Title     string              `bson:"title" json:"title"`
	Duration  int                 `bson:"duration" json:"duration"` // elapsed seconds
	Volume    int                 `bson:"volume" json:"volume"`     // Σ weight × effective reps over completed sets, rounded
	Sets      int                 `bson:"sets" json:"sets"`         // completed-set count
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
