package session

import (
	"math"

	"mstolbov/liftlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats are the derived statistics of a session: total volume (weight times
// effective reps, summed over completed sets and rounded) and the number of
// completed sets. Duration-only sets count toward the set total but add no
// volume.
type Stats struct {
	TotalVolume        int `json:"totalVolume"`
	TotalCompletedSets int `json:"totalCompletedSets"`
}

// ComputeStats derives Stats from the current entries. It is a pure function
// recomputed on every read; nothing is cached, so the result can never drift
// from the sets it was derived from.
func ComputeStats(entries map[primitive.ObjectID]*domain.ExerciseEntry) Stats {
	var volume float64
	var completed int

	for _, entry := range entries {
		for i := range entry.Sets {
			set := &entry.Sets[i]
			if !set.Completed {
				continue
			}
			completed++
			volume += set.WeightValue() * set.EffectiveReps(entry.RepsType)
		}
	}

	return Stats{
		TotalVolume:        int(math.Round(volume)),
		TotalCompletedSets: completed,
	}
}
