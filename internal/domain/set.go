package domain

import "strconv"

// SetType classifies a single set within an exercise.
type SetType string

const (
	SetTypeWarmup  SetType = "warmup"
	SetTypeNormal  SetType = "normal"
	SetTypeDropSet SetType = "dropset"
	SetTypeFailure SetType = "failure"
)

// WeightUnit is the display/entry unit for an exercise's sets.
// It applies to the whole exercise entry, never per-set.
type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

// RepsType selects between a fixed rep count and a rep range for an exercise.
type RepsType string

const (
	RepsTypeFixed RepsType = "reps"
	RepsTypeRange RepsType = "range"
)

// Set is one planned or performed repetition block.
//
// Numeric fields are pointers so that "unset" (user never touched the field)
// stays distinguishable from an explicit 0 — routine-definition sets keep nil
// so a previous-value placeholder can show through, while session sets are
// materialized with explicit values on load. Which of Reps, MinReps/MaxReps
// or Duration is active follows from the owning entry's exercise type and
// reps type; inactive fields may hold stale values and are ignored.
type Set struct {
	Weight    *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Reps      *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	MinReps   *int     `bson:"minReps,omitempty" json:"minReps,omitempty"`
	MaxReps   *int     `bson:"maxReps,omitempty" json:"maxReps,omitempty"`
	Duration  *int     `bson:"duration,omitempty" json:"duration,omitempty"` // seconds
	Type      SetType  `bson:"setType" json:"setType"`
	Completed bool     `bson:"isCompleted,omitempty" json:"isCompleted"` // session-only, never persisted on routines
}

// WeightValue returns the weight for display/aggregation, 0 when unset.
func (s *Set) WeightValue() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// RepsValue returns the rep count for display/aggregation, 0 when unset.
func (s *Set) RepsValue() int {
	if s.Reps == nil {
		return 0
	}
	return *s.Reps
}

// DurationValue returns the duration in seconds, 0 when unset.
func (s *Set) DurationValue() int {
	if s.Duration == nil {
		return 0
	}
	return *s.Duration
}

// EffectiveReps is the rep count used for volume aggregation. The owning
// entry's reps type selects the active fields: the midpoint of the configured
// range for range entries, the explicit rep count otherwise. The inactive
// fields may hold stale values (a set created under fixed reps keeps its
// zeroed Reps after the entry switches to a range) and are never consulted.
func (s *Set) EffectiveReps(repsType RepsType) float64 {
	if repsType == RepsTypeRange {
		if s.MinReps != nil && s.MaxReps != nil {
			return float64(*s.MinReps+*s.MaxReps) / 2
		}
		return 0
	}
	if s.Reps != nil {
		return float64(*s.Reps)
	}
	return 0
}

// IntPtr is a convenience for building Set literals.
func IntPtr(v int) *int { return &v }

// FloatPtr is a convenience for building Set literals.
func FloatPtr(v float64) *float64 { return &v }

// ParseOptionalInt converts a user-entered numeric string into an optional
// integer: the empty string means "unset" (nil), anything else parses with a
// fallback of 0 on malformed input.
func ParseOptionalInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		v = 0
	}
	return &v
}

// ParseOptionalFloat is ParseOptionalInt for weight fields.
func ParseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v = 0
	}
	return &v
}
