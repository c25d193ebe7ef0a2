// Package draft keeps the one in-progress workout of a session and turns it
// into a durable workout record when the user finishes.
package draft

import (
	"math"
	"time"
)

// WorkoutDraft is the not-yet-persisted state of an in-progress workout.
type WorkoutDraft struct {
	StartedAt            int64           `json:"startedAt"` // Unix milliseconds, set once by Start
	Exercises            []DraftExercise `json:"exercises"`
	CurrentExerciseIndex int             `json:"currentExerciseIndex"`
}

// DraftExercise is an exercise picked into the draft. Name and MuscleGroup
// are a snapshot of the catalog entry at selection time and are not re-synced.
type DraftExercise struct {
	ExerciseID  string     `json:"exerciseId"`
	Name        string     `json:"name"`
	MuscleGroup string     `json:"muscleGroup"`
	Sets        []DraftSet `json:"sets"`
}

// DraftSet is one logged set inside the draft.
type DraftSet struct {
	Weight   float64  `json:"weight"`
	Reps     int      `json:"reps"`
	RPE      *float64 `json:"rpe,omitempty"`
	IsWarmup bool     `json:"isWarmup"`
}

// ExerciseRef identifies a catalog exercise together with the fields
// snapshotted into the draft.
type ExerciseRef struct {
	ExerciseID  string
	Name        string
	MuscleGroup string
}

// MaxRPE is the top of the rate-of-perceived-exertion scale.
const MaxRPE = 10

// Valid reports whether the set can be logged: non-negative finite weight,
// at least one rep, and an RPE within 0..MaxRPE when present.
func (s DraftSet) Valid() bool {
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight < 0 {
		return false
	}
	if s.Reps < 1 {
		return false
	}
	if s.RPE != nil {
		r := *s.RPE
		if math.IsNaN(r) || r < 0 || r > MaxRPE {
			return false
		}
	}
	return true
}

// StartTime returns StartedAt as a time.Time in UTC.
func (d *WorkoutDraft) StartTime() time.Time {
	return time.UnixMilli(d.StartedAt).UTC()
}

// HasExercises reports whether the draft counts as an active workout.
// A draft with no exercises routes the same as no draft at all.
func (d *WorkoutDraft) HasExercises() bool {
	return d != nil && len(d.Exercises) > 0
}

// CurrentExercise resolves CurrentExerciseIndex.
func (d *WorkoutDraft) CurrentExercise() (*DraftExercise, bool) {
	if d == nil || d.CurrentExerciseIndex < 0 || d.CurrentExerciseIndex >= len(d.Exercises) {
		return nil, false
	}
	return &d.Exercises[d.CurrentExerciseIndex], true
}

// LoggedExercises returns the exercises that have at least one set, in draft order.
func (d *WorkoutDraft) LoggedExercises() []DraftExercise {
	var out []DraftExercise
	for _, e := range d.Exercises {
		if len(e.Sets) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// WorkingSets counts the non-warmup sets.
func (e *DraftExercise) WorkingSets() int {
	n := 0
	for _, s := range e.Sets {
		if !s.IsWarmup {
			n++
		}
	}
	return n
}

// WorkingSetNumbers numbers working sets 1..n in display order.
// Warmup sets get 0. Numbers are derived here and never stored.
func (e *DraftExercise) WorkingSetNumbers() []int {
	out := make([]int, len(e.Sets))
	n := 0
	for i, s := range e.Sets {
		if s.IsWarmup {
			continue
		}
		n++
		out[i] = n
	}
	return out
}
