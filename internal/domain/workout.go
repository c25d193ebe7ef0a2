package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNonContiguousOrdering is returned when exercise order or set numbers
// do not follow the submitted array positions.
var ErrNonContiguousOrdering = errors.New("workout ordering is not contiguous")

// Workout is the durable record of a finished session.
// Exercises and their sets are embedded so the whole workout is written in one insert.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Name        *string            `bson:"name,omitempty" json:"name,omitempty"`
	StartedAt   time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes       *string            `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises   []WorkoutExercise  `bson:"exercises" json:"exercises"`
}

// WorkoutExercise is one exercise entry within a workout.
type WorkoutExercise struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order      int                `bson:"order" json:"order"` // 0-based position in the workout
	Sets       []Set              `bson:"sets" json:"sets"`
}

// Set is one logged set.
type Set struct {
	SetNumber   int       `bson:"setNumber" json:"setNumber"` // 1-based position within the exercise
	Weight      float64   `bson:"weight" json:"weight"`
	Reps        int       `bson:"reps" json:"reps"`
	RPE         *float64  `bson:"rpe,omitempty" json:"rpe,omitempty"`
	IsWarmup    bool      `bson:"isWarmup" json:"isWarmup"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
}

// WorkingSets counts sets that are not flagged as warmup.
func (we *WorkoutExercise) WorkingSets() int {
	n := 0
	for _, s := range we.Sets {
		if !s.IsWarmup {
			n++
		}
	}
	return n
}

// ValidateOrdering checks that exercise orders start at 0 and set numbers
// start at 1, both contiguous and matching slice position.
func (w *Workout) ValidateOrdering() error {
	for i, we := range w.Exercises {
		if we.Order != i {
			return fmt.Errorf("%w: exercise %d has order %d", ErrNonContiguousOrdering, i, we.Order)
		}
		for j, s := range we.Sets {
			if s.SetNumber != j+1 {
				return fmt.Errorf("%w: exercise %d set %d has setNumber %d", ErrNonContiguousOrdering, i, j, s.SetNumber)
			}
		}
	}
	return nil
}

// ExerciseEntry returns the entry for exerciseID, if the workout contains it.
func (w *Workout) ExerciseEntry(exerciseID primitive.ObjectID) (*WorkoutExercise, bool) {
	for i := range w.Exercises {
		if w.Exercises[i].ExerciseID == exerciseID {
			return &w.Exercises[i], true
		}
	}
	return nil, false
}

// LastPerformance is the most recent logged history for one exercise.
type LastPerformance struct {
	WorkoutID primitive.ObjectID `json:"workoutId"`
	Date      time.Time          `json:"date"`
	Sets      []Set              `json:"sets"`
}

// SortSetsByNumber orders sets by SetNumber in place.
func SortSetsByNumber(sets []Set) {
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].SetNumber < sets[j].SetNumber })
}
