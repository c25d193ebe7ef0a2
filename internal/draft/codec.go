package draft

import (
	"encoding/json"
	"errors"
	"fmt"
)

// formatVersion is bumped whenever the stored draft shape changes.
// Older values then read as corrupt and the user starts over.
const formatVersion = 1

// ErrCorruptDraft marks a stored value that is not a usable draft.
var ErrCorruptDraft = errors.New("corrupt workout draft")

type storedDraft struct {
	V                    int             `json:"v"`
	StartedAt            int64           `json:"startedAt"`
	Exercises            []DraftExercise `json:"exercises"`
	CurrentExerciseIndex int             `json:"currentExerciseIndex"`
}

// Encode serializes a draft for session storage.
func Encode(d *WorkoutDraft) ([]byte, error) {
	if d == nil {
		return nil, errors.New("cannot encode nil draft")
	}
	normalize(d)
	return json.Marshal(storedDraft{
		V:                    formatVersion,
		StartedAt:            d.StartedAt,
		Exercises:            d.Exercises,
		CurrentExerciseIndex: d.CurrentExerciseIndex,
	})
}

// Decode parses a stored draft. Anything that is not a structurally valid
// draft of the current version yields an error wrapping ErrCorruptDraft.
func Decode(data []byte) (*WorkoutDraft, error) {
	var sd storedDraft
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	if sd.V != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptDraft, sd.V)
	}
	if sd.StartedAt <= 0 {
		return nil, fmt.Errorf("%w: missing startedAt", ErrCorruptDraft)
	}
	d := &WorkoutDraft{
		StartedAt:            sd.StartedAt,
		Exercises:            sd.Exercises,
		CurrentExerciseIndex: sd.CurrentExerciseIndex,
	}
	normalize(d)
	if len(d.Exercises) == 0 {
		if d.CurrentExerciseIndex != 0 {
			return nil, fmt.Errorf("%w: index %d with no exercises", ErrCorruptDraft, d.CurrentExerciseIndex)
		}
	} else if d.CurrentExerciseIndex < 0 || d.CurrentExerciseIndex >= len(d.Exercises) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrCorruptDraft, d.CurrentExerciseIndex)
	}
	for i, e := range d.Exercises {
		if e.ExerciseID == "" {
			return nil, fmt.Errorf("%w: exercise %d has no id", ErrCorruptDraft, i)
		}
		for j, s := range e.Sets {
			if !s.Valid() {
				return nil, fmt.Errorf("%w: exercise %d set %d is invalid", ErrCorruptDraft, i, j)
			}
		}
	}
	return d, nil
}

// normalize replaces nil slices with empty ones so encoded drafts never carry null lists.
func normalize(d *WorkoutDraft) {
	if d.Exercises == nil {
		d.Exercises = []DraftExercise{}
	}
	for i := range d.Exercises {
		if d.Exercises[i].Sets == nil {
			d.Exercises[i].Sets = []DraftSet{}
		}
	}
}
