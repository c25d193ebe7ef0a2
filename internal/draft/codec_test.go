package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rpe := 8.5
	in := &WorkoutDraft{
		StartedAt: 1767225600000,
		Exercises: []DraftExercise{
			{
				ExerciseID:  "65f0c1d2e3a4b5c6d7e8f901",
				Name:        "Bench Press",
				MuscleGroup: "chest",
				Sets: []DraftSet{
					{Weight: 45, Reps: 10, IsWarmup: true},
					{Weight: 137.5, Reps: 5, RPE: &rpe},
				},
			},
			{ExerciseID: "65f0c1d2e3a4b5c6d7e8f902", Name: "Dumbbell Fly", MuscleGroup: "chest", Sets: []DraftSet{}},
		},
		CurrentExerciseIndex: 1,
	}

	data, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeWritesVersionAndEmptyLists(t *testing.T) {
	data, err := Encode(&WorkoutDraft{StartedAt: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"startedAt":1,"exercises":[],"currentExerciseIndex":0}`, string(data))
}

func TestDecodeRejectsMalformedDrafts(t *testing.T) {
	cases := map[string]string{
		"garbage":         `}{`,
		"wrong version":   `{"v":2,"startedAt":1,"exercises":[],"currentExerciseIndex":0}`,
		"no version":      `{"startedAt":1,"exercises":[],"currentExerciseIndex":0}`,
		"no start":        `{"v":1,"exercises":[],"currentExerciseIndex":0}`,
		"index past end":  `{"v":1,"startedAt":1,"exercises":[{"exerciseId":"a","name":"n","muscleGroup":"m","sets":[]}],"currentExerciseIndex":1}`,
		"negative index":  `{"v":1,"startedAt":1,"exercises":[{"exerciseId":"a","name":"n","muscleGroup":"m","sets":[]}],"currentExerciseIndex":-1}`,
		"index no list":   `{"v":1,"startedAt":1,"exercises":[],"currentExerciseIndex":3}`,
		"missing id":      `{"v":1,"startedAt":1,"exercises":[{"name":"n","muscleGroup":"m","sets":[]}],"currentExerciseIndex":0}`,
		"zero reps":       `{"v":1,"startedAt":1,"exercises":[{"exerciseId":"a","name":"n","muscleGroup":"m","sets":[{"weight":1,"reps":0,"isWarmup":false}]}],"currentExerciseIndex":0}`,
		"rpe off scale":   `{"v":1,"startedAt":1,"exercises":[{"exerciseId":"a","name":"n","muscleGroup":"m","sets":[{"weight":1,"reps":5,"rpe":50,"isWarmup":false}]}],"currentExerciseIndex":0}`,
		"wrong type":      `{"v":1,"startedAt":"yesterday","exercises":[],"currentExerciseIndex":0}`,
		"string document": `"fitsho"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := Decode([]byte(raw))
			assert.Nil(t, d)
			assert.ErrorIs(t, err, ErrCorruptDraft)
		})
	}
}

func TestDecodeFillsNullLists(t *testing.T) {
	d, err := Decode([]byte(`{"v":1,"startedAt":1,"exercises":[{"exerciseId":"a","name":"n","muscleGroup":"m","sets":null}],"currentExerciseIndex":0}`))
	require.NoError(t, err)
	assert.NotNil(t, d.Exercises[0].Sets)
	assert.Empty(t, d.Exercises[0].Sets)
}
