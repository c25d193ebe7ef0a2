package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alcyxob/fitsho/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testStart = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeRecorder struct {
	saved []*domain.Workout
	err   error
	id    primitive.ObjectID
}

func (r *fakeRecorder) SaveCompletedWorkout(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	r.saved = append(r.saved, w)
	if r.id.IsZero() {
		r.id = primitive.NewObjectID()
	}
	return r.id, nil
}

func newTestSession(t *testing.T) (*Session, *MemoryStore, *fakeRecorder) {
	t.Helper()
	store := NewMemoryStore(0)
	rec := &fakeRecorder{}
	m := NewManager(store, rec)
	m.SetClock(func() time.Time { return testStart })
	return m.Session(primitive.NewObjectID(), "tab-1"), store, rec
}

func ref(name, muscle string) ExerciseRef {
	return ExerciseRef{ExerciseID: primitive.NewObjectID().Hex(), Name: name, MuscleGroup: muscle}
}

func TestStartCreatesEmptyDraft(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)

	d, err := s.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStart.UnixMilli(), d.StartedAt)
	assert.Empty(t, d.Exercises)
	assert.Equal(t, 0, d.CurrentExerciseIndex)
	assert.False(t, d.HasExercises())

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestReadWithoutDraftReturnsNil(t *testing.T) {
	s, _, _ := newTestSession(t)

	d, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSecondStartReplacesDraft(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)

	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Squat", "legs"))
	require.NoError(t, err)

	_, err = s.Start(ctx)
	require.NoError(t, err)

	d, err := s.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Empty(t, d.Exercises)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	m := NewManager(store, &fakeRecorder{})
	user := primitive.NewObjectID()

	a := m.Session(user, "tab-a")
	b := m.Session(user, "tab-b")
	_, err := a.Start(ctx)
	require.NoError(t, err)

	d, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestAddExerciseAppendsAndMovesIndex(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)

	names := []string{"Bench Press", "Barbell Row", "Squat"}
	for i, n := range names {
		d, err := s.AddExercise(ctx, ref(n, "x"))
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, i, d.CurrentExerciseIndex)
	}

	d, err := s.Read(ctx)
	require.NoError(t, err)
	require.Len(t, d.Exercises, 3)
	for i, n := range names {
		assert.Equal(t, n, d.Exercises[i].Name)
		assert.Empty(t, d.Exercises[i].Sets)
	}
}

func TestOperationsWithoutDraftAreNoOps(t *testing.T) {
	ctx := context.Background()
	s, store, rec := newTestSession(t)

	d, err := s.AddExercise(ctx, ref("Squat", "legs"))
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = s.AddSet(ctx, DraftSet{Weight: 100, Reps: 5})
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = s.RemoveSet(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = s.SwitchExercise(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, d)

	c, err := s.Complete(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Empty(t, rec.saved)

	_, ok, err := store.Get(ctx, s.Key())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddSetWithoutExerciseIsNoOp(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)

	d, err := s.AddSet(ctx, DraftSet{Weight: 100, Reps: 5})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Empty(t, d.Exercises)
}

func TestAddSetRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Deadlift", "back"))
	require.NoError(t, err)

	negRPE, offScale := -1.0, 10.5
	for _, set := range []DraftSet{
		{Weight: -5, Reps: 5},
		{Weight: 100, Reps: 0},
		{Weight: 100, Reps: 5, RPE: &negRPE},
		{Weight: 100, Reps: 5, RPE: &offScale},
	} {
		d, err := s.AddSet(ctx, set)
		require.NoError(t, err)
		assert.Empty(t, d.Exercises[0].Sets)
	}
}

func TestAddSetGoesToCurrentExercise(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Bench Press", "chest"))
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Barbell Row", "back"))
	require.NoError(t, err)

	_, err = s.SwitchExercise(ctx, 0)
	require.NoError(t, err)
	d, err := s.AddSet(ctx, DraftSet{Weight: 135, Reps: 8})
	require.NoError(t, err)

	assert.Len(t, d.Exercises[0].Sets, 1)
	assert.Empty(t, d.Exercises[1].Sets)
}

func TestRemoveSetShiftsLaterSets(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Overhead Press", "shoulders"))
	require.NoError(t, err)
	for _, reps := range []int{1, 2, 3, 4} {
		_, err = s.AddSet(ctx, DraftSet{Weight: 95, Reps: reps})
		require.NoError(t, err)
	}

	d, err := s.RemoveSet(ctx, 1)
	require.NoError(t, err)

	var reps []int
	for _, set := range d.Exercises[0].Sets {
		reps = append(reps, set.Reps)
	}
	assert.Equal(t, []int{1, 3, 4}, reps)
}

func TestInvalidIndicesAreNoOps(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Lat Pulldown", "back"))
	require.NoError(t, err)
	before, err := s.AddSet(ctx, DraftSet{Weight: 120, Reps: 10})
	require.NoError(t, err)

	for _, i := range []int{-1, 1, 99} {
		d, err := s.RemoveSet(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, before, d)

		d, err = s.SwitchExercise(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, before, d)
	}
}

func TestCompleteScenario(t *testing.T) {
	ctx := context.Background()
	s, store, rec := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	bench := ref("Bench Press", "chest")
	_, err = s.AddExercise(ctx, bench)
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 135, Reps: 5, IsWarmup: false})
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 45, Reps: 10, IsWarmup: true})
	require.NoError(t, err)

	c, err := s.Complete(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.Discarded)
	assert.Equal(t, rec.id, c.WorkoutID)

	require.Len(t, rec.saved, 1)
	w := rec.saved[0]
	assert.True(t, testStart.Equal(w.StartedAt))
	require.Len(t, w.Exercises, 1)
	e := w.Exercises[0]
	assert.Equal(t, bench.ExerciseID, e.ExerciseID.Hex())
	assert.Equal(t, 0, e.Order)
	require.Len(t, e.Sets, 2)
	assert.Equal(t, 1, e.Sets[0].SetNumber)
	assert.Equal(t, 135.0, e.Sets[0].Weight)
	assert.False(t, e.Sets[0].IsWarmup)
	assert.Equal(t, 2, e.Sets[1].SetNumber)
	assert.Equal(t, 45.0, e.Sets[1].Weight)
	assert.True(t, e.Sets[1].IsWarmup)

	_, ok, err := store.Get(ctx, s.Key())
	require.NoError(t, err)
	assert.False(t, ok, "draft should be cleared after a successful save")
}

func TestCompleteFiltersEmptyExercises(t *testing.T) {
	ctx := context.Background()
	s, _, rec := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)

	a, b, c := ref("A", "chest"), ref("B", "back"), ref("C", "legs")
	_, err = s.AddExercise(ctx, a)
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 10, Reps: 1})
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 20, Reps: 2})
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, b)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, c)
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 30, Reps: 3})
	require.NoError(t, err)

	_, err = s.Complete(ctx)
	require.NoError(t, err)

	require.Len(t, rec.saved, 1)
	ex := rec.saved[0].Exercises
	require.Len(t, ex, 2)
	assert.Equal(t, a.ExerciseID, ex[0].ExerciseID.Hex())
	assert.Equal(t, 0, ex[0].Order)
	assert.Equal(t, c.ExerciseID, ex[1].ExerciseID.Hex())
	assert.Equal(t, 1, ex[1].Order)
	assert.NoError(t, rec.saved[0].ValidateOrdering())
}

func TestCompleteWithNothingLoggedDiscards(t *testing.T) {
	ctx := context.Background()
	s, store, rec := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Plank", "core"))
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Crunch", "core"))
	require.NoError(t, err)

	c, err := s.Complete(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Discarded)
	assert.Empty(t, rec.saved)

	_, ok, err := store.Get(ctx, s.Key())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompleteFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	s, _, rec := newTestSession(t)
	rec.err = errors.New("connection reset")
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Squat", "legs"))
	require.NoError(t, err)
	before, err := s.AddSet(ctx, DraftSet{Weight: 225, Reps: 5})
	require.NoError(t, err)

	c, err := s.Complete(ctx)
	assert.Nil(t, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistFailed)

	after, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rec.err = nil
	c, err = s.Complete(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, rec.saved, 1)
}

// gatedRecorder holds every save until proceed is closed.
type gatedRecorder struct {
	mu      sync.Mutex
	saved   int
	entered chan struct{}
	proceed chan struct{}
}

func (r *gatedRecorder) SaveCompletedWorkout(_ context.Context, _ *domain.Workout) (primitive.ObjectID, error) {
	r.entered <- struct{}{}
	<-r.proceed
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved++
	return primitive.NewObjectID(), nil
}

func startLoggedDraft(t *testing.T, m *Manager) *Session {
	t.Helper()
	ctx := context.Background()
	s := m.Session(primitive.NewObjectID(), "tab-1")
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Bench Press", "chest"))
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 135, Reps: 5})
	require.NoError(t, err)
	return s
}

func TestOverlappingCompleteWritesOnce(t *testing.T) {
	ctx := context.Background()
	rec := &gatedRecorder{entered: make(chan struct{}, 2), proceed: make(chan struct{})}
	s := startLoggedDraft(t, NewManager(NewMemoryStore(0), rec))

	type outcome struct {
		c   *Completion
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		c, err := s.Complete(ctx)
		first <- outcome{c, err}
	}()
	<-rec.entered

	c, err := s.Complete(ctx)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrCompletionInProgress)

	close(rec.proceed)
	got := <-first
	require.NoError(t, got.err)
	require.NotNil(t, got.c)
	assert.False(t, got.c.WorkoutID.IsZero())

	c, err = s.Complete(ctx)
	require.NoError(t, err)
	assert.Nil(t, c, "draft is gone after the first completion")
	assert.Equal(t, 1, rec.saved)
}

type slowRecorder struct {
	mu    sync.Mutex
	saved int
}

func (r *slowRecorder) SaveCompletedWorkout(_ context.Context, _ *domain.Workout) (primitive.ObjectID, error) {
	time.Sleep(50 * time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved++
	return primitive.NewObjectID(), nil
}

func TestConcurrentCompleteWritesOnce(t *testing.T) {
	ctx := context.Background()
	rec := &slowRecorder{}
	s := startLoggedDraft(t, NewManager(NewMemoryStore(0), rec))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Complete(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrCompletionInProgress)
		}
	}
	assert.Equal(t, 1, rec.saved)
}

func TestConcurrentCompleteOverRedisWritesOnce(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	rec := &slowRecorder{}
	s := startLoggedDraft(t, NewManager(store, rec))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Complete(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rec.saved)
	assert.False(t, mr.Exists(s.Key()+":completing"), "claim is released after completion")
}

func TestCompleteRejectsForeignExerciseID(t *testing.T) {
	ctx := context.Background()
	s, _, rec := newTestSession(t)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ExerciseRef{ExerciseID: "ex1", Name: "Bench Press", MuscleGroup: "chest"})
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 135, Reps: 5})
	require.NoError(t, err)

	_, err = s.Complete(ctx)
	assert.ErrorIs(t, err, ErrInvalidExerciseID)
	assert.Empty(t, rec.saved)

	d, err := s.Read(ctx)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestDiscardIsUnconditional(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSession(t)

	require.NoError(t, s.Discard(ctx))

	_, err := s.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Discard(ctx))

	_, ok, err := store.Get(ctx, s.Key())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptStorageReadsAsNone(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSession(t)

	for _, raw := range []string{
		"not json at all",
		`{"startedAt": 5}`,
		`{"v": 99, "startedAt": 5, "exercises": [], "currentExerciseIndex": 0}`,
		`[1,2,3]`,
	} {
		require.NoError(t, store.Set(ctx, s.Key(), []byte(raw)))
		d, err := s.Read(ctx)
		require.NoError(t, err, raw)
		assert.Nil(t, d, raw)
	}
}

func TestWorkingSetNumbersSkipWarmups(t *testing.T) {
	e := DraftExercise{Sets: []DraftSet{
		{Weight: 45, Reps: 10, IsWarmup: true},
		{Weight: 135, Reps: 5},
		{Weight: 95, Reps: 5, IsWarmup: true},
		{Weight: 155, Reps: 3},
	}}

	assert.Equal(t, []int{0, 1, 0, 2}, e.WorkingSetNumbers())
	assert.Equal(t, 2, e.WorkingSets())
}
