package draft

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alcyxob/fitsho/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrPersistFailed is returned by Complete when the durable write fails.
	// The draft is left in place so the user can retry.
	ErrPersistFailed = errors.New("failed to save workout")
	// ErrCompletionInProgress is returned by Complete while another request
	// is already saving the same draft.
	ErrCompletionInProgress = errors.New("workout is already being saved")
	// ErrInvalidExerciseID is returned by ToCompletedWorkout for ids that are not catalog ids.
	ErrInvalidExerciseID = errors.New("draft references an invalid exercise id")
)

// completionClaimTTL bounds how long a crashed Complete can block a retry.
const completionClaimTTL = 30 * time.Second

// Recorder accepts a finished workout for durable storage.
type Recorder interface {
	SaveCompletedWorkout(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
}

// Manager hands out per-session views over a shared Store.
type Manager struct {
	store    Store
	recorder Recorder
	now      func() time.Time
}

// NewManager creates a Manager.
func NewManager(store Store, recorder Recorder) *Manager {
	return &Manager{store: store, recorder: recorder, now: time.Now}
}

// SetClock overrides the time source. Used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// StorageKey is the key holding the draft for one user's browser session.
func StorageKey(userID primitive.ObjectID, sessionID string) string {
	return KeyPrefix + ":" + userID.Hex() + ":" + sessionID
}

// Session returns the draft view for one user's browser session.
func (m *Manager) Session(userID primitive.ObjectID, sessionID string) *Session {
	return &Session{
		manager: m,
		userID:  userID,
		key:     StorageKey(userID, sessionID),
	}
}

// Session operates on the single draft of one session. Every operation is
// one read-modify-write against the store; the last writer wins.
type Session struct {
	manager *Manager
	userID  primitive.ObjectID
	key     string
}

// Key returns the storage key of this session's draft.
func (s *Session) Key() string {
	return s.key
}

// Start creates a fresh draft, replacing any draft the session already had.
func (s *Session) Start(ctx context.Context) (*WorkoutDraft, error) {
	d := &WorkoutDraft{
		StartedAt:            s.manager.now().UnixMilli(),
		Exercises:            []DraftExercise{},
		CurrentExerciseIndex: 0,
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Read returns the current draft, or nil when there is none or the stored
// value is unusable.
func (s *Session) Read(ctx context.Context) (*WorkoutDraft, error) {
	data, ok, err := s.manager.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	if !ok {
		return nil, nil
	}
	d, err := Decode(data)
	if err != nil {
		log.Printf("WARN: Ignoring unreadable draft under %s: %v", s.key, err)
		return nil, nil
	}
	return d, nil
}

// AddExercise appends an exercise and makes it current.
// Returns nil without a draft.
func (s *Session) AddExercise(ctx context.Context, ref ExerciseRef) (*WorkoutDraft, error) {
	return s.update(ctx, func(d *WorkoutDraft) bool {
		if ref.ExerciseID == "" {
			return false
		}
		d.Exercises = append(d.Exercises, DraftExercise{
			ExerciseID:  ref.ExerciseID,
			Name:        ref.Name,
			MuscleGroup: ref.MuscleGroup,
			Sets:        []DraftSet{},
		})
		d.CurrentExerciseIndex = len(d.Exercises) - 1
		return true
	})
}

// AddSet appends a set to the current exercise. Invalid sets and an
// unresolvable current index leave the draft untouched.
func (s *Session) AddSet(ctx context.Context, set DraftSet) (*WorkoutDraft, error) {
	return s.update(ctx, func(d *WorkoutDraft) bool {
		if !set.Valid() {
			return false
		}
		cur, ok := d.CurrentExercise()
		if !ok {
			return false
		}
		if set.RPE != nil {
			rpe := *set.RPE
			set.RPE = &rpe
		}
		cur.Sets = append(cur.Sets, set)
		return true
	})
}

// RemoveSet removes the set at index from the current exercise.
// Sets after index shift down by one; out-of-range indices are ignored.
func (s *Session) RemoveSet(ctx context.Context, index int) (*WorkoutDraft, error) {
	return s.update(ctx, func(d *WorkoutDraft) bool {
		cur, ok := d.CurrentExercise()
		if !ok || index < 0 || index >= len(cur.Sets) {
			return false
		}
		cur.Sets = append(cur.Sets[:index], cur.Sets[index+1:]...)
		return true
	})
}

// SwitchExercise makes the exercise at index current. Out-of-range indices are ignored.
func (s *Session) SwitchExercise(ctx context.Context, index int) (*WorkoutDraft, error) {
	return s.update(ctx, func(d *WorkoutDraft) bool {
		if index < 0 || index >= len(d.Exercises) {
			return false
		}
		d.CurrentExerciseIndex = index
		return true
	})
}

// Discard removes the draft unconditionally.
func (s *Session) Discard(ctx context.Context) error {
	if err := s.manager.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("discarding draft: %w", err)
	}
	return nil
}

// Completion describes what Complete did.
type Completion struct {
	WorkoutID primitive.ObjectID
	Discarded bool // Nothing was logged, so no workout was written
}

// Complete finishes the session's workout. Exercises without sets are
// dropped; if nothing is left the draft is discarded without a write.
// Otherwise the workout is handed to the Recorder and the draft is cleared
// only once the write succeeded. Returns nil without a draft.
//
// Overlapping calls for one session are serialized by a claim on the draft
// key: the loser gets ErrCompletionInProgress, and a call arriving after a
// finished completion finds no draft.
func (s *Session) Complete(ctx context.Context) (*Completion, error) {
	release, ok, err := s.manager.store.Claim(ctx, s.key+":completing", completionClaimTTL)
	if err != nil {
		return nil, fmt.Errorf("claiming draft: %w", err)
	}
	if !ok {
		return nil, ErrCompletionInProgress
	}
	defer func() {
		// Detached from ctx so a cancelled request still frees the claim.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			log.Printf("WARN: Failed to release completion claim on %s: %v", s.key, err)
		}
	}()

	d, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	if len(d.LoggedExercises()) == 0 {
		if err := s.Discard(ctx); err != nil {
			return nil, err
		}
		return &Completion{Discarded: true}, nil
	}

	workout, err := ToCompletedWorkout(d, s.userID, s.manager.now())
	if err != nil {
		return nil, err
	}
	id, err := s.manager.recorder.SaveCompletedWorkout(ctx, workout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	if err := s.manager.store.Delete(ctx, s.key); err != nil {
		// The workout is saved; a leftover draft is only an inconvenience.
		log.Printf("ERROR: Workout %s saved but draft %s was not cleared: %v", id.Hex(), s.key, err)
	}
	return &Completion{WorkoutID: id}, nil
}

// ToCompletedWorkout converts a draft into the durable workout shape.
// Exercises without sets are dropped. Array position becomes explicit
// ordering here: Order counts from 0 and SetNumber from 1.
func ToCompletedWorkout(d *WorkoutDraft, userID primitive.ObjectID, completedAt time.Time) (*domain.Workout, error) {
	completedAt = completedAt.UTC()
	logged := d.LoggedExercises()
	workout := &domain.Workout{
		UserID:      userID,
		StartedAt:   d.StartTime(),
		CompletedAt: &completedAt,
		Exercises:   make([]domain.WorkoutExercise, 0, len(logged)),
	}
	for i, e := range logged {
		exerciseID, err := primitive.ObjectIDFromHex(e.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExerciseID, e.ExerciseID)
		}
		entry := domain.WorkoutExercise{
			ExerciseID: exerciseID,
			Order:      i,
			Sets:       make([]domain.Set, len(e.Sets)),
		}
		for j, set := range e.Sets {
			entry.Sets[j] = domain.Set{
				SetNumber:   j + 1,
				Weight:      set.Weight,
				Reps:        set.Reps,
				RPE:         set.RPE,
				IsWarmup:    set.IsWarmup,
				CompletedAt: completedAt,
			}
		}
		workout.Exercises = append(workout.Exercises, entry)
	}
	return workout, nil
}

func (s *Session) update(ctx context.Context, mutate func(d *WorkoutDraft) bool) (*WorkoutDraft, error) {
	d, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	if !mutate(d) {
		return d, nil
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Session) save(ctx context.Context, d *WorkoutDraft) error {
	data, err := Encode(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if err := s.manager.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	return nil
}
