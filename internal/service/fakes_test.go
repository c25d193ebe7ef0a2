package service

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) UpdateWeightUnit(_ context.Context, id primitive.ObjectID, unit domain.WeightUnit) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.WeightUnit = unit
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, name string, avatarURL *string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	u.AvatarURL = avatarURL
	return nil
}

type fakeExerciseRepo struct {
	exercises  []domain.Exercise
	imageKeys  map[primitive.ObjectID]string
	batchLoads int
}

func newFakeExerciseRepo(exercises ...domain.Exercise) *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: exercises, imageKeys: map[primitive.ObjectID]string{}}
}

func (r *fakeExerciseRepo) visible(f domain.ExerciseFilter) []domain.Exercise {
	var out []domain.Exercise
	for _, e := range r.exercises {
		if f.MuscleGroup != "" && e.MuscleGroup != f.MuscleGroup {
			continue
		}
		if f.Equipment != "" && e.Equipment != f.Equipment {
			continue
		}
		if e.IsCustom && (e.UserID == nil || *e.UserID != f.ViewerID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *fakeExerciseRepo) ListPage(_ context.Context, f domain.ExerciseFilter, cursor string, pageSize int) (*domain.ExercisePage, error) {
	rows := r.visible(f)
	start := 0
	if cursor != "" {
		after, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, repository.ErrInvalidCursor
		}
		for start < len(rows) && rows[start].ID.Hex() <= after.Hex() {
			start++
		}
	}
	rows = rows[start:]
	page := &domain.ExercisePage{Results: rows, IsDone: true}
	if len(rows) > pageSize {
		page.Results = rows[:pageSize]
		page.IsDone = false
		page.ContinueCursor = rows[pageSize-1].ID.Hex()
	}
	return page, nil
}

func (r *fakeExerciseRepo) List(_ context.Context, f domain.ExerciseFilter) ([]domain.Exercise, error) {
	rows := r.visible(f)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (r *fakeExerciseRepo) MuscleGroups(context.Context) ([]string, error) {
	return []string{"back", "chest"}, nil
}

func (r *fakeExerciseRepo) EquipmentList(context.Context) ([]string, error) {
	return []string{"barbell"}, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	for _, e := range r.exercises {
		if e.ID == id {
			c := e
			if key, ok := r.imageKeys[id]; ok {
				c.ImageKey = &key
			}
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.batchLoads++
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []domain.Exercise{}
	for _, e := range r.exercises {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	e.ID = primitive.NewObjectID()
	r.exercises = append(r.exercises, *e)
	return e.ID, nil
}

func (r *fakeExerciseRepo) SetImageKey(_ context.Context, id primitive.ObjectID, key string) error {
	if _, err := r.GetByID(context.Background(), id); err != nil {
		return err
	}
	r.imageKeys[id] = key
	return nil
}

func (r *fakeExerciseRepo) Seed(_ context.Context, exercises []domain.Exercise) (int, error) {
	if len(r.exercises) > 0 {
		return 0, nil
	}
	for _, e := range exercises {
		e.ID = primitive.NewObjectID()
		r.exercises = append(r.exercises, e)
	}
	return len(exercises), nil
}

type fakeWorkoutRepo struct {
	workouts []domain.Workout
	err      error
}

func (r *fakeWorkoutRepo) SaveCompleted(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	if err := w.ValidateOrdering(); err != nil {
		return primitive.NilObjectID, err
	}
	w.ID = primitive.NewObjectID()
	r.workouts = append(r.workouts, *w)
	return w.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	for _, w := range r.workouts {
		if w.ID == id {
			c := w
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) ListByUserBetween(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Workout, error) {
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if w.UserID == userID && !w.StartedAt.Before(from) && w.StartedAt.Before(to) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) ListRecent(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.Workout, error) {
	out := []domain.Workout{}
	for i := len(r.workouts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.workouts[i].UserID == userID {
			out = append(out, r.workouts[i])
		}
	}
	return out, nil
}

// LastPerformance mirrors the Mongo repository: only the 20 newest workouts are searched.
func (r *fakeWorkoutRepo) LastPerformance(_ context.Context, userID, exerciseID primitive.ObjectID) (*domain.LastPerformance, error) {
	seen := 0
	for i := len(r.workouts) - 1; i >= 0 && seen < 20; i-- {
		w := r.workouts[i]
		if w.UserID != userID {
			continue
		}
		seen++
		if entry, ok := w.ExerciseEntry(exerciseID); ok && len(entry.Sets) > 0 {
			return &domain.LastPerformance{WorkoutID: w.ID, Date: w.StartedAt, Sets: entry.Sets}, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeSupplementRepo struct {
	supplements []domain.Supplement
	logs        []domain.SupplementLog
}

func (r *fakeSupplementRepo) List(_ context.Context, userID primitive.ObjectID) ([]domain.Supplement, error) {
	out := []domain.Supplement{}
	for _, s := range r.supplements {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSupplementRepo) Add(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Supplement, error) {
	existing, _ := r.List(ctx, userID)
	s := domain.Supplement{ID: primitive.NewObjectID(), UserID: userID, Name: name, Order: len(existing)}
	r.supplements = append(r.supplements, s)
	return &s, nil
}

func (r *fakeSupplementRepo) Remove(_ context.Context, userID, supplementID primitive.ObjectID) error {
	for i, s := range r.supplements {
		if s.ID == supplementID && s.UserID == userID {
			r.supplements = append(r.supplements[:i], r.supplements[i+1:]...)
			kept := r.logs[:0]
			for _, l := range r.logs {
				if l.SupplementID != supplementID {
					kept = append(kept, l)
				}
			}
			r.logs = kept
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeSupplementRepo) LogsForDate(_ context.Context, userID primitive.ObjectID, date string) ([]domain.SupplementLog, error) {
	out := []domain.SupplementLog{}
	for _, l := range r.logs {
		if l.UserID == userID && l.Date == date {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeSupplementRepo) ToggleLog(_ context.Context, userID, supplementID primitive.ObjectID, date string) (bool, error) {
	owned := false
	for _, s := range r.supplements {
		if s.ID == supplementID && s.UserID == userID {
			owned = true
		}
	}
	if !owned {
		return false, repository.ErrNotFound
	}
	for i := range r.logs {
		l := &r.logs[i]
		if l.SupplementID == supplementID && l.Date == date {
			l.Taken = !l.Taken
			return l.Taken, nil
		}
	}
	r.logs = append(r.logs, domain.SupplementLog{ID: primitive.NewObjectID(), UserID: userID, SupplementID: supplementID, Date: date, Taken: true})
	return true, nil
}

type fakeStorage struct {
	deleted  []string
	signErr  error
	uploaded map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string]string{}}
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.uploaded[key] = contentType
	return "https://bucket.test/put/" + key, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://bucket.test/get/" + key, nil
}

func (s *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	_, ok := s.uploaded[key]
	return ok, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

var errBoom = errors.New("boom")
