package service

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrInvalidDate     = errors.New("invalid date")
)

// MonthLayout is the format of calendar month queries.
const MonthLayout = "2006-01"

const defaultRecentLimit = 10

// WorkoutExerciseView is a workout entry joined with its catalog exercise.
type WorkoutExerciseView struct {
	domain.WorkoutExercise
	Exercise *domain.Exercise // nil when the catalog entry no longer exists
}

// WorkoutView is a workout whose entries carry their exercise details, sorted by order.
type WorkoutView struct {
	domain.Workout
	Entries []WorkoutExerciseView
}

// WorkoutService reads and records completed workouts.
// It also serves as the durable sink of the workout draft manager.
type WorkoutService interface {
	SaveCompletedWorkout(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*WorkoutView, error)
	WorkoutsOnDate(ctx context.Context, userID primitive.ObjectID, date string, loc *time.Location) ([]WorkoutView, error)
	WorkoutDays(ctx context.Context, userID primitive.ObjectID, month string, loc *time.Location) ([]string, error)
	RecentWorkouts(ctx context.Context, userID primitive.ObjectID, limit int) ([]WorkoutView, error)
	LastPerformance(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.LastPerformance, error)
}

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, exerciseRepo repository.ExerciseRepository) WorkoutService {
	return &workoutService{workoutRepo: workoutRepo, exerciseRepo: exerciseRepo}
}

// SaveCompletedWorkout stores a finished workout in a single write.
func (s *workoutService) SaveCompletedWorkout(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout == nil || workout.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout with a user ID is required")
	}
	return s.workoutRepo.SaveCompleted(ctx, workout)
}

// GetWorkout returns one of the user's workouts. Workouts of other users read as not found.
func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*WorkoutView, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	views, err := s.views(ctx, []domain.Workout{*workout})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// WorkoutsOnDate returns the workouts started on the calendar day date (YYYY-MM-DD) in loc.
func (s *workoutService) WorkoutsOnDate(ctx context.Context, userID primitive.ObjectID, date string, loc *time.Location) ([]WorkoutView, error) {
	from, to, err := dayBounds(date, loc)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, workouts)
}

// WorkoutDays returns the sorted calendar days of month (YYYY-MM) with at least one workout.
func (s *workoutService) WorkoutDays(ctx context.Context, userID primitive.ObjectID, month string, loc *time.Location) ([]string, error) {
	from, to, err := monthBounds(month, loc)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return distinctDays(workouts, loc), nil
}

func (s *workoutService) RecentWorkouts(ctx context.Context, userID primitive.ObjectID, limit int) ([]WorkoutView, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = defaultRecentLimit
	}
	workouts, err := s.workoutRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, workouts)
}

// LastPerformance returns the sets logged for the exercise in the user's most
// recent completed workout, or nil when the user has never logged it.
func (s *workoutService) LastPerformance(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.LastPerformance, error) {
	perf, err := s.workoutRepo.LastPerformance(ctx, userID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return perf, nil
}

// views joins the exercises referenced by workouts with a single catalog query.
func (s *workoutService) views(ctx context.Context, workouts []domain.Workout) ([]WorkoutView, error) {
	var ids []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	for _, w := range workouts {
		for _, e := range w.Exercises {
			if !seen[e.ExerciseID] {
				seen[e.ExerciseID] = true
				ids = append(ids, e.ExerciseID)
			}
		}
	}

	byID := make(map[primitive.ObjectID]*domain.Exercise, len(ids))
	if len(ids) > 0 {
		exercises, err := s.exerciseRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("loading workout exercises: %w", err)
		}
		for i := range exercises {
			byID[exercises[i].ID] = &exercises[i]
		}
	}

	views := make([]WorkoutView, len(workouts))
	for i, w := range workouts {
		entries := make([]WorkoutExerciseView, len(w.Exercises))
		for j, e := range w.Exercises {
			entries[j] = WorkoutExerciseView{WorkoutExercise: e, Exercise: byID[e.ExerciseID]}
		}
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].Order < entries[b].Order })
		views[i] = WorkoutView{Workout: w, Entries: entries}
	}
	return views, nil
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func dayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, locationOrUTC(loc))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, day.AddDate(0, 0, 1), nil
}

func monthBounds(month string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(MonthLayout, month, locationOrUTC(loc))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, month)
	}
	return start, start.AddDate(0, 1, 0), nil
}

func distinctDays(workouts []domain.Workout, loc *time.Location) []string {
	loc = locationOrUTC(loc)
	seen := make(map[string]struct{}, len(workouts))
	days := make([]string, 0, len(workouts))
	for _, w := range workouts {
		day := w.StartedAt.In(loc).Format(domain.DateLayout)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
