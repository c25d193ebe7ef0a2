package repository

import (
	"alcyxob/fitsho/internal/domain" // Import our defined domain models
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicate     = RepositoryError("duplicate")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrDeleteFailed  = RepositoryError("delete failed")
	ErrInvalidCursor = RepositoryError("invalid cursor")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateWeightUnit(ctx context.Context, id primitive.ObjectID, unit domain.WeightUnit) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name string, avatarURL *string) error
}

// ExerciseRepository defines the interface for the exercise catalog.
type ExerciseRepository interface {
	// ListPage returns one page ordered by ID, starting after cursor (empty for the first page).
	ListPage(ctx context.Context, filter domain.ExerciseFilter, cursor string, pageSize int) (*domain.ExercisePage, error)
	List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
	MuscleGroups(ctx context.Context) ([]string, error)
	EquipmentList(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByIDs loads the given exercises in one query. Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	SetImageKey(ctx context.Context, id primitive.ObjectID, key string) error
	// Seed inserts the given exercises only when the catalog is empty. Returns how many were inserted.
	Seed(ctx context.Context, exercises []domain.Exercise) (int, error)
}

// WorkoutRepository defines the interface for completed workout records.
type WorkoutRepository interface {
	SaveCompleted(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	ListByUserBetween(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Workout, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Workout, error)
	// LastPerformance looks through the user's most recent completed workouts for exerciseID.
	LastPerformance(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.LastPerformance, error)
}

// SupplementRepository defines the interface for the supplement checklist.
type SupplementRepository interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Supplement, error)
	Add(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Supplement, error)
	Remove(ctx context.Context, userID, supplementID primitive.ObjectID) error
	LogsForDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.SupplementLog, error)
	// ToggleLog flips the taken flag for the day, creating the log as taken if missing.
	ToggleLog(ctx context.Context, userID, supplementID primitive.ObjectID, date string) (bool, error)
}
