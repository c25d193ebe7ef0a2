package mongo

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// lastPerformanceWindow is how many recent completed workouts are searched for an exercise.
const lastPerformanceWindow = 20

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// SaveCompleted inserts a finished workout. Exercises and sets are embedded
// in the workout document, so the insert either stores all of it or nothing.
func (r *mongoWorkoutRepository) SaveCompleted(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID.IsZero() || workout.StartedAt.IsZero() {
		return primitive.NilObjectID, errors.New("workout requires userId and startedAt")
	}
	if workout.CompletedAt == nil {
		return primitive.NilObjectID, errors.New("workout is not completed")
	}
	if err := workout.ValidateOrdering(); err != nil {
		return primitive.NilObjectID, err
	}
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}
	workout.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByUserBetween returns the user's workouts started in [from, to), oldest first.
func (r *mongoWorkoutRepository) ListByUserBetween(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Workout, error) {
	filter := bson.M{
		"userId":    userID,
		"startedAt": bson.M{"$gte": from, "$lt": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: 1}})
	return r.find(ctx, filter, findOptions)
}

// ListRecent returns the user's latest workouts, newest first.
func (r *mongoWorkoutRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Workout, error) {
	if limit <= 0 {
		limit = 10
	}
	filter := bson.M{"userId": userID}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, findOptions)
}

// LastPerformance returns the sets logged for exerciseID in the most recent of
// the user's last lastPerformanceWindow completed workouts that has sets for it.
func (r *mongoWorkoutRepository) LastPerformance(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.LastPerformance, error) {
	filter := bson.M{
		"userId":      userID,
		"completedAt": bson.M{"$exists": true},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(lastPerformanceWindow)

	workouts, err := r.find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	perf, ok := lastPerformanceIn(workouts, exerciseID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return perf, nil
}

// lastPerformanceIn scans workouts, newest first, for the first one with sets for exerciseID.
func lastPerformanceIn(workouts []domain.Workout, exerciseID primitive.ObjectID) (*domain.LastPerformance, bool) {
	for i := range workouts {
		if perf, ok := lastPerformanceFrom(&workouts[i], exerciseID); ok {
			return perf, true
		}
	}
	return nil, false
}

// lastPerformanceFrom extracts the history entry for exerciseID from workout.
func lastPerformanceFrom(workout *domain.Workout, exerciseID primitive.ObjectID) (*domain.LastPerformance, bool) {
	entry, ok := workout.ExerciseEntry(exerciseID)
	if !ok || len(entry.Sets) == 0 {
		return nil, false
	}
	sets := make([]domain.Set, len(entry.Sets))
	copy(sets, entry.Sets)
	domain.SortSetsByNumber(sets)
	return &domain.LastPerformance{
		WorkoutID: workout.ID,
		Date:      workout.StartedAt,
		Sets:      sets,
	}, true
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]domain.Workout, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// History by day, recent workouts and last performance
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	createIndexes(ctx, collection, indexes)
}
