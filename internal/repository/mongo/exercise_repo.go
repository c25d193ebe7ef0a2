package mongo

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// exerciseFilterDoc translates a catalog filter into a query document.
func exerciseFilterDoc(f domain.ExerciseFilter) bson.M {
	filter := bson.M{}
	if f.MuscleGroup != "" {
		filter["muscleGroup"] = f.MuscleGroup
	}
	if f.Equipment != "" {
		filter["equipment"] = f.Equipment
	}
	if f.ViewerID.IsZero() {
		filter["isCustom"] = false
	} else {
		filter["$or"] = bson.A{
			bson.M{"isCustom": false},
			bson.M{"userId": f.ViewerID},
		}
	}
	return filter
}

// paginate trims a result fetched with limit pageSize+1 into a page.
func paginate(results []domain.Exercise, pageSize int) *domain.ExercisePage {
	page := &domain.ExercisePage{Results: results, IsDone: true}
	if len(results) > pageSize {
		page.Results = results[:pageSize]
		page.IsDone = false
		page.ContinueCursor = page.Results[pageSize-1].ID.Hex()
	}
	if page.Results == nil {
		page.Results = []domain.Exercise{}
	}
	return page
}

// ListPage returns one page of the catalog in _id order. The cursor is the
// hex id of the last exercise of the previous page.
func (r *mongoExerciseRepository) ListPage(ctx context.Context, f domain.ExerciseFilter, cursor string, pageSize int) (*domain.ExercisePage, error) {
	if pageSize <= 0 {
		return nil, errors.New("page size must be positive")
	}
	filter := exerciseFilterDoc(f)
	if cursor != "" {
		after, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, repository.ErrInvalidCursor
		}
		filter["_id"] = bson.M{"$gt": after}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(pageSize + 1))

	cursorRes, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursorRes.Close(ctx)

	var exercises []domain.Exercise
	if err = cursorRes.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return paginate(exercises, pageSize), nil
}

// List returns every matching exercise sorted by name. Used by the workout exercise picker.
func (r *mongoExerciseRepository) List(ctx context.Context, f domain.ExerciseFilter) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, exerciseFilterDoc(f), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.Exercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// MuscleGroups returns the distinct muscle groups of the built-in catalog, sorted.
func (r *mongoExerciseRepository) MuscleGroups(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "muscleGroup")
}

// EquipmentList returns the distinct equipment values of the built-in catalog, sorted.
func (r *mongoExerciseRepository) EquipmentList(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "equipment")
}

func (r *mongoExerciseRepository) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.collection.Distinct(ctx, field, bson.M{"isCustom": false})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	return sortedStrings(values), nil
}

func sortedStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err := cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.MuscleGroup == "" || exercise.Equipment == "" {
		return primitive.NilObjectID, errors.New("exercise name, muscle group and equipment are required")
	}
	if exercise.IsCustom && (exercise.UserID == nil || exercise.UserID.IsZero()) {
		return primitive.NilObjectID, errors.New("custom exercise requires an owner")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// SetImageKey records the object key of an uploaded exercise image.
func (r *mongoExerciseRepository) SetImageKey(ctx context.Context, id primitive.ObjectID, key string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"imageKey":  key,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Seed inserts the built-in catalog when it has no entries yet.
func (r *mongoExerciseRepository) Seed(ctx context.Context, exercises []domain.Exercise) (int, error) {
	existing, err := r.collection.CountDocuments(ctx, bson.M{"isCustom": false}, options.Count().SetLimit(1))
	if err != nil {
		return 0, err
	}
	if existing > 0 || len(exercises) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		ex := exercises[i]
		ex.ID = primitive.NewObjectID()
		ex.IsCustom = false
		ex.UserID = nil
		ex.CreatedAt = now
		ex.UpdatedAt = now
		docs[i] = ex
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(result.InsertedIDs), nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Catalog filtering by muscle group, paginated by _id
			Keys:    bson.D{{Key: "muscleGroup", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "equipment", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index(),
		},
		{
			// Custom exercises by owner
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	}
	createIndexes(ctx, collection, indexes)
}
