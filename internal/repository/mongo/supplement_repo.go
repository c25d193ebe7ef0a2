package mongo

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	supplementCollectionName    = "supplements"
	supplementLogCollectionName = "supplementLogs"
)

type mongoSupplementRepository struct {
	supplements *mongo.Collection
	logs        *mongo.Collection
}

// NewMongoSupplementRepository creates a new Supplement repository.
func NewMongoSupplementRepository(db *mongo.Database) repository.SupplementRepository {
	return &mongoSupplementRepository{
		supplements: db.Collection(supplementCollectionName),
		logs:        db.Collection(supplementLogCollectionName),
	}
}

// List returns the user's supplements in checklist order.
func (r *mongoSupplementRepository) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Supplement, error) {
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.supplements.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var supplements []domain.Supplement
	if err = cursor.All(ctx, &supplements); err != nil {
		return nil, err
	}
	if supplements == nil {
		supplements = []domain.Supplement{}
	}
	return supplements, nil
}

// Add appends a supplement to the end of the user's checklist.
func (r *mongoSupplementRepository) Add(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Supplement, error) {
	name = strings.TrimSpace(name)
	if userID.IsZero() || name == "" {
		return nil, errors.New("supplement requires userId and name")
	}

	count, err := r.supplements.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}

	supplement := &domain.Supplement{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		Order:     int(count),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.supplements.InsertOne(ctx, supplement); err != nil {
		return nil, err
	}
	return supplement, nil
}

// Remove deletes a supplement owned by userID together with its logs.
func (r *mongoSupplementRepository) Remove(ctx context.Context, userID, supplementID primitive.ObjectID) error {
	result, err := r.supplements.DeleteOne(ctx, bson.M{"_id": supplementID, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	if _, err := r.logs.DeleteMany(ctx, bson.M{"supplementId": supplementID}); err != nil {
		// Orphaned logs are never read back, so the removal still stands.
		log.Printf("WARN: Failed to delete logs of supplement %s: %v", supplementID.Hex(), err)
	}
	return nil
}

// LogsForDate returns the user's supplement logs for one calendar day.
func (r *mongoSupplementRepository) LogsForDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.SupplementLog, error) {
	cursor, err := r.logs.Find(ctx, bson.M{"userId": userID, "date": date})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.SupplementLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.SupplementLog{}
	}
	return logs, nil
}

// ToggleLog flips the taken flag in a single upsert. A missing log is created as taken.
func (r *mongoSupplementRepository) ToggleLog(ctx context.Context, userID, supplementID primitive.ObjectID, date string) (bool, error) {
	err := r.supplements.FindOne(ctx, bson.M{"_id": supplementID, "userId": userID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, repository.ErrNotFound
		}
		return false, err
	}

	filter := bson.M{"userId": userID, "supplementId": supplementID, "date": date}
	// $not of a missing field is true, so the upserted log starts out taken.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "taken", Value: bson.D{{Key: "$not", Value: bson.A{"$taken"}}}}}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var entry domain.SupplementLog
	if err := r.logs.FindOneAndUpdate(ctx, filter, update, opts).Decode(&entry); err != nil {
		return false, err
	}
	return entry.Taken, nil
}

// EnsureSupplementIndexes creates indexes for supplements and their logs.
func EnsureSupplementIndexes(ctx context.Context, supplements, logs *mongo.Collection) {
	createIndexes(ctx, supplements, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	})
	createIndexes(ctx, logs, []mongo.IndexModel{
		{
			// One log per supplement per day; required by the toggle upsert.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "supplementId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "supplementId", Value: 1}},
			Options: options.Index(),
		},
	})
}
