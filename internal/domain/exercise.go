// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the catalog.
// Optional fields are pointers so "not set" survives a round trip through the database.
type Exercise struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name             string              `bson:"name" json:"name"`
	MuscleGroup      string              `bson:"muscleGroup" json:"muscleGroup"` // e.g. "chest", "legs"
	Equipment        string              `bson:"equipment" json:"equipment"`     // e.g. "barbell", "cable"
	SecondaryMuscles *[]string           `bson:"secondaryMuscles,omitempty" json:"secondaryMuscles,omitempty"`
	Instructions     *[]string           `bson:"instructions,omitempty" json:"instructions,omitempty"`
	ImageKey         *string             `bson:"imageKey,omitempty" json:"-"` // Object key in the media bucket, presigned on read
	IsCustom         bool                `bson:"isCustom" json:"isCustom"`
	UserID           *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"` // Owner of a custom exercise
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HasInstructions treats a missing list and an empty list the same way.
func (e *Exercise) HasInstructions() bool {
	return e.Instructions != nil && len(*e.Instructions) > 0
}

// HasSecondaryMuscles treats a missing list and an empty list the same way.
func (e *Exercise) HasSecondaryMuscles() bool {
	return e.SecondaryMuscles != nil && len(*e.SecondaryMuscles) > 0
}

// ExerciseFilter narrows catalog reads. Empty fields match everything.
// Custom exercises are only visible to the user who created them.
type ExerciseFilter struct {
	MuscleGroup string
	Equipment   string
	ViewerID    primitive.ObjectID
}

// PageStatus mirrors the states a paginated catalog view moves through.
// The server only ever reports CanLoadMore or Exhausted; the loading
// states belong to whoever is driving the pagination.
type PageStatus string

const (
	PageLoadingFirstPage PageStatus = "LoadingFirstPage"
	PageCanLoadMore      PageStatus = "CanLoadMore"
	PageLoadingMore      PageStatus = "LoadingMore"
	PageExhausted        PageStatus = "Exhausted"
)

// ExercisePage is one page of a cursor-paginated catalog read.
type ExercisePage struct {
	Results        []Exercise
	ContinueCursor string // Empty when IsDone
	IsDone         bool
}

// Status reports the page's pagination state.
func (p ExercisePage) Status() PageStatus {
	if p.IsDone {
		return PageExhausted
	}
	return PageCanLoadMore
}
