package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeightUnit is the user's preferred unit for displaying weights.
type WeightUnit string

const (
	WeightUnitKg  WeightUnit = "kg"
	WeightUnitLbs WeightUnit = "lbs"
)

// DefaultWeightUnit is assigned to new users.
const DefaultWeightUnit = WeightUnitLbs

// Valid reports whether u is one of the supported units.
func (u WeightUnit) Valid() bool {
	return u == WeightUnitKg || u == WeightUnitLbs
}

// User represents an account known to the identity source.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	AvatarURL    *string            `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	WeightUnit   WeightUnit         `bson:"weightUnit" json:"weightUnit"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Preferences is the user-editable profile settings subset.
type Preferences struct {
	UserID     primitive.ObjectID `json:"userId"`
	WeightUnit WeightUnit         `json:"weightUnit"`
}
