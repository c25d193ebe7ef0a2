package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supplement is a user's daily supplement checklist entry.
type Supplement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// SupplementLog records whether a supplement was taken on a given day.
type SupplementLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	SupplementID primitive.ObjectID `bson:"supplementId" json:"supplementId"`
	Date         string             `bson:"date" json:"date"` // YYYY-MM-DD in the user's calendar
	Taken        bool               `bson:"taken" json:"taken"`
}

// DateLayout is the calendar-day format used for supplement logs and day queries.
const DateLayout = "2006-01-02"
