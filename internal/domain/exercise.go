// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	PrimaryMuscle string             `bson:"primaryMuscle,omitempty" json:"primaryMuscle,omitempty"` // e.g. "CHEST", "QUADS"
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`           // e.g. "STRENGTH", "CARDIO"
	Difficulty    string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`       // e.g. "BEGINNER"
	Equipment     []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"createdBy"` // User who created it
	IsPublic      bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseFilter narrows exercise library listings. Empty fields match all.
type ExerciseFilter struct {
	PrimaryMuscle string
	Category      string
	Difficulty    string
	Search        string // case-insensitive substring of the name
}
