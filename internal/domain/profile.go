package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerProfile holds trainer-specific data. A trainer without a profile
// cannot access any client.
type TrainerProfile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"` // One profile per user
	Bio              string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Specialties      []string           `bson:"specialties,omitempty" json:"specialties,omitempty"`
	Certifications   []string           `bson:"certifications,omitempty" json:"certifications,omitempty"`
	Experience       *int               `bson:"experience,omitempty" json:"experience,omitempty"` // Years
	ProfileCompleted bool               `bson:"profileCompleted" json:"profileCompleted"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ClientProfile holds client-specific data. Workout logs and mappings
// reference the profile ID, not the user ID.
type ClientProfile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	FitnessGoals     []string           `bson:"fitnessGoals,omitempty" json:"fitnessGoals,omitempty"`
	HeightCm         *float64           `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg         *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	ProfileCompleted bool               `bson:"profileCompleted" json:"profileCompleted"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
