package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MappingType distinguishes a client's main coach from a stand-in.
type MappingType string

const (
	MappingPrimary   MappingType = "PRIMARY"
	MappingTemporary MappingType = "TEMPORARY"
)

func (t MappingType) Valid() bool {
	return t == MappingPrimary || t == MappingTemporary
}

// TrainerClientMapping links a trainer profile to a client profile.
// Mappings are never deleted; ending one sets IsActive=false and EndDate.
// At most one active mapping exists per (TrainerID, ClientID).
type TrainerClientMapping struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"` // TrainerProfile.ID
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`   // ClientProfile.ID
	Type      MappingType        `bson:"type" json:"type"`
	IsPrimary bool               `bson:"isPrimary" json:"isPrimary"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
