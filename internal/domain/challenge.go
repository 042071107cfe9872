package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChallengeType string

const (
	ChallengeWorkoutCount     ChallengeType = "WORKOUT_COUNT"
	ChallengeTotalVolume      ChallengeType = "TOTAL_VOLUME"
	ChallengeStreak           ChallengeType = "STREAK"
	ChallengeHabitConsistency ChallengeType = "HABIT_CONSISTENCY"
	ChallengeCustom           ChallengeType = "CUSTOM"
)

func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeWorkoutCount, ChallengeTotalVolume, ChallengeStreak, ChallengeHabitConsistency, ChallengeCustom:
		return true
	}
	return false
}

type ChallengeStatus string

const (
	ChallengeDraft     ChallengeStatus = "DRAFT"
	ChallengeActive    ChallengeStatus = "ACTIVE"
	ChallengeCompleted ChallengeStatus = "COMPLETED"
	ChallengeCancelled ChallengeStatus = "CANCELLED"
)

func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeDraft, ChallengeActive, ChallengeCompleted, ChallengeCancelled:
		return true
	}
	return false
}

// Challenge is a gym-wide competition users can join.
type Challenge struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        ChallengeType      `bson:"type" json:"type"`
	Status      ChallengeStatus    `bson:"status" json:"status"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`
	Rules       map[string]any     `bson:"rules,omitempty" json:"rules,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChallengeParticipant records that a user joined a challenge. A user joins
// a challenge at most once.
type ChallengeParticipant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChallengeID primitive.ObjectID `bson:"challengeId" json:"challengeId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	JoinedAt    time.Time          `bson:"joinedAt" json:"joinedAt"`
}
