package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HabitType string

const (
	HabitWater    HabitType = "WATER"
	HabitSleep    HabitType = "SLEEP"
	HabitSteps    HabitType = "STEPS"
	HabitProtein  HabitType = "PROTEIN"
	HabitCalories HabitType = "CALORIES"
	HabitCustom   HabitType = "CUSTOM"
)

func (t HabitType) Valid() bool {
	switch t {
	case HabitWater, HabitSleep, HabitSteps, HabitProtein, HabitCalories, HabitCustom:
		return true
	}
	return false
}

// Habit is one daily measurement of a client. There is at most one entry per
// (ClientID, Type, Date); Date is midnight UTC of the day it covers.
type Habit struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"` // ClientProfile.ID
	Type      HabitType          `bson:"type" json:"type"`
	Label     string             `bson:"label,omitempty" json:"label,omitempty"`
	Date      time.Time          `bson:"date" json:"date"`
	Value     float64            `bson:"value" json:"value"`
	Unit      string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
