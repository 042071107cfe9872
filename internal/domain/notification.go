package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTrainerAssigned  NotificationType = "TRAINER_ASSIGNED"
	NotificationWorkoutAssigned  NotificationType = "WORKOUT_ASSIGNED"
	NotificationWorkoutCompleted NotificationType = "WORKOUT_COMPLETED"
	NotificationStreakMilestone  NotificationType = "STREAK_MILESTONE"
)

// Notification is an in-app message addressed to a user.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      NotificationType   `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Data      map[string]any     `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	ReadAt    *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
