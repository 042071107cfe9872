package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus type for the workout log lifecycle
type WorkoutStatus string

const (
	WorkoutAssigned   WorkoutStatus = "ASSIGNED"
	WorkoutInProgress WorkoutStatus = "IN_PROGRESS"
	WorkoutCompleted  WorkoutStatus = "COMPLETED"
	WorkoutSkipped    WorkoutStatus = "SKIPPED"
)

// Open reports whether the workout can still be started, completed or skipped.
func (s WorkoutStatus) Open() bool {
	return s == WorkoutAssigned || s == WorkoutInProgress
}

// WorkoutLog is one training session, either assigned by a trainer or
// self-logged by a client. Exercises and sets are embedded so that the whole
// session is written in a single document update.
type WorkoutLog struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID  `bson:"clientId" json:"clientId"`                       // ClientProfile.ID
	AssignedBy  *primitive.ObjectID `bson:"assignedBy,omitempty" json:"assignedBy,omitempty"` // TrainerProfile.ID, nil for self-logged
	Title       string              `bson:"title,omitempty" json:"title,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Status      WorkoutStatus       `bson:"status" json:"status"`
	Date        time.Time           `bson:"date" json:"date"` // Completion / occurrence time
	ScheduledAt *time.Time          `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	DurationMin *int                `bson:"durationMin,omitempty" json:"durationMin,omitempty"`
	Exercises   []WorkoutExercise   `bson:"exercises" json:"exercises"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise is one exercise slot inside a workout log.
type WorkoutExercise struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Sets       []WorkoutSet       `bson:"sets" json:"sets"`
}

// WorkoutSet is a single set. Reps and weight are optional: bodyweight and
// cardio sets leave them unset.
type WorkoutSet struct {
	SetNumber   int      `bson:"setNumber" json:"setNumber"`
	Reps        *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	WeightKg    *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RPE         *float64 `bson:"rpe,omitempty" json:"rpe,omitempty"`
	DurationSec *int     `bson:"durationSec,omitempty" json:"durationSec,omitempty"`
	RestSec     *int     `bson:"restSec,omitempty" json:"restSec,omitempty"`
	IsWarmup    bool     `bson:"isWarmup" json:"isWarmup"`
	IsDropSet   bool     `bson:"isDropSet" json:"isDropSet"`
}

// Sets flattens every set of the workout in exercise order.
func (w *WorkoutLog) Sets() []WorkoutSet {
	var sets []WorkoutSet
	for _, ex := range w.Exercises {
		sets = append(sets, ex.Sets...)
	}
	return sets
}

// WorkoutTransition describes a status change applied by
// WorkoutRepository.Transition. Nil fields are left untouched.
type WorkoutTransition struct {
	To          WorkoutStatus
	Date        *time.Time
	DurationMin *int
	Exercises   []WorkoutExercise // nil keeps the stored exercises
}
