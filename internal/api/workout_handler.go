package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves workout logs and their statistics.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

// Exercise IDs inside exercises are hex strings.
type AssignWorkoutRequest struct {
	ClientID    primitive.ObjectID       `json:"clientId" binding:"required"`
	Title       string                   `json:"title" binding:"max=200"`
	Notes       string                   `json:"notes" binding:"max=5000"`
	ScheduledAt *time.Time               `json:"scheduledAt"`
	Exercises   []domain.WorkoutExercise `json:"exercises"`
}

type LogWorkoutRequest struct {
	Title       string                   `json:"title" binding:"max=200"`
	Notes       string                   `json:"notes" binding:"max=5000"`
	Date        *time.Time               `json:"date"`
	DurationMin *int                     `json:"durationMin" binding:"omitempty,min=0"`
	Exercises   []domain.WorkoutExercise `json:"exercises"`
}

type CompleteWorkoutRequest struct {
	DurationMin *int                     `json:"durationMin" binding:"omitempty,min=0"`
	Exercises   []domain.WorkoutExercise `json:"exercises"`
}

// --- Handler Methods ---

// ListWorkouts godoc
// @Summary List workout logs, newest first
// @Description Clients get their own logs; trainers and admins pass clientId.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Client profile ID"
// @Success 200 {object} service.PageResult[domain.WorkoutLog]
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	clientID, ok := queryID(c, "clientId")
	if !ok {
		return
	}
	page, ok := queryPage(c)
	if !ok {
		return
	}

	res, err := h.workoutService.List(c.Request.Context(), callerFrom(c), clientID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetStats godoc
// @Summary Streak, weekly count and total completed workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Client profile ID"
// @Success 200 {object} service.Stats
// @Router /workouts/stats [get]
func (h *WorkoutHandler) GetStats(c *gin.Context) {
	clientID, ok := queryID(c, "clientId")
	if !ok {
		return
	}
	stats, err := h.workoutService.Stats(c.Request.Context(), callerFrom(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetWorkout GET /workouts/:id
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.workoutService.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// AssignWorkout POST /workouts/assign
func (h *WorkoutHandler) AssignWorkout(c *gin.Context) {
	var req AssignWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	workout, err := h.workoutService.Assign(c.Request.Context(), callerFrom(c), service.AssignWorkoutInput{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Notes:       req.Notes,
		ScheduledAt: req.ScheduledAt,
		Exercises:   req.Exercises,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// LogWorkout POST /workouts
func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	var req LogWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	workout, err := h.workoutService.Log(c.Request.Context(), callerFrom(c), service.LogWorkoutInput{
		Title:       req.Title,
		Notes:       req.Notes,
		Date:        req.Date,
		DurationMin: req.DurationMin,
		Exercises:   req.Exercises,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// StartWorkout POST /workouts/:id/start
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	workout, err := h.workoutService.Start(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// CompleteWorkout godoc
// @Summary Complete an assigned or in-progress workout
// @Description Exercises, when given, replace the stored ones in the same write.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param body body CompleteWorkoutRequest false "Recorded duration and sets"
// @Success 200 {object} domain.WorkoutLog
// @Failure 400 {object} gin.H "Already completed or skipped"
// @Failure 403 {object} gin.H "Not the owner"
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CompleteWorkoutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	workout, err := h.workoutService.Complete(c.Request.Context(), callerFrom(c), id, service.CompleteWorkoutInput{
		DurationMin: req.DurationMin,
		Exercises:   req.Exercises,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// SkipWorkout POST /workouts/:id/skip
func (h *WorkoutHandler) SkipWorkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	workout, err := h.workoutService.Skip(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout DELETE /workouts/:id
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.workoutService.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
