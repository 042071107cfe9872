package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest defines the expected JSON for creating or updating an exercise.
type ExerciseRequest struct {
	Name          string   `json:"name" binding:"required,max=200"`
	Description   string   `json:"description" binding:"max=5000"`
	PrimaryMuscle string   `json:"primaryMuscle" binding:"required"` // e.g. "CHEST"
	Category      string   `json:"category" binding:"required"`      // e.g. "STRENGTH"
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED beginner intermediate advanced"`
	Equipment     []string `json:"equipment"`
	IsPublic      *bool    `json:"isPublic"`
}

func (r ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:          r.Name,
		Description:   r.Description,
		PrimaryMuscle: r.PrimaryMuscle,
		Category:      r.Category,
		Difficulty:    r.Difficulty,
		Equipment:     r.Equipment,
		IsPublic:      r.IsPublic,
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), callerFrom(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary Browse the exercise library
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param muscle query string false "Primary muscle"
// @Param category query string false "Category"
// @Param difficulty query string false "Difficulty"
// @Param search query string false "Name contains"
// @Success 200 {object} service.PageResult[domain.Exercise]
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	page, ok := queryPage(c)
	if !ok {
		return
	}
	filter := domain.ExerciseFilter{
		PrimaryMuscle: c.Query("muscle"),
		Category:      c.Query("category"),
		Difficulty:    c.Query("difficulty"),
		Search:        c.Query("search"),
	}

	res, err := h.exerciseService.ListExercises(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetExercise GET /exercises/:id
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise PUT /exercises/:id
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), callerFrom(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise DELETE /exercises/:id
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
