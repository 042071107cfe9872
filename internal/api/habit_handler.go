package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HabitHandler struct {
	habitService service.HabitService
}

func NewHabitHandler(habitService service.HabitService) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

type LogHabitRequest struct {
	Type  domain.HabitType `json:"type" binding:"required,oneof=WATER SLEEP STEPS PROTEIN CALORIES CUSTOM"`
	Label string           `json:"label" binding:"max=100"`
	Date  string           `json:"date" binding:"required"`
	Value *float64         `json:"value" binding:"required"`
	Unit  string           `json:"unit" binding:"max=20"`
	Notes string           `json:"notes" binding:"max=1000"`
}

// ListHabits GET /habits?startDate&endDate
func (h *HabitHandler) ListHabits(c *gin.Context) {
	from, ok := dateField(c, "startDate", c.Query("startDate"))
	if !ok {
		return
	}
	to, ok := dateField(c, "endDate", c.Query("endDate"))
	if !ok {
		return
	}

	habits, err := h.habitService.List(c.Request.Context(), callerFrom(c).UserID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

// LogHabit godoc
// @Summary Record a daily habit value
// @Description One entry per type and day; logging again replaces the value.
// @Tags Habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LogHabitRequest true "Habit entry"
// @Success 200 {object} domain.Habit
// @Failure 404 {object} gin.H "No client profile"
// @Router /habits [post]
func (h *HabitHandler) LogHabit(c *gin.Context) {
	var req LogHabitRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := dateField(c, "date", req.Date)
	if !ok {
		return
	}

	habit, err := h.habitService.Log(c.Request.Context(), callerFrom(c).UserID, service.HabitInput{
		Type:  req.Type,
		Label: req.Label,
		Date:  date,
		Value: *req.Value,
		Unit:  req.Unit,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}
