package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ChallengeHandler struct {
	challengeService service.ChallengeService
}

func NewChallengeHandler(challengeService service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

type CreateChallengeRequest struct {
	Name        string                 `json:"name" binding:"required,max=200"`
	Description string                 `json:"description" binding:"max=5000"`
	Type        domain.ChallengeType   `json:"type" binding:"required,oneof=WORKOUT_COUNT TOTAL_VOLUME STREAK HABIT_CONSISTENCY CUSTOM"`
	Status      domain.ChallengeStatus `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE COMPLETED CANCELLED"`
	StartDate   string                 `json:"startDate" binding:"required"`
	EndDate     string                 `json:"endDate" binding:"required"`
	Rules       map[string]any         `json:"rules"`
}

// ListChallenges GET /challenges?status
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	challenges, err := h.challengeService.List(c.Request.Context(), domain.ChallengeStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenges)
}

// CreateChallenge POST /challenges
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req CreateChallengeRequest
	if !bindJSON(c, &req) {
		return
	}
	start, ok := dateField(c, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := dateField(c, "endDate", req.EndDate)
	if !ok {
		return
	}

	challenge, err := h.challengeService.Create(c.Request.Context(), service.ChallengeInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		StartDate:   start,
		EndDate:     end,
		Rules:       req.Rules,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// JoinChallenge POST /challenges/:id/join
func (h *ChallengeHandler) JoinChallenge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	participant, err := h.challengeService.Join(c.Request.Context(), callerFrom(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}
