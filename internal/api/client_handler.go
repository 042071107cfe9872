package api

import (
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

type ClientProfileRequest struct {
	FitnessGoals []string `json:"fitnessGoals"`
	HeightCm     *float64 `json:"heightCm" binding:"omitempty,gte=50,lte=300"`
	WeightKg     *float64 `json:"weightKg" binding:"omitempty,gte=20,lte=500"`
}

// GetProfile GET /client/profile
func (h *ClientHandler) GetProfile(c *gin.Context) {
	profile, err := h.clientService.GetProfile(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile PUT /client/profile
func (h *ClientHandler) UpdateProfile(c *gin.Context) {
	var req ClientProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.clientService.UpdateProfile(c.Request.Context(), callerFrom(c).UserID, service.ClientProfileInput{
		FitnessGoals: req.FitnessGoals,
		HeightCm:     req.HeightCm,
		WeightKg:     req.WeightKg,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetMyTrainer godoc
// @Summary Get the client's primary trainer
// @Description Returns {"trainer": null} when no primary trainer is assigned.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AssignedTrainer
// @Router /client/trainer [get]
func (h *ClientHandler) GetMyTrainer(c *gin.Context) {
	trainer, err := h.clientService.GetTrainer(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainer": trainer})
}
