package api

import (
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs for the trainer profile ---
type TrainerProfileRequest struct {
	Bio            string   `json:"bio" binding:"max=2000"`
	Specialties    []string `json:"specialties"`
	Certifications []string `json:"certifications"`
	Experience     *int     `json:"experience" binding:"omitempty,min=0,max=50"`
}

// --- Handler Methods ---

// GetProfile godoc
// @Summary Get the authenticated trainer's profile
// @Description Creates an empty profile on first access.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.TrainerProfile
// @Router /trainer/profile [get]
func (h *TrainerHandler) GetProfile(c *gin.Context) {
	profile, err := h.trainerService.GetProfile(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile PUT /trainer/profile
func (h *TrainerHandler) UpdateProfile(c *gin.Context) {
	var req TrainerProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.trainerService.UpdateProfile(c.Request.Context(), callerFrom(c).UserID, service.TrainerProfileInput{
		Bio:            req.Bio,
		Specialties:    req.Specialties,
		Certifications: req.Certifications,
		Experience:     req.Experience,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetManagedClients godoc
// @Summary List the trainer's active clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ClientSummary
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	clients, err := h.trainerService.ListClients(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// GetClient godoc
// @Summary Get one client's profile, stats and recent workouts
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client profile ID"
// @Success 200 {object} service.ClientDetail
// @Failure 403 {object} gin.H "Client not assigned to you"
// @Failure 404 {object} gin.H "Client not found"
// @Router /trainer/clients/{clientId} [get]
func (h *TrainerHandler) GetClient(c *gin.Context) {
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}
	detail, err := h.trainerService.GetClientDetail(c.Request.Context(), callerFrom(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
