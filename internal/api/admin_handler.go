package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler serves user and mapping management.
type AdminHandler struct {
	authService  service.AuthService
	adminService service.AdminService
}

func NewAdminHandler(authService service.AuthService, adminService service.AdminService) *AdminHandler {
	return &AdminHandler{authService: authService, adminService: adminService}
}

type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=admin trainer client"`
}

type UpdateUserStatusRequest struct {
	Status domain.UserStatus `json:"status" binding:"required"`
}

type AssignClientRequest struct {
	TrainerID string             `json:"trainerId" binding:"required"`
	ClientID  string             `json:"clientId" binding:"required"`
	Type      domain.MappingType `json:"type" binding:"omitempty,oneof=PRIMARY TEMPORARY"`
	Reason    string             `json:"reason"`
}

type RemoveMappingRequest struct {
	Reason string `json:"reason"`
}

// CreateUser POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// ListUsers GET /admin/users?role&page&limit
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, ok := queryPage(c)
	if !ok {
		return
	}
	res, err := h.adminService.ListUsers(c.Request.Context(), domain.Role(c.Query("role")), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetUser GET /admin/users/:userId
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	detail, err := h.adminService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateUserStatus PATCH /admin/users/:userId/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), callerFrom(c).UserID, userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ListTrainers GET /admin/trainers
func (h *AdminHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.adminService.ListTrainers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainers": trainers})
}

// ListMappings GET /admin/mappings?activeOnly&page&limit
func (h *AdminHandler) ListMappings(c *gin.Context) {
	page, ok := queryPage(c)
	if !ok {
		return
	}
	activeOnly := false
	if raw := c.Query("activeOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid activeOnly")
			return
		}
		activeOnly = v
	}

	res, err := h.adminService.ListMappings(c.Request.Context(), activeOnly, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AssignClient POST /admin/mappings
func (h *AdminHandler) AssignClient(c *gin.Context) {
	var req AssignClientRequest
	if !bindJSON(c, &req) {
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId format")
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format")
		return
	}

	mapping, err := h.adminService.AssignClient(c.Request.Context(), service.AssignInput{
		TrainerID: trainerID,
		ClientID:  clientID,
		Type:      req.Type,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

// RemoveMapping DELETE /admin/mappings/:mappingId
func (h *AdminHandler) RemoveMapping(c *gin.Context) {
	mappingID, ok := pathID(c, "mappingId")
	if !ok {
		return
	}
	// The body is optional on DELETE
	var req RemoveMappingRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	mapping, err := h.adminService.RemoveMapping(c.Request.Context(), mappingID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapping)
}
