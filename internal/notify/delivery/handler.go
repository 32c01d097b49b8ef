package delivery

import (
	"net/http"

	"outreach-backend/internal/notify/repository"

	"github.com/gin-gonic/gin"
)

// NotifyHandler handles push token registration
type NotifyHandler struct {
	tokenRepo repository.DeviceTokenRepository
}

// NewNotifyHandler creates a new NotifyHandler
func NewNotifyHandler(tokenRepo repository.DeviceTokenRepository) *NotifyHandler {
	return &NotifyHandler{tokenRepo: tokenRepo}
}

// RegisterTokenRequest represents the device registration body
type RegisterTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

// RegisterToken saves an FCM device token for the consultant
// POST /api/notifications/tokens
func (h *NotifyHandler) RegisterToken(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokenRepo.SaveToken(consultantID, req.Token, req.DeviceInfo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token registered"})
}

// UnregisterToken removes a device token
// DELETE /api/notifications/tokens/:token
func (h *NotifyHandler) UnregisterToken(c *gin.Context) {
	if err := h.tokenRepo.DeleteToken(c.Param("token")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token removed"})
}
