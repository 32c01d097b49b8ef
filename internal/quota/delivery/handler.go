package delivery

import (
	"net/http"

	"outreach-backend/internal/quota/domain"
	"outreach-backend/internal/quota/repository"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the per-consultant outreach policy
type SettingsHandler struct {
	configRepo repository.ConfigRepository
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(configRepo repository.ConfigRepository) *SettingsHandler {
	return &SettingsHandler{configRepo: configRepo}
}

// GetSettings returns the rate limit config, defaults included
// GET /api/settings/outreach
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	config, err := h.configRepo.Get(consultantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}

// UpdateSettingsRequest mirrors the mutable config fields
type UpdateSettingsRequest struct {
	Channels                domain.ChannelPolicies `json:"channels"`
	MinScore                *int                   `json:"min_score"`
	CooldownNewDays         *float64               `json:"cooldown_new_days"`
	CooldownContactedDays   *float64               `json:"cooldown_contacted_days"`
	CooldownNegotiationDays *float64               `json:"cooldown_negotiation_days"`
	Mode                    *string                `json:"mode"`
	StrictSlots             *bool                  `json:"strict_slots"`
	Timezone                *string                `json:"timezone"`
}

// UpdateSettings saves policy changes on top of the current config
// PUT /api/settings/outreach
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := h.configRepo.Get(consultantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Channels != nil {
		config.Channels = req.Channels
	}
	if req.MinScore != nil {
		config.MinScore = *req.MinScore
	}
	if req.CooldownNewDays != nil {
		config.CooldownNewDays = *req.CooldownNewDays
	}
	if req.CooldownContactedDays != nil {
		config.CooldownContactedDays = *req.CooldownContactedDays
	}
	if req.CooldownNegotiationDays != nil {
		config.CooldownNegotiationDays = *req.CooldownNegotiationDays
	}
	if req.Mode != nil {
		if *req.Mode != "approval" && *req.Mode != "autonomous" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be approval or autonomous"})
			return
		}
		config.Mode = *req.Mode
	}
	if req.StrictSlots != nil {
		config.StrictSlots = *req.StrictSlots
	}
	if req.Timezone != nil {
		config.Timezone = *req.Timezone
	}

	if err := h.configRepo.Save(config); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}
