package delivery

import (
	"net/http"
	"strconv"

	"outreach-backend/internal/lead/domain"
	"outreach-backend/internal/lead/usecase"

	"github.com/gin-gonic/gin"
)

// LeadHandler handles lead-related HTTP requests
type LeadHandler struct {
	leadUsecase usecase.LeadUsecase
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadUsecase usecase.LeadUsecase) *LeadHandler {
	return &LeadHandler{leadUsecase: leadUsecase}
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Score        int    `json:"score"`
	Notes        string `json:"notes"`
}

// GetLeads returns leads for the authenticated consultant
// GET /api/leads?status=new&limit=20&offset=0
func (h *LeadHandler) GetLeads(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var statusPtr *domain.LeadStatus
	if status := c.Query("status"); status != "" {
		s := domain.LeadStatus(status)
		statusPtr = &s
	}

	leads, total, err := h.leadUsecase.ListLeads(consultantID, statusPtr, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"total": total,
	})
}

// GetLeadByID returns a specific lead
// GET /api/leads/:id
func (h *LeadHandler) GetLeadByID(c *gin.Context) {
	consultantID := c.GetString("consultantID")
	leadID := c.Param("id")

	lead, err := h.leadUsecase.GetLead(consultantID, leadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// CreateLead registers a new lead
// POST /api/leads
func (h *LeadHandler) CreateLead(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead := &domain.Lead{
		ConsultantID: consultantID,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
		Email:        req.Email,
		Score:        req.Score,
		Notes:        req.Notes,
	}
	if err := h.leadUsecase.CreateLead(lead); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// GetActionable runs the cooldown classifier and returns the actionable
// set with the skip histogram
// GET /api/leads/actionable
func (h *LeadHandler) GetActionable(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	result, err := h.leadUsecase.ListActionable(consultantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
