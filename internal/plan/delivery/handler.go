package delivery

import (
	"errors"
	"net/http"

	"outreach-backend/internal/apperrors"
	"outreach-backend/internal/plan/usecase"

	"github.com/gin-gonic/gin"
)

// PlanHandler handles reviewable-plan HTTP requests
type PlanHandler struct {
	planUsecase usecase.PlanUsecase
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planUsecase usecase.PlanUsecase) *PlanHandler {
	return &PlanHandler{planUsecase: planUsecase}
}

func respondPlanError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrStaleOrUnknownPlan) {
		c.JSON(http.StatusGone, gin.H{"error": err.Error(), "code": "stale_plan"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// GeneratePlan builds a fresh reviewable plan from the actionable leads
// POST /api/plans
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	plan, err := h.planUsecase.GeneratePlan(c.Request.Context(), consultantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlan returns a cached plan
// GET /api/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	plan, err := h.planUsecase.GetPlan(consultantID, c.Param("id"))
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ReviseRequest carries the operator's conversational instruction
type ReviseRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// RevisePlan applies a conversational revision to a cached plan
// POST /api/plans/:id/revise
func (h *PlanHandler) RevisePlan(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req ReviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.planUsecase.RevisePlan(c.Request.Context(), consultantID, c.Param("id"), req.Instruction)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ExecutePlan commits a cached plan through the outreach pipeline
// POST /api/plans/:id/execute
func (h *PlanHandler) ExecutePlan(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	results, err := h.planUsecase.ExecutePlan(c.Request.Context(), consultantID, c.Param("id"))
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
