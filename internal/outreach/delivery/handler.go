package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"outreach-backend/internal/apperrors"
	"outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/usecase"

	"github.com/gin-gonic/gin"
)

// OutreachHandler handles outreach task HTTP requests
type OutreachHandler struct {
	outreachUsecase usecase.OutreachUsecase
}

// NewOutreachHandler creates a new OutreachHandler
func NewOutreachHandler(outreachUsecase usecase.OutreachUsecase) *OutreachHandler {
	return &OutreachHandler{outreachUsecase: outreachUsecase}
}

// respondError maps core errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, apperrors.ErrAdmissionDenied):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "code": "admission_denied"})
	case errors.Is(err, apperrors.ErrNoSlotFound):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "no_slot"})
	case apperrors.IsInvalidStateTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "invalid_state"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreateTaskRequest represents the request body for scheduling outreach
type CreateTaskRequest struct {
	LeadID      string     `json:"lead_id" binding:"required"`
	Channel     string     `json:"channel"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Content     string     `json:"content"`
	Subject     string     `json:"subject"`
}

// CreateTask schedules a single outreach attempt
// POST /api/outreach/tasks
func (h *OutreachHandler) CreateTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.outreachUsecase.AdmitAndSchedule(c.Request.Context(), consultantID, usecase.CreateTaskInput{
		LeadID:      req.LeadID,
		Channel:     domain.Channel(req.Channel),
		ScheduledAt: req.ScheduledAt,
		Content:     req.Content,
		Subject:     req.Subject,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTasks lists outreach tasks
// GET /api/outreach/tasks?status=waiting_approval&limit=20&offset=0
func (h *OutreachHandler) GetTasks(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var statusPtr *domain.TaskStatus
	if status := c.Query("status"); status != "" {
		s := domain.TaskStatus(status)
		statusPtr = &s
	}

	tasks, total, err := h.outreachUsecase.ListTasks(consultantID, statusPtr, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": total,
	})
}

// GetTaskByID returns a specific task
// GET /api/outreach/tasks/:id
func (h *OutreachHandler) GetTaskByID(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	task, err := h.outreachUsecase.GetTask(consultantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetQuota returns the remaining daily admissions per channel
// GET /api/outreach/quota
func (h *OutreachHandler) GetQuota(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	remaining, err := h.outreachUsecase.RemainingQuota(consultantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}

// ApproveTask moves a waiting task into the schedule
// POST /api/outreach/tasks/:id/approve
func (h *OutreachHandler) ApproveTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	task, err := h.outreachUsecase.ApproveTask(c.Request.Context(), consultantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// RejectRequest carries the optional rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectTask cancels a waiting task and releases the lead
// POST /api/outreach/tasks/:id/reject
func (h *OutreachHandler) RejectTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.outreachUsecase.RejectTask(consultantID, c.Param("id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task rejected"})
}

// EditTaskRequest carries replaceable content/contact fields
type EditTaskRequest struct {
	Content     *string `json:"content"`
	Subject     *string `json:"subject"`
	ContactName *string `json:"contact_name"`
}

// EditTask replaces content fields on an open task
// PUT /api/outreach/tasks/:id
func (h *OutreachHandler) EditTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req EditTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.outreachUsecase.EditTask(consultantID, c.Param("id"), req.Content, req.Subject, req.ContactName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// RescheduleRequest carries the new timestamp
type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// RescheduleTask moves an open task to a future time
// POST /api/outreach/tasks/:id/reschedule
func (h *OutreachHandler) RescheduleTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.outreachUsecase.RescheduleTask(consultantID, c.Param("id"), req.ScheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SendNow pulls a task to the front of the schedule
// POST /api/outreach/tasks/:id/send-now
func (h *OutreachHandler) SendNow(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	task, err := h.outreachUsecase.SendNow(consultantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// RetryTask re-enters a failed task into the schedule
// POST /api/outreach/tasks/:id/retry
func (h *OutreachHandler) RetryTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	task, err := h.outreachUsecase.RetryTask(consultantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CancelRequest carries cancellation options
type CancelRequest struct {
	Block  bool   `json:"block"`
	Reason string `json:"reason"`
}

// CancelTask cancels an open task, optionally blocking the lead/channel
// POST /api/outreach/tasks/:id/cancel
func (h *OutreachHandler) CancelTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.outreachUsecase.CancelTask(consultantID, c.Param("id"), req.Block, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task cancelled"})
}

// RestoreTask re-admits a terminal task into the approval queue
// POST /api/outreach/tasks/:id/restore
func (h *OutreachHandler) RestoreTask(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	task, err := h.outreachUsecase.RestoreTask(consultantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// MarkDoneRequest carries the optional result summary
type MarkDoneRequest struct {
	Summary string `json:"summary"`
}

// MarkDone manually completes a task
// POST /api/outreach/tasks/:id/done
func (h *OutreachHandler) MarkDone(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req MarkDoneRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.outreachUsecase.MarkDone(consultantID, c.Param("id"), req.Summary); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task completed"})
}

// OutcomeRequest carries a delivery result reported over HTTP
type OutcomeRequest struct {
	Status  string `json:"status" binding:"required"`
	Summary string `json:"summary"`
}

// ReportOutcome records a delivery result for an in-progress task. Voice
// outcomes normally arrive over Pub/Sub; this is the callback fallback.
// POST /api/outreach/tasks/:id/outcome
func (h *OutreachHandler) ReportOutcome(c *gin.Context) {
	consultantID := c.GetString("consultantID")

	var req OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "completed" && req.Status != "failed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be completed or failed"})
		return
	}

	// HandleOutcome takes no owner, so verify ownership here
	if _, err := h.outreachUsecase.GetTask(consultantID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	if err := h.outreachUsecase.HandleOutcome(c.Param("id"), req.Status == "completed", req.Summary); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Outcome recorded"})
}
