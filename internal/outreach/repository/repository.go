package repository

import (
	"time"

	"outreach-backend/internal/outreach/domain"
)

// TaskRepository defines the interface for outreach task data access
type TaskRepository interface {
	Create(task *domain.OutreachTask) error

	// FindByID finds a task by ID, nil when absent
	FindByID(id string) (*domain.OutreachTask, error)

	// FindByConsultant lists tasks, optionally filtered by status
	FindByConsultant(consultantID string, status *domain.TaskStatus, limit, offset int) ([]*domain.OutreachTask, int64, error)

	// FindActiveByLead returns the lead's tasks in a non-terminal status
	FindActiveByLead(leadID string) ([]*domain.OutreachTask, error)

	Update(task *domain.OutreachTask) error

	// FindDue returns tasks whose dispatch time has arrived: scheduled
	// or approved with scheduled_at <= now, or retry_pending with
	// next_retry_at <= now
	FindDue(now time.Time, limit int) ([]*domain.OutreachTask, error)

	// CountScheduledBetween counts scheduled items on the channel inside
	// [from, to] for the consultant, across both the task table and the
	// voice_calls sub-resource
	CountScheduledBetween(consultantID string, channel domain.Channel, from, to time.Time) (int64, error)
}

// VoiceCallRepository manages the telephony sub-resource
type VoiceCallRepository interface {
	Create(call *domain.VoiceCall) error
	FindByTask(taskID string) (*domain.VoiceCall, error)
	Update(call *domain.VoiceCall) error
}

// BlockRepository manages permanent per-lead/per-channel exclusions
type BlockRepository interface {
	Create(block *domain.OutreachBlock) error

	// IsBlocked reports whether the (lead, channel) combination is
	// excluded, either channel-specific or lead-wide
	IsBlocked(consultantID, leadID string, channel domain.Channel) (bool, error)

	// BlockedLeadIDs returns every lead id carrying a lead-wide block
	BlockedLeadIDs(consultantID string) (map[string]bool, error)
}
