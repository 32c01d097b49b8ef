package domain

import "time"

// Channel is an outreach delivery channel
type Channel string

const (
	ChannelVoice    Channel = "voice"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// Channels lists every delivery channel.
var Channels = []Channel{ChannelVoice, ChannelWhatsApp, ChannelEmail}

// Valid reports whether c names a known channel.
func (c Channel) Valid() bool {
	return c == ChannelVoice || c == ChannelWhatsApp || c == ChannelEmail
}

// TaskStatus represents the current state of an outreach task
type TaskStatus string

const (
	TaskStatusDraft           TaskStatus = "draft"
	TaskStatusScheduled       TaskStatus = "scheduled"
	TaskStatusWaitingApproval TaskStatus = "waiting_approval"
	TaskStatusApproved        TaskStatus = "approved"
	TaskStatusPaused          TaskStatus = "paused"
	TaskStatusInProgress      TaskStatus = "in_progress"
	TaskStatusRetryPending    TaskStatus = "retry_pending"
	TaskStatusCompleted       TaskStatus = "completed"
	TaskStatusFailed          TaskStatus = "failed"
	TaskStatusCancelled       TaskStatus = "cancelled"
)

// IsTerminal reports whether the status ends the task's lifecycle.
// Terminal tasks can only re-enter via the restore operation.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// IsActive reports whether a task in this status "owns" its lead for the
// one-active-task-per-lead invariant.
func (s TaskStatus) IsActive() bool {
	switch s {
	case TaskStatusScheduled, TaskStatusWaitingApproval, TaskStatusApproved,
		TaskStatusInProgress, TaskStatusRetryPending, TaskStatusPaused, TaskStatusDraft:
		return true
	}
	return false
}

// Per-operation eligible status sets. Every lifecycle mutation is guarded
// by membership here; anything else is an InvalidStateTransition.
var (
	approvableStatuses   = statusSet(TaskStatusWaitingApproval)
	rejectableStatuses   = statusSet(TaskStatusWaitingApproval)
	editableStatuses     = statusSet(TaskStatusScheduled, TaskStatusWaitingApproval, TaskStatusPaused, TaskStatusApproved)
	reschedulable        = statusSet(TaskStatusScheduled, TaskStatusDraft, TaskStatusWaitingApproval, TaskStatusPaused, TaskStatusApproved)
	cancellableStatuses  = statusSet(TaskStatusScheduled, TaskStatusDraft, TaskStatusWaitingApproval, TaskStatusPaused, TaskStatusInProgress, TaskStatusRetryPending, TaskStatusApproved)
	retryableStatuses    = statusSet(TaskStatusFailed)
	restorableStatuses   = statusSet(TaskStatusCancelled, TaskStatusFailed, TaskStatusCompleted)
	dispatchableStatuses = statusSet(TaskStatusScheduled, TaskStatusApproved, TaskStatusRetryPending)
)

func statusSet(statuses ...TaskStatus) map[TaskStatus]bool {
	m := make(map[TaskStatus]bool, len(statuses))
	for _, s := range statuses {
		m[s] = true
	}
	return m
}

// CanApprove reports whether the task may pass the approve transition.
func (s TaskStatus) CanApprove() bool { return approvableStatuses[s] }

// CanReject reports whether the task may pass the reject transition.
func (s TaskStatus) CanReject() bool { return rejectableStatuses[s] }

// CanEdit reports whether content/contact fields may be replaced.
func (s TaskStatus) CanEdit() bool { return editableStatuses[s] }

// CanReschedule reports whether scheduledAt may be moved.
func (s TaskStatus) CanReschedule() bool { return reschedulable[s] }

// CanCancel reports whether the task may be cancelled.
func (s TaskStatus) CanCancel() bool { return cancellableStatuses[s] }

// CanRetry reports whether the task may re-enter scheduling after failure.
func (s TaskStatus) CanRetry() bool { return retryableStatuses[s] }

// CanRestore reports whether a terminal task may re-enter the approval queue.
func (s TaskStatus) CanRestore() bool { return restorableStatuses[s] }

// CanDispatch reports whether the scheduler may start execution.
func (s TaskStatus) CanDispatch() bool { return dispatchableStatuses[s] }

// CanSendNow reports whether the task may be forced to the front of the
// schedule. Any non-terminal task qualifies.
func (s TaskStatus) CanSendNow() bool { return !s.IsTerminal() }

// CanMarkDone reports whether the manual completion override applies.
func (s TaskStatus) CanMarkDone() bool { return !s.IsTerminal() }

// OutreachTask is a single scheduled contact attempt against a lead on
// one channel. Tasks are never physically deleted by this subsystem.
type OutreachTask struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ConsultantID string     `json:"consultant_id" gorm:"index;not null"`
	LeadID       string     `json:"lead_id" gorm:"index;not null"`
	Channel      Channel    `json:"channel" gorm:"not null;index"`
	Status       TaskStatus `json:"status" gorm:"default:scheduled;index"`
	ScheduledAt  time.Time  `json:"scheduled_at" gorm:"index"`
	Timezone     string     `json:"timezone" gorm:"default:UTC"`

	// Contact snapshot, editable while the task is still open
	ContactName string `json:"contact_name,omitempty"`
	TargetPhone string `json:"target_phone,omitempty"`
	TargetEmail string `json:"target_email,omitempty"`

	// Opaque generated content; the core never inspects its structure
	ContentPreview string `json:"content_preview,omitempty"`
	Subject        string `json:"subject,omitempty"`

	Attempts      int        `json:"attempts" gorm:"default:0"`
	MaxAttempts   int        `json:"max_attempts" gorm:"default:3"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	ResultSummary *string    `json:"result_summary,omitempty"`
	DeliveryID    string     `json:"delivery_id,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OutreachTask) TableName() string { return "outreach_tasks" }

// VoiceCall is the telephony sub-resource created when a voice task is
// scheduled or dispatched. The slot finder checks conflicts against both
// this table and outreach_tasks.
type VoiceCall struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ConsultantID string     `json:"consultant_id" gorm:"index;not null"`
	TaskID       string     `json:"task_id" gorm:"index"`
	TargetPhone  string     `json:"target_phone" gorm:"not null"`
	ScheduledAt  time.Time  `json:"scheduled_at" gorm:"index"`
	Status       TaskStatus `json:"status" gorm:"default:scheduled"`
	Instruction  string     `json:"instruction,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (VoiceCall) TableName() string { return "voice_calls" }

// OutreachBlock is a permanent per-lead/per-channel exclusion registered
// on cancel. Planning and classification skip blocked combinations.
type OutreachBlock struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	ConsultantID string    `json:"consultant_id" gorm:"index;not null"`
	LeadID       string    `json:"lead_id" gorm:"index;not null"`
	Channel      Channel   `json:"channel"` // empty blocks the lead on every channel
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (OutreachBlock) TableName() string { return "outreach_blocks" }
