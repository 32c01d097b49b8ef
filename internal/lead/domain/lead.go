package domain

import "time"

// LeadStatus represents where a lead sits in the outreach funnel
type LeadStatus string

const (
	LeadStatusNew           LeadStatus = "new"
	LeadStatusContacted     LeadStatus = "contacted"
	LeadStatusInNegotiation LeadStatus = "in_negotiation"
	LeadStatusInOutreach    LeadStatus = "in_outreach"
	LeadStatusNotInterested LeadStatus = "not_interested"
	LeadStatusConverted     LeadStatus = "converted"
)

// IsTerminal reports whether the status is a permanent sink: such leads
// are never actionable again under any configuration.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusNotInterested || s == LeadStatusConverted
}

// Lead represents a prospective contact. Leads are created externally by
// lead discovery; this subsystem mutates status and ActiveTaskID only
// through the task lifecycle manager, and never deletes them.
type Lead struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ConsultantID string     `json:"consultant_id" gorm:"index;not null"`
	BusinessName string     `json:"business_name" gorm:"not null"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Score        int        `json:"score" gorm:"default:0"` // AI compatibility score, 0-100
	Status       LeadStatus `json:"status" gorm:"default:new;index"`
	// ActiveTaskID points to the single non-terminal outreach task owning
	// this lead, if any. At most one such task may exist at a time.
	ActiveTaskID   *string    `json:"active_task_id,omitempty" gorm:"index"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

// HasPhone reports phone reachability.
func (l *Lead) HasPhone() bool { return l.Phone != "" }

// HasEmail reports email reachability.
func (l *Lead) HasEmail() bool { return l.Email != "" }

// DaysSinceCreated computes the lead's age in fractional days at now.
func (l *Lead) DaysSinceCreated(now time.Time) float64 {
	return now.Sub(l.CreatedAt).Hours() / 24
}

// DaysSinceLastActivity computes fractional days since the last recorded
// activity, falling back to CreatedAt when none is recorded.
func (l *Lead) DaysSinceLastActivity(now time.Time) float64 {
	ref := l.CreatedAt
	if l.LastActivityAt != nil {
		ref = *l.LastActivityAt
	}
	return now.Sub(ref).Hours() / 24
}
