package domain

import "time"

// Activity is one append-only audit record. Rows are never updated or
// deleted.
type Activity struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	ConsultantID string    `json:"consultant_id" gorm:"index;not null"`
	LeadID       string    `json:"lead_id,omitempty" gorm:"index"`
	TaskID       string    `json:"task_id,omitempty" gorm:"index"`
	Kind         string    `json:"kind" gorm:"not null"` // e.g. task_created, task_approved
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Activity) TableName() string { return "activities" }
