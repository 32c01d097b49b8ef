package domain

import "time"

// DeviceToken is a registered FCM push target for a consultant
type DeviceToken struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	ConsultantID string    `json:"consultant_id" gorm:"index;not null"`
	Token        string    `json:"token" gorm:"uniqueIndex;not null"`
	DeviceInfo   string    `json:"device_info,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (DeviceToken) TableName() string { return "device_tokens" }
