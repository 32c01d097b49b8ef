package repository

import (
	"outreach-backend/internal/quota/domain"
)

// Ledger is the daily usage counter. Admit performs an atomic
// check-and-increment against the (consultant, channel, day) counter:
// it increments and returns true only when the stored count is below
// limit. Any storage error denies admission.
type Ledger interface {
	Admit(consultantID, channel, day string, limit int) (bool, error)

	// Remaining returns how many admissions are left for the day,
	// never negative.
	Remaining(consultantID, channel, day string, limit int) (int, error)
}

// ConfigRepository stores per-consultant rate limit configs
type ConfigRepository interface {
	// Get returns the consultant's config, or the built-in defaults
	// when no row has been saved
	Get(consultantID string) (*domain.RateLimitConfig, error)

	Save(config *domain.RateLimitConfig) error
}
