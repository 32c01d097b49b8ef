package repository

import (
	"time"

	"outreach-backend/internal/quota/domain"

	"gorm.io/gorm"
)

// gormLedger implements Ledger on Postgres. Admission is a single
// conditional upsert so concurrent callers can never push the counter
// past the limit.
type gormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a new GORM-based Ledger
func NewGormLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) Admit(consultantID, channel, day string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	// The WHERE on the conflict arm makes the update a no-op at the
	// limit, so a row comes back only when the caller was admitted.
	var count int
	err := l.db.Raw(`
		INSERT INTO usage_counters (consultant_id, channel, day, count, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (consultant_id, channel, day)
		DO UPDATE SET count = usage_counters.count + 1, updated_at = EXCLUDED.updated_at
		WHERE usage_counters.count < ?
		RETURNING count`,
		consultantID, channel, day, time.Now(), limit).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l *gormLedger) Remaining(consultantID, channel, day string, limit int) (int, error) {
	var counter domain.UsageCounter
	err := l.db.Where("consultant_id = ? AND channel = ? AND day = ?",
		consultantID, channel, day).First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return limit, nil
		}
		return 0, err
	}
	remaining := limit - counter.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// gormConfigRepository implements ConfigRepository using GORM
type gormConfigRepository struct {
	db *gorm.DB
}

// NewGormConfigRepository creates a new GORM-based ConfigRepository
func NewGormConfigRepository(db *gorm.DB) ConfigRepository {
	return &gormConfigRepository{db: db}
}

func (r *gormConfigRepository) Get(consultantID string) (*domain.RateLimitConfig, error) {
	var config domain.RateLimitConfig
	err := r.db.Where("consultant_id = ?", consultantID).First(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.DefaultConfig(consultantID), nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *gormConfigRepository) Save(config *domain.RateLimitConfig) error {
	config.UpdatedAt = time.Now()
	return r.db.Save(config).Error
}
