package repository

import (
	"time"

	"outreach-backend/internal/activity/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository records and lists audit entries
type ActivityRepository interface {
	Append(activity *domain.Activity) error
	FindByConsultant(consultantID string, limit, offset int) ([]*domain.Activity, error)
	FindByLead(leadID string, limit int) ([]*domain.Activity, error)
}

type gormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GORM-based ActivityRepository
func NewGormActivityRepository(db *gorm.DB) ActivityRepository {
	return &gormActivityRepository{db: db}
}

func (r *gormActivityRepository) Append(activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	activity.CreatedAt = time.Now()
	return r.db.Create(activity).Error
}

func (r *gormActivityRepository) FindByConsultant(consultantID string, limit, offset int) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	err := r.db.Where("consultant_id = ?", consultantID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&activities).Error
	return activities, err
}

func (r *gormActivityRepository) FindByLead(leadID string, limit int) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
