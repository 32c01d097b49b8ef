package repository

import (
	"time"

	"outreach-backend/internal/lead/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormLeadRepository implements LeadRepository using GORM
type gormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GORM-based LeadRepository
func NewGormLeadRepository(db *gorm.DB) LeadRepository {
	return &gormLeadRepository{db: db}
}

func (r *gormLeadRepository) Create(lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = time.Now()
	return r.db.Create(lead).Error
}

func (r *gormLeadRepository) FindByID(id string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.Where("id = ?", id).First(&lead).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *gormLeadRepository) FindByConsultant(consultantID string, status *domain.LeadStatus, limit, offset int) ([]*domain.Lead, int64, error) {
	var leads []*domain.Lead
	var total int64

	query := r.db.Model(&domain.Lead{}).Where("consultant_id = ?", consultantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("score DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&leads).Error
	return leads, total, err
}

func (r *gormLeadRepository) FindByIDs(consultantID string, ids []string) ([]*domain.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var leads []*domain.Lead
	err := r.db.Where("consultant_id = ? AND id IN ?", consultantID, ids).Find(&leads).Error
	return leads, err
}

func (r *gormLeadRepository) FindCandidates(consultantID string, limit int) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	err := r.db.Where("consultant_id = ? AND status NOT IN ?",
		consultantID,
		[]domain.LeadStatus{domain.LeadStatusNotInterested, domain.LeadStatusConverted}).
		Order("score DESC").
		Limit(limit).
		Find(&leads).Error
	return leads, err
}

func (r *gormLeadRepository) Update(lead *domain.Lead) error {
	lead.UpdatedAt = time.Now()
	return r.db.Save(lead).Error
}

func (r *gormLeadRepository) SetActiveTask(leadID string, taskID *string, status domain.LeadStatus) error {
	return r.db.Model(&domain.Lead{}).Where("id = ?", leadID).
		Updates(map[string]interface{}{
			"active_task_id": taskID,
			"status":         status,
			"updated_at":     time.Now(),
		}).Error
}

func (r *gormLeadRepository) TouchActivity(leadID string) error {
	now := time.Now()
	return r.db.Model(&domain.Lead{}).Where("id = ?", leadID).
		Updates(map[string]interface{}{
			"last_activity_at": now,
			"updated_at":       now,
		}).Error
}
