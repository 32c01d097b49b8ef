package repository

import (
	"time"

	"outreach-backend/internal/outreach/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(task *domain.OutreachTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	return r.db.Create(task).Error
}

func (r *gormTaskRepository) FindByID(id string) (*domain.OutreachTask, error) {
	var task domain.OutreachTask
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByConsultant(consultantID string, status *domain.TaskStatus, limit, offset int) ([]*domain.OutreachTask, int64, error) {
	var tasks []*domain.OutreachTask
	var total int64

	query := r.db.Model(&domain.OutreachTask{}).Where("consultant_id = ?", consultantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("scheduled_at ASC").
		Limit(limit).Offset(offset).Find(&tasks).Error
	return tasks, total, err
}

func (r *gormTaskRepository) FindActiveByLead(leadID string) ([]*domain.OutreachTask, error) {
	var tasks []*domain.OutreachTask
	err := r.db.Where("lead_id = ? AND status NOT IN ?",
		leadID,
		[]domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusFailed, domain.TaskStatusCancelled}).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) Update(task *domain.OutreachTask) error {
	task.UpdatedAt = time.Now()
	return r.db.Save(task).Error
}

func (r *gormTaskRepository) FindDue(now time.Time, limit int) ([]*domain.OutreachTask, error) {
	var tasks []*domain.OutreachTask
	err := r.db.Where(
		"(status IN ? AND scheduled_at <= ?) OR (status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?)",
		[]domain.TaskStatus{domain.TaskStatusScheduled, domain.TaskStatusApproved}, now,
		domain.TaskStatusRetryPending, now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) CountScheduledBetween(consultantID string, channel domain.Channel, from, to time.Time) (int64, error) {
	var taskCount int64
	err := r.db.Model(&domain.OutreachTask{}).
		Where("consultant_id = ? AND channel = ? AND scheduled_at BETWEEN ? AND ? AND status NOT IN ?",
			consultantID, channel, from, to,
			[]domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusFailed, domain.TaskStatusCancelled}).
		Count(&taskCount).Error
	if err != nil {
		return 0, err
	}

	if channel != domain.ChannelVoice {
		return taskCount, nil
	}

	// Voice slots are also occupied by directly scheduled calls
	var callCount int64
	err = r.db.Model(&domain.VoiceCall{}).
		Where("consultant_id = ? AND scheduled_at BETWEEN ? AND ? AND status NOT IN ?",
			consultantID, from, to,
			[]domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusFailed, domain.TaskStatusCancelled}).
		Count(&callCount).Error
	if err != nil {
		return 0, err
	}
	return taskCount + callCount, nil
}

// gormVoiceCallRepository implements VoiceCallRepository using GORM
type gormVoiceCallRepository struct {
	db *gorm.DB
}

// NewGormVoiceCallRepository creates a new GORM-based VoiceCallRepository
func NewGormVoiceCallRepository(db *gorm.DB) VoiceCallRepository {
	return &gormVoiceCallRepository{db: db}
}

func (r *gormVoiceCallRepository) Create(call *domain.VoiceCall) error {
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	call.CreatedAt = time.Now()
	call.UpdatedAt = time.Now()
	return r.db.Create(call).Error
}

func (r *gormVoiceCallRepository) FindByTask(taskID string) (*domain.VoiceCall, error) {
	var call domain.VoiceCall
	err := r.db.Where("task_id = ?", taskID).First(&call).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &call, nil
}

func (r *gormVoiceCallRepository) Update(call *domain.VoiceCall) error {
	call.UpdatedAt = time.Now()
	return r.db.Save(call).Error
}

// gormBlockRepository implements BlockRepository using GORM
type gormBlockRepository struct {
	db *gorm.DB
}

// NewGormBlockRepository creates a new GORM-based BlockRepository
func NewGormBlockRepository(db *gorm.DB) BlockRepository {
	return &gormBlockRepository{db: db}
}

func (r *gormBlockRepository) Create(block *domain.OutreachBlock) error {
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	block.CreatedAt = time.Now()
	return r.db.Create(block).Error
}

func (r *gormBlockRepository) IsBlocked(consultantID, leadID string, channel domain.Channel) (bool, error) {
	var count int64
	err := r.db.Model(&domain.OutreachBlock{}).
		Where("consultant_id = ? AND lead_id = ? AND (channel = ? OR channel = '')",
			consultantID, leadID, channel).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormBlockRepository) BlockedLeadIDs(consultantID string) (map[string]bool, error) {
	var ids []string
	err := r.db.Model(&domain.OutreachBlock{}).
		Where("consultant_id = ? AND channel = ''", consultantID).
		Distinct("lead_id").
		Pluck("lead_id", &ids).Error
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		blocked[id] = true
	}
	return blocked, nil
}
