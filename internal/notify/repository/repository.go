package repository

import (
	"time"

	"outreach-backend/internal/notify/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push token operations
type DeviceTokenRepository interface {
	SaveToken(consultantID, token, deviceInfo string) error
	GetTokensByConsultant(consultantID string) ([]domain.DeviceToken, error)
	DeleteToken(token string) error
}

type gormDeviceTokenRepository struct {
	db *gorm.DB
}

// NewGormDeviceTokenRepository creates a new instance
func NewGormDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &gormDeviceTokenRepository{db: db}
}

// SaveToken saves or updates a token (atomic upsert on the token column)
func (r *gormDeviceTokenRepository) SaveToken(consultantID, token, deviceInfo string) error {
	deviceToken := &domain.DeviceToken{
		ID:           uuid.New().String(),
		ConsultantID: consultantID,
		Token:        token,
		DeviceInfo:   deviceInfo,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"consultant_id", "device_info", "updated_at"}),
	}).Create(deviceToken).Error
}

func (r *gormDeviceTokenRepository) GetTokensByConsultant(consultantID string) ([]domain.DeviceToken, error) {
	var tokens []domain.DeviceToken
	err := r.db.Where("consultant_id = ?", consultantID).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *gormDeviceTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&domain.DeviceToken{}).Error
}
