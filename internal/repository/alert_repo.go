package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/agrosynth/internal/model"
	"gorm.io/gorm"
)

// AlertRepository handles database operations for AlertRecord
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert writes a new alert; the ID is assigned on create
func (r *AlertRepository) Insert(ctx context.Context, alert *model.AlertRecord) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// List returns alerts newest first. An empty deviceID lists every device's alerts.
func (r *AlertRepository) List(ctx context.Context, deviceID string) ([]model.AlertRecord, error) {
	alerts := []model.AlertRecord{}
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// FindByID finds an alert by ID
func (r *AlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AlertRecord, error) {
	var alert model.AlertRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// Delete removes an alert only when both id and device match.
// Returns the number of rows removed; zero is not an error.
func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID, deviceID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND device_id = ?", id, deviceID).
		Delete(&model.AlertRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete alert %s: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}
