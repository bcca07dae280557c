package repository

import (
	"context"
	"fmt"

	"github.com/quocanhngo/agrosynth/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository handles database operations for Subscription
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert stores a subscription, leaving an existing device+email pair untouched.
// Returns true when a new row was created.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "email"}},
		DoNothing: true,
	}).Create(sub)
	if result.Error != nil {
		return false, fmt.Errorf("failed to save subscription: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListEmails returns the distinct subscribed addresses
func (r *SubscriptionRepository) ListEmails(ctx context.Context) ([]string, error) {
	emails := []string{}
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Distinct("email").
		Order("email ASC").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return emails, nil
}
