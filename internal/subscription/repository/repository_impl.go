package repository

import (
	"context"
	"time"

	"github.com/FresyMetal/isr-crm/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) ListActiveByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM subscriptions
		 WHERE customer_id = ? AND active = ?
		 ORDER BY start_at ASC, id ASC`,
		customerID,
		true,
	).Scan(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repo) DeactivateByCustomer(ctx context.Context, db *gorm.DB, customerID int64, endAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET active = ?, end_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE customer_id = ? AND active = ?`,
		false,
		endAt,
		customerID,
		true,
	).Error
}
