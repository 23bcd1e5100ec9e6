package repository

import (
	"context"

	"github.com/FresyMetal/isr-crm/internal/activity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, activity *domain.CustomerActivity) error {
	return db.WithContext(ctx).Create(activity).Error
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]domain.CustomerActivity, error) {
	var activities []domain.CustomerActivity
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM customer_activities
		 WHERE customer_id = ?
		 ORDER BY created_at DESC, id DESC`,
		customerID,
	).Scan(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
