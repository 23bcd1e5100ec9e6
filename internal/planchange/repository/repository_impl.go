package repository

import (
	"context"

	"github.com/FresyMetal/isr-crm/internal/planchange/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.PlanChangeRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]domain.PlanChangeRecord, error) {
	var records []domain.PlanChangeRecord
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM plan_change_history
		 WHERE customer_id = ?
		 ORDER BY change_at DESC, id DESC`,
		customerID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
