package repository

import (
	"context"

	"github.com/FresyMetal/isr-crm/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Save(plan).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM plans WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM plans WHERE id = ?`,
		id,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM plans WHERE code = ?`,
		code,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, onlyActive bool) ([]domain.Plan, error) {
	var plans []domain.Plan
	stmt := db.WithContext(ctx).Model(&domain.Plan{})
	if onlyActive {
		stmt = stmt.Where("active = ?", true)
	}
	err := stmt.
		Order("price asc, id asc").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) CountCustomers(ctx context.Context, db *gorm.DB, planID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM customers WHERE plan_id = ? AND state != ?`,
		planID,
		"baja",
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) ([]domain.PlanStats, error) {
	var stats []domain.PlanStats
	err := db.WithContext(ctx).Raw(
		`SELECT p.id AS plan_id,
		        p.code,
		        p.name,
		        COUNT(c.id) AS customer_count,
		        COALESCE(SUM(c.monthly_price), 0) AS monthly_total
		 FROM plans p
		 LEFT JOIN customers c ON c.plan_id = p.id AND c.state = ?
		 GROUP BY p.id, p.code, p.name
		 ORDER BY customer_count DESC, p.id ASC`,
		"activo",
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
