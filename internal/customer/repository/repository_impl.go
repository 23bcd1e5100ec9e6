package repository

import (
	"context"

	"github.com/FresyMetal/isr-crm/internal/customer/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) ListByState(ctx context.Context, db *gorm.DB, state domain.CustomerState) ([]domain.Customer, error) {
	var customers []domain.Customer
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	if state != "" {
		stmt = stmt.Where("state = ?", state)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) UpdateContractedPlan(ctx context.Context, db *gorm.DB, id int64, planID int64, monthlyPrice decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET plan_id = ?, monthly_price = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		planID,
		monthlyPrice,
		id,
	).Error
}
