package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Customer, error)
	ListByState(ctx context.Context, db *gorm.DB, state CustomerState) ([]Customer, error)
	UpdateContractedPlan(ctx context.Context, db *gorm.DB, id int64, planID int64, monthlyPrice decimal.Decimal) error
}
