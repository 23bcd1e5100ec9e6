package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	ListActiveByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]Subscription, error)
	DeactivateByCustomer(ctx context.Context, db *gorm.DB, customerID int64, endAt time.Time) error
}
