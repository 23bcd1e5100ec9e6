package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertWithLines persists the invoice and its lines in one transaction.
	InsertWithLines(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Invoice, error)
	// FindPendingByCustomer returns any invoice still in pendiente state for
	// the customer, newest first.
	FindPendingByCustomer(ctx context.Context, db *gorm.DB, customerID int64) (*Invoice, error)
	// FindLastByCustomer returns the most recently issued invoice regardless
	// of state.
	FindLastByCustomer(ctx context.Context, db *gorm.DB, customerID int64) (*Invoice, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]Invoice, error)
	ListByPeriod(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Invoice, error)
	UpdateState(ctx context.Context, db *gorm.DB, id int64, state InvoiceState, at time.Time) error
	// MarkOverdue flips pending invoices past their due date to vencida and
	// returns how many rows changed.
	MarkOverdue(ctx context.Context, db *gorm.DB, asOf time.Time) (int64, error)
}
