package domain

import (
	"context"
	"errors"
)

type Service interface {
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Invoice, error)
	MarkPaid(ctx context.Context, id int64) (*Invoice, error)
	Cancel(ctx context.Context, id int64) (*Invoice, error)
}

var (
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
	ErrInvoiceNotOpen   = errors.New("invoice_not_open")
	ErrInvoiceCancelled = errors.New("invoice_cancelled")
	ErrAlreadyPaid      = errors.New("invoice_already_paid")
)
