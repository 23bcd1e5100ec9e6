// Package domain defines the monthly billing engine contract.
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceResult reports the outcome of billing one customer. Failures are
// values, never panics or errors, so one bad customer cannot abort a batch.
type InvoiceResult struct {
	CustomerID    int64           `json:"customer_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	LineItems     int             `json:"line_items"`
	Succeeded     bool            `json:"succeeded"`
	Error         string          `json:"error,omitempty"`
}

// BatchResult summarizes a whole billing run. Total counts the active
// customers considered, including those skipped by the duplicate guard.
type BatchResult struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Invoices  []InvoiceResult `json:"invoices"`
}

type Service interface {
	// GenerateCustomerInvoice bills a single customer for the given month.
	GenerateCustomerInvoice(ctx context.Context, customerID int64, month time.Month, year int) InvoiceResult
	// GenerateMonthlyInvoices bills every active customer for the given
	// month. Trigger labels the run origin ("scheduled" or "manual").
	GenerateMonthlyInvoices(ctx context.Context, month time.Month, year int, trigger string) BatchResult
	// NextPeriod picks the month a run started now should bill.
	NextPeriod() (time.Month, int)
}
