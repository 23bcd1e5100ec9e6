// Package domain contains persistence models for invoices.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceState is the collection lifecycle of an invoice. Values match the
// operator's existing database enum.
type InvoiceState string

const (
	InvoiceStatePending   InvoiceState = "pendiente"
	InvoiceStatePaid      InvoiceState = "pagada"
	InvoiceStateOverdue   InvoiceState = "vencida"
	InvoiceStateCancelled InvoiceState = "anulada"
)

// Invoice is a monthly bill issued to a customer. Number follows the
// FAC-YYYYMM-NNNNN scheme and is unique.
type Invoice struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Number     string `gorm:"uniqueIndex;not null" json:"number"`
	CustomerID int64  `gorm:"not null;index;uniqueIndex:idx_invoices_customer_period" json:"customer_id"`

	State InvoiceState `gorm:"type:text;not null;default:'pendiente';index" json:"state"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	// Billed period. (customer_id, period_from) carries a unique index so a
	// customer can never be billed twice for the same period.
	PeriodFrom time.Time `gorm:"not null;uniqueIndex:idx_invoices_customer_period" json:"period_from"`
	PeriodTo   time.Time `gorm:"not null" json:"period_to"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLine is one billed concept on an invoice.
type InvoiceLine struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID int64 `gorm:"not null;index" json:"invoice_id"`

	Description string          `gorm:"not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`

	PlanID         *int64 `json:"plan_id,omitempty"`
	SubscriptionID *int64 `json:"subscription_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }
