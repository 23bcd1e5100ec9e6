package domain

import (
	"context"
	"time"

	"github.com/FresyMetal/isr-crm/internal/billing/proration"
	"github.com/shopspring/decimal"
)

type PreviewRequest struct {
	CustomerID int64      `json:"customer_id"`
	NewPlanID  int64      `json:"new_plan_id"`
	ChangeAt   *time.Time `json:"change_at"`
}

type ChangeRequest struct {
	CustomerID int64      `json:"customer_id"`
	NewPlanID  int64      `json:"new_plan_id"`
	ChangeAt   *time.Time `json:"change_at"`
	Reason     string     `json:"reason"`
	Notes      string     `json:"notes"`
	Actor      string     `json:"actor"`
}

// Preview shows the proration outcome without touching any state.
type Preview struct {
	Anchor          time.Time        `json:"anchor"`
	ChangeAt        time.Time        `json:"change_at"`
	NextBillingDate time.Time        `json:"next_billing_date"`
	OldPrice        decimal.Decimal  `json:"old_price"`
	NewPrice        decimal.Decimal  `json:"new_price"`
	Proration       proration.Result `json:"proration"`
}

type ChangeResult struct {
	Record    PlanChangeRecord `json:"record"`
	Proration proration.Result `json:"proration"`
	Message   string           `json:"message"`
}

type Service interface {
	// Preview computes the proration a change would produce.
	Preview(ctx context.Context, req PreviewRequest) (*Preview, error)
	// Execute applies the plan change atomically and records history.
	Execute(ctx context.Context, req ChangeRequest) (*ChangeResult, error)
	// History lists a customer's past plan changes, newest first.
	History(ctx context.Context, customerID int64) ([]PlanChangeRecord, error)
}
