// Package domain contains the plan-change history model and contract.
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanChangeRecord is an immutable audit entry written once per plan change.
// Plan names and prices are denormalized so the record survives later plan
// edits or deletions.
type PlanChangeRecord struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;index" json:"customer_id"`

	OldPlanID   *int64          `json:"old_plan_id,omitempty"`
	OldPlanName string          `gorm:"not null" json:"old_plan_name"`
	OldPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"old_price"`

	NewPlanID   int64           `gorm:"not null" json:"new_plan_id"`
	NewPlanName string          `gorm:"not null" json:"new_plan_name"`
	NewPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"new_price"`

	Adjustment    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"adjustment"`
	ElapsedDays   int             `gorm:"not null" json:"elapsed_days"`
	RemainingDays int             `gorm:"not null" json:"remaining_days"`
	TotalDays     int             `gorm:"not null" json:"total_days"`

	ChangeAt  time.Time `gorm:"not null" json:"change_at"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`

	Reason string `gorm:"type:text" json:"reason,omitempty"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`
	Actor  string `gorm:"not null;default:''" json:"actor"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PlanChangeRecord) TableName() string { return "plan_change_history" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *PlanChangeRecord) error
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]PlanChangeRecord, error)
}
