// Package domain contains persistence models for customer subscriptions.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription links a customer to a plan over a period of time. Price is a
// snapshot of what was agreed when the subscription started, so later plan
// price changes do not rewrite history.
type Subscription struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;index" json:"customer_id"`
	PlanID     int64 `gorm:"not null;index" json:"plan_id"`

	Price  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Active bool            `gorm:"not null;default:true;index" json:"active"`

	StartAt time.Time  `gorm:"not null" json:"start_at"`
	EndAt   *time.Time `json:"end_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
