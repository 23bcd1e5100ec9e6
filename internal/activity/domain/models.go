// Package domain contains persistence models for the customer activity log.
package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityKind classifies log entries. Values match the operator's existing
// database enum.
type ActivityKind string

const (
	ActivityPlanChange ActivityKind = "cambio_plan"
	ActivityPSOUpdate  ActivityKind = "actualizacion_pso"
	ActivityPSOError   ActivityKind = "error_pso"
	ActivityNote       ActivityKind = "nota"
)

// CustomerActivity is an append-only log entry attached to a customer.
type CustomerActivity struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;index" json:"customer_id"`

	Kind        ActivityKind      `gorm:"type:text;not null" json:"kind"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Actor       string            `gorm:"not null;default:''" json:"actor"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (CustomerActivity) TableName() string { return "customer_activities" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, activity *CustomerActivity) error
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]CustomerActivity, error)
}
