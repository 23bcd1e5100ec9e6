// Package domain contains persistence models for CRM customers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerState represents service lifecycle states. Values match the
// operator's existing database enum.
type CustomerState string

const (
	CustomerStatePendingInstall CustomerState = "pendiente_instalacion"
	CustomerStateActive         CustomerState = "activo"
	CustomerStateSuspended      CustomerState = "suspendido"
	CustomerStateDeactivated    CustomerState = "baja"
)

// Customer represents a fiber subscriber.
type Customer struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	LastName string `gorm:"column:last_name" json:"last_name,omitempty"`
	Email    string `gorm:"index" json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`

	Address    string `gorm:"not null" json:"address"`
	City       string `gorm:"not null;index" json:"city"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`

	State            CustomerState `gorm:"type:text;not null;default:'pendiente_instalacion';index" json:"state"`
	SuspensionReason *string       `gorm:"type:text" json:"suspension_reason,omitempty"`
	SignupAt         time.Time     `gorm:"not null" json:"signup_at"`
	DeactivatedAt    *time.Time    `json:"deactivated_at,omitempty"`

	// PlanID and MonthlyPrice mirror the currently contracted plan. The
	// effective price may diverge from the plan's list price through
	// promotions or manual overrides.
	PlanID       *int64          `gorm:"index" json:"plan_id,omitempty"`
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_price"`

	// GPON provisioning data consumed by the PSO integration.
	ONTSerialNumber *string `gorm:"column:ont_serial_number;uniqueIndex" json:"ont_serial_number,omitempty"`
	SpeedProfile    *string `json:"speed_profile,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
