// Package domain contains persistence models for service plans.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanType distinguishes product families offered by the operator.
type PlanType string

const (
	PlanTypeFiber  PlanType = "fibra"
	PlanTypeMobile PlanType = "movil"
	PlanTypeTV     PlanType = "tv"
	PlanTypePhone  PlanType = "telefonia_fija"
	PlanTypeCombo  PlanType = "combo"
)

// Plan is a sellable service plan. Price is the list price per month.
type Plan struct {
	ID          int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string   `gorm:"uniqueIndex;not null" json:"code"`
	Name        string   `gorm:"not null" json:"name"`
	Type        PlanType `gorm:"type:text;not null;default:'fibra'" json:"type"`
	Description string   `gorm:"type:text" json:"description,omitempty"`

	// Speeds in Mbps, only meaningful for fiber and combo plans.
	DownloadMbps *int `json:"download_mbps,omitempty"`
	UploadMbps   *int `json:"upload_mbps,omitempty"`

	// Profiles pushed to the PSO provisioning platform on plan changes.
	PSOSpeedProfile *string `gorm:"column:pso_speed_profile" json:"pso_speed_profile,omitempty"`
	PSOUserProfile  *string `gorm:"column:pso_user_profile" json:"pso_user_profile,omitempty"`

	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	PromoPrice  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"promo_price,omitempty"`
	PromoMonths int              `gorm:"not null;default:0" json:"promo_months,omitempty"`

	Active bool `gorm:"not null;default:true;index" json:"active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

// PlanStats aggregates adoption of a single plan.
type PlanStats struct {
	PlanID        int64           `json:"plan_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	CustomerCount int64           `json:"customer_count"`
	MonthlyTotal  decimal.Decimal `json:"monthly_total"`
}
