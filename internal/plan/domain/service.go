package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Description  string           `json:"description"`
	DownloadMbps *int             `json:"download_mbps"`
	UploadMbps   *int             `json:"upload_mbps"`
	Price        decimal.Decimal  `json:"price"`
	PromoPrice   *decimal.Decimal `json:"promo_price"`
	PromoMonths  int              `json:"promo_months"`
}

type UpdatePlanRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	DownloadMbps *int             `json:"download_mbps"`
	UploadMbps   *int             `json:"upload_mbps"`
	Price        *decimal.Decimal `json:"price"`
	PromoPrice   *decimal.Decimal `json:"promo_price"`
	PromoMonths  *int             `json:"promo_months"`
	Active       *bool            `json:"active"`
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	Update(ctx context.Context, id int64, req UpdatePlanRequest) (*Plan, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Plan, error)
	List(ctx context.Context, onlyActive bool) ([]Plan, error)
	Stats(ctx context.Context) ([]PlanStats, error)
}

var (
	ErrPlanNotFound    = errors.New("plan_not_found")
	ErrPlanInUse       = errors.New("plan_in_use")
	ErrInvalidPlanName = errors.New("invalid_plan_name")
	ErrInvalidPlanType = errors.New("invalid_plan_type")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrDuplicateCode   = errors.New("duplicate_plan_code")
)
