package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name         string          `json:"name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	Province     string          `json:"province"`
	PostalCode   string          `json:"postal_code"`
	PlanID       *int64          `json:"plan_id"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
}

type ListCustomerRequest struct {
	State string
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, req ListCustomerRequest) ([]Customer, error)
}

var (
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidAddress   = errors.New("invalid_address")
	ErrInvalidState     = errors.New("invalid_state")
)
