package service

import (
	"context"
	"strings"

	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	address := strings.TrimSpace(req.Address)
	city := strings.TrimSpace(req.City)
	if address == "" || city == "" {
		return nil, domain.ErrInvalidAddress
	}

	now := s.clock.Now()
	customer := domain.Customer{
		Name:         name,
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      address,
		City:         city,
		Province:     strings.TrimSpace(req.Province),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		State:        domain.CustomerStatePendingInstall,
		SignupAt:     now,
		PlanID:       req.PlanID,
		MonthlyPrice: req.MonthlyPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) ([]domain.Customer, error) {
	state := domain.CustomerState(strings.TrimSpace(req.State))
	switch state {
	case "", domain.CustomerStatePendingInstall, domain.CustomerStateActive,
		domain.CustomerStateSuspended, domain.CustomerStateDeactivated:
	default:
		return nil, domain.ErrInvalidState
	}
	return s.repo.ListByState(ctx, s.db, state)
}
