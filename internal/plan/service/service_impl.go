package service

import (
	"context"
	"strings"

	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/plan/domain"
	"github.com/FresyMetal/isr-crm/pkg/db"
	"github.com/gosimple/slug"
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
		log:   p.Log.Named("plan.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlanRequest) (*domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidPlanName
	}

	planType := domain.PlanType(strings.TrimSpace(req.Type))
	if planType == "" {
		planType = domain.PlanTypeFiber
	}
	switch planType {
	case domain.PlanTypeFiber, domain.PlanTypeMobile, domain.PlanTypeTV,
		domain.PlanTypePhone, domain.PlanTypeCombo:
	default:
		return nil, domain.ErrInvalidPlanType
	}

	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if req.PromoPrice != nil && req.PromoPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	plan := domain.Plan{
		Code:         slug.Make(name),
		Name:         name,
		Type:         planType,
		Description:  strings.TrimSpace(req.Description),
		DownloadMbps: req.DownloadMbps,
		UploadMbps:   req.UploadMbps,
		Price:        req.Price.Round(2),
		PromoPrice:   req.PromoPrice,
		PromoMonths:  req.PromoMonths,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	return &plan, nil
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpdatePlanRequest) (*domain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidPlanName
		}
		plan.Name = name
	}
	if req.Description != nil {
		plan.Description = strings.TrimSpace(*req.Description)
	}
	if req.DownloadMbps != nil {
		plan.DownloadMbps = req.DownloadMbps
	}
	if req.UploadMbps != nil {
		plan.UploadMbps = req.UploadMbps
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		plan.Price = req.Price.Round(2)
	}
	if req.PromoPrice != nil {
		if req.PromoPrice.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		plan.PromoPrice = req.PromoPrice
	}
	if req.PromoMonths != nil {
		plan.PromoMonths = *req.PromoMonths
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	plan.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// Delete removes a plan. Plans with customers still contracted cannot be
// deleted and should be deactivated instead.
func (s *Service) Delete(ctx context.Context, id int64) error {
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return domain.ErrPlanNotFound
	}

	count, err := s.repo.CountCustomers(ctx, s.db, id)
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Warn("refusing to delete plan with customers",
			zap.Int64("plan_id", id),
			zap.Int64("customer_count", count),
		)
		return domain.ErrPlanInUse
	}

	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]domain.Plan, error) {
	return s.repo.List(ctx, s.db, onlyActive)
}

func (s *Service) Stats(ctx context.Context) ([]domain.PlanStats, error) {
	return s.repo.Stats(ctx, s.db)
}
