package service

import (
	"context"

	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/invoice/domain"
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
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Invoice, error) {
	return s.repo.ListByCustomer(ctx, s.db, customerID)
}

// MarkPaid settles a pending or overdue invoice.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	switch invoice.State {
	case domain.InvoiceStatePaid:
		return nil, domain.ErrAlreadyPaid
	case domain.InvoiceStateCancelled:
		return nil, domain.ErrInvoiceCancelled
	case domain.InvoiceStatePending, domain.InvoiceStateOverdue:
	default:
		return nil, domain.ErrInvoiceNotOpen
	}

	now := s.clock.Now()
	if err := s.repo.UpdateState(ctx, s.db, id, domain.InvoiceStatePaid, now); err != nil {
		return nil, err
	}

	s.log.Info("invoice paid",
		zap.Int64("invoice_id", id),
		zap.String("number", invoice.Number),
	)

	invoice.State = domain.InvoiceStatePaid
	invoice.PaidAt = &now
	return invoice, nil
}

// Cancel voids an invoice that has not been paid.
func (s *Service) Cancel(ctx context.Context, id int64) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	switch invoice.State {
	case domain.InvoiceStatePaid:
		return nil, domain.ErrAlreadyPaid
	case domain.InvoiceStateCancelled:
		return nil, domain.ErrInvoiceCancelled
	}

	now := s.clock.Now()
	if err := s.repo.UpdateState(ctx, s.db, id, domain.InvoiceStateCancelled, now); err != nil {
		return nil, err
	}

	s.log.Info("invoice cancelled",
		zap.Int64("invoice_id", id),
		zap.String("number", invoice.Number),
	)

	invoice.State = domain.InvoiceStateCancelled
	invoice.CancelledAt = &now
	return invoice, nil
}
