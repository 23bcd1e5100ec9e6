// Package scheduler drives the recurring billing jobs: the monthly invoice
// sweep and the daily overdue marker.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FresyMetal/isr-crm/internal/billing/domain"
	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/config"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Policy     *config.BillingPolicyHolder
	BillingSvc domain.Service
	Invoices   invoicedomain.Repository
	Config     Config `optional:"true"`
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	policy     *config.BillingPolicyHolder
	billingSvc domain.Service
	invoices   invoicedomain.Repository

	// lastInvoicedPeriod remembers the last period the monthly job billed so
	// a long-running process fires it once per month. The database-level
	// duplicate guards make re-firing harmless, this only avoids noise.
	lastInvoicedPeriod string
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.Policy == nil || p.BillingSvc == nil || p.Invoices == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		policy:     p.Policy,
		billingSvc: p.BillingSvc,
		invoices:   p.Invoices,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	runID := s.genID.Generate().String()
	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", runID),
	)
	log.Info("job started")

	err := fn(ctx)
	duration := s.clock.Now().Sub(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			log.Warn("job timed out",
				zap.Duration("timeout", s.cfg.JobTimeout),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return nil
		}
		log.Error("job failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", name, err)
	}

	log.Info("job finished", zap.Duration("duration", duration))
	return nil
}

// RunOnce evaluates all jobs against the current clock.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	if s.isJobEnabled("monthly_invoicing") {
		err = errors.Join(err, s.runJob(parent, "monthly_invoicing", s.MonthlyInvoicingJob))
	}
	if s.isJobEnabled("overdue_sweep") {
		err = errors.Join(err, s.runJob(parent, "overdue_sweep", s.OverdueSweepJob))
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// MonthlyInvoicingJob fires the monthly sweep on the policy's billing day
// and at most once per target period.
func (s *Scheduler) MonthlyInvoicingJob(ctx context.Context) error {
	now := s.clock.Now()
	policy := s.policy.Get()

	if now.Day() != policy.BillingDay {
		return nil
	}

	month, year := s.billingSvc.NextPeriod()
	period := fmt.Sprintf("%d-%02d", year, int(month))
	if s.lastInvoicedPeriod == period {
		return nil
	}

	s.log.Info("starting scheduled invoicing",
		zap.Int("year", year),
		zap.Int("month", int(month)),
	)

	result := s.billingSvc.GenerateMonthlyInvoices(ctx, month, year, "scheduled")
	s.lastInvoicedPeriod = period

	if result.Failed > 0 {
		s.log.Warn("scheduled invoicing had failures",
			zap.Int("failed", result.Failed),
			zap.Int("succeeded", result.Succeeded),
		)
	}
	return nil
}

// OverdueSweepJob flips pending invoices past their due date to vencida.
func (s *Scheduler) OverdueSweepJob(ctx context.Context) error {
	changed, err := s.invoices.MarkOverdue(ctx, s.db, s.clock.Now())
	if err != nil {
		return err
	}
	if changed > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", changed))
	}
	return nil
}
