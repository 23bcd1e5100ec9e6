package service

import (
	"context"
	"fmt"
	"time"

	"github.com/FresyMetal/isr-crm/internal/billing/domain"
	"github.com/FresyMetal/isr-crm/internal/billing/proration"
	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/config"
	customerdomain "github.com/FresyMetal/isr-crm/internal/customer/domain"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	"github.com/FresyMetal/isr-crm/internal/notify"
	"github.com/FresyMetal/isr-crm/internal/observability/metrics"
	plandomain "github.com/FresyMetal/isr-crm/internal/plan/domain"
	subscriptiondomain "github.com/FresyMetal/isr-crm/internal/subscription/domain"
	"github.com/FresyMetal/isr-crm/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Policy        *config.BillingPolicyHolder
	Metrics       *metrics.BillingMetrics
	Notifier      notify.Provider
	Customers     customerdomain.Repository
	Subscriptions subscriptiondomain.Repository
	Plans         plandomain.Repository
	Invoices      invoicedomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	policy        *config.BillingPolicyHolder
	metrics       *metrics.BillingMetrics
	notifier      notify.Provider
	customers     customerdomain.Repository
	subscriptions subscriptiondomain.Repository
	plans         plandomain.Repository
	invoices      invoicedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("billing.service"),
		clock:         p.Clock,
		policy:        p.Policy,
		metrics:       p.Metrics,
		notifier:      p.Notifier,
		customers:     p.Customers,
		subscriptions: p.Subscriptions,
		plans:         p.Plans,
		invoices:      p.Invoices,
	}
}

// GenerateCustomerInvoice bills one customer for the given month. Every
// failure mode comes back as a result value so batch callers can keep going.
func (s *Service) GenerateCustomerInvoice(ctx context.Context, customerID int64, month time.Month, year int) domain.InvoiceResult {
	failure := func(msg string) domain.InvoiceResult {
		s.metrics.IncInvoice(false)
		return domain.InvoiceResult{
			CustomerID: customerID,
			Total:      decimal.Zero,
			Succeeded:  false,
			Error:      msg,
		}
	}

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return failure(err.Error())
	}
	if customer == nil {
		return failure("Cliente no encontrado")
	}
	if customer.State != customerdomain.CustomerStateActive {
		return failure(fmt.Sprintf("Cliente en estado %s, no se puede facturar", customer.State))
	}

	subs, err := s.subscriptions.ListActiveByCustomer(ctx, s.db, customerID)
	if err != nil {
		return failure(err.Error())
	}
	if len(subs) == 0 {
		return failure("Cliente sin servicios activos")
	}

	policy := s.policy.Get()
	lines := make([]invoicedomain.InvoiceLine, 0, len(subs))
	subtotal := decimal.Zero

	for i := range subs {
		sub := subs[i]
		plan, err := s.plans.FindByID(ctx, s.db, sub.PlanID)
		if err != nil {
			return failure(err.Error())
		}
		if plan == nil {
			// Dangling plan reference. Skip the line rather than fail the
			// customer.
			s.log.Warn("subscription references missing plan",
				zap.Int64("customer_id", customerID),
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("plan_id", sub.PlanID),
			)
			continue
		}

		price := plan.Price
		if policy.LineItemPricing == config.PricingSubscriptionLocked {
			price = sub.Price
		}
		price = price.Round(2)

		planID := plan.ID
		subID := sub.ID
		lines = append(lines, invoicedomain.InvoiceLine{
			Description:    fmt.Sprintf("%s - Servicio mensual", plan.Name),
			Quantity:       1,
			UnitPrice:      price,
			Amount:         price,
			PlanID:         &planID,
			SubscriptionID: &subID,
		})
		subtotal = subtotal.Add(price)
	}

	if len(lines) == 0 {
		return failure("No hay conceptos facturables para este cliente")
	}

	taxRate := decimal.NewFromFloat(policy.TaxRate)
	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(taxAmount)

	dueDay := policy.DueDayOfNextMonth
	if dueDay <= 0 {
		dueDay = 15
	}

	periodFrom := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	periodTo := periodFrom.AddDate(0, 1, -1)

	now := s.clock.Now()
	inv := invoicedomain.Invoice{
		Number:     invoiceNumber(customerID, month, year),
		CustomerID: customerID,
		State:      invoicedomain.InvoiceStatePending,
		IssueDate:  periodFrom,
		DueDate:    time.Date(year, month, dueDay, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0),
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		Subtotal:   subtotal,
		TaxRate:    taxRate,
		TaxAmount:  taxAmount,
		Total:      total,
		Lines:      lines,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.invoices.InsertWithLines(ctx, s.db, &inv); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Another run already billed this customer for the period. The
			// unique (customer_id, period_from) index makes this atomic.
			return failure("Ya existe una factura para este período")
		}
		return failure(err.Error())
	}

	s.metrics.IncInvoice(true)
	return domain.InvoiceResult{
		CustomerID:    customerID,
		InvoiceNumber: inv.Number,
		Total:         total,
		LineItems:     len(lines),
		Succeeded:     true,
	}
}

// GenerateMonthlyInvoices sweeps every active customer. A customer with a
// pending invoice is skipped before billing is attempted; an unreachable
// store produces a zero-valued summary instead of an error.
func (s *Service) GenerateMonthlyInvoices(ctx context.Context, month time.Month, year int, trigger string) domain.BatchResult {
	start := s.clock.Now()
	s.metrics.IncRun(trigger)

	active, err := s.customers.ListByState(ctx, s.db, customerdomain.CustomerStateActive)
	if err != nil {
		s.log.Error("billing run aborted, storage unavailable",
			zap.Time("period", time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)),
			zap.Error(err),
		)
		return domain.BatchResult{Invoices: []domain.InvoiceResult{}}
	}

	s.log.Info("billing run started",
		zap.String("trigger", trigger),
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("active_customers", len(active)),
	)

	result := domain.BatchResult{
		Total:    len(active),
		Invoices: make([]domain.InvoiceResult, 0, len(active)),
	}

	for _, customer := range active {
		pending, err := s.invoices.FindPendingByCustomer(ctx, s.db, customer.ID)
		if err != nil {
			result.Failed++
			result.Invoices = append(result.Invoices, domain.InvoiceResult{
				CustomerID: customer.ID,
				Total:      decimal.Zero,
				Succeeded:  false,
				Error:      err.Error(),
			})
			continue
		}
		if pending != nil {
			s.log.Debug("customer already has a pending invoice, skipping",
				zap.Int64("customer_id", customer.ID),
				zap.String("invoice_number", pending.Number),
			)
			s.metrics.IncSkipped()
			continue
		}

		item := s.GenerateCustomerInvoice(ctx, customer.ID, month, year)
		result.Invoices = append(result.Invoices, item)
		if item.Succeeded {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	s.notifyRunFinished(ctx, month, year, result)

	s.metrics.ObserveRunDuration(s.clock.Now().Sub(start))
	s.log.Info("billing run finished",
		zap.String("trigger", trigger),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)

	return result
}

func (s *Service) NextPeriod() (time.Month, int) {
	return proration.NextBillingPeriod(s.clock.Now(), s.policy.Get().CutoverDay)
}

func (s *Service) notifyRunFinished(ctx context.Context, month time.Month, year int, result domain.BatchResult) {
	msg := fmt.Sprintf("Se han generado %d facturas para %d/%d.", result.Succeeded, int(month), year)
	if result.Failed > 0 {
		msg = fmt.Sprintf("%s %d fallaron.", msg, result.Failed)
	}
	if err := s.notifier.NotifyOperator(ctx, "Facturación Automática Completada", msg); err != nil {
		s.log.Warn("billing run notification failed", zap.Error(err))
		return
	}
	s.metrics.IncNotification()
}

// invoiceNumber builds FAC-YYYYMM-NNNNN, the customer ID zero padded.
func invoiceNumber(customerID int64, month time.Month, year int) string {
	return fmt.Sprintf("FAC-%d%02d-%05d", year, int(month), customerID)
}
