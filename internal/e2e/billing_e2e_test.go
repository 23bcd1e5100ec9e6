package e2e

import (
	"context"
	"testing"
	"time"

	activitydomain "github.com/FresyMetal/isr-crm/internal/activity/domain"
	activityrepo "github.com/FresyMetal/isr-crm/internal/activity/repository"
	billingdomain "github.com/FresyMetal/isr-crm/internal/billing/domain"
	billingservice "github.com/FresyMetal/isr-crm/internal/billing/service"
	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/config"
	customerdomain "github.com/FresyMetal/isr-crm/internal/customer/domain"
	customerrepo "github.com/FresyMetal/isr-crm/internal/customer/repository"
	customerservice "github.com/FresyMetal/isr-crm/internal/customer/service"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	invoicerepo "github.com/FresyMetal/isr-crm/internal/invoice/repository"
	invoiceservice "github.com/FresyMetal/isr-crm/internal/invoice/service"
	plandomain "github.com/FresyMetal/isr-crm/internal/plan/domain"
	planrepo "github.com/FresyMetal/isr-crm/internal/plan/repository"
	planservice "github.com/FresyMetal/isr-crm/internal/plan/service"
	planchangedomain "github.com/FresyMetal/isr-crm/internal/planchange/domain"
	planchangerepo "github.com/FresyMetal/isr-crm/internal/planchange/repository"
	planchangeservice "github.com/FresyMetal/isr-crm/internal/planchange/service"
	"github.com/FresyMetal/isr-crm/internal/provisioning"
	subscriptiondomain "github.com/FresyMetal/isr-crm/internal/subscription/domain"
	subscriptionrepo "github.com/FresyMetal/isr-crm/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type nopNotifier struct{}

func (nopNotifier) NotifyOperator(ctx context.Context, title, content string) error { return nil }

type stack struct {
	db         *gorm.DB
	clock      *clock.FakeClock
	customers  customerdomain.Service
	plans      plandomain.Service
	invoices   invoicedomain.Service
	billing    billingdomain.Service
	planChange planchangedomain.Service
}

func newStack(t *testing.T, start time.Time) *stack {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&planchangedomain.PlanChangeRecord{},
		&activitydomain.CustomerActivity{},
	))

	fake := clock.NewFakeClock(start)
	log := zap.NewNop()
	policy := config.NewStaticBillingPolicyHolder(config.DefaultBillingPolicy())

	customerRepo := customerrepo.Provide()
	planRepo := planrepo.Provide()
	subRepo := subscriptionrepo.Provide()
	invoiceRepo := invoicerepo.Provide()

	billingSvc := billingservice.New(billingservice.Params{
		DB:            db,
		Log:           log,
		Clock:         fake,
		Policy:        policy,
		Notifier:      nopNotifier{},
		Customers:     customerRepo,
		Subscriptions: subRepo,
		Plans:         planRepo,
		Invoices:      invoiceRepo,
	})

	planChangeSvc := planchangeservice.New(planchangeservice.Params{
		DB:            db,
		Log:           log,
		Clock:         fake,
		PSO:           &provisioning.NoOp{},
		Customers:     customerRepo,
		Plans:         planRepo,
		Subscriptions: subRepo,
		Invoices:      invoiceRepo,
		History:       planchangerepo.Provide(),
		Activities:    activityrepo.Provide(),
	})

	return &stack{
		db:    db,
		clock: fake,
		customers: customerservice.New(customerservice.Params{
			DB: db, Log: log, Clock: fake, Repo: customerRepo,
		}),
		plans: planservice.New(planservice.Params{
			DB: db, Log: log, Clock: fake, Repo: planRepo,
		}),
		invoices: invoiceservice.New(invoiceservice.Params{
			DB: db, Log: log, Clock: fake, Repo: invoiceRepo,
		}),
		billing:    billingSvc,
		planChange: planChangeSvc,
	}
}

// The full operator workflow: sell a plan, bill the month, upgrade the
// customer mid-cycle, and bill again.
func TestMonthlyLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC))

	basic, err := s.plans.Create(ctx, plandomain.CreatePlanRequest{
		Name:  "Fibra 300",
		Type:  "fibra",
		Price: decimal.NewFromFloat(29.90),
	})
	require.NoError(t, err)

	premium, err := s.plans.Create(ctx, plandomain.CreatePlanRequest{
		Name:  "Fibra 1000",
		Type:  "fibra",
		Price: decimal.NewFromFloat(49.90),
	})
	require.NoError(t, err)

	customer, err := s.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:         "Marta",
		LastName:     "Sanz",
		Address:      "Calle Nueva 12",
		City:         "Teruel",
		PlanID:       &basic.ID,
		MonthlyPrice: basic.Price,
	})
	require.NoError(t, err)

	// Installation completed, service goes live.
	require.NoError(t, s.db.Model(&customerdomain.Customer{}).
		Where("id = ?", customer.ID).
		Update("state", customerdomain.CustomerStateActive).Error)
	require.NoError(t, s.db.Create(&subscriptiondomain.Subscription{
		CustomerID: customer.ID,
		PlanID:     basic.ID,
		Price:      basic.Price,
		Active:     true,
		StartAt:    s.clock.Now(),
	}).Error)

	// June billing run.
	batch := s.billing.GenerateMonthlyInvoices(ctx, time.June, 2024, "manual")
	require.Equal(t, 1, batch.Succeeded)
	require.Len(t, batch.Invoices, 1)
	juneInvoice := batch.Invoices[0]
	assert.True(t, juneInvoice.Total.Equal(decimal.NewFromFloat(29.90)))

	// Customer pays, then upgrades on June 16th.
	invoices, err := s.invoices.ListByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	_, err = s.invoices.MarkPaid(ctx, invoices[0].ID)
	require.NoError(t, err)

	s.clock.Advance(15 * 24 * time.Hour)
	change, err := s.planChange.Execute(ctx, planchangedomain.ChangeRequest{
		CustomerID: customer.ID,
		NewPlanID:  premium.ID,
		Reason:     "upgrade comercial",
		Actor:      "operador1",
	})
	require.NoError(t, err)

	// June has 30 days; anchored on the June invoice, 16 days elapsed.
	assert.Equal(t, 30, change.Proration.TotalDays)
	assert.Equal(t, 16, change.Proration.ElapsedDays)
	assert.True(t, change.Proration.Adjustment.IsPositive())
	assert.Contains(t, change.Message, "Upgrade")

	// July billing run picks up the new price.
	s.clock.Advance(16 * 24 * time.Hour)
	batch = s.billing.GenerateMonthlyInvoices(ctx, time.July, 2024, "manual")
	require.Equal(t, 1, batch.Succeeded, "failures: %+v", batch.Invoices)
	assert.True(t, batch.Invoices[0].Total.Equal(decimal.NewFromFloat(49.90)),
		"july total = %s", batch.Invoices[0].Total)

	// The audit trail survives it all.
	history, err := s.planChange.History(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Fibra 300", history[0].OldPlanName)
	assert.Equal(t, "Fibra 1000", history[0].NewPlanName)

	// Plans with contracted customers cannot be deleted.
	err = s.plans.Delete(ctx, premium.ID)
	assert.ErrorIs(t, err, plandomain.ErrPlanInUse)

	// The abandoned plan can.
	require.NoError(t, s.plans.Delete(ctx, basic.ID))
}
