package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	billingdomain "github.com/FresyMetal/isr-crm/internal/billing/domain"
	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/config"
	customerdomain "github.com/FresyMetal/isr-crm/internal/customer/domain"
	customerrepo "github.com/FresyMetal/isr-crm/internal/customer/repository"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	invoicerepo "github.com/FresyMetal/isr-crm/internal/invoice/repository"
	plandomain "github.com/FresyMetal/isr-crm/internal/plan/domain"
	planrepo "github.com/FresyMetal/isr-crm/internal/plan/repository"
	subscriptiondomain "github.com/FresyMetal/isr-crm/internal/subscription/domain"
	subscriptionrepo "github.com/FresyMetal/isr-crm/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manual Mocks

type mockNotifier struct {
	titles   []string
	contents []string
	fail     bool
}

func (m *mockNotifier) NotifyOperator(ctx context.Context, title, content string) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.titles = append(m.titles, title)
	m.contents = append(m.contents, content)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&customerdomain.Customer{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
	)
	require.NoError(t, err)

	return db
}

func newTestService(t *testing.T, db *gorm.DB, fake *clock.FakeClock, notifier *mockNotifier) *Service {
	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fake,
		Policy:        config.NewStaticBillingPolicyHolder(config.DefaultBillingPolicy()),
		Metrics:       nil,
		Notifier:      notifier,
		Customers:     customerrepo.Provide(),
		Subscriptions: subscriptionrepo.Provide(),
		Plans:         planrepo.Provide(),
		Invoices:      invoicerepo.Provide(),
	})
	return svc.(*Service)
}

func seedCustomer(t *testing.T, db *gorm.DB, state customerdomain.CustomerState, planID int64, price float64) *customerdomain.Customer {
	pid := planID
	customer := &customerdomain.Customer{
		Name:         "Ana",
		LastName:     "García",
		Address:      "Calle Mayor 1",
		City:         "Teruel",
		State:        state,
		SignupAt:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		PlanID:       &pid,
		MonthlyPrice: decimal.NewFromFloat(price),
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedPlan(t *testing.T, db *gorm.DB, name string, price float64) *plandomain.Plan {
	plan := &plandomain.Plan{
		Code:   fmt.Sprintf("%s-%d", name, time.Now().UnixNano()),
		Name:   name,
		Type:   plandomain.PlanTypeFiber,
		Price:  decimal.NewFromFloat(price),
		Active: true,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func seedSubscription(t *testing.T, db *gorm.DB, customerID, planID int64, price float64) *subscriptiondomain.Subscription {
	sub := &subscriptiondomain.Subscription{
		CustomerID: customerID,
		PlanID:     planID,
		Price:      decimal.NewFromFloat(price),
		Active:     true,
		StartAt:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func TestGenerateCustomerInvoice(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	plan := seedPlan(t, db, "Fibra 300", 29.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)
	seedSubscription(t, db, customer.ID, plan.ID, 29.90)

	result := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)

	require.True(t, result.Succeeded, "error: %s", result.Error)
	assert.Equal(t, fmt.Sprintf("FAC-202406-%05d", customer.ID), result.InvoiceNumber)
	assert.Equal(t, 1, result.LineItems)
	assert.True(t, result.Total.Equal(decimal.NewFromFloat(29.90)), "total = %s", result.Total)

	var stored invoicedomain.Invoice
	require.NoError(t, db.Where("customer_id = ?", customer.ID).First(&stored).Error)
	assert.Equal(t, invoicedomain.InvoiceStatePending, stored.State)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), stored.IssueDate.UTC())
	assert.Equal(t, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC), stored.DueDate.UTC())
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), stored.PeriodTo.UTC())

	var lines []invoicedomain.InvoiceLine
	require.NoError(t, db.Where("invoice_id = ?", stored.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, "Fibra 300 - Servicio mensual", lines[0].Description)
}

func TestGenerateCustomerInvoiceNotFound(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	result := svc.GenerateCustomerInvoice(context.Background(), 9999, time.June, 2024)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "Cliente no encontrado", result.Error)
}

func TestGenerateCustomerInvoiceSuspended(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	plan := seedPlan(t, db, "Fibra 600", 39.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateSuspended, plan.ID, 39.90)
	seedSubscription(t, db, customer.ID, plan.ID, 39.90)

	result := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)

	assert.False(t, result.Succeeded)
	assert.Contains(t, result.Error, "suspendido")
}

func TestGenerateCustomerInvoiceNoActiveSubscriptions(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	plan := seedPlan(t, db, "Fibra 300", 29.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)

	result := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "Cliente sin servicios activos", result.Error)
}

func TestGenerateCustomerInvoiceSkipsMissingPlan(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	plan := seedPlan(t, db, "Fibra 300", 29.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)
	seedSubscription(t, db, customer.ID, plan.ID, 29.90)
	// Second subscription pointing at a plan that no longer exists.
	seedSubscription(t, db, customer.ID, 4242, 10.00)

	result := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)

	require.True(t, result.Succeeded, "error: %s", result.Error)
	assert.Equal(t, 1, result.LineItems)
	assert.True(t, result.Total.Equal(decimal.NewFromFloat(29.90)))
}

func TestGenerateCustomerInvoiceAllPlansMissing(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, 4242, 29.90)
	seedSubscription(t, db, customer.ID, 4242, 29.90)

	result := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "No hay conceptos facturables para este cliente", result.Error)
}

func TestGenerateCustomerInvoiceDuplicatePeriod(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	plan := seedPlan(t, db, "Fibra 300", 29.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)
	seedSubscription(t, db, customer.ID, plan.ID, 29.90)

	first := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)
	require.True(t, first.Succeeded)

	second := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)
	assert.False(t, second.Succeeded)
	assert.Contains(t, second.Error, "Ya existe una factura")
}

func TestGenerateMonthlyInvoices(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC))
	notifier := &mockNotifier{}
	svc := newTestService(t, db, fake, notifier)

	plan := seedPlan(t, db, "Fibra 300", 29.90)

	good := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)
	seedSubscription(t, db, good.ID, plan.ID, 29.90)

	// Active but without any subscription, should count as a failure.
	seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)

	// Suspended customers never enter the batch.
	suspended := seedCustomer(t, db, customerdomain.CustomerStateSuspended, plan.ID, 29.90)
	seedSubscription(t, db, suspended.ID, plan.ID, 29.90)

	result := svc.GenerateMonthlyInvoices(context.Background(), time.June, 2024, "manual")

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Invoices, 2)

	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Facturación Automática Completada", notifier.titles[0])
	assert.Contains(t, notifier.contents[0], "1 facturas")
	assert.Contains(t, notifier.contents[0], "1 fallaron")
}

func TestGenerateMonthlyInvoicesSkipsPendingInvoice(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.July, 1, 6, 0, 0, 0, time.UTC))
	notifier := &mockNotifier{}
	svc := newTestService(t, db, fake, notifier)

	plan := seedPlan(t, db, "Fibra 300", 29.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)
	seedSubscription(t, db, customer.ID, plan.ID, 29.90)

	june := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)
	require.True(t, june.Succeeded)

	// June's invoice is still pending, so July's sweep leaves the customer
	// alone entirely.
	result := svc.GenerateMonthlyInvoices(context.Background(), time.July, 2024, "scheduled")

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Invoices)
}

func TestGenerateMonthlyInvoicesStorageUnavailable(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	// Dropping the customers table simulates an unreachable store.
	require.NoError(t, db.Migrator().DropTable(&customerdomain.Customer{}))

	result := svc.GenerateMonthlyInvoices(context.Background(), time.June, 2024, "manual")

	assert.Equal(t, billingdomain.BatchResult{Invoices: []billingdomain.InvoiceResult{}}, result)
}

func TestGenerateMonthlyInvoicesNotificationFailureIsNonFatal(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	notifier := &mockNotifier{fail: true}
	svc := newTestService(t, db, fake, notifier)

	plan := seedPlan(t, db, "Fibra 300", 29.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 29.90)
	seedSubscription(t, db, customer.ID, plan.ID, 29.90)

	result := svc.GenerateMonthlyInvoices(context.Background(), time.June, 2024, "manual")

	assert.Equal(t, 1, result.Succeeded)
}

func TestGenerateCustomerInvoiceSubscriptionLockedPricing(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	policy := config.DefaultBillingPolicy()
	policy.LineItemPricing = config.PricingSubscriptionLocked

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fake,
		Policy:        config.NewStaticBillingPolicyHolder(policy),
		Notifier:      &mockNotifier{},
		Customers:     customerrepo.Provide(),
		Subscriptions: subscriptionrepo.Provide(),
		Plans:         planrepo.Provide(),
		Invoices:      invoicerepo.Provide(),
	}).(*Service)

	plan := seedPlan(t, db, "Fibra 300", 34.90)
	customer := seedCustomer(t, db, customerdomain.CustomerStateActive, plan.ID, 24.90)
	// Subscription locked in a promotional price lower than the list price.
	seedSubscription(t, db, customer.ID, plan.ID, 24.90)

	result := svc.GenerateCustomerInvoice(context.Background(), customer.ID, time.June, 2024)

	require.True(t, result.Succeeded, "error: %s", result.Error)
	assert.True(t, result.Total.Equal(decimal.NewFromFloat(24.90)), "total = %s", result.Total)
}

func TestNextPeriod(t *testing.T) {
	db := setupTestDB(t)

	fake := clock.NewFakeClock(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake, &mockNotifier{})

	month, year := svc.NextPeriod()
	assert.Equal(t, time.June, month)
	assert.Equal(t, 2024, year)

	fake.Advance(10 * 24 * time.Hour)
	month, year = svc.NextPeriod()
	assert.Equal(t, time.July, month)
	assert.Equal(t, 2024, year)
}
