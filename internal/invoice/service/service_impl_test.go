package service

import (
	"context"
	"testing"
	"time"

	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/invoice/domain"
	"github.com/FresyMetal/isr-crm/internal/invoice/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}, &domain.InvoiceLine{}))

	fake := clock.NewFakeClock(time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, db, fake
}

func seedInvoice(t *testing.T, db *gorm.DB, state domain.InvoiceState) *domain.Invoice {
	inv := &domain.Invoice{
		Number:     "FAC-202403-00001",
		CustomerID: 1,
		State:      state,
		IssueDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
		PeriodFrom: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		Subtotal:   decimal.NewFromFloat(29.90),
		TaxRate:    decimal.Zero,
		TaxAmount:  decimal.Zero,
		Total:      decimal.NewFromFloat(29.90),
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func TestMarkPaid(t *testing.T) {
	svc, db, fake := setup(t)
	inv := seedInvoice(t, db, domain.InvoiceStatePending)

	paid, err := svc.MarkPaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatePaid, paid.State)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, fake.Now(), *paid.PaidAt)

	var stored domain.Invoice
	require.NoError(t, db.First(&stored, inv.ID).Error)
	assert.Equal(t, domain.InvoiceStatePaid, stored.State)
	require.NotNil(t, stored.PaidAt)
}

func TestMarkPaidOverdue(t *testing.T) {
	svc, db, _ := setup(t)
	inv := seedInvoice(t, db, domain.InvoiceStateOverdue)

	paid, err := svc.MarkPaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatePaid, paid.State)
}

func TestMarkPaidRejections(t *testing.T) {
	svc, db, _ := setup(t)

	_, err := svc.MarkPaid(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	paid := seedInvoice(t, db, domain.InvoiceStatePaid)
	_, err = svc.MarkPaid(context.Background(), paid.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
}

func TestMarkPaidCancelled(t *testing.T) {
	svc, db, _ := setup(t)
	inv := seedInvoice(t, db, domain.InvoiceStateCancelled)

	_, err := svc.MarkPaid(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
}

func TestCancel(t *testing.T) {
	svc, db, fake := setup(t)
	inv := seedInvoice(t, db, domain.InvoiceStatePending)

	cancelled, err := svc.Cancel(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStateCancelled, cancelled.State)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, fake.Now(), *cancelled.CancelledAt)
}

func TestCancelRejectsPaid(t *testing.T) {
	svc, db, _ := setup(t)
	inv := seedInvoice(t, db, domain.InvoiceStatePaid)

	_, err := svc.Cancel(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	_, err = svc.Cancel(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestCancelTwice(t *testing.T) {
	svc, db, _ := setup(t)
	inv := seedInvoice(t, db, domain.InvoiceStatePending)

	_, err := svc.Cancel(context.Background(), inv.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
}
