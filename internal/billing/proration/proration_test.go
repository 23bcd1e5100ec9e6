package proration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateUpgradeOnAnchorDay(t *testing.T) {
	result := Calculate(
		decimal.NewFromFloat(20.00),
		decimal.NewFromFloat(50.00),
		date(2024, time.January, 1),
		date(2024, time.January, 1),
	)

	assert.Equal(t, 1, result.ElapsedDays)
	assert.Equal(t, 31, result.TotalDays)
	assert.Equal(t, 30, result.RemainingDays)
	assert.True(t, result.Adjustment.Equal(decimal.NewFromFloat(29.03)),
		"adjustment = %s", result.Adjustment)
	assert.Contains(t, result.Description, "Upgrade")
}

func TestCalculateDowngradeNearPeriodEnd(t *testing.T) {
	anchor := date(2024, time.March, 1)
	change := date(2024, time.March, 31)

	result := Calculate(
		decimal.NewFromFloat(50.00),
		decimal.NewFromFloat(20.00),
		anchor,
		change,
	)

	assert.True(t, result.Adjustment.IsNegative(), "adjustment = %s", result.Adjustment)
	assert.Contains(t, result.Description, "Downgrade")
	assert.True(t, result.Adjustment.Abs().LessThan(decimal.NewFromFloat(2.00)),
		"last-day change should carry a minimal adjustment, got %s", result.Adjustment)
}

func TestCalculateNoPriceDifference(t *testing.T) {
	now := date(2024, time.June, 10)

	result := Calculate(
		decimal.NewFromFloat(20.00),
		decimal.NewFromFloat(20.00),
		now,
		now,
	)

	assert.True(t, result.Adjustment.IsZero())
	assert.Contains(t, result.Description, "sin diferencia")
}

func TestCalculateTotalDaysTracksMonthLength(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		days   int
	}{
		{"january", date(2024, time.January, 1), 31},
		{"february leap", date(2024, time.February, 1), 29},
		{"february non leap", date(2023, time.February, 1), 28},
		{"april", date(2024, time.April, 1), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Calculate(
				decimal.NewFromFloat(30.00),
				decimal.NewFromFloat(45.00),
				tt.anchor,
				tt.anchor.AddDate(0, 0, 10),
			)
			assert.Equal(t, tt.days, result.TotalDays)
		})
	}
}

func TestCalculateDaysAlwaysCoverPeriod(t *testing.T) {
	anchor := date(2024, time.May, 7)
	for offset := 0; offset < 31; offset++ {
		change := anchor.AddDate(0, 0, offset)
		if err := ValidateChangeDate(anchor, change); err != nil {
			continue
		}
		result := Calculate(
			decimal.NewFromFloat(24.90),
			decimal.NewFromFloat(39.90),
			anchor,
			change,
		)
		assert.Equal(t, result.TotalDays, result.ElapsedDays+result.RemainingDays,
			"offset %d", offset)
	}
}

func TestCalculateConsumedPlusRemainingApproximatesOldPrice(t *testing.T) {
	oldPrice := decimal.NewFromFloat(35.00)
	result := Calculate(
		oldPrice,
		decimal.NewFromFloat(60.00),
		date(2024, time.July, 1),
		date(2024, time.July, 15),
	)

	sum := result.ConsumedAmount.Add(result.RemainingAmount)
	diff := sum.Sub(oldPrice).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.02)),
		"consumed %s + remaining %s drifted from %s", result.ConsumedAmount, result.RemainingAmount, oldPrice)
}

func TestValidateChangeDate(t *testing.T) {
	anchor := date(2024, time.January, 15)

	require.NoError(t, ValidateChangeDate(anchor, anchor))
	require.NoError(t, ValidateChangeDate(anchor, date(2024, time.February, 14)))

	assert.ErrorIs(t, ValidateChangeDate(anchor, date(2024, time.January, 14)), ErrChangeBeforeAnchor)
	assert.ErrorIs(t, ValidateChangeDate(anchor, date(2024, time.February, 15)), ErrChangeOutsidePeriod)
	assert.ErrorIs(t, ValidateChangeDate(anchor, date(2024, time.March, 1)), ErrChangeOutsidePeriod)
}

func TestNextBillingDate(t *testing.T) {
	assert.Equal(t, date(2024, time.February, 15), NextBillingDate(date(2024, time.January, 15)))
	assert.Equal(t, date(2025, time.January, 1), NextBillingDate(date(2024, time.December, 1)))
	// Jan 31 + 1 month normalizes per calendar arithmetic.
	assert.Equal(t, date(2024, time.March, 2), NextBillingDate(date(2024, time.January, 31)))
}

func TestNextBillingPeriod(t *testing.T) {
	month, year := NextBillingPeriod(date(2024, time.June, 15), 15)
	assert.Equal(t, time.June, month)
	assert.Equal(t, 2024, year)

	month, year = NextBillingPeriod(date(2024, time.June, 16), 15)
	assert.Equal(t, time.July, month)
	assert.Equal(t, 2024, year)

	month, year = NextBillingPeriod(date(2024, time.December, 20), 15)
	assert.Equal(t, time.January, month)
	assert.Equal(t, 2025, year)

	// Same input twice yields the same answer.
	m1, y1 := NextBillingPeriod(date(2024, time.March, 3), 15)
	m2, y2 := NextBillingPeriod(date(2024, time.March, 3), 15)
	assert.Equal(t, m1, m2)
	assert.Equal(t, y1, y2)
}
