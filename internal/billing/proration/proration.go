// Package proration implements the day-based charge split applied when a
// customer changes plan in the middle of a billing period.
package proration

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrChangeBeforeAnchor  = errors.New("change_date_before_period_start")
	ErrChangeOutsidePeriod = errors.New("change_date_outside_current_period")
)

// Result describes how a period's charge splits around a plan change.
// Adjustment is positive when the customer owes more (upgrade) and negative
// when the customer is owed a credit (downgrade).
type Result struct {
	ElapsedDays     int             `json:"elapsed_days"`
	RemainingDays   int             `json:"remaining_days"`
	TotalDays       int             `json:"total_days"`
	ConsumedAmount  decimal.Decimal `json:"consumed_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Adjustment      decimal.Decimal `json:"adjustment"`
	Description     string          `json:"description"`
}

// Calculate splits the period starting at anchor between the old and new
// monthly prices. The period always runs one calendar month from anchor, so
// totalDays tracks the real month length (28 to 31). The day of the change
// counts as elapsed, so a change on the anchor day yields elapsedDays 1.
func Calculate(oldPrice, newPrice decimal.Decimal, anchor, change time.Time) Result {
	periodEnd := anchor.AddDate(0, 1, 0)

	totalDays := ceilDays(periodEnd.Sub(anchor))
	elapsedDays := ceilDays(change.Sub(anchor))
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	remainingDays := totalDays - elapsedDays

	total := decimal.NewFromInt(int64(totalDays))
	dailyOld := oldPrice.Div(total)
	dailyNew := newPrice.Div(total)

	remaining := decimal.NewFromInt(int64(remainingDays))
	elapsed := decimal.NewFromInt(int64(elapsedDays))

	adjustment := dailyNew.Sub(dailyOld).Mul(remaining).Round(2)

	var description string
	switch {
	case adjustment.IsPositive():
		description = fmt.Sprintf(
			"Upgrade: Se cobrará un ajuste de €%s por los %d días restantes del período actual.",
			adjustment.StringFixed(2), remainingDays,
		)
	case adjustment.IsNegative():
		description = fmt.Sprintf(
			"Downgrade: Se aplicará un crédito de €%s a favor del cliente por los %d días restantes.",
			adjustment.Abs().StringFixed(2), remainingDays,
		)
	default:
		description = "Cambio sin diferencia de precio. No hay ajuste de prorrateo."
	}

	return Result{
		ElapsedDays:     elapsedDays,
		RemainingDays:   remainingDays,
		TotalDays:       totalDays,
		ConsumedAmount:  dailyOld.Mul(elapsed).Round(2),
		RemainingAmount: dailyOld.Mul(remaining).Round(2),
		Adjustment:      adjustment,
		Description:     description,
	}
}

// NextBillingDate returns the start of the period following anchor.
func NextBillingDate(anchor time.Time) time.Time {
	return anchor.AddDate(0, 1, 0)
}

// ValidateChangeDate checks that a plan change lands inside the billing
// period opened by anchor.
func ValidateChangeDate(anchor, change time.Time) error {
	if change.Before(anchor) {
		return ErrChangeBeforeAnchor
	}
	if !change.Before(NextBillingDate(anchor)) {
		return ErrChangeOutsidePeriod
	}
	return nil
}

// NextBillingPeriod decides which month a billing run started at now should
// target. Runs up to and including cutoverDay bill the current month; later
// runs bill the next month.
func NextBillingPeriod(now time.Time, cutoverDay int) (time.Month, int) {
	if cutoverDay <= 0 {
		cutoverDay = 15
	}
	month := now.Month()
	year := now.Year()
	if now.Day() > cutoverDay {
		if month == time.December {
			return time.January, year + 1
		}
		return month + 1, year
	}
	return month, year
}

func ceilDays(d time.Duration) int {
	const day = 24 * time.Hour
	n := d / day
	if d%day > 0 {
		n++
	}
	return int(n)
}
