package roi

import (
	"errors"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrZeroRoiRate is a data-integrity error: the investment cannot accrue.
	ErrZeroRoiRate = errors.New("investment has zero or missing daily ROI rate")
	// ErrAlreadyAccrued means the investment was accrued today already.
	ErrAlreadyAccrued = errors.New("investment already accrued today")
	// ErrInactive means the investment's term has ended.
	ErrInactive = errors.New("investment is not active")
)

var hundred = decimal.NewFromInt(100)

// Step is one day's ROI for a single investment.
type Step struct {
	Daily      decimal.Decimal // principal * dailyRoiRate
	Cashable   decimal.Decimal // paid out to the ROI wallet balance
	Renewable  decimal.Decimal // retained in the renewable-principal accumulator
	Investment domain.Investment
}

// AccrueStep computes the day's ROI split and returns the investment with its
// lifecycle counters advanced. Pure: no I/O, the caller persists the result.
// The returned investment's Principal is always the input Principal —
// renewable ROI accumulates on the wallet, never here.
func AccrueStep(inv domain.Investment, renewablePct decimal.Decimal, today time.Time) (Step, error) {
	if !inv.IsActive {
		return Step{}, ErrInactive
	}
	if inv.LastAccrualDate != nil && domain.SameDay(*inv.LastAccrualDate, today) {
		return Step{}, ErrAlreadyAccrued
	}
	if !inv.DailyRoiRate.IsPositive() {
		return Step{}, ErrZeroRoiRate
	}

	daily := inv.Principal.Mul(inv.DailyRoiRate)
	renewable := daily.Mul(renewablePct).Div(hundred)
	cashable := daily.Sub(renewable)

	day := domain.Day(today)
	inv.LastAccrualDate = &day
	inv.TotalRoiEarned = inv.TotalRoiEarned.Add(cashable)
	inv.TotalReinvested = inv.TotalReinvested.Add(renewable)
	inv.DaysElapsed++
	inv.DaysRemaining = inv.DurationDays - inv.DaysElapsed
	if inv.DaysRemaining < 0 {
		inv.DaysRemaining = 0
	}
	inv.IsActive = inv.DaysElapsed < inv.DurationDays && !day.After(domain.Day(inv.EndDate))

	return Step{Daily: daily, Cashable: cashable, Renewable: renewable, Investment: inv}, nil
}
