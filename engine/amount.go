/*
amount.go - Per-occurrence amount resolution

PURPOSE:
  Resolves the monetary magnitude for a firing stream on a given date:
  base amount, then the latest dated step override, then the compounding
  monthly escalator.

RESOLUTION ORDER:
  1. Start from the stream's base amount.
  2. Apply the LAST step whose effective date is on or before the target
     date. Steps are a step function: each replaces the base outright.
  3. If an escalator percent is configured and a previous fire date is
     known, multiply by (1 + pct/100)^monthsElapsed, where monthsElapsed
     counts whole calendar-month boundaries (see MonthsBetween). The
     escalator compounds against the stepped value. The first occurrence
     in any scan has no previous date and is never escalated.

The resolver returns a magnitude; direction/sign belongs to the caller.
*/
package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	decOne     = decimal.NewFromInt(1)
	decSeven   = decimal.NewFromInt(7)
	decHundred = decimal.NewFromInt(100)
)

// percentRate converts a configured percent into a decimal fraction.
// Non-finite percents are inert and resolve to zero, like every other
// malformed field.
func percentRate(pct float64) decimal.Decimal {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(pct).Div(decHundred)
}

// ResolveAmount computes the magnitude of the stream's occurrence on the
// given date. previousFire is the prior occurrence date from the same
// scan, or nil for the first occurrence.
func ResolveAmount(s RecurringStream, on Date, previousFire *Date) Money {
	amount := s.Base

	// Step function: last effective step wins, scanned in ascending order.
	for _, step := range s.Steps {
		if step.EffectiveFrom.IsZero() || step.EffectiveFrom.After(on) {
			continue
		}
		amount = step.Amount
	}

	if s.EscalatorPercent != 0 && previousFire != nil {
		months := MonthsBetween(*previousFire, on)
		pct := percentRate(s.EscalatorPercent)
		if months > 0 && !pct.IsZero() {
			rate := decOne.Add(pct)
			amount = amount.Mul(rate.Pow(decimal.NewFromInt(int64(months))))
		}
	}

	return amount
}
