// Package finance provides the deterministic arithmetic behind gap analysis:
// compound projection of a contribution stream and the annuity solve for the
// contribution required to hit a target.
package finance

import (
	"math"
)

// FutureValue projects a starting balance plus a level monthly contribution
// forward over the given number of months at a monthly rate, compounding
// monthly with contributions applied at the end of each month.
func FutureValue(current, monthly, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return current
	}
	if monthlyRate == 0 {
		return current + monthly*float64(months)
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	return current*growth + monthly*((growth-1)/monthlyRate)
}

// RequiredMonthly solves the annuity equation
//
//	target = current*(1+r)^n + m * (((1+r)^n - 1)/r)
//
// for the level monthly contribution m. A target already covered by the
// compounded current balance yields 0, never a negative contribution.
func RequiredMonthly(target, current, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		required := (target - current) / float64(months)
		return math.Max(0, required)
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	required := (target - current*growth) * monthlyRate / (growth - 1)
	return math.Max(0, required)
}

// MonthsToReach returns the smallest month count at which the projected value
// meets the target, scanning up to maxMonths. The second return is false when
// the target is unreachable within maxMonths at the given contribution.
func MonthsToReach(target, current, monthly, monthlyRate float64, maxMonths int) (int, bool) {
	if current >= target {
		return 0, true
	}
	for n := 1; n <= maxMonths; n++ {
		if FutureValue(current, monthly, monthlyRate, n) >= target {
			return n, true
		}
	}
	return 0, false
}
