package calculation

import (
	"github.com/finsim/retirement-simulator/pkg/dateutil"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// Social Security claiming bounds: benefits cannot start before 62,
// and delayed retirement credits stop accruing at 70.
const (
	EarliestClaimAge = 62
	LatestClaimAge   = 70
)

// ClaimingFactor is the multiplier applied to the full-retirement-age
// benefit when claiming at the given age. Early claims are reduced by
// 5/9 of 1% per month for the first 36 months before FRA and 5/12 of
// 1% for each month beyond; delayed claims earn 2/3 of 1% per month
// through 70. For a 1960+ cohort this yields 0.70 at 62 and 1.24 at 70.
func ClaimingFactor(claimAge, birthYear int) float64 {
	if claimAge < EarliestClaimAge {
		return 0
	}
	months := dateutil.MonthsFromFRA(claimAge, birthYear)
	switch {
	case months < 0:
		early := -months
		first := early
		if first > 36 {
			first = 36
		}
		extra := early - first
		return 1 - (5.0/9.0/100.0)*float64(first) - (5.0/12.0/100.0)*float64(extra)
	case months > 0:
		delayed := months
		if maxDelay := dateutil.MonthsFromFRA(LatestClaimAge, birthYear); delayed > maxDelay {
			delayed = maxDelay
		}
		return 1 + (2.0/3.0/100.0)*float64(delayed)
	default:
		return 1
	}
}

// AdjustedMonthlyBenefit rescales a monthly benefit quoted at one
// claiming age to another, normalizing through the FRA amount. The
// timing comparison uses this to derive each candidate age's benefit
// from the configured one.
func AdjustedMonthlyBenefit(benefit decimal.Money, fromAge, toAge, birthYear int) decimal.Money {
	fromFactor := ClaimingFactor(fromAge, birthYear)
	if fromFactor == 0 {
		return decimal.Zero()
	}
	return benefit.MulFloat(ClaimingFactor(toAge, birthYear) / fromFactor)
}
