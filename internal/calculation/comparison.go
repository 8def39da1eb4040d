package calculation

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/taxsvc"
	"github.com/finsim/retirement-simulator/pkg/dateutil"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// Comparison engines. Each sweep varies exactly one dimension of a base
// input and re-runs the full pipeline per variant. The master seed is
// resolved once on the base input and shared by every variant, so the
// variants see identical market and mortality draws and differ only in
// the dimension under study.

// defaultAllocationSplits is the stock-share sweep used when the caller
// does not name one.
var defaultAllocationSplits = []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0}

// CompareStates re-runs the scenario across candidate residence states.
// An empty candidate list sweeps the no-income-tax states. The base
// state always appears as the first entry with zero savings.
func (e *Engine) CompareStates(ctx context.Context, in *domain.SimulationInput, states []string) (*domain.StateComparison, error) {
	base, err := e.prepare(in)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		states = taxsvc.NoTaxStates()
	}
	candidates := []string{base.State}
	for _, s := range states {
		if !taxsvc.ValidState(s) {
			return nil, domain.NewValidationError("states", fmt.Sprintf("unknown state %q", s))
		}
		if s == base.State {
			continue
		}
		candidates = append(candidates, s)
	}
	e.log.Infof("state comparison: %s vs %d candidates", base.State, len(candidates)-1)

	cmp := &domain.StateComparison{BaseState: base.State}
	var baseTaxes decimal.Money
	for i, s := range candidates {
		variant := base.Clone()
		variant.State = s
		_, res, err := e.run(ctx, variant, nil)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			baseTaxes = res.MedianTotalTaxes
		}
		cmp.Entries = append(cmp.Entries, domain.StateComparisonEntry{
			State:            s,
			SuccessRate:      res.SuccessRate,
			MedianTotalTaxes: res.MedianTotalTaxes,
			MedianFinalValue: res.MedianFinalValue,
			TaxSavings:       baseTaxes.Sub(res.MedianTotalTaxes).FloorZero(),
		})
	}

	best := cmp.Entries[0]
	for _, entry := range cmp.Entries[1:] {
		if entry.MedianFinalValue.GreaterThan(best.MedianFinalValue) {
			best = entry
		}
	}
	cmp.BestState = best.State
	return cmp, nil
}

// CompareClaimingAges sweeps Social Security claiming ages 62 through
// 70 for the primary person, rescaling the stated monthly benefit
// through the reduction and delayed-credit schedule.
func (e *Engine) CompareClaimingAges(ctx context.Context, in *domain.SimulationInput) (*domain.ClaimingComparison, error) {
	base, err := e.prepare(in)
	if err != nil {
		return nil, err
	}
	if !base.SocialSecurityMonthly.IsPositive() {
		return nil, domain.NewValidationError("social_security_monthly", "must be positive for a claiming age comparison")
	}
	birthYear := dateutil.BirthYear(base.CurrentAge, base.StartYear)
	benefit62 := AdjustedMonthlyBenefit(base.SocialSecurityMonthly, base.SocialSecurityStartAge, EarliestClaimAge, birthYear)
	e.log.Infof("claiming age comparison: ages %d-%d, birth year %d", EarliestClaimAge, LatestClaimAge, birthYear)

	cmp := &domain.ClaimingComparison{}
	var bestSuccess float64 = -1
	bestLifetime := decimal.NewMoneyFromInt(-1)
	for age := EarliestClaimAge; age <= LatestClaimAge; age++ {
		monthly := AdjustedMonthlyBenefit(base.SocialSecurityMonthly, base.SocialSecurityStartAge, age, birthYear)
		variant := base.Clone()
		variant.SocialSecurityStartAge = age
		variant.SocialSecurityMonthly = monthly
		paths, res, err := e.run(ctx, variant, nil)
		if err != nil {
			return nil, err
		}
		lifetime := medianOf(paths, func(p domain.PathResult) decimal.Money { return p.LifetimeSocialSecurity })
		cmp.Entries = append(cmp.Entries, domain.ClaimingAgeEntry{
			ClaimAge:         age,
			MonthlyBenefit:   monthly,
			SuccessRate:      res.SuccessRate,
			LifetimeBenefits: lifetime,
			BreakevenAge:     breakevenAge(age, monthly, benefit62),
		})
		if res.SuccessRate > bestSuccess {
			bestSuccess = res.SuccessRate
			cmp.OptimalForSuccess = age
		}
		if lifetime.GreaterThan(bestLifetime) {
			bestLifetime = lifetime
			cmp.OptimalForLongevity = age
		}
	}
	return cmp, nil
}

// breakevenAge is the first age at which cumulative nominal benefits
// from claiming at claimAge overtake claiming at 62. Nil for age 62
// itself and for schedules that never cross by 120.
func breakevenAge(claimAge int, monthly, monthly62 decimal.Money) *int {
	if claimAge == EarliestClaimAge {
		return nil
	}
	for age := claimAge; age <= 120; age++ {
		delayed := monthly.MulFloat(float64(age - claimAge + 1))
		early := monthly62.MulFloat(float64(age - EarliestClaimAge + 1))
		if delayed.GreaterThan(early) {
			a := age
			return &a
		}
	}
	return nil
}

// CompareAllocations sweeps stock/bond splits. Within each variant
// every account kind's total is re-split to the target share, so tax
// treatment stays fixed while market exposure varies. An empty splits
// list uses the 0-100% sweep in 20-point steps.
func (e *Engine) CompareAllocations(ctx context.Context, in *domain.SimulationInput, splits []float64) (*domain.AllocationComparison, error) {
	base, err := e.prepare(in)
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		splits = defaultAllocationSplits
	}
	for _, alloc := range splits {
		if alloc < 0 || alloc > 1 {
			return nil, domain.NewValidationError("allocations", fmt.Sprintf("must be between 0 and 1, got %g", alloc))
		}
	}
	e.log.Infof("allocation comparison: %d splits", len(splits))

	stats := HistoricalStats()
	cmp := &domain.AllocationComparison{}
	for _, alloc := range splits {
		variant := rebalancedInput(base, alloc)
		paths, res, err := e.run(ctx, variant, nil)
		if err != nil {
			return nil, err
		}
		cmp.Entries = append(cmp.Entries, domain.AllocationEntry{
			StockAllocation:      alloc,
			SuccessRate:          res.SuccessRate,
			FinalValues:          res.FinalValues,
			HistoricalMeanReturn: alloc*stats["stock_mean"] + (1-alloc)*stats["bond_mean"],
			RealizedVolatility:   realizedVolatility(paths),
		})
	}

	best := cmp.Entries[0]
	for _, entry := range cmp.Entries[1:] {
		if entry.SuccessRate > best.SuccessRate {
			best = entry
		}
	}
	cmp.OptimalForSuccess = best.StockAllocation

	// Among splits within two points of the best success rate, prefer
	// the strongest downside outcome.
	safest := best
	for _, entry := range cmp.Entries {
		if entry.SuccessRate < best.SuccessRate-0.02 {
			continue
		}
		if entry.FinalValues.P5.GreaterThan(safest.FinalValues.P5) {
			safest = entry
		}
	}
	cmp.OptimalForSafety = safest.StockAllocation
	return cmp, nil
}

// rebalancedInput rewrites the portfolio so each account kind holds the
// target equity share. Kind totals are preserved exactly; the bond
// bucket takes any rounding residue.
func rebalancedInput(base *domain.SimulationInput, alloc float64) *domain.SimulationInput {
	totals := make(map[domain.AccountKind]decimal.Money)
	for _, b := range base.EffectiveBuckets() {
		totals[b.Kind] = totals[b.Kind].Add(b.Balance)
	}
	variant := base.Clone()
	variant.StockAllocation = &alloc
	variant.Buckets = nil
	for _, kind := range []domain.AccountKind{domain.AccountTaxable, domain.AccountTraditional, domain.AccountRoth} {
		total, ok := totals[kind]
		if !ok {
			continue
		}
		equity := total.MulFloat(alloc)
		variant.Buckets = append(variant.Buckets,
			domain.Bucket{Kind: kind, Fund: domain.FundEquity, Balance: equity},
			domain.Bucket{Kind: kind, Fund: domain.FundBond, Balance: total.Sub(equity)},
		)
	}
	return variant
}

// realizedVolatility pools every simulated year's portfolio return
// across all paths and reports the sample standard deviation. Years
// that began at a zero balance carry no return and are skipped.
func realizedVolatility(paths []domain.PathResult) float64 {
	var returns []float64
	for _, p := range paths {
		for _, bd := range p.Breakdowns {
			if bd.PortfolioStart.IsPositive() {
				returns = append(returns, bd.PortfolioReturn)
			}
		}
	}
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil)
}

// CompareAnnuity weighs the simulated portfolio against a fixed
// annuity paying monthly for at least guaranteeYears. A path beats the
// annuity when its net income (withdrawn minus taxes) exceeds the
// guaranteed total.
func (e *Engine) CompareAnnuity(ctx context.Context, in *domain.SimulationInput, monthly decimal.Money, guaranteeYears int) (*domain.AnnuityComparison, error) {
	if !monthly.IsPositive() {
		return nil, domain.NewValidationError("annuity_monthly_payment", "must be positive")
	}
	if guaranteeYears < 1 || guaranteeYears > 40 {
		return nil, domain.NewValidationError("annuity_guarantee_years", fmt.Sprintf("must be between 1 and 40, got %d", guaranteeYears))
	}
	base, err := e.prepare(in)
	if err != nil {
		return nil, err
	}
	paths, res, err := e.run(ctx, base, nil)
	if err != nil {
		return nil, err
	}

	guaranteed := monthly.Annual().MulFloat(float64(guaranteeYears))
	beats := 0
	for _, p := range paths {
		if p.TotalWithdrawn.Sub(p.TotalTaxes).GreaterThan(guaranteed) {
			beats++
		}
	}
	prob := float64(beats) / float64(len(paths))

	rec := domain.RecommendHybrid
	switch {
	case prob <= 0.40 || res.SuccessRate < 0.70:
		rec = domain.RecommendAnnuity
	case prob >= 0.60:
		rec = domain.RecommendPortfolio
	}

	return &domain.AnnuityComparison{
		Simulation:             res,
		AnnuityGuaranteedTotal: guaranteed,
		ProbPortfolioBeats:     prob,
		MedianPortfolioNet:     medianOf(paths, func(p domain.PathResult) decimal.Money { return p.TotalWithdrawn.Sub(p.TotalTaxes) }),
		Recommendation:         rec,
	}, nil
}
