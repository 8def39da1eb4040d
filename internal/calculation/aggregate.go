package calculation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// Aggregate reduces one run's raw paths into the statistical summary.
// The engine fills in run identity (ID, seed) afterwards.
func Aggregate(in *domain.SimulationInput, paths []domain.PathResult) *domain.SimulationResult {
	n := len(paths)
	res := &domain.SimulationResult{
		NSimulations: n,
		Years:        in.Years(),
	}
	if n == 0 {
		return res
	}

	finals := make([]float64, n)
	failures := 0
	early := 0
	var depletionYears []float64
	for i, p := range paths {
		finals[i] = p.FinalBalance().Float64()
		if p.Failed() {
			failures++
		}
		if p.DepletionYear != nil {
			depletionYears = append(depletionYears, float64(*p.DepletionYear))
			if *p.DepletionYear <= 10 {
				early++
			}
		}
	}
	res.SuccessRate = float64(n-failures) / float64(n)
	res.ProbDepletion10Yr = float64(early) / float64(n)

	sort.Float64s(finals)
	res.FinalValues = moneyPercentiles(finals)
	res.MedianFinalValue = res.FinalValues.P50
	res.MeanFinalValue = decimal.NewMoney(stat.Mean(finals, nil))
	res.PercentilePaths = percentileBands(paths, in.Years())

	if len(depletionYears) > 0 {
		sort.Float64s(depletionYears)
		age := in.CurrentAge + int(math.Round(stat.Quantile(0.5, stat.LinInterp, depletionYears, nil)))
		res.MedianDepletionAge = &age
	}

	res.InitialWithdrawalRate = initialWithdrawalRate(in, paths)
	res.MedianTotalWithdrawn = medianOf(paths, func(p domain.PathResult) decimal.Money { return p.TotalWithdrawn })
	res.MedianTotalTaxes = medianOf(paths, func(p domain.PathResult) decimal.Money { return p.TotalTaxes })
	res.RepresentativePath = representativePath(paths, res.MedianFinalValue)
	return res
}

// moneyPercentiles reads the five standard levels off a sorted sample
// with linear interpolation between order statistics.
func moneyPercentiles(sorted []float64) domain.Percentiles {
	q := func(level float64) decimal.Money {
		return decimal.NewMoney(stat.Quantile(level, stat.LinInterp, sorted, nil))
	}
	return domain.Percentiles{P5: q(0.05), P25: q(0.25), P50: q(0.50), P75: q(0.75), P95: q(0.95)}
}

// percentileBands computes the year-indexed percentile curves of the
// balance distribution, including year zero.
func percentileBands(paths []domain.PathResult, years int) domain.PercentileBands {
	bands := domain.PercentileBands{
		P5:  make([]decimal.Money, years+1),
		P25: make([]decimal.Money, years+1),
		P50: make([]decimal.Money, years+1),
		P75: make([]decimal.Money, years+1),
		P95: make([]decimal.Money, years+1),
	}
	col := make([]float64, len(paths))
	for y := 0; y <= years; y++ {
		for i, p := range paths {
			col[i] = p.Balances[y].Float64()
		}
		sort.Float64s(col)
		pc := moneyPercentiles(col)
		bands.P5[y], bands.P25[y], bands.P50[y], bands.P75[y], bands.P95[y] = pc.P5, pc.P25, pc.P50, pc.P75, pc.P95
	}
	return bands
}

// initialWithdrawalRate is the first simulated year's withdrawal as a
// percentage of starting capital. The first path's opening withdrawal
// stands in for all paths; only a history-sampled dividend yield can
// make year one differ across them.
func initialWithdrawalRate(in *domain.SimulationInput, paths []domain.PathResult) float64 {
	capital := in.TotalCapital()
	if !capital.IsPositive() || len(paths[0].Breakdowns) == 0 {
		return 0
	}
	return paths[0].Breakdowns[0].Withdrawal.Float64() / capital.Float64() * 100
}

func medianOf(paths []domain.PathResult, field func(domain.PathResult) decimal.Money) decimal.Money {
	vals := make([]float64, len(paths))
	for i, p := range paths {
		vals[i] = field(p).Float64()
	}
	sort.Float64s(vals)
	return decimal.NewMoney(stat.Quantile(0.5, stat.LinInterp, vals, nil))
}

// representativePath picks the completed path whose final value lands
// closest to the median, keeping the reported year table internally
// consistent instead of splicing per-field medians across paths.
func representativePath(paths []domain.PathResult, median decimal.Money) []domain.YearBreakdown {
	best := 0
	bestDiff := paths[0].FinalBalance().Sub(median).Abs()
	for i := 1; i < len(paths); i++ {
		diff := paths[i].FinalBalance().Sub(median).Abs()
		if diff.LessThan(bestDiff) {
			best, bestDiff = i, diff
		}
	}
	return paths[best].Breakdowns
}
