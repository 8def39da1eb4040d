package output

import (
	"bytes"
	"fmt"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// FormatStateComparison renders the residence-state sweep as a console
// table.
func FormatStateComparison(sc *domain.StateComparison) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "STATE TAX COMPARISON")
	fmt.Fprintln(&buf, "====================")
	fmt.Fprintf(&buf, "Base state: %s\n", sc.BaseState)
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "%-6s %9s %16s %18s %16s\n",
		"State", "Success", "Median Taxes", "Median Final", "Tax Savings")
	for _, e := range sc.Entries {
		fmt.Fprintf(&buf, "%-6s %9s %16s %18s %16s\n",
			e.State,
			FormatPercent(e.SuccessRate),
			FormatCurrency(e.MedianTotalTaxes),
			FormatCurrency(e.MedianFinalValue),
			FormatCurrency(e.TaxSavings),
		)
	}
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Best state by median final value: %s\n", sc.BestState)
	return buf.Bytes()
}

// FormatClaimingComparison renders the Social Security claiming-age
// sweep as a console table.
func FormatClaimingComparison(cc *domain.ClaimingComparison) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "SOCIAL SECURITY CLAIMING COMPARISON")
	fmt.Fprintln(&buf, "===================================")
	fmt.Fprintf(&buf, "%4s %14s %9s %18s %10s\n",
		"Age", "Monthly", "Success", "Lifetime (med)", "Breakeven")
	for _, e := range cc.Entries {
		breakeven := "-"
		if e.BreakevenAge != nil {
			breakeven = fmt.Sprintf("%d", *e.BreakevenAge)
		}
		fmt.Fprintf(&buf, "%4d %14s %9s %18s %10s\n",
			e.ClaimAge,
			FormatCurrency(e.MonthlyBenefit),
			FormatPercent(e.SuccessRate),
			FormatCurrency(e.LifetimeBenefits),
			breakeven,
		)
	}
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Optimal for success rate:      claim at %d\n", cc.OptimalForSuccess)
	fmt.Fprintf(&buf, "Optimal for lifetime benefits: claim at %d\n", cc.OptimalForLongevity)
	return buf.Bytes()
}

// FormatAllocationComparison renders the stock/bond sweep as a console
// table.
func FormatAllocationComparison(ac *domain.AllocationComparison) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "ASSET ALLOCATION COMPARISON")
	fmt.Fprintln(&buf, "===========================")
	fmt.Fprintf(&buf, "%7s %9s %16s %16s %16s %11s %12s\n",
		"Stock", "Success", "P5 Final", "P50 Final", "P95 Final", "Hist Mean", "Volatility")
	for _, e := range ac.Entries {
		fmt.Fprintf(&buf, "%6.0f%% %9s %16s %16s %16s %10.1f%% %11.1f%%\n",
			e.StockAllocation*100,
			FormatPercent(e.SuccessRate),
			FormatCurrency(e.FinalValues.P5),
			FormatCurrency(e.FinalValues.P50),
			FormatCurrency(e.FinalValues.P95),
			e.HistoricalMeanReturn*100,
			e.RealizedVolatility*100,
		)
	}
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Optimal for success: %.0f%% stocks\n", ac.OptimalForSuccess*100)
	fmt.Fprintf(&buf, "Optimal for safety:  %.0f%% stocks\n", ac.OptimalForSafety*100)
	return buf.Bytes()
}

// FormatAnnuityComparison renders the annuity-vs-portfolio verdict.
func FormatAnnuityComparison(ac *domain.AnnuityComparison) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "ANNUITY VS PORTFOLIO")
	fmt.Fprintln(&buf, "====================")
	fmt.Fprintf(&buf, "Annuity guaranteed total:   %s\n", FormatCurrency(ac.AnnuityGuaranteedTotal))
	fmt.Fprintf(&buf, "P(portfolio beats annuity): %s\n", FormatPercent(ac.ProbPortfolioBeats))
	fmt.Fprintf(&buf, "Median portfolio net:       %s\n", FormatCurrency(ac.MedianPortfolioNet))
	if ac.Simulation != nil {
		fmt.Fprintf(&buf, "Portfolio success rate:     %s\n", FormatPercent(ac.Simulation.SuccessRate))
	}
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Recommendation: %s\n", ac.Recommendation)
	return buf.Bytes()
}
