package output

import (
	"bytes"
	"fmt"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// ConsoleFormatter renders a human-readable run summary.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(res *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "MONTE CARLO RETIREMENT SIMULATION")
	fmt.Fprintln(&buf, "=================================")
	fmt.Fprintf(&buf, "Run:        %s (seed %d)\n", res.RunID, res.Seed)
	fmt.Fprintf(&buf, "Paths:      %d over %d years\n", res.NSimulations, res.Years)
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Success rate:        %s\n", FormatPercent(res.SuccessRate))
	fmt.Fprintf(&buf, "Initial withdrawal:  %.2f%%\n", res.InitialWithdrawalRate)
	if res.MedianDepletionAge != nil {
		fmt.Fprintf(&buf, "Median depletion age: %d\n", *res.MedianDepletionAge)
	}
	fmt.Fprintf(&buf, "P(depleted in 10y):  %s\n", FormatPercent(res.ProbDepletion10Yr))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "Final portfolio value:")
	fmt.Fprintf(&buf, "  P5   %18s\n", FormatCurrency(res.FinalValues.P5))
	fmt.Fprintf(&buf, "  P25  %18s\n", FormatCurrency(res.FinalValues.P25))
	fmt.Fprintf(&buf, "  P50  %18s\n", FormatCurrency(res.FinalValues.P50))
	fmt.Fprintf(&buf, "  P75  %18s\n", FormatCurrency(res.FinalValues.P75))
	fmt.Fprintf(&buf, "  P95  %18s\n", FormatCurrency(res.FinalValues.P95))
	fmt.Fprintf(&buf, "  Mean %18s\n", FormatCurrency(res.MeanFinalValue))
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Median total withdrawn: %s\n", FormatCurrency(res.MedianTotalWithdrawn))
	fmt.Fprintf(&buf, "Median total taxes:     %s\n", FormatCurrency(res.MedianTotalTaxes))

	if len(res.RepresentativePath) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Representative path (closest to median outcome):")
		fmt.Fprintf(&buf, "%4s %16s %14s %14s %12s %16s\n",
			"Age", "Start", "Income", "Withdrawal", "Taxes", "End")
		for _, y := range res.RepresentativePath {
			fmt.Fprintf(&buf, "%4d %16s %14s %14s %12s %16s\n",
				y.Age,
				FormatCurrency(y.PortfolioStart),
				FormatCurrency(y.TotalIncome),
				FormatCurrency(y.Withdrawal),
				FormatCurrency(y.TotalTax),
				FormatCurrency(y.PortfolioEnd),
			)
		}
	}
	return buf.Bytes(), nil
}
