package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/config"
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/output"
	"github.com/finsim/retirement-simulator/pkg/decimal"
	"github.com/finsim/retirement-simulator/pkg/metrics"
)

var (
	compareFormat  string   // console or json
	compareStates  []string // candidate states for compare state
	compareSplits  []float64
	annuityMonthly float64
	annuityYears   int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Sweep one decision dimension across identical market paths",
}

// compareSetup loads the scenario and builds an engine for a
// comparison subcommand.
func compareSetup(args []string) (*domain.SimulationInput, *calculation.Engine, error) {
	cfg, log, err := loadRuntime()
	if err != nil {
		return nil, nil, err
	}
	in, err := config.NewScenarioParser().LoadFromFile(args[0])
	if err != nil {
		return nil, nil, err
	}
	engine, err := buildEngine(cfg, log, metrics.NewManager())
	if err != nil {
		return nil, nil, err
	}
	return in, engine, nil
}

// emitComparison renders a comparison as JSON or hands it to the
// console renderer.
func emitComparison(v any, console func() []byte) error {
	switch compareFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		_, err = os.Stdout.Write(data)
		return err
	case "console", "text", "table":
		_, err := os.Stdout.Write(console())
		return err
	default:
		return fmt.Errorf("unknown format %q (available: console, json)", compareFormat)
	}
}

var compareStateCmd = &cobra.Command{
	Use:   "state <scenario.yaml>",
	Short: "Compare residence states by taxes and final portfolio value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, engine, err := compareSetup(args)
		if err != nil {
			return err
		}
		out, err := engine.CompareStates(cmd.Context(), in, compareStates)
		if err != nil {
			return err
		}
		return emitComparison(out, func() []byte { return output.FormatStateComparison(out) })
	},
}

var compareClaimingCmd = &cobra.Command{
	Use:   "ss-timing <scenario.yaml>",
	Short: "Compare Social Security claiming ages 62 through 70",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, engine, err := compareSetup(args)
		if err != nil {
			return err
		}
		out, err := engine.CompareClaimingAges(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emitComparison(out, func() []byte { return output.FormatClaimingComparison(out) })
	},
}

var compareAllocationCmd = &cobra.Command{
	Use:   "allocation <scenario.yaml>",
	Short: "Compare stock/bond splits on identical market paths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, engine, err := compareSetup(args)
		if err != nil {
			return err
		}
		out, err := engine.CompareAllocations(cmd.Context(), in, compareSplits)
		if err != nil {
			return err
		}
		return emitComparison(out, func() []byte { return output.FormatAllocationComparison(out) })
	},
}

var compareAnnuityCmd = &cobra.Command{
	Use:   "annuity <scenario.yaml>",
	Short: "Weigh staying invested against buying a fixed annuity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, engine, err := compareSetup(args)
		if err != nil {
			return err
		}
		monthly := decimal.NewMoney(annuityMonthly)
		out, err := engine.CompareAnnuity(cmd.Context(), in, monthly, annuityYears)
		if err != nil {
			return err
		}
		return emitComparison(out, func() []byte { return output.FormatAnnuityComparison(out) })
	},
}

func init() {
	compareCmd.PersistentFlags().StringVar(&compareFormat, "format", "console", "output format (console, json)")
	compareStateCmd.Flags().StringSliceVar(&compareStates, "states", nil, "candidate states; default is the no-income-tax set")
	compareAllocationCmd.Flags().Float64SliceVar(&compareSplits, "splits", nil, "stock fractions to sweep, e.g. 0.4,0.6,0.8")
	compareAnnuityCmd.Flags().Float64Var(&annuityMonthly, "monthly-payment", 0, "quoted monthly annuity payment in dollars")
	compareAnnuityCmd.Flags().IntVar(&annuityYears, "guarantee-years", 20, "guaranteed payout period in years")
	_ = compareAnnuityCmd.MarkFlagRequired("monthly-payment")

	compareCmd.AddCommand(compareStateCmd, compareClaimingCmd, compareAllocationCmd, compareAnnuityCmd)
	rootCmd.AddCommand(compareCmd)
}
