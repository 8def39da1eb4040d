package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/config"
	"github.com/finsim/retirement-simulator/internal/output"
	"github.com/finsim/retirement-simulator/pkg/metrics"
)

var (
	runFormat  string // output format name or alias
	runOutput  string // explicit output file; empty picks stdout or a timestamped file
	runPaths   int    // overrides the scenario's n_simulations
	runSeed    int64  // overrides the scenario's seed
	noProgress bool   // suppress the progress line on stderr
)

// runCmd executes one Monte Carlo simulation from a scenario file.
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a Monte Carlo simulation from a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}

		formatter := output.GetFormatterByName(runFormat)
		if formatter == nil {
			return fmt.Errorf("unknown format %q. Try one of: %s (aliases: %s)",
				runFormat,
				strings.Join(output.AvailableFormatterNames(), ", "),
				strings.Join(output.AvailableFormatAliases(), ", "))
		}

		in, err := config.NewScenarioParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("paths") {
			in.NSimulations = runPaths
		}
		if cmd.Flags().Changed("seed") {
			in.Seed = runSeed
		}

		m := metrics.NewManager()
		engine, err := buildEngine(cfg, log, m)
		if err != nil {
			return err
		}

		onProgress := func(ev calculation.ProgressEvent) {
			if noProgress {
				return
			}
			fmt.Fprintf(os.Stderr, "\rsimulating... year %d/%d, %d/%d paths done",
				ev.Year, ev.TotalYears, ev.Completed, ev.Total)
		}
		res, err := engine.SimulateWithProgress(cmd.Context(), in, onProgress)
		if !noProgress {
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return err
		}

		data, err := formatter.Format(res)
		if err != nil {
			return err
		}
		switch {
		case runOutput != "":
			if err := os.WriteFile(runOutput, data, 0o644); err != nil {
				return err
			}
			log.WithField("file", runOutput).Info("report written")
		case formatter.Name() == "console" || formatter.Name() == "json":
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
		default:
			name, err := output.WriteFormatted(formatter, res)
			if err != nil {
				return err
			}
			log.WithField("file", name).Info("report written")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "console", "output format (console, json, csv, xlsx)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write the report to this file")
	runCmd.Flags().IntVar(&runPaths, "paths", 0, "number of simulated paths; overrides the scenario")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "master seed; overrides the scenario")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "suppress the progress line")
	rootCmd.AddCommand(runCmd)
}
