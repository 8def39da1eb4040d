// Package cmd implements the finsim command line interface.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/config"
	"github.com/finsim/retirement-simulator/internal/taxsvc"
	"github.com/finsim/retirement-simulator/pkg/metrics"
)

var (
	cfgFile  string // path to the runtime config file
	logLevel string // overrides the configured log level
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "finsim",
	Short: "Monte Carlo retirement path simulator",
	Long: `finsim simulates retirement portfolios year by year across thousands
of market and longevity paths, then reports success rates, percentile
outcomes, and strategy comparisons.`,
	SilenceUsage: true,
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "runtime config file (YAML); FINSIM_CONFIG works too")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides the config")
}

// loadRuntime resolves the runtime config and builds the process
// logger from it. Flag overrides win over file and environment.
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return cfg, log, nil
}

// buildEngine assembles the simulation engine from runtime config:
// the remote tax service when one is configured, the bundled brackets
// otherwise, both behind the memoizing cache.
func buildEngine(cfg *config.Config, log *logrus.Logger, m *metrics.Manager) (*calculation.Engine, error) {
	var inner taxsvc.Calculator
	if cfg.TaxServiceURL != "" {
		client, err := taxsvc.NewClient(cfg.TaxServiceURL,
			taxsvc.WithHTTPClient(&http.Client{Timeout: cfg.TaxServiceTimeout}),
			taxsvc.WithRetries(cfg.TaxServiceRetries, 500*time.Millisecond),
		)
		if err != nil {
			return nil, fmt.Errorf("building tax client: %w", err)
		}
		inner = client
	} else {
		inner = taxsvc.NewLocalCalculator()
	}
	cached := taxsvc.NewCached(inner, cfg.TaxCacheSize)
	cached.SetMetrics(m)

	return calculation.NewEngine(
		calculation.WithTaxCalculator(cached),
		calculation.WithWorkers(cfg.Workers),
		calculation.WithMaxSimulations(cfg.MaxSimulations),
		calculation.WithLogger(log),
		calculation.WithMetrics(m),
	), nil
}
