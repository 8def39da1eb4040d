package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/taxsvc"
	"github.com/finsim/retirement-simulator/pkg/metrics"
)

// Engine is the front door for running simulations. It owns the shared
// collaborators (tax calculator, life table, worker pool sizing) and
// turns a raw SimulationInput into an aggregated result. One Engine
// serves many concurrent runs; per-run state lives in the Runner it
// spawns for each call.
type Engine struct {
	taxes   taxsvc.Calculator
	table   LifeTable
	workers int
	maxSims int
	log     Logger
	metrics *metrics.Manager
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithTaxCalculator substitutes the tax calculator. The default is the
// in-process calculator behind a memoizing cache.
func WithTaxCalculator(c taxsvc.Calculator) EngineOption {
	return func(e *Engine) { e.taxes = c }
}

// WithLifeTable substitutes the mortality table.
func WithLifeTable(t LifeTable) EngineOption {
	return func(e *Engine) { e.table = t }
}

// WithWorkers sets the worker pool size; <= 0 means one per CPU.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) { e.workers = n }
}

// WithMaxSimulations caps the per-run path count; 0 means uncapped.
// Requests over the cap are rejected as validation errors.
func WithMaxSimulations(n int) EngineOption {
	return func(e *Engine) { e.maxSims = n }
}

// WithLogger sets the engine logger.
func WithLogger(l Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Manager) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds an Engine, filling unset collaborators with
// defaults that work offline.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{log: NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.taxes == nil {
		cached := taxsvc.NewCached(taxsvc.NewLocalCalculator(), 0)
		cached.SetMetrics(e.metrics)
		e.taxes = cached
	}
	if e.table == nil {
		e.table = NewLifeTable()
	}
	return e
}

// Simulate runs one Monte Carlo simulation to completion.
func (e *Engine) Simulate(ctx context.Context, in *domain.SimulationInput) (*domain.SimulationResult, error) {
	return e.SimulateWithProgress(ctx, in, nil)
}

// SimulateWithProgress runs one simulation, invoking onProgress with
// coalesced snapshots as the run advances. onProgress is called from a
// single goroutine and never after SimulateWithProgress returns.
func (e *Engine) SimulateWithProgress(ctx context.Context, in *domain.SimulationInput, onProgress func(ProgressEvent)) (*domain.SimulationResult, error) {
	run, err := e.prepare(in)
	if err != nil {
		return nil, err
	}
	_, res, err := e.run(ctx, run, onProgress)
	return res, err
}

// prepare turns the caller's input into a run-ready private copy:
// defaults applied, validated, capped, and with the master seed
// resolved so the run is reproducible from the reported result.
func (e *Engine) prepare(in *domain.SimulationInput) (*domain.SimulationInput, error) {
	if in == nil {
		return nil, domain.NewValidationError("input", "simulation input is required")
	}
	run := in.Clone()
	run.ApplyDefaults()
	if err := run.Validate(); err != nil {
		return nil, err
	}
	if e.maxSims > 0 && run.NSimulations > e.maxSims {
		return nil, domain.NewValidationError("n_simulations",
			fmt.Sprintf("must not exceed %d", e.maxSims))
	}
	if run.Seed == 0 {
		run.Seed = seedFunc()
	}
	return run, nil
}

// run executes an already-prepared input and returns the raw paths
// alongside the aggregate. Comparison sweeps call this directly so
// every variant shares one resolved seed and the sweeps can compute
// path-level statistics the aggregate drops.
func (e *Engine) run(ctx context.Context, run *domain.SimulationInput, onProgress func(ProgressEvent)) ([]domain.PathResult, *domain.SimulationResult, error) {
	start := time.Now()
	e.metrics.SimulationStarted()
	e.log.Infof("simulation starting: %d paths, %d years, seed %d", run.NSimulations, run.Years(), run.Seed)

	sim := NewPathSimulator(run, NewReturnSampler(run), e.table, e.taxes, e.log)
	sim.OnNonconvergence = e.metrics.GrossUpFallback
	runner := NewRunner(sim, e.workers, e.log)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range runner.Progress() {
			if onProgress != nil {
				onProgress(ev)
			}
		}
	}()

	paths, err := runner.Run(ctx, run.Seed, run.NSimulations)
	<-drained
	if err != nil {
		e.metrics.SimulationFailed()
		e.log.Errorf("simulation aborted after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return nil, nil, err
	}

	res := Aggregate(run, paths)
	res.RunID = uuid.NewString()
	res.Seed = run.Seed

	e.metrics.PathsCompleted(len(paths))
	e.metrics.SimulationCompleted(time.Since(start))
	e.log.Infof("simulation %s finished in %s: success rate %.1f%%",
		res.RunID, time.Since(start).Round(time.Millisecond), res.SuccessRate*100)
	return paths, res, nil
}
