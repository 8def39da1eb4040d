// Package server exposes the simulation engine over HTTP: an NDJSON
// streaming run endpoint, synchronous comparison endpoints, health,
// Prometheus metrics, and the bundled mortality table.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
	"github.com/finsim/retirement-simulator/pkg/metrics"
)

// Simulator is the engine surface the handlers depend on. Using an
// interface keeps the handler layer loosely coupled to the calculation
// package.
type Simulator interface {
	SimulateWithProgress(ctx context.Context, in *domain.SimulationInput, onProgress func(calculation.ProgressEvent)) (*domain.SimulationResult, error)
	CompareStates(ctx context.Context, in *domain.SimulationInput, states []string) (*domain.StateComparison, error)
	CompareClaimingAges(ctx context.Context, in *domain.SimulationInput) (*domain.ClaimingComparison, error)
	CompareAllocations(ctx context.Context, in *domain.SimulationInput, splits []float64) (*domain.AllocationComparison, error)
	CompareAnnuity(ctx context.Context, in *domain.SimulationInput, monthly decimal.Money, guaranteeYears int) (*domain.AnnuityComparison, error)
}

// Server wires HTTP routes for the simulation API.
type Server struct {
	engine  Simulator
	table   calculation.LifeTable
	log     *logrus.Logger
	metrics *metrics.Manager
}

// NewServer builds a server around an engine. A nil table falls back to
// the bundled life table, a nil logger to a default logrus logger.
func NewServer(engine Simulator, table calculation.LifeTable, log *logrus.Logger, m *metrics.Manager) *Server {
	if table == nil {
		table = calculation.NewLifeTable()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Server{engine: engine, table: table, log: log, metrics: m}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/simulate", s.instrument("simulate", s.handleSimulate))
	mux.HandleFunc("/compare/state", s.instrument("compare_state", s.handleCompareState))
	mux.HandleFunc("/compare/ss-timing", s.instrument("compare_ss_timing", s.handleCompareClaiming))
	mux.HandleFunc("/compare/allocation", s.instrument("compare_allocation", s.handleCompareAllocation))
	mux.HandleFunc("/compare/annuity", s.instrument("compare_annuity", s.handleCompareAnnuity))
	mux.HandleFunc("/mortality/", s.instrument("mortality", s.handleMortality))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
}

// instrument wraps a handler to record request metrics and an access
// log line.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(wrapped, r)
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(endpoint, strconv.Itoa(wrapped.status), elapsed)
		s.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
			"status":   wrapped.status,
			"elapsed":  elapsed,
		}).Debug("request served")
	}
}

// statusWriter captures the response status code. It forwards Flush so
// the streaming endpoint keeps working behind the wrapper.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
