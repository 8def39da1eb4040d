// Package metrics exposes the simulator's Prometheus instrumentation.
// A Manager owns a private registry so the scrape surface carries only
// simulation metrics, not the default Go collector noise. Every method
// is nil-safe: components accept an optional *Manager and call it
// unconditionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finsim"

// Manager bundles the collector set for one process.
type Manager struct {
	registry *prometheus.Registry

	simulationsStarted   prometheus.Counter
	simulationsCompleted prometheus.Counter
	simulationsFailed    prometheus.Counter
	simulationsRunning   prometheus.Gauge
	pathsCompleted       prometheus.Counter
	runDuration          prometheus.Histogram
	grossUpFallbacks     prometheus.Counter

	taxCacheHits   prometheus.Counter
	taxCacheMisses prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewManager builds a Manager with a fresh registry.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}
	auto := promauto.With(m.registry)

	m.simulationsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "simulations_started_total",
		Help:      "Monte Carlo runs accepted by the engine.",
	})
	m.simulationsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "simulations_completed_total",
		Help:      "Monte Carlo runs that produced a result.",
	})
	m.simulationsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "simulations_failed_total",
		Help:      "Monte Carlo runs aborted by error or cancellation.",
	})
	m.simulationsRunning = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "simulations_running",
		Help:      "Monte Carlo runs currently executing.",
	})
	m.pathsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "paths_completed_total",
		Help:      "Individual simulated paths finished across all runs.",
	})
	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of completed Monte Carlo runs.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	m.grossUpFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "grossup_fallbacks_total",
		Help:      "Path-years whose gross-up solver hit the iteration cap.",
	})

	m.taxCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "taxsvc",
		Name:      "cache_hits_total",
		Help:      "Tax requests answered from the memoizing layer.",
	})
	m.taxCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "taxsvc",
		Name:      "cache_misses_total",
		Help:      "Tax requests forwarded to the underlying calculator.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint and status code.",
	}, []string{"endpoint", "code"})
	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	return m
}

// Handler serves the scrape endpoint for this Manager's registry.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SimulationStarted records a run entering the engine.
func (m *Manager) SimulationStarted() {
	if m == nil {
		return
	}
	m.simulationsStarted.Inc()
	m.simulationsRunning.Inc()
}

// SimulationCompleted records a successful run and its duration.
func (m *Manager) SimulationCompleted(d time.Duration) {
	if m == nil {
		return
	}
	m.simulationsCompleted.Inc()
	m.simulationsRunning.Dec()
	m.runDuration.Observe(d.Seconds())
}

// SimulationFailed records an aborted run.
func (m *Manager) SimulationFailed() {
	if m == nil {
		return
	}
	m.simulationsFailed.Inc()
	m.simulationsRunning.Dec()
}

// PathsCompleted adds finished paths to the running total.
func (m *Manager) PathsCompleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pathsCompleted.Add(float64(n))
}

// GrossUpFallback records one nonconverged gross-up resolution.
func (m *Manager) GrossUpFallback() {
	if m == nil {
		return
	}
	m.grossUpFallbacks.Inc()
}

// TaxCacheHit records a memoized tax response.
func (m *Manager) TaxCacheHit() {
	if m == nil {
		return
	}
	m.taxCacheHits.Inc()
}

// TaxCacheMiss records a forwarded tax request.
func (m *Manager) TaxCacheMiss() {
	if m == nil {
		return
	}
	m.taxCacheMisses.Inc()
}

// ObserveHTTP records one served HTTP request.
func (m *Manager) ObserveHTTP(endpoint, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, code).Inc()
	m.httpDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
