package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager
	m.SimulationStarted()
	m.SimulationCompleted(time.Second)
	m.SimulationFailed()
	m.PathsCompleted(10)
	m.GrossUpFallback()
	m.TaxCacheHit()
	m.TaxCacheMiss()
	m.ObserveHTTP("/simulate", "200", time.Millisecond)
	if m.Handler() == nil {
		t.Fatal("nil manager should still return a handler")
	}
}

func TestCountersAccumulate(t *testing.T) {
	m := NewManager()

	m.SimulationStarted()
	m.SimulationStarted()
	m.SimulationCompleted(250 * time.Millisecond)
	m.SimulationFailed()
	m.PathsCompleted(1000)
	m.PathsCompleted(0)
	m.PathsCompleted(-5)
	m.TaxCacheHit()
	m.TaxCacheHit()
	m.TaxCacheMiss()
	m.GrossUpFallback()

	if got := testutil.ToFloat64(m.simulationsStarted); got != 2 {
		t.Errorf("simulations started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.simulationsRunning); got != 0 {
		t.Errorf("simulations running = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.pathsCompleted); got != 1000 {
		t.Errorf("paths completed = %v, want 1000", got)
	}
	if got := testutil.ToFloat64(m.taxCacheHits); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.taxCacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.grossUpFallbacks); got != 1 {
		t.Errorf("gross-up fallbacks = %v, want 1", got)
	}
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	m := NewManager()
	m.SimulationStarted()
	m.SimulationCompleted(time.Second)
	m.ObserveHTTP("/simulate", "200", 50*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"finsim_engine_simulations_started_total 1",
		"finsim_engine_simulations_completed_total 1",
		`finsim_http_requests_total{code="200",endpoint="/simulate"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}
