package taxsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsim/retirement-simulator/pkg/metrics"
)

// DefaultCacheSize bounds the cached entry count. A 10,000-path run
// over a 30-year horizon produces far fewer distinct rounded
// compositions than household-years, so most lookups hit.
const DefaultCacheSize = 100000

// Cached wraps a Calculator and memoizes responses keyed on the
// request with every money field rounded to whole dollars, collapsing
// near-identical household-years into one downstream call. When the
// entry cap is reached the cache resets rather than tracking recency.
type Cached struct {
	inner   Calculator
	max     int
	metrics *metrics.Manager

	mu      sync.Mutex
	entries map[string]Response
}

// NewCached wraps inner with a memoizing layer holding at most max
// entries; max <= 0 uses DefaultCacheSize.
func NewCached(inner Calculator, max int) *Cached {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cached{
		inner:   inner,
		max:     max,
		entries: make(map[string]Response),
	}
}

// SetMetrics attaches hit and miss counters. A nil manager keeps the
// cache silent.
func (c *Cached) SetMetrics(m *metrics.Manager) {
	c.metrics = m
}

func cacheKey(req Request) string {
	return fmt.Sprintf("%d|%s|%s|%d|%s|%s|%s|%s|%s|%s",
		req.Year, req.State, req.FilingStatus, req.Age,
		req.OrdinaryIncome.RoundDollars(),
		req.EmploymentIncome.RoundDollars(),
		req.CapitalGains.RoundDollars(),
		req.Dividends.RoundDollars(),
		req.SocialSecurity.RoundDollars(),
		req.PriorYearMAGI.RoundDollars(),
	)
}

func (c *Cached) lookup(key string) (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.entries[key]
	return resp, ok
}

func (c *Cached) store(key string, resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.entries = make(map[string]Response)
	}
	c.entries[key] = resp
}

// Calculate serves from the cache when the rounded composition has
// been seen before.
func (c *Cached) Calculate(ctx context.Context, req Request) (Response, error) {
	key := cacheKey(req)
	if resp, ok := c.lookup(key); ok {
		c.metrics.TaxCacheHit()
		return resp, nil
	}
	c.metrics.TaxCacheMiss()
	resp, err := c.inner.Calculate(ctx, req)
	if err != nil {
		return Response{}, err
	}
	c.store(key, resp)
	return resp, nil
}

// CalculateBatch answers what it can from the cache and forwards only
// the misses downstream in one batch, preserving request order.
func (c *Cached) CalculateBatch(ctx context.Context, reqs []Request) ([]Response, error) {
	out := make([]Response, len(reqs))
	var missIdx []int
	var misses []Request
	for i, req := range reqs {
		key := cacheKey(req)
		if resp, ok := c.lookup(key); ok {
			c.metrics.TaxCacheHit()
			out[i] = resp
			continue
		}
		c.metrics.TaxCacheMiss()
		missIdx = append(missIdx, i)
		misses = append(misses, req)
	}
	if len(misses) == 0 {
		return out, nil
	}
	fetched, err := c.inner.CalculateBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = fetched[j]
		c.store(cacheKey(reqs[i]), fetched[j])
	}
	return out, nil
}
