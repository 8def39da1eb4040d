package taxsvc

import (
	"context"
	"testing"

	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// countingCalc records call volume so the tests can observe what the
// cache let through.
type countingCalc struct {
	calls      int
	batchCalls int
	batchSizes []int
}

func (c *countingCalc) Calculate(_ context.Context, req Request) (Response, error) {
	c.calls++
	return Response{FederalTax: req.OrdinaryIncome.MulFloat(0.1)}, nil
}

func (c *countingCalc) CalculateBatch(ctx context.Context, reqs []Request) ([]Response, error) {
	c.batchCalls++
	c.batchSizes = append(c.batchSizes, len(reqs))
	out := make([]Response, len(reqs))
	for i, req := range reqs {
		resp, _ := c.Calculate(ctx, req)
		out[i] = resp
	}
	return out, nil
}

func TestCachedCollapsesNearIdenticalRequests(t *testing.T) {
	inner := &countingCalc{}
	cached := NewCached(inner, 0)
	ctx := context.Background()

	a := Request{State: "CA", OrdinaryIncome: decimal.NewMoney(50000.25)}
	b := Request{State: "CA", OrdinaryIncome: decimal.NewMoney(50000.30)}

	first, err := cached.Calculate(ctx, a)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	second, err := cached.Calculate(ctx, b)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (requests round to the same dollars)", inner.calls)
	}
	if !first.FederalTax.Equal(second.FederalTax) {
		t.Errorf("cached response differs: %s vs %s", first.FederalTax, second.FederalTax)
	}

	c := Request{State: "CA", OrdinaryIncome: decimal.NewMoney(60000)}
	if _, err := cached.Calculate(ctx, c); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 after a distinct request", inner.calls)
	}
}

func TestCachedBatchForwardsOnlyMisses(t *testing.T) {
	inner := &countingCalc{}
	cached := NewCached(inner, 0)
	ctx := context.Background()

	warm := Request{State: "TX", OrdinaryIncome: decimal.NewMoney(40000)}
	if _, err := cached.Calculate(ctx, warm); err != nil {
		t.Fatalf("warm Calculate: %v", err)
	}

	reqs := []Request{
		{State: "TX", OrdinaryIncome: decimal.NewMoney(40000)},
		{State: "TX", OrdinaryIncome: decimal.NewMoney(70000)},
		{State: "CA", OrdinaryIncome: decimal.NewMoney(40000)},
	}
	resps, err := cached.CalculateBatch(ctx, reqs)
	if err != nil {
		t.Fatalf("CalculateBatch: %v", err)
	}

	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3", len(resps))
	}
	if inner.batchCalls != 1 || inner.batchSizes[0] != 2 {
		t.Errorf("batch calls = %d sizes = %v, want one batch of the 2 misses",
			inner.batchCalls, inner.batchSizes)
	}
	for i, want := range []float64{4000, 7000, 4000} {
		if !resps[i].FederalTax.Equal(decimal.NewMoney(want)) {
			t.Errorf("resp[%d] = %s, want %.0f", i, resps[i].FederalTax, want)
		}
	}
}

func TestCachedResetsAtCapacity(t *testing.T) {
	inner := &countingCalc{}
	cached := NewCached(inner, 1)
	ctx := context.Background()

	a := Request{State: "CA", OrdinaryIncome: decimal.NewMoney(10000)}
	b := Request{State: "CA", OrdinaryIncome: decimal.NewMoney(20000)}

	cached.Calculate(ctx, a) // miss, stored
	cached.Calculate(ctx, b) // miss, cache resets to store it
	cached.Calculate(ctx, a) // miss again after the reset

	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
	if _, err := cached.Calculate(ctx, a); err != nil || inner.calls != 3 {
		t.Errorf("expected the re-stored entry to hit, calls = %d", inner.calls)
	}
}
