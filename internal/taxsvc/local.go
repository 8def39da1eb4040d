package taxsvc

import (
	"context"

	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// LocalCalculator evaluates 2025 tax law in-process. It is the default
// Calculator: deterministic, stateless, and safe for concurrent use
// from every path worker.
type LocalCalculator struct{}

// NewLocalCalculator returns the in-process calculator.
func NewLocalCalculator() *LocalCalculator {
	return &LocalCalculator{}
}

// Calculate computes one household-year's liabilities.
func (c *LocalCalculator) Calculate(_ context.Context, req Request) (Response, error) {
	otherIncome := decimal.Sum(req.OrdinaryIncome, req.CapitalGains, req.Dividends)
	taxableSS := taxableSocialSecurity(req.FilingStatus, req.SocialSecurity, otherIncome)
	return Response{
		FederalTax: federalTax(req, taxableSS),
		StateTax:   stateTax(req, taxableSS),
		IRMAA:      irmaaSurcharge(req),
	}, nil
}

// CalculateBatch evaluates each request in order.
func (c *LocalCalculator) CalculateBatch(ctx context.Context, reqs []Request) ([]Response, error) {
	out := make([]Response, len(reqs))
	for i, req := range reqs {
		resp, err := c.Calculate(ctx, req)
		if err != nil {
			return nil, err
		}
		out[i] = resp
	}
	return out, nil
}

// MAGI returns the modified adjusted gross income a year's composition
// produces, which the IRMAA tiers key on two years later: all taxed
// income plus the taxable share of Social Security.
func MAGI(req Request) decimal.Money {
	other := decimal.Sum(req.OrdinaryIncome, req.CapitalGains, req.Dividends)
	return other.Add(taxableSocialSecurity(req.FilingStatus, req.SocialSecurity, other))
}
