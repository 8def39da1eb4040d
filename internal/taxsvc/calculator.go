// Package taxsvc computes federal and state tax liabilities for
// simulated household-years. The engine talks to it through the
// Calculator interface: NewLocalCalculator evaluates 2025 tax law
// in-process, NewClient delegates to an external calculation service,
// and NewCached wraps either to collapse near-identical requests.
package taxsvc

import (
	"context"
	"fmt"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// Request is one household-year's income composition. OrdinaryIncome
// carries everything taxed at ordinary rates: employment, pension, and
// traditional-account withdrawals including RMDs. EmploymentIncome
// repeats the wage portion of that total so states that exempt
// retirement income can tax wages alone. CapitalGains is the proceeds
// of taxable-account withdrawals, treated as long-term.
type Request struct {
	Year             int                 `json:"year"`
	State            string              `json:"state"`
	FilingStatus     domain.FilingStatus `json:"filing_status"`
	Age              int                 `json:"age"`
	OrdinaryIncome   decimal.Money       `json:"ordinary_income"`
	EmploymentIncome decimal.Money       `json:"employment_income"`
	CapitalGains     decimal.Money       `json:"ltcg_income"`
	Dividends        decimal.Money       `json:"dividend_income"`
	SocialSecurity   decimal.Money       `json:"gross_social_security"`
	PriorYearMAGI    decimal.Money       `json:"prior_year_magi"`
}

// Response carries the computed annual liabilities. IRMAA is the
// Medicare premium surcharge implied by the prior year's MAGI; it is
// reported alongside the taxes but is not part of Total.
type Response struct {
	FederalTax decimal.Money `json:"federal_tax"`
	StateTax   decimal.Money `json:"state_tax"`
	IRMAA      decimal.Money `json:"irmaa"`
}

// Total is the combined income tax liability.
func (r Response) Total() decimal.Money {
	return r.FederalTax.Add(r.StateTax)
}

// Calculator produces tax liabilities for simulated household-years.
// CalculateBatch exists so adapters backed by a vectorized service can
// amortize the round trip; implementations must return responses in
// request order and may not let batching change any single result.
type Calculator interface {
	Calculate(ctx context.Context, req Request) (Response, error)
	CalculateBatch(ctx context.Context, reqs []Request) ([]Response, error)
}

// ExternalServiceError reports a remote calculation dependency that
// stayed unreachable after bounded retries. The run aborts cleanly
// when it surfaces.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
