package calculation

import (
	"context"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/taxsvc"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

const (
	// grossUpTolerance is the convergence band as a fraction of the
	// spending need; grossUpFloor keeps the band meaningful when the
	// need is near zero.
	grossUpTolerance = 0.001
	grossUpMaxIters  = 20
)

// TaxFunc prices one candidate withdrawal split, folding in the year's
// other income. The gross-up loop calls it once per iterate.
type TaxFunc func(ctx context.Context, plan WithdrawalPlan) (taxsvc.Response, error)

// GrossUpResult is the settled withdrawal for one year: the committed
// plan, the taxes it implies, and how the fixed point behaved.
type GrossUpResult struct {
	Plan       WithdrawalPlan
	Taxes      taxsvc.Response
	Gross      decimal.Money
	Iterations int
	Converged  bool
}

var grossUpFloor = decimal.NewMoneyFromInt(1)

// SolveGrossWithdrawal finds the gross withdrawal whose net-of-tax
// proceeds cover the spending need, given that taxes depend on how the
// waterfall splits the withdrawal. Each iterate runs the waterfall on
// a scratch copy of the portfolio, prices the split, and sets the next
// gross to need plus total tax; the loop stops when successive grosses
// agree within the tolerance. Only the settled plan is applied to the
// real portfolio. A portfolio too small to cover the gross stabilizes
// with a positive Shortfall rather than failing. If the cap is hit the
// last iterate is committed with Converged false; the caller decides
// how loudly to report that.
func SolveGrossWithdrawal(ctx context.Context, p *Portfolio, need, rmd decimal.Money, strategy domain.WithdrawalStrategy, taxFor TaxFunc) (GrossUpResult, error) {
	tolerance := decimal.Max(need.MulFloat(grossUpTolerance), grossUpFloor)

	gross := need.FloorZero()
	var taxes taxsvc.Response
	iterations := 0
	converged := false

	for i := 0; i < grossUpMaxIters; i++ {
		iterations = i + 1

		trial := p.clone()
		plan := trial.Withdraw(gross, rmd, strategy)

		var err error
		taxes, err = taxFor(ctx, plan)
		if err != nil {
			return GrossUpResult{}, err
		}

		next := need.Add(taxes.Total()).FloorZero()
		if next.Sub(gross).Abs().LessThanOrEqual(tolerance) {
			converged = true
			break
		}
		if i < grossUpMaxIters-1 {
			gross = next
		}
	}

	plan := p.Withdraw(gross, rmd, strategy)
	return GrossUpResult{
		Plan:       plan,
		Taxes:      taxes,
		Gross:      gross,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}
