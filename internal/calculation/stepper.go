package calculation

import (
	"context"
	"math"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/taxsvc"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// PathSimulator advances single household paths year by year. One
// instance is shared by every worker of a run: it is read-only after
// construction, and all per-path mutable state lives inside RunPath.
type PathSimulator struct {
	in      *domain.SimulationInput
	sampler *ReturnSampler
	table   LifeTable
	taxes   taxsvc.Calculator
	log     Logger

	// OnNonconvergence, when set, is called once for each path-year
	// whose gross-up loop hit the iteration cap. Set it before the
	// first RunPath call.
	OnNonconvergence func()

	// OnYearComplete, when set, is called with the zero-based year
	// index after each stepped year. The runner feeds its progress
	// frontier from this. Set it before the first RunPath call.
	OnYearComplete func(year int)
}

// NewPathSimulator wires the per-run collaborators. The input must
// already be defaulted and validated.
func NewPathSimulator(in *domain.SimulationInput, sampler *ReturnSampler, table LifeTable, taxes taxsvc.Calculator, log Logger) *PathSimulator {
	if log == nil {
		log = NopLogger{}
	}
	return &PathSimulator{in: in, sampler: sampler, table: table, taxes: taxes, log: log}
}

// yearIncome is the guaranteed cash arriving in one simulated year,
// before dividends, masked by who is alive.
type yearIncome struct {
	employment     decimal.Money
	socialSecurity decimal.Money
	pension        decimal.Money
	annuity        decimal.Money
}

func (yi yearIncome) total() decimal.Money {
	return decimal.Sum(yi.employment, yi.socialSecurity, yi.pension, yi.annuity)
}

// incomeForYear computes the guaranteed income of simulated year y.
// Each member's employment, Social Security, and pension stop in the
// year that member dies; the annuity follows its contract type.
func incomeForYear(in *domain.SimulationInput, y int, primaryAlive, spouseAlive bool) yearIncome {
	var yi yearIncome
	if primaryAlive {
		age := in.CurrentAge + y
		if in.EmploymentIncome.IsPositive() && age < in.RetirementAge {
			yi.employment = grownIncome(in.EmploymentIncome, in.EmploymentGrowthRate, y)
		}
		if age >= in.SocialSecurityStartAge {
			yi.socialSecurity = in.SocialSecurityMonthly.Annual()
		}
		yi.pension = in.PensionAnnual
	}
	if sp := in.Spouse; sp != nil && spouseAlive {
		age := sp.CurrentAge + y
		if sp.EmploymentIncome.IsPositive() && age < sp.RetirementAge {
			yi.employment = yi.employment.Add(grownIncome(sp.EmploymentIncome, sp.EmploymentGrowthRate, y))
		}
		if age >= sp.SocialSecurityStartAge {
			yi.socialSecurity = yi.socialSecurity.Add(sp.SocialSecurityMonthly.Annual())
		}
		yi.pension = yi.pension.Add(sp.PensionAnnual)
	}
	yi.annuity = annuityForYear(in.Annuity, y, primaryAlive)
	return yi
}

func grownIncome(base decimal.Money, growthRate float64, years int) decimal.Money {
	return base.MulFloat(math.Pow(1+growthRate, float64(years)))
}

// annuityForYear applies the contract type: fixed_period pays through
// the guarantee window regardless of survival, life_only pays while
// the primary annuitant lives, and life_with_guarantee pays whenever
// either condition holds.
func annuityForYear(an *domain.Annuity, y int, primaryAlive bool) decimal.Money {
	if an == nil {
		return decimal.Zero()
	}
	inGuarantee := y < an.GuaranteeYears
	switch an.Type {
	case domain.AnnuityFixedPeriod:
		if inGuarantee {
			return an.MonthlyPayment.Annual()
		}
	case domain.AnnuityLifeWithGuarantee:
		if inGuarantee || primaryAlive {
			return an.MonthlyPayment.Annual()
		}
	case domain.AnnuityLifeOnly:
		if primaryAlive {
			return an.MonthlyPayment.Annual()
		}
	}
	return decimal.Zero()
}

// RunPath simulates one complete path under the master seed. A non-nil
// error means a tax-service failure or cancellation; both abort the
// surrounding run. Gross-up nonconvergence is logged and absorbed, not
// returned.
func (ps *PathSimulator) RunPath(ctx context.Context, masterSeed int64, index int) (domain.PathResult, error) {
	in := ps.in
	years := in.Years()
	prng := NewPathRNG(masterSeed, index)
	returns := ps.sampler.SamplePath(prng.Stream(StreamReturns), years)
	household := SampleHousehold(ps.table, prng, in)

	portfolio := NewPortfolio(in)
	res := domain.PathResult{
		Index:    index,
		Balances: make([]decimal.Money, years+1),
		Terminal: domain.TerminalAtMaxAge,
	}
	res.Balances[0] = portfolio.TotalBalance()
	res.DeathYear = household.Either.DeathYear()

	priorMAGI := decimal.Zero()
	for y := 0; y < years; y++ {
		if err := ctx.Err(); err != nil {
			return domain.PathResult{}, err
		}
		age := in.CurrentAge + y
		spouseAlive := household.Spouse != nil && household.Spouse[y]
		income := incomeForYear(in, y, household.Primary[y], spouseAlive)
		divs := portfolio.Dividends(returns[y])

		need := in.AnnualSpending.Sub(income.total()).Sub(divs.Total()).FloorZero()
		rmd := RequiredMinimum(portfolio.KindBalance(domain.AccountTraditional), age)

		requestFor := func(plan WithdrawalPlan) taxsvc.Request {
			return taxsvc.Request{
				Year:             in.StartYear + y,
				State:            in.State,
				FilingStatus:     in.FilingStatus,
				Age:              age,
				OrdinaryIncome:   decimal.Sum(income.employment, income.pension, plan.OrdinaryIncome()),
				EmploymentIncome: income.employment,
				CapitalGains:     plan.Taxable,
				Dividends:        divs.Taxed(),
				SocialSecurity:   income.socialSecurity,
				PriorYearMAGI:    priorMAGI,
			}
		}
		taxFor := func(tctx context.Context, plan WithdrawalPlan) (taxsvc.Response, error) {
			return ps.taxes.Calculate(tctx, requestFor(plan))
		}

		start := portfolio.TotalBalance()
		solved, err := SolveGrossWithdrawal(ctx, portfolio, need, rmd, in.WithdrawalStrategy, taxFor)
		if err != nil {
			return domain.PathResult{}, err
		}
		if !solved.Converged {
			ps.log.Warnf("gross-up did not converge on path %d year %d, using last estimate %s", index, y+1, solved.Gross)
			if ps.OnNonconvergence != nil {
				ps.OnNonconvergence()
			}
		}
		priorMAGI = taxsvc.MAGI(requestFor(solved.Plan))

		// RMD cash beyond spending and taxes cannot be un-withdrawn;
		// it lands back in a taxable bucket.
		excess := solved.Plan.Total.Sub(need.Add(solved.Taxes.Total())).FloorZero()
		if excess.IsPositive() {
			portfolio.DepositTaxable(excess)
		}

		portfolio.ApplyGrowth(returns[y])
		end := portfolio.TotalBalance()

		bd := domain.YearBreakdown{
			Age:                  age,
			YearIndex:            y + 1,
			PortfolioStart:       start,
			PortfolioEnd:         end,
			EmploymentIncome:     income.employment,
			SocialSecurityIncome: income.socialSecurity,
			PensionIncome:        income.pension,
			DividendIncome:       divs.Total(),
			AnnuityIncome:        income.annuity,
			TotalIncome:          income.total().Add(divs.Total()),
			Withdrawal:           solved.Plan.Total,
			FederalTax:           solved.Taxes.FederalTax,
			StateTax:             solved.Taxes.StateTax,
			TotalTax:             solved.Taxes.Total(),
			IRMAA:                solved.Taxes.IRMAA,
		}
		if start.IsPositive() {
			bd.PortfolioReturn = end.Sub(start).Add(bd.Withdrawal).Float64() / start.Float64()
		}
		if bd.TotalIncome.IsPositive() {
			bd.EffectiveTaxRate = bd.TotalTax.Float64() / bd.TotalIncome.Float64()
		}
		bd.NetIncome = bd.TotalIncome.Add(bd.Withdrawal).Sub(bd.TotalTax)
		res.Breakdowns = append(res.Breakdowns, bd)

		res.TotalWithdrawn = res.TotalWithdrawn.Add(solved.Plan.Total)
		res.TotalTaxes = res.TotalTaxes.Add(solved.Taxes.Total())
		res.LifetimeSocialSecurity = res.LifetimeSocialSecurity.Add(income.socialSecurity)
		res.Balances[y+1] = end
		if ps.OnYearComplete != nil {
			ps.OnYearComplete(y)
		}

		// Terminal transitions. Depletion while anyone is alive wins
		// over a death in the same year. A household that started the
		// year at zero and met its need from income alone stays active.
		if !end.IsPositive() && (start.IsPositive() || solved.Plan.Shortfall.IsPositive()) {
			res.Terminal = domain.TerminalDepleted
			year := y + 1
			res.DepletionYear = &year
			fillBalances(res.Balances, y+2, decimal.Zero())
			break
		}
		if !household.Either[y+1] {
			res.Terminal = domain.TerminalDeceased
			fillBalances(res.Balances, y+2, end)
			break
		}
	}
	return res, nil
}

func fillBalances(balances []decimal.Money, from int, v decimal.Money) {
	for i := from; i < len(balances); i++ {
		balances[i] = v
	}
}
