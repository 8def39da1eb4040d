package calculation

import (
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// Portfolio tracks one path's holdings buckets. All mutation goes
// through Withdraw, ApplyGrowth, and DepositTaxable so bucket balances
// can never go negative.
type Portfolio struct {
	buckets []domain.Bucket
}

// NewPortfolio builds a portfolio from the input's buckets, or from the
// synthesized taxable pair when only initial_capital was given.
func NewPortfolio(in *domain.SimulationInput) *Portfolio {
	return &Portfolio{buckets: in.EffectiveBuckets()}
}

// Buckets returns a copy of the current bucket positions.
func (p *Portfolio) Buckets() []domain.Bucket {
	out := make([]domain.Bucket, len(p.buckets))
	copy(out, p.buckets)
	return out
}

// clone copies the portfolio so trial withdrawals can run without
// touching the real balances.
func (p *Portfolio) clone() *Portfolio {
	return &Portfolio{buckets: p.Buckets()}
}

// TotalBalance sums every bucket.
func (p *Portfolio) TotalBalance() decimal.Money {
	total := decimal.Zero()
	for _, b := range p.buckets {
		total = total.Add(b.Balance)
	}
	return total
}

// KindBalance sums the buckets with the given tax treatment.
func (p *Portfolio) KindBalance(kind domain.AccountKind) decimal.Money {
	total := decimal.Zero()
	for _, b := range p.buckets {
		if b.Kind == kind {
			total = total.Add(b.Balance)
		}
	}
	return total
}

// WithdrawalPlan records where one year's withdrawal came from, split
// by tax treatment. TraditionalRMD and Traditional are ordinary
// income, Taxable realizes capital gains, Roth comes out tax-free.
// Total is the amount actually withdrawn, which exceeds the spending
// need when the required distribution does. Shortfall is the unmet
// need left after every bucket is drained.
type WithdrawalPlan struct {
	TraditionalRMD decimal.Money
	Traditional    decimal.Money
	Roth           decimal.Money
	Taxable        decimal.Money
	Total          decimal.Money
	Shortfall      decimal.Money
}

// OrdinaryIncome is the portion of the withdrawal taxed as ordinary
// income: every dollar out of traditional buckets, mandated or not.
func (plan WithdrawalPlan) OrdinaryIncome() decimal.Money {
	return plan.TraditionalRMD.Add(plan.Traditional)
}

func (plan *WithdrawalPlan) credit(kind domain.AccountKind, amount decimal.Money) {
	switch kind {
	case domain.AccountTaxable:
		plan.Taxable = plan.Taxable.Add(amount)
	case domain.AccountTraditional:
		plan.Traditional = plan.Traditional.Add(amount)
	case domain.AccountRoth:
		plan.Roth = plan.Roth.Add(amount)
	}
}

// withdrawOrder maps each sequential strategy to the category order
// the discretionary cascade walks. pro_rata draws proportionally first
// and sends any shortfall through the taxable-first order.
var withdrawOrder = map[domain.WithdrawalStrategy][]domain.AccountKind{
	domain.WithdrawTaxableFirst:     {domain.AccountTaxable, domain.AccountTraditional, domain.AccountRoth},
	domain.WithdrawTraditionalFirst: {domain.AccountTraditional, domain.AccountTaxable, domain.AccountRoth},
	domain.WithdrawRothFirst:        {domain.AccountRoth, domain.AccountTaxable, domain.AccountTraditional},
	domain.WithdrawProRata:          {domain.AccountTaxable, domain.AccountTraditional, domain.AccountRoth},
}

// Withdraw takes one year's spending need plus the required minimum
// distribution out of the buckets and reports the split by tax
// treatment. The RMD leg always runs first against traditional
// buckets, capped at what they hold; the strategy governs only the
// discretionary remainder, with any dollars the RMD already produced
// credited against the need.
func (p *Portfolio) Withdraw(need, rmd decimal.Money, strategy domain.WithdrawalStrategy) WithdrawalPlan {
	var plan WithdrawalPlan

	rmdTake := decimal.Min(rmd.FloorZero(), p.KindBalance(domain.AccountTraditional))
	p.drawFromKind(domain.AccountTraditional, rmdTake)
	plan.TraditionalRMD = rmdTake

	remaining := need.Sub(rmdTake).FloorZero()
	if strategy == domain.WithdrawProRata {
		remaining = p.drawProportional(remaining, &plan)
	}
	remaining = p.drawCascade(withdrawOrder[strategy], remaining, &plan)

	plan.Shortfall = remaining
	plan.Total = decimal.Sum(plan.TraditionalRMD, plan.Traditional, plan.Roth, plan.Taxable)
	return plan
}

// drawCascade walks the category order, taking as much of the
// remaining need from each category as it holds and cascading the
// rest to the next one.
func (p *Portfolio) drawCascade(order []domain.AccountKind, remaining decimal.Money, plan *WithdrawalPlan) decimal.Money {
	for _, kind := range order {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, p.KindBalance(kind))
		if !take.IsPositive() {
			continue
		}
		p.drawFromKind(kind, take)
		plan.credit(kind, take)
		remaining = remaining.Sub(take)
	}
	return remaining
}

// drawProportional takes each category's share of the need in
// proportion to its balance. Shares are fixed against the total before
// any draw so a later category is never shorted by an earlier one;
// whatever is left, including the whole need when the portfolio cannot
// cover it, falls through to the cascade.
func (p *Portfolio) drawProportional(remaining decimal.Money, plan *WithdrawalPlan) decimal.Money {
	total := p.TotalBalance()
	if !remaining.IsPositive() || !total.IsPositive() {
		return remaining
	}
	need := remaining
	for _, kind := range withdrawOrder[domain.WithdrawProRata] {
		bal := p.KindBalance(kind)
		if !bal.IsPositive() {
			continue
		}
		take := decimal.Min(need.Mul(bal.Decimal).Div(total.Decimal), bal)
		p.drawFromKind(kind, take)
		plan.credit(kind, take)
		remaining = remaining.Sub(take)
	}
	return remaining.FloorZero()
}

// drawFromKind removes amount from the kind's buckets in proportion to
// their balances. The last bucket absorbs division residue so the
// bucket draws sum to amount exactly.
func (p *Portfolio) drawFromKind(kind domain.AccountKind, amount decimal.Money) {
	if !amount.IsPositive() {
		return
	}
	kindTotal := p.KindBalance(kind)
	if !kindTotal.IsPositive() {
		return
	}
	last := -1
	for i := range p.buckets {
		if p.buckets[i].Kind == kind && p.buckets[i].Balance.IsPositive() {
			last = i
		}
	}
	taken := decimal.Zero()
	for i := range p.buckets {
		b := &p.buckets[i]
		if b.Kind != kind || !b.Balance.IsPositive() {
			continue
		}
		share := amount.Mul(b.Balance.Decimal).Div(kindTotal.Decimal)
		if i == last {
			share = amount.Sub(taken)
		}
		share = decimal.Min(share, b.Balance)
		b.Balance = b.Balance.Sub(share).FloorZero()
		taken = taken.Add(share)
	}
}

// ApplyGrowth compounds one year's price return into every bucket by
// asset class. Dividends are income, not growth, so only the price
// component lands here.
func (p *Portfolio) ApplyGrowth(yr YearReturn) {
	for i := range p.buckets {
		b := &p.buckets[i]
		price := yr.BondPrice
		if b.Fund == domain.FundEquity {
			price = yr.StockPrice
		}
		b.Balance = b.Balance.MulFloat(1 + price).FloorZero()
	}
}

// DividendIncome is one year's dividend cash split by the account kind
// that produced it. Taxable and Traditional dividends count as taxable
// dividend income; Roth dividends are spendable but tax-free.
type DividendIncome struct {
	Taxable     decimal.Money
	Traditional decimal.Money
	Roth        decimal.Money
}

// Taxed returns the dividend income that shows up on the tax return.
func (d DividendIncome) Taxed() decimal.Money {
	return d.Taxable.Add(d.Traditional)
}

// Total returns all dividend cash available for spending.
func (d DividendIncome) Total() decimal.Money {
	return decimal.Sum(d.Taxable, d.Traditional, d.Roth)
}

// Dividends computes the year's dividend income off current balances,
// each bucket yielding at its asset class's dividend rate.
func (p *Portfolio) Dividends(yr YearReturn) DividendIncome {
	var out DividendIncome
	for _, b := range p.buckets {
		yield := yr.BondDividend
		if b.Fund == domain.FundEquity {
			yield = yr.StockDividend
		}
		amt := b.Balance.MulFloat(yield)
		switch b.Kind {
		case domain.AccountTaxable:
			out.Taxable = out.Taxable.Add(amt)
		case domain.AccountTraditional:
			out.Traditional = out.Traditional.Add(amt)
		case domain.AccountRoth:
			out.Roth = out.Roth.Add(amt)
		}
	}
	return out
}

// DepositTaxable adds cash to the first taxable bucket, creating a
// bond-fund one when the portfolio has none. Used when a required
// distribution exceeds the year's need and the excess stays invested.
func (p *Portfolio) DepositTaxable(amount decimal.Money) {
	if !amount.IsPositive() {
		return
	}
	for i := range p.buckets {
		if p.buckets[i].Kind == domain.AccountTaxable {
			p.buckets[i].Balance = p.buckets[i].Balance.Add(amount)
			return
		}
	}
	p.buckets = append(p.buckets, domain.Bucket{
		Kind:    domain.AccountTaxable,
		Fund:    domain.FundBond,
		Balance: amount,
	})
}
