package taxsvc

import (
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// 2025 federal parameters. Brackets are applied to all simulated years
// without inflation indexing, so later years see slightly higher
// effective rates on the same real income.

type bracket struct {
	min  decimal.Money
	max  decimal.Money
	rate float64
}

var bracketsSingle = []bracket{
	{decimal.Zero(), decimal.NewMoneyFromInt(11925), 0.10},
	{decimal.NewMoneyFromInt(11925), decimal.NewMoneyFromInt(48475), 0.12},
	{decimal.NewMoneyFromInt(48475), decimal.NewMoneyFromInt(103350), 0.22},
	{decimal.NewMoneyFromInt(103350), decimal.NewMoneyFromInt(197300), 0.24},
	{decimal.NewMoneyFromInt(197300), decimal.NewMoneyFromInt(250525), 0.32},
	{decimal.NewMoneyFromInt(250525), decimal.NewMoneyFromInt(626350), 0.35},
	{decimal.NewMoneyFromInt(626350), decimal.NewMoneyFromInt(999999999), 0.37},
}

var bracketsMarriedJoint = []bracket{
	{decimal.Zero(), decimal.NewMoneyFromInt(23850), 0.10},
	{decimal.NewMoneyFromInt(23850), decimal.NewMoneyFromInt(96950), 0.12},
	{decimal.NewMoneyFromInt(96950), decimal.NewMoneyFromInt(206700), 0.22},
	{decimal.NewMoneyFromInt(206700), decimal.NewMoneyFromInt(394600), 0.24},
	{decimal.NewMoneyFromInt(394600), decimal.NewMoneyFromInt(501050), 0.32},
	{decimal.NewMoneyFromInt(501050), decimal.NewMoneyFromInt(751600), 0.35},
	{decimal.NewMoneyFromInt(751600), decimal.NewMoneyFromInt(999999999), 0.37},
}

const (
	standardDeductionSingle  = 15000
	standardDeductionJoint   = 30000
	seniorDeductionSingle    = 2000
	seniorDeductionPerSpouse = 1600
	seniorAge                = 65
)

// Long-term capital gains rate thresholds: 0% below the first, 15%
// between, 20% above the second. Gains stack on top of ordinary
// taxable income.
const (
	ltcgZeroSingle    = 48350
	ltcgZeroJoint     = 96700
	ltcgFifteenSingle = 533400
	ltcgFifteenJoint  = 600050
)

// Social Security provisional-income thresholds.
const (
	ssThreshold1Single = 25000
	ssThreshold2Single = 34000
	ssThreshold1Joint  = 32000
	ssThreshold2Joint  = 44000
)

// standardDeduction returns the 2025 standard deduction, with the
// senior addition once the filer is 65. A joint household is assumed
// to hold two seniors when the reported age qualifies.
func standardDeduction(status domain.FilingStatus, age int) decimal.Money {
	if status == domain.FilingMarriedJoint {
		ded := decimal.NewMoneyFromInt(standardDeductionJoint)
		if age >= seniorAge {
			ded = ded.Add(decimal.NewMoneyFromInt(2 * seniorDeductionPerSpouse))
		}
		return ded
	}
	ded := decimal.NewMoneyFromInt(standardDeductionSingle)
	if age >= seniorAge {
		ded = ded.Add(decimal.NewMoneyFromInt(seniorDeductionSingle))
	}
	return ded
}

// taxableSocialSecurity runs the provisional-income worksheet:
// provisional income is the filer's other income plus half the
// benefit; below the first threshold none of the benefit is taxable,
// between thresholds up to half, and above the second up to 85%.
func taxableSocialSecurity(status domain.FilingStatus, benefit, otherIncome decimal.Money) decimal.Money {
	if !benefit.IsPositive() {
		return decimal.Zero()
	}
	t1, t2 := decimal.NewMoneyFromInt(ssThreshold1Single), decimal.NewMoneyFromInt(ssThreshold2Single)
	if status == domain.FilingMarriedJoint {
		t1, t2 = decimal.NewMoneyFromInt(ssThreshold1Joint), decimal.NewMoneyFromInt(ssThreshold2Joint)
	}

	provisional := otherIncome.Add(benefit.MulFloat(0.5))
	switch {
	case provisional.LessThanOrEqual(t1):
		return decimal.Zero()
	case provisional.LessThanOrEqual(t2):
		half := provisional.Sub(t1).MulFloat(0.5)
		return decimal.Min(half, benefit.MulFloat(0.5))
	default:
		capped := benefit.MulFloat(0.85)
		phased := provisional.Sub(t2).MulFloat(0.85).
			Add(decimal.Min(t2.Sub(t1).MulFloat(0.5), benefit.MulFloat(0.5)))
		return decimal.Min(capped, phased)
	}
}

// ordinaryTax walks the brackets over taxable ordinary income.
func ordinaryTax(status domain.FilingStatus, taxable decimal.Money) decimal.Money {
	brackets := bracketsSingle
	if status == domain.FilingMarriedJoint {
		brackets = bracketsMarriedJoint
	}
	total := decimal.Zero()
	for _, b := range brackets {
		if taxable.LessThanOrEqual(b.min) {
			break
		}
		inBracket := decimal.Min(taxable, b.max).Sub(b.min)
		if inBracket.IsPositive() {
			total = total.Add(inBracket.MulFloat(b.rate))
		}
	}
	return total
}

// capitalGainsTax taxes the preferential income (long-term gains plus
// qualified dividends) stacked on top of ordinary taxable income,
// filling whatever remains of the 0% band first, then the 15% band,
// then 20%.
func capitalGainsTax(status domain.FilingStatus, taxableOrdinary, preferential decimal.Money) decimal.Money {
	if !preferential.IsPositive() {
		return decimal.Zero()
	}
	zeroTop := decimal.NewMoneyFromInt(ltcgZeroSingle)
	fifteenTop := decimal.NewMoneyFromInt(ltcgFifteenSingle)
	if status == domain.FilingMarriedJoint {
		zeroTop = decimal.NewMoneyFromInt(ltcgZeroJoint)
		fifteenTop = decimal.NewMoneyFromInt(ltcgFifteenJoint)
	}

	inZero := decimal.Min(preferential, zeroTop.Sub(taxableOrdinary).FloorZero())
	above := preferential.Sub(inZero)
	fifteenFloor := decimal.Max(taxableOrdinary, zeroTop)
	inFifteen := decimal.Min(above, fifteenTop.Sub(fifteenFloor).FloorZero())
	inTwenty := above.Sub(inFifteen)

	return inFifteen.MulFloat(0.15).Add(inTwenty.MulFloat(0.20))
}

// federalTax computes the 2025 federal liability for one request.
// Ordinary income plus the taxable share of Social Security fills the
// brackets after the standard deduction; unused deduction shelters the
// preferential income before the capital-gains stack applies.
func federalTax(req Request, taxableSS decimal.Money) decimal.Money {
	deduction := standardDeduction(req.FilingStatus, req.Age)
	ordinaryBase := req.OrdinaryIncome.Add(taxableSS)
	taxableOrdinary := ordinaryBase.Sub(deduction).FloorZero()
	unusedDeduction := deduction.Sub(ordinaryBase).FloorZero()

	preferential := req.CapitalGains.Add(req.Dividends).Sub(unusedDeduction).FloorZero()

	return ordinaryTax(req.FilingStatus, taxableOrdinary).
		Add(capitalGainsTax(req.FilingStatus, taxableOrdinary, preferential))
}
