package domain

import (
	"fmt"

	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// Gender selects the mortality table to draw from.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// FilingStatus selects the federal bracket and deduction set.
type FilingStatus string

const (
	FilingSingle       FilingStatus = "single"
	FilingMarriedJoint FilingStatus = "married_joint"
)

// AccountKind is the tax treatment of a holdings bucket.
type AccountKind string

const (
	AccountTaxable     AccountKind = "taxable"
	AccountTraditional AccountKind = "traditional"
	AccountRoth        AccountKind = "roth"
)

// FundKind is the asset class of a holdings bucket.
type FundKind string

const (
	FundEquity FundKind = "equity"
	FundBond   FundKind = "bond"
)

// WithdrawalStrategy orders which account kinds are tapped first.
type WithdrawalStrategy string

const (
	WithdrawTaxableFirst     WithdrawalStrategy = "taxable_first"
	WithdrawTraditionalFirst WithdrawalStrategy = "traditional_first"
	WithdrawRothFirst        WithdrawalStrategy = "roth_first"
	WithdrawProRata          WithdrawalStrategy = "pro_rata"
)

// ReturnModel selects how yearly market returns are sampled.
type ReturnModel string

const (
	ReturnModelNormal         ReturnModel = "normal"
	ReturnModelBootstrap      ReturnModel = "bootstrap"
	ReturnModelBlockBootstrap ReturnModel = "block_bootstrap"
	ReturnModelHistorical     ReturnModel = "historical"
)

// FundIndex selects the historical return series backing an asset class
// in the bootstrap, block_bootstrap, and historical return models.
type FundIndex string

const (
	IndexSP500    FundIndex = "sp500"
	IndexVT       FundIndex = "vt"
	IndexTreasury FundIndex = "treasury"
	IndexBND      FundIndex = "bnd"
)

// AnnuityType controls how long annuity payments continue.
type AnnuityType string

const (
	AnnuityFixedPeriod       AnnuityType = "fixed_period"
	AnnuityLifeWithGuarantee AnnuityType = "life_with_guarantee"
	AnnuityLifeOnly          AnnuityType = "life_only"
)

// Bucket is a single holdings position: a tax treatment, an asset
// class, and a balance. Balances never go negative.
type Bucket struct {
	Kind    AccountKind   `yaml:"kind" json:"kind"`
	Fund    FundKind      `yaml:"fund" json:"fund"`
	Balance decimal.Money `yaml:"balance" json:"balance"`
}

// Spouse mirrors the primary person's demographic and income fields.
// Spouse income stops in the year the spouse dies; the path itself only
// ends once neither member of the household is alive.
type Spouse struct {
	CurrentAge             int           `yaml:"current_age" json:"current_age"`
	Gender                 Gender        `yaml:"gender" json:"gender"`
	EmploymentIncome       decimal.Money `yaml:"employment_income" json:"employment_income"`
	EmploymentGrowthRate   float64       `yaml:"employment_growth_rate" json:"employment_growth_rate"`
	RetirementAge          int           `yaml:"retirement_age" json:"retirement_age"`
	SocialSecurityMonthly  decimal.Money `yaml:"social_security_monthly" json:"social_security_monthly"`
	SocialSecurityStartAge int           `yaml:"social_security_start_age" json:"social_security_start_age"`
	PensionAnnual          decimal.Money `yaml:"pension_annual" json:"pension_annual"`
}

// Annuity describes an income annuity held outside the portfolio.
type Annuity struct {
	MonthlyPayment decimal.Money `yaml:"monthly_payment" json:"monthly_payment"`
	GuaranteeYears int           `yaml:"guarantee_years" json:"guarantee_years"`
	Type           AnnuityType   `yaml:"annuity_type" json:"annuity_type"`
}

// SimulationInput is the complete description of one household
// scenario. Optional numeric fields are pointers so that an explicit
// zero survives defaulting; ApplyDefaults fills every nil pointer, and
// the engine only accepts inputs that have been through it.
type SimulationInput struct {
	// Demographics.
	CurrentAge   int          `yaml:"current_age" json:"current_age"`
	MaxAge       int          `yaml:"max_age" json:"max_age"`
	Gender       Gender       `yaml:"gender" json:"gender"`
	State        string       `yaml:"state" json:"state"`
	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`

	// Income sources.
	EmploymentIncome       decimal.Money `yaml:"employment_income" json:"employment_income"`
	EmploymentGrowthRate   float64       `yaml:"employment_growth_rate" json:"employment_growth_rate"`
	RetirementAge          int           `yaml:"retirement_age" json:"retirement_age"`
	SocialSecurityMonthly  decimal.Money `yaml:"social_security_monthly" json:"social_security_monthly"`
	SocialSecurityStartAge int           `yaml:"social_security_start_age" json:"social_security_start_age"`
	PensionAnnual          decimal.Money `yaml:"pension_annual" json:"pension_annual"`
	Spouse                 *Spouse       `yaml:"spouse,omitempty" json:"spouse,omitempty"`
	Annuity                *Annuity      `yaml:"annuity,omitempty" json:"annuity,omitempty"`

	// Portfolio: either explicit buckets, or a single pot described by
	// initial_capital plus stock_allocation. Buckets win when both are
	// present.
	InitialCapital  decimal.Money `yaml:"initial_capital" json:"initial_capital"`
	StockAllocation *float64      `yaml:"stock_allocation,omitempty" json:"stock_allocation,omitempty"`
	Buckets         []Bucket      `yaml:"buckets,omitempty" json:"buckets,omitempty"`

	// Spending and strategy.
	AnnualSpending     decimal.Money      `yaml:"annual_spending" json:"annual_spending"`
	WithdrawalStrategy WithdrawalStrategy `yaml:"withdrawal_strategy" json:"withdrawal_strategy"`

	// Run controls.
	NSimulations     int   `yaml:"n_simulations" json:"n_simulations"`
	IncludeMortality *bool `yaml:"include_mortality,omitempty" json:"include_mortality,omitempty"`
	Seed             int64 `yaml:"seed" json:"seed"`
	StartYear        int   `yaml:"start_year" json:"start_year"`

	// Market model.
	ReturnModel       ReturnModel `yaml:"return_model" json:"return_model"`
	ExpectedReturn    *float64    `yaml:"expected_return,omitempty" json:"expected_return,omitempty"`
	ReturnVolatility  *float64    `yaml:"return_volatility,omitempty" json:"return_volatility,omitempty"`
	DividendYield     *float64    `yaml:"dividend_yield,omitempty" json:"dividend_yield,omitempty"`
	BondReturn        *float64    `yaml:"bond_return,omitempty" json:"bond_return,omitempty"`
	BondVolatility    *float64    `yaml:"bond_volatility,omitempty" json:"bond_volatility,omitempty"`
	BondDividendYield *float64    `yaml:"bond_dividend_yield,omitempty" json:"bond_dividend_yield,omitempty"`
	BlockSize         int         `yaml:"block_size" json:"block_size"`
	StockIndex        FundIndex   `yaml:"stock_index" json:"stock_index"`
	BondIndex         FundIndex   `yaml:"bond_index" json:"bond_index"`
}

// Defaults applied by ApplyDefaults. The equity expectation is held
// deliberately below the historical arithmetic mean of the embedded
// S&P series.
const (
	DefaultMaxAge            = 95
	DefaultSSStartAge        = 67
	DefaultNSimulations      = 10_000
	DefaultBlockSize         = 5
	DefaultExpectedReturn    = 0.07
	DefaultReturnVolatility  = 0.16
	DefaultDividendYield     = 0.02
	DefaultBondReturn        = 0.04
	DefaultBondVolatility    = 0.08
	DefaultBondDividendYield = 0.03
	DefaultStockAllocation   = 0.60
	DefaultStartYear         = 2025
	DefaultStockIndex        = IndexVT
	DefaultBondIndex         = IndexBND
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

// ApplyDefaults fills unset fields in place. It is idempotent and must
// run before Validate or any engine call.
func (in *SimulationInput) ApplyDefaults() {
	if in.MaxAge == 0 {
		in.MaxAge = DefaultMaxAge
	}
	if in.Gender == "" {
		in.Gender = GenderMale
	}
	if in.State == "" {
		in.State = "CA"
	}
	if in.FilingStatus == "" {
		if in.Spouse != nil {
			in.FilingStatus = FilingMarriedJoint
		} else {
			in.FilingStatus = FilingSingle
		}
	}
	if in.SocialSecurityStartAge == 0 {
		in.SocialSecurityStartAge = DefaultSSStartAge
	}
	if in.RetirementAge == 0 {
		in.RetirementAge = in.CurrentAge
	}
	if in.WithdrawalStrategy == "" {
		in.WithdrawalStrategy = WithdrawTaxableFirst
	}
	if in.NSimulations == 0 {
		in.NSimulations = DefaultNSimulations
	}
	if in.IncludeMortality == nil {
		in.IncludeMortality = boolPtr(true)
	}
	if in.StartYear == 0 {
		in.StartYear = DefaultStartYear
	}
	if in.ReturnModel == "" {
		in.ReturnModel = ReturnModelNormal
	}
	if in.ExpectedReturn == nil {
		in.ExpectedReturn = floatPtr(DefaultExpectedReturn)
	}
	if in.ReturnVolatility == nil {
		in.ReturnVolatility = floatPtr(DefaultReturnVolatility)
	}
	if in.DividendYield == nil {
		in.DividendYield = floatPtr(DefaultDividendYield)
	}
	if in.BondReturn == nil {
		in.BondReturn = floatPtr(DefaultBondReturn)
	}
	if in.BondVolatility == nil {
		in.BondVolatility = floatPtr(DefaultBondVolatility)
	}
	if in.BondDividendYield == nil {
		in.BondDividendYield = floatPtr(DefaultBondDividendYield)
	}
	if in.StockAllocation == nil {
		in.StockAllocation = floatPtr(DefaultStockAllocation)
	}
	if in.BlockSize == 0 {
		in.BlockSize = DefaultBlockSize
	}
	if in.StockIndex == "" {
		in.StockIndex = DefaultStockIndex
	}
	if in.BondIndex == "" {
		in.BondIndex = DefaultBondIndex
	}
	if sp := in.Spouse; sp != nil {
		if sp.Gender == "" {
			sp.Gender = GenderFemale
		}
		if sp.SocialSecurityStartAge == 0 {
			sp.SocialSecurityStartAge = DefaultSSStartAge
		}
		if sp.RetirementAge == 0 {
			sp.RetirementAge = sp.CurrentAge
		}
	}
}

// Years returns the number of simulated years (one step per year of
// the primary's age).
func (in *SimulationInput) Years() int {
	return in.MaxAge - in.CurrentAge
}

// MortalityEnabled reports whether random longevity is part of the run.
func (in *SimulationInput) MortalityEnabled() bool {
	return in.IncludeMortality == nil || *in.IncludeMortality
}

// EffectiveBuckets returns the explicit buckets, or synthesizes a
// taxable equity/bond pair from initial_capital and stock_allocation
// for the single-pot form. The result is a fresh slice safe to mutate.
func (in *SimulationInput) EffectiveBuckets() []Bucket {
	if len(in.Buckets) > 0 {
		out := make([]Bucket, len(in.Buckets))
		copy(out, in.Buckets)
		return out
	}
	alloc := DefaultStockAllocation
	if in.StockAllocation != nil {
		alloc = *in.StockAllocation
	}
	equity := in.InitialCapital.MulFloat(alloc)
	bond := in.InitialCapital.Sub(equity)
	return []Bucket{
		{Kind: AccountTaxable, Fund: FundEquity, Balance: equity},
		{Kind: AccountTaxable, Fund: FundBond, Balance: bond},
	}
}

// TotalCapital sums the starting portfolio across all buckets.
func (in *SimulationInput) TotalCapital() decimal.Money {
	total := decimal.Zero()
	for _, b := range in.EffectiveBuckets() {
		total = total.Add(b.Balance)
	}
	return total
}

// Clone deep-copies the input so comparison engines can vary one
// dimension without touching the caller's scenario.
func (in *SimulationInput) Clone() *SimulationInput {
	out := *in
	if in.Spouse != nil {
		sp := *in.Spouse
		out.Spouse = &sp
	}
	if in.Annuity != nil {
		an := *in.Annuity
		out.Annuity = &an
	}
	if in.Buckets != nil {
		out.Buckets = make([]Bucket, len(in.Buckets))
		copy(out.Buckets, in.Buckets)
	}
	copyBool := func(p *bool) *bool {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	copyFloat := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	out.IncludeMortality = copyBool(in.IncludeMortality)
	out.StockAllocation = copyFloat(in.StockAllocation)
	out.ExpectedReturn = copyFloat(in.ExpectedReturn)
	out.ReturnVolatility = copyFloat(in.ReturnVolatility)
	out.DividendYield = copyFloat(in.DividendYield)
	out.BondReturn = copyFloat(in.BondReturn)
	out.BondVolatility = copyFloat(in.BondVolatility)
	out.BondDividendYield = copyFloat(in.BondDividendYield)
	return &out
}

// Validate checks every field against its legal range and returns a
// ValidationError naming the first offending field. ApplyDefaults must
// run first; validation never mutates the input.
func (in *SimulationInput) Validate() error {
	if in.CurrentAge < 18 || in.CurrentAge > 110 {
		return NewValidationError("current_age", fmt.Sprintf("must be between 18 and 110, got %d", in.CurrentAge))
	}
	if in.MaxAge <= in.CurrentAge {
		return NewValidationError("max_age", fmt.Sprintf("must exceed current_age %d, got %d", in.CurrentAge, in.MaxAge))
	}
	if in.MaxAge > 120 {
		return NewValidationError("max_age", fmt.Sprintf("must be at most 120, got %d", in.MaxAge))
	}
	if in.Years() > 60 {
		return NewValidationError("max_age", fmt.Sprintf("horizon of %d years exceeds the 60-year limit", in.Years()))
	}
	if in.Gender != GenderMale && in.Gender != GenderFemale {
		return NewValidationError("gender", fmt.Sprintf("must be %q or %q, got %q", GenderMale, GenderFemale, in.Gender))
	}
	if len(in.State) != 2 {
		return NewValidationError("state", fmt.Sprintf("must be a two-letter code, got %q", in.State))
	}
	if in.FilingStatus != FilingSingle && in.FilingStatus != FilingMarriedJoint {
		return NewValidationError("filing_status", fmt.Sprintf("must be %q or %q, got %q", FilingSingle, FilingMarriedJoint, in.FilingStatus))
	}
	if in.EmploymentIncome.IsNegative() {
		return NewValidationError("employment_income", "must not be negative")
	}
	if in.EmploymentIncome.IsPositive() && in.RetirementAge < in.CurrentAge {
		return NewValidationError("retirement_age", fmt.Sprintf("must be at least current_age %d when employment income is set", in.CurrentAge))
	}
	if in.EmploymentGrowthRate < -1 || in.EmploymentGrowthRate > 1 {
		return NewValidationError("employment_growth_rate", fmt.Sprintf("must be between -1 and 1, got %g", in.EmploymentGrowthRate))
	}
	if in.SocialSecurityMonthly.IsNegative() {
		return NewValidationError("social_security_monthly", "must not be negative")
	}
	if in.SocialSecurityStartAge < 62 || in.SocialSecurityStartAge > 70 {
		return NewValidationError("social_security_start_age", fmt.Sprintf("must be between 62 and 70, got %d", in.SocialSecurityStartAge))
	}
	if in.PensionAnnual.IsNegative() {
		return NewValidationError("pension_annual", "must not be negative")
	}
	if err := in.validateSpouse(); err != nil {
		return err
	}
	if err := in.validateAnnuity(); err != nil {
		return err
	}
	if err := in.validatePortfolio(); err != nil {
		return err
	}
	if in.AnnualSpending.IsNegative() {
		return NewValidationError("annual_spending", "must not be negative")
	}
	switch in.WithdrawalStrategy {
	case WithdrawTaxableFirst, WithdrawTraditionalFirst, WithdrawRothFirst, WithdrawProRata:
	default:
		return NewValidationError("withdrawal_strategy", fmt.Sprintf("unknown strategy %q", in.WithdrawalStrategy))
	}
	if in.NSimulations < 100 {
		return NewValidationError("n_simulations", fmt.Sprintf("must be at least 100, got %d", in.NSimulations))
	}
	if err := in.validateMarketModel(); err != nil {
		return err
	}
	return nil
}

func (in *SimulationInput) validateSpouse() error {
	sp := in.Spouse
	if sp == nil {
		return nil
	}
	if sp.CurrentAge < 18 || sp.CurrentAge > 110 {
		return NewValidationError("spouse.current_age", fmt.Sprintf("must be between 18 and 110, got %d", sp.CurrentAge))
	}
	if sp.Gender != GenderMale && sp.Gender != GenderFemale {
		return NewValidationError("spouse.gender", fmt.Sprintf("must be %q or %q, got %q", GenderMale, GenderFemale, sp.Gender))
	}
	if sp.EmploymentIncome.IsNegative() {
		return NewValidationError("spouse.employment_income", "must not be negative")
	}
	if sp.SocialSecurityMonthly.IsNegative() {
		return NewValidationError("spouse.social_security_monthly", "must not be negative")
	}
	if sp.SocialSecurityStartAge < 62 || sp.SocialSecurityStartAge > 70 {
		return NewValidationError("spouse.social_security_start_age", fmt.Sprintf("must be between 62 and 70, got %d", sp.SocialSecurityStartAge))
	}
	if sp.PensionAnnual.IsNegative() {
		return NewValidationError("spouse.pension_annual", "must not be negative")
	}
	return nil
}

func (in *SimulationInput) validateAnnuity() error {
	an := in.Annuity
	if an == nil {
		return nil
	}
	if an.MonthlyPayment.IsNegative() {
		return NewValidationError("annuity.monthly_payment", "must not be negative")
	}
	switch an.Type {
	case AnnuityFixedPeriod, AnnuityLifeWithGuarantee, AnnuityLifeOnly:
	default:
		return NewValidationError("annuity.annuity_type", fmt.Sprintf("unknown annuity type %q", an.Type))
	}
	if an.Type != AnnuityLifeOnly && an.GuaranteeYears < 1 {
		return NewValidationError("annuity.guarantee_years", fmt.Sprintf("must be at least 1 for %s annuities, got %d", an.Type, an.GuaranteeYears))
	}
	return nil
}

func (in *SimulationInput) validatePortfolio() error {
	if len(in.Buckets) > 0 {
		for i, b := range in.Buckets {
			field := fmt.Sprintf("buckets[%d]", i)
			switch b.Kind {
			case AccountTaxable, AccountTraditional, AccountRoth:
			default:
				return NewValidationError(field+".kind", fmt.Sprintf("unknown account kind %q", b.Kind))
			}
			switch b.Fund {
			case FundEquity, FundBond:
			default:
				return NewValidationError(field+".fund", fmt.Sprintf("unknown fund kind %q", b.Fund))
			}
			if b.Balance.IsNegative() {
				return NewValidationError(field+".balance", "must not be negative")
			}
		}
		return nil
	}
	if in.InitialCapital.IsNegative() {
		return NewValidationError("initial_capital", "must not be negative")
	}
	if in.StockAllocation != nil && (*in.StockAllocation < 0 || *in.StockAllocation > 1) {
		return NewValidationError("stock_allocation", fmt.Sprintf("must be between 0 and 1, got %g", *in.StockAllocation))
	}
	return nil
}

func (in *SimulationInput) validateMarketModel() error {
	switch in.ReturnModel {
	case ReturnModelNormal, ReturnModelBootstrap, ReturnModelBlockBootstrap, ReturnModelHistorical:
	default:
		return NewValidationError("return_model", fmt.Sprintf("unknown return model %q", in.ReturnModel))
	}
	check := func(field string, p *float64, lo, hi float64) error {
		if p != nil && (*p < lo || *p > hi) {
			return NewValidationError(field, fmt.Sprintf("must be between %g and %g, got %g", lo, hi, *p))
		}
		return nil
	}
	if err := check("expected_return", in.ExpectedReturn, -0.5, 0.5); err != nil {
		return err
	}
	if err := check("return_volatility", in.ReturnVolatility, 0, 1); err != nil {
		return err
	}
	if err := check("dividend_yield", in.DividendYield, 0, 0.2); err != nil {
		return err
	}
	if err := check("bond_return", in.BondReturn, -0.5, 0.5); err != nil {
		return err
	}
	if err := check("bond_volatility", in.BondVolatility, 0, 1); err != nil {
		return err
	}
	if err := check("bond_dividend_yield", in.BondDividendYield, 0, 0.2); err != nil {
		return err
	}
	if in.BlockSize < 1 {
		return NewValidationError("block_size", fmt.Sprintf("must be at least 1, got %d", in.BlockSize))
	}
	switch in.StockIndex {
	case IndexSP500, IndexVT:
	default:
		return NewValidationError("stock_index", fmt.Sprintf("must be %q or %q, got %q", IndexSP500, IndexVT, in.StockIndex))
	}
	switch in.BondIndex {
	case IndexTreasury, IndexBND:
	default:
		return NewValidationError("bond_index", fmt.Sprintf("must be %q or %q, got %q", IndexTreasury, IndexBND, in.BondIndex))
	}
	return nil
}
