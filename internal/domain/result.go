package domain

import (
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// TerminalState tags how a path ended. Depleted dominates: a path that
// runs out of money while the household is alive stays depleted even if
// a death follows later.
type TerminalState string

const (
	// TerminalAtMaxAge means the household reached the horizon solvent.
	TerminalAtMaxAge TerminalState = "at_max_age"
	// TerminalDeceased means everyone died before the horizon, with
	// money still in the portfolio.
	TerminalDeceased TerminalState = "deceased"
	// TerminalDepleted means the portfolio hit zero while someone was
	// still alive. This is the only terminal state counted as failure.
	TerminalDepleted TerminalState = "depleted"
)

// YearBreakdown is the full cash-flow picture of a single simulated
// year on one path.
type YearBreakdown struct {
	Age            int           `json:"age"`
	YearIndex      int           `json:"year_index"`
	PortfolioStart decimal.Money `json:"portfolio_start"`
	PortfolioEnd   decimal.Money `json:"portfolio_end"`
	// PortfolioReturn is the realized growth rate net of the withdrawal:
	// (end - start + withdrawal) / start.
	PortfolioReturn float64 `json:"portfolio_return"`

	EmploymentIncome     decimal.Money `json:"employment_income"`
	SocialSecurityIncome decimal.Money `json:"social_security_income"`
	PensionIncome        decimal.Money `json:"pension_income"`
	DividendIncome       decimal.Money `json:"dividend_income"`
	AnnuityIncome        decimal.Money `json:"annuity_income"`
	TotalIncome          decimal.Money `json:"total_income"`

	Withdrawal decimal.Money `json:"withdrawal"`
	FederalTax decimal.Money `json:"federal_tax"`
	StateTax   decimal.Money `json:"state_tax"`
	TotalTax   decimal.Money `json:"total_tax"`
	// IRMAA is the annual Medicare premium surcharge. It is reported
	// alongside the taxes but kept out of TotalTax and NetIncome so the
	// net-income identity stays income + withdrawal - taxes.
	IRMAA            decimal.Money `json:"irmaa"`
	EffectiveTaxRate float64       `json:"effective_tax_rate"`
	NetIncome        decimal.Money `json:"net_income"`
}

// PathResult is everything retained from one simulated path.
type PathResult struct {
	Index      int             `json:"index"`
	Balances   []decimal.Money `json:"balances"` // length years+1, index 0 = starting capital
	Breakdowns []YearBreakdown `json:"breakdowns"`
	Terminal   TerminalState   `json:"terminal"`

	DepletionYear *int `json:"depletion_year,omitempty"` // 1-based year the balance first hit zero
	DeathYear     *int `json:"death_year,omitempty"`     // 1-based year the last household member died

	TotalWithdrawn         decimal.Money `json:"total_withdrawn"`
	TotalTaxes             decimal.Money `json:"total_taxes"`
	LifetimeSocialSecurity decimal.Money `json:"lifetime_social_security"`
}

// Failed reports whether the path depleted while the household was
// alive.
func (p *PathResult) Failed() bool {
	return p.Terminal == TerminalDepleted
}

// FinalBalance returns the last entry of the balance series.
func (p *PathResult) FinalBalance() decimal.Money {
	if len(p.Balances) == 0 {
		return decimal.Zero()
	}
	return p.Balances[len(p.Balances)-1]
}

// Percentiles holds the five standard percentile levels of a money
// distribution.
type Percentiles struct {
	P5  decimal.Money `json:"p5"`
	P25 decimal.Money `json:"p25"`
	P50 decimal.Money `json:"p50"`
	P75 decimal.Money `json:"p75"`
	P95 decimal.Money `json:"p95"`
}

// PercentileBands holds year-indexed percentile curves of the balance
// distribution, each series of length years+1 including year zero.
type PercentileBands struct {
	P5  []decimal.Money `json:"p5"`
	P25 []decimal.Money `json:"p25"`
	P50 []decimal.Money `json:"p50"`
	P75 []decimal.Money `json:"p75"`
	P95 []decimal.Money `json:"p95"`
}

// SimulationResult is the aggregate outcome of a full Monte Carlo run.
type SimulationResult struct {
	RunID        string `json:"run_id"`
	NSimulations int    `json:"n_simulations"`
	Years        int    `json:"years"`
	Seed         int64  `json:"seed"`

	SuccessRate        float64         `json:"success_rate"`
	FinalValues        Percentiles     `json:"final_values"`
	PercentilePaths    PercentileBands `json:"percentile_paths"`
	MedianFinalValue   decimal.Money   `json:"median_final_value"`
	MeanFinalValue     decimal.Money   `json:"mean_final_value"`
	MedianDepletionAge *int            `json:"median_depletion_age,omitempty"`
	ProbDepletion10Yr  float64         `json:"prob_depletion_10yr"`

	InitialWithdrawalRate float64       `json:"initial_withdrawal_rate"` // percent of starting capital
	MedianTotalWithdrawn  decimal.Money `json:"median_total_withdrawn"`
	MedianTotalTaxes      decimal.Money `json:"median_total_taxes"`

	// RepresentativePath is the year-by-year breakdown of the completed
	// path whose final value lands closest to the median, so the rows
	// are internally consistent rather than per-field medians.
	RepresentativePath []YearBreakdown `json:"representative_path"`
}

// StateComparisonEntry is one candidate state's outcome.
type StateComparisonEntry struct {
	State            string        `json:"state"`
	SuccessRate      float64       `json:"success_rate"`
	MedianTotalTaxes decimal.Money `json:"median_total_taxes"`
	MedianFinalValue decimal.Money `json:"median_final_value"`
	// TaxSavings is base-state median taxes minus this state's, floored
	// at zero.
	TaxSavings decimal.Money `json:"tax_savings"`
}

// StateComparison ranks candidate residence states for the same
// household.
type StateComparison struct {
	BaseState string                 `json:"base_state"`
	Entries   []StateComparisonEntry `json:"entries"`
	BestState string                 `json:"best_state"`
}

// ClaimingAgeEntry is one Social Security claiming age's outcome.
type ClaimingAgeEntry struct {
	ClaimAge         int           `json:"claim_age"`
	MonthlyBenefit   decimal.Money `json:"monthly_benefit"`
	SuccessRate      float64       `json:"success_rate"`
	LifetimeBenefits decimal.Money `json:"lifetime_benefits"` // median across paths
	BreakevenAge     *int          `json:"breakeven_age,omitempty"`
}

// ClaimingComparison sweeps Social Security claiming ages 62 through
// 70.
type ClaimingComparison struct {
	Entries             []ClaimingAgeEntry `json:"entries"`
	OptimalForSuccess   int                `json:"optimal_for_success"`
	OptimalForLongevity int                `json:"optimal_for_longevity"`
}

// AllocationEntry is one stock/bond split's outcome.
type AllocationEntry struct {
	StockAllocation float64     `json:"stock_allocation"`
	SuccessRate     float64     `json:"success_rate"`
	FinalValues     Percentiles `json:"final_values"`
	// HistoricalMeanReturn blends the embedded series' historical mean
	// returns at this split, for context next to the simulated outcome.
	HistoricalMeanReturn float64 `json:"historical_mean_return"`
	RealizedVolatility   float64 `json:"realized_volatility"`
}

// AllocationComparison sweeps stock/bond splits on the same seed.
type AllocationComparison struct {
	Entries           []AllocationEntry `json:"entries"`
	OptimalForSuccess float64           `json:"optimal_for_success"`
	// OptimalForSafety is the split with the highest 5th-percentile
	// final value among splits within two points of the best success
	// rate.
	OptimalForSafety float64 `json:"optimal_for_safety"`
}

// AnnuityRecommendation is the outcome of the annuity-vs-portfolio
// comparison.
type AnnuityRecommendation string

const (
	RecommendPortfolio AnnuityRecommendation = "portfolio"
	RecommendAnnuity   AnnuityRecommendation = "annuity"
	RecommendHybrid    AnnuityRecommendation = "hybrid"
)

// AnnuityComparison weighs staying invested against buying a fixed
// annuity with the same capital.
type AnnuityComparison struct {
	Simulation             *SimulationResult     `json:"simulation"`
	AnnuityGuaranteedTotal decimal.Money         `json:"annuity_guaranteed_total"`
	ProbPortfolioBeats     float64               `json:"prob_portfolio_beats_annuity"`
	MedianPortfolioNet     decimal.Money         `json:"median_portfolio_net_income"`
	Recommendation         AnnuityRecommendation `json:"recommendation"`
}

// MortalityProfile is the queryable view of the bundled life table:
// annual death probabilities and the survival curve from a starting
// age.
type MortalityProfile struct {
	Gender        Gender    `json:"gender"`
	StartAge      int       `json:"start_age"`
	EndAge        int       `json:"end_age"`
	DeathRates    []float64 `json:"death_rates"`
	SurvivalCurve []float64 `json:"survival_curve"`
}
