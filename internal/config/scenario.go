package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// ScenarioParser loads household scenario files.
type ScenarioParser struct{}

// NewScenarioParser creates a new scenario parser.
func NewScenarioParser() *ScenarioParser {
	return &ScenarioParser{}
}

// LoadFromFile reads a YAML scenario, applies defaults, and validates.
func (sp *ScenarioParser) LoadFromFile(filename string) (*domain.SimulationInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", filename, err)
	}
	return sp.Parse(data)
}

// Parse decodes a YAML scenario document.
func (sp *ScenarioParser) Parse(data []byte) (*domain.SimulationInput, error) {
	var in domain.SimulationInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	in.ApplyDefaults()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &in, nil
}

// ExampleScenario returns a filled-in married household that exercises
// most input fields, used by the example subcommand as a starting
// point for new scenario files.
func ExampleScenario() *domain.SimulationInput {
	in := &domain.SimulationInput{
		CurrentAge:   62,
		MaxAge:       95,
		Gender:       domain.GenderMale,
		State:        "CA",
		FilingStatus: domain.FilingMarriedJoint,

		EmploymentIncome:       decimal.NewMoney(120000),
		EmploymentGrowthRate:   0.02,
		RetirementAge:          65,
		SocialSecurityMonthly:  decimal.NewMoney(2800),
		SocialSecurityStartAge: 67,
		PensionAnnual:          decimal.NewMoney(12000),

		Spouse: &domain.Spouse{
			CurrentAge:             60,
			Gender:                 domain.GenderFemale,
			EmploymentIncome:       decimal.NewMoney(85000),
			EmploymentGrowthRate:   0.02,
			RetirementAge:          63,
			SocialSecurityMonthly:  decimal.NewMoney(1900),
			SocialSecurityStartAge: 67,
		},

		Buckets: []domain.Bucket{
			{Kind: domain.AccountTaxable, Fund: domain.FundEquity, Balance: decimal.NewMoney(400000)},
			{Kind: domain.AccountTaxable, Fund: domain.FundBond, Balance: decimal.NewMoney(150000)},
			{Kind: domain.AccountTraditional, Fund: domain.FundEquity, Balance: decimal.NewMoney(600000)},
			{Kind: domain.AccountTraditional, Fund: domain.FundBond, Balance: decimal.NewMoney(250000)},
			{Kind: domain.AccountRoth, Fund: domain.FundEquity, Balance: decimal.NewMoney(200000)},
		},

		AnnualSpending:     decimal.NewMoney(110000),
		WithdrawalStrategy: domain.WithdrawTaxableFirst,
		NSimulations:       10000,
		ReturnModel:        domain.ReturnModelBlockBootstrap,
	}
	in.ApplyDefaults()
	return in
}

// WriteExampleScenario writes the example scenario as YAML.
func WriteExampleScenario(filename string) error {
	data, err := yaml.Marshal(ExampleScenario())
	if err != nil {
		return fmt.Errorf("failed to marshal example scenario: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
