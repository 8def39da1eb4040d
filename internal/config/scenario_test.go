package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/domain"
)

const sampleScenario = `
current_age: 65
max_age: 95
gender: female
state: WA
annual_spending: 60000
n_simulations: 1000
seed: 42
buckets:
  - kind: taxable
    fund: equity
    balance: 300000
  - kind: traditional
    fund: bond
    balance: 450000.50
withdrawal_strategy: traditional_first
return_model: bootstrap
`

func TestScenarioParse(t *testing.T) {
	in, err := NewScenarioParser().Parse([]byte(sampleScenario))
	require.NoError(t, err)

	assert.Equal(t, 65, in.CurrentAge)
	assert.Equal(t, domain.GenderFemale, in.Gender)
	assert.Equal(t, "WA", in.State)
	assert.Equal(t, int64(42), in.Seed)
	assert.Equal(t, domain.WithdrawTraditionalFirst, in.WithdrawalStrategy)
	assert.Equal(t, domain.ReturnModelBootstrap, in.ReturnModel)

	require.Len(t, in.Buckets, 2)
	assert.Equal(t, domain.AccountTraditional, in.Buckets[1].Kind)
	assert.Equal(t, "450000.50", in.Buckets[1].Balance.String())

	// Defaults filled for everything the file left out.
	assert.Equal(t, domain.FilingSingle, in.FilingStatus)
	assert.NotNil(t, in.ExpectedReturn)
	assert.Equal(t, domain.DefaultSSStartAge, in.SocialSecurityStartAge)
}

func TestScenarioParseRejectsMalformedYAML(t *testing.T) {
	_, err := NewScenarioParser().Parse([]byte("current_age: [not a number"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario YAML")
}

func TestScenarioParseRejectsInvalidInput(t *testing.T) {
	_, err := NewScenarioParser().Parse([]byte("current_age: 65\nstate: CALIFORNIA\n"))
	require.Error(t, err)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "state", verr.Field)
}

func TestScenarioLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "household.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScenario), 0o644))

	in, err := NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, in.NSimulations)

	_, err = NewScenarioParser().LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestExampleScenarioIsValid(t *testing.T) {
	in := ExampleScenario()
	require.NoError(t, in.Validate())
	assert.NotNil(t, in.Spouse)
	assert.Equal(t, domain.FilingMarriedJoint, in.FilingStatus)
}

func TestWriteExampleScenarioRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, WriteExampleScenario(path))

	in, err := NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ExampleScenario().AnnualSpending.String(), in.AnnualSpending.String())
	assert.Len(t, in.Buckets, 5)
}
