package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/config"
	"github.com/finsim/retirement-simulator/internal/domain"
)

// testScenario depletes deterministically in year 9: $500k, $60k
// spending, zero growth, no state tax, mortality off.
const testScenario = `current_age: 65
max_age: 75
gender: male
state: TX
filing_status: single
initial_capital: 500000
stock_allocation: 1.0
annual_spending: 60000
n_simulations: 100
include_mortality: false
seed: 42
expected_return: 0
return_volatility: 0
dividend_yield: 0
bond_return: 0
bond_volatility: 0
bond_dividend_yield: 0
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o644))
	return path
}

// executeCLI runs the root command with args, capturing stdout.
func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String(), execErr
}

func TestInitWritesScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter.yaml")
	_, err := executeCLI(t, "init", path)
	require.NoError(t, err)

	in, err := config.NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.NoError(t, in.Validate())
}

func TestRunCommandConsole(t *testing.T) {
	scenario := writeScenario(t)
	out, err := executeCLI(t, "run", scenario,
		"--format", "console", "--no-progress", "--paths", "100", "--seed", "42")
	require.NoError(t, err)

	assert.Contains(t, out, "MONTE CARLO RETIREMENT SIMULATION")
	assert.Contains(t, out, "Success rate:        0.0%")
	assert.Contains(t, out, "Median depletion age: 74")
}

func TestRunCommandJSONToFile(t *testing.T) {
	scenario := writeScenario(t)
	outFile := filepath.Join(t.TempDir(), "report.json")
	_, err := executeCLI(t, "run", scenario,
		"--format", "json", "--no-progress", "--paths", "100", "--seed", "123",
		"-o", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var res domain.SimulationResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, int64(123), res.Seed, "seed flag should override the scenario")
	assert.Equal(t, 100, res.NSimulations)
	assert.Zero(t, res.SuccessRate)
}

func TestRunCommandUnknownFormat(t *testing.T) {
	scenario := writeScenario(t)
	_, err := executeCLI(t, "run", scenario,
		"--format", "bogus", "--no-progress", "--paths", "100", "--seed", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRunCommandMissingScenario(t *testing.T) {
	_, err := executeCLI(t, "run", filepath.Join(t.TempDir(), "absent.yaml"),
		"--format", "console", "--no-progress", "--paths", "100", "--seed", "42")
	require.Error(t, err)
}

func TestCompareAllocationJSON(t *testing.T) {
	scenario := writeScenario(t)
	out, err := executeCLI(t, "compare", "allocation", scenario,
		"--splits", "0.6", "--format", "json")
	require.NoError(t, err)

	var cmp domain.AllocationComparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	require.Len(t, cmp.Entries, 1)
	assert.Equal(t, 0.6, cmp.Entries[0].StockAllocation)
}

func TestCompareAnnuityConsole(t *testing.T) {
	scenario := writeScenario(t)
	out, err := executeCLI(t, "compare", "annuity", scenario,
		"--monthly-payment", "2000", "--guarantee-years", "10", "--format", "console")
	require.NoError(t, err)

	assert.Contains(t, out, "ANNUITY VS PORTFOLIO")
	assert.Contains(t, out, "Recommendation: annuity")
}
