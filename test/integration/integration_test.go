package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/config"
	"github.com/finsim/retirement-simulator/internal/output"
)

const exampleScenario = `
current_age: 62
max_age: 92
gender: female
state: CA
filing_status: single
social_security_monthly: 2200
social_security_start_age: 67
initial_capital: 900000
stock_allocation: 0.6
annual_spending: 50000
withdrawal_strategy: taxable_first
n_simulations: 1000
include_mortality: true
seed: 20250817
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestScenarioFileToResult(t *testing.T) {
	in, err := config.NewScenarioParser().LoadFromFile(writeScenario(t, exampleScenario))
	require.NoError(t, err)

	engine := calculation.NewEngine(calculation.WithWorkers(4))
	res, err := engine.Simulate(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, int64(20250817), res.Seed)
	assert.Equal(t, 1000, res.NSimulations)
	assert.Equal(t, 30, res.Years)
	assert.GreaterOrEqual(t, res.SuccessRate, 0.0)
	assert.LessOrEqual(t, res.SuccessRate, 1.0)

	fv := res.FinalValues
	assert.True(t, fv.P5.LessThanOrEqual(fv.P25), "P5 %s > P25 %s", fv.P5, fv.P25)
	assert.True(t, fv.P25.LessThanOrEqual(fv.P50), "P25 %s > P50 %s", fv.P25, fv.P50)
	assert.True(t, fv.P50.LessThanOrEqual(fv.P75), "P50 %s > P75 %s", fv.P50, fv.P75)
	assert.True(t, fv.P75.LessThanOrEqual(fv.P95), "P75 %s > P95 %s", fv.P75, fv.P95)

	// Bands cover year zero through the horizon, starting at the
	// initial capital.
	require.Len(t, res.PercentilePaths.P50, 31)
	assert.True(t, res.PercentilePaths.P50[0].Equal(in.TotalCapital()))
	assert.NotEmpty(t, res.RepresentativePath)

	// 50k spending on 900k of capital, less dividend income, plus the
	// gross-up for California tax.
	assert.Greater(t, res.InitialWithdrawalRate, 0.0)
	assert.Less(t, res.InitialWithdrawalRate, 10.0)
}

func TestRunIsReproducibleAcrossEngines(t *testing.T) {
	path := writeScenario(t, exampleScenario)
	in1, err := config.NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	in2, err := config.NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)

	ctx := context.Background()
	res1, err := calculation.NewEngine(calculation.WithWorkers(1)).Simulate(ctx, in1)
	require.NoError(t, err)
	res2, err := calculation.NewEngine(calculation.WithWorkers(8)).Simulate(ctx, in2)
	require.NoError(t, err)

	// Identical seed, any worker count: same statistics.
	assert.Equal(t, res1.SuccessRate, res2.SuccessRate)
	assert.True(t, res1.FinalValues.P50.Equal(res2.FinalValues.P50))
	assert.True(t, res1.MedianTotalTaxes.Equal(res2.MedianTotalTaxes))
}

func TestSuccessRateConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 10k-path run in short mode")
	}
	path := writeScenario(t, exampleScenario)
	small, err := config.NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	large, err := config.NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	large.NSimulations = 10000

	ctx := context.Background()
	engine := calculation.NewEngine(calculation.WithWorkers(0))
	resSmall, err := engine.Simulate(ctx, small)
	require.NoError(t, err)
	resLarge, err := engine.Simulate(ctx, large)
	require.NoError(t, err)

	assert.InDelta(t, resLarge.SuccessRate, resSmall.SuccessRate, 0.05,
		"1k-path estimate %.3f vs 10k-path %.3f", resSmall.SuccessRate, resLarge.SuccessRate)
}

func TestResultThroughEveryFormatter(t *testing.T) {
	in, err := config.NewScenarioParser().LoadFromFile(writeScenario(t, exampleScenario))
	require.NoError(t, err)
	in.NSimulations = 200

	res, err := calculation.NewEngine(calculation.WithWorkers(2)).Simulate(context.Background(), in)
	require.NoError(t, err)

	for _, name := range output.AvailableFormatterNames() {
		f := output.GetFormatterByName(name)
		require.NotNil(t, f, "formatter %s", name)
		out, err := f.Format(res)
		require.NoError(t, err, "formatter %s", name)
		assert.NotEmpty(t, out, "formatter %s", name)
	}

	// The JSON rendering round-trips back to the same run.
	raw, err := output.GetFormatterByName("json").Format(res)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, res.RunID, decoded["run_id"])
}

func TestExampleScenarioIsRunnable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, config.WriteExampleScenario(path))

	in, err := config.NewScenarioParser().LoadFromFile(path)
	require.NoError(t, err)
	in.NSimulations = 200

	res, err := calculation.NewEngine(calculation.WithWorkers(2)).Simulate(context.Background(), in)
	require.NoError(t, err)
	assert.Positive(t, res.SuccessRate)
}
