package benchmark

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nvr-ai/go-blazeface/models/blazeface"
	"github.com/nvr-ai/go-blazeface/models/model"
)

func TestScenarioBuilder(t *testing.T) {
	scenario := NewScenarioBuilder("palm_crowded").
		WithModel(model.ModelNamePalm).
		WithCandidates(300).
		WithWeightedNMS(true).
		WithIterations(5).
		WithWarmupRuns(1).
		WithSeed(7).
		Build()

	assert.Equal(t, Scenario{
		Name:       "palm_crowded",
		Model:      model.ModelNamePalm,
		Candidates: 300,
		Weighted:   true,
		Iterations: 5,
		WarmupRuns: 1,
		Seed:       7,
	}, scenario)
}

func TestQuickScenarios(t *testing.T) {
	set := QuickScenarios()
	require.Len(t, set.Scenarios, 12)

	names := make(map[string]bool)
	for _, s := range set.Scenarios {
		assert.False(t, names[s.Name], "duplicate scenario %s", s.Name)
		names[s.Name] = true
	}
}

func TestSyntheticOutput(t *testing.T) {
	cfg := blazeface.FaceFrontConfig()

	a := SyntheticOutput(cfg, 32, 3)
	b := SyntheticOutput(cfg, 32, 3)
	require.Len(t, a, cfg.OutputSize())
	assert.Equal(t, a, b)

	confident := 0
	for _, logit := range a[cfg.BoxCount*cfg.CoordCount():] {
		if logit > 0 {
			confident++
		}
	}
	assert.Equal(t, 32, confident)

	all := SyntheticOutput(cfg, cfg.BoxCount+10, 3)
	assert.Len(t, all, cfg.OutputSize())

	none := SyntheticOutput(cfg, -1, 3)
	require.Len(t, none, cfg.OutputSize())
	for _, logit := range none[cfg.BoxCount*cfg.CoordCount():] {
		assert.Negative(t, logit)
	}
}

func TestSuite_RejectsNegativeCandidates(t *testing.T) {
	suite := NewSuite(t.TempDir(), zaptest.NewLogger(t))

	_, err := suite.RunScenario(context.Background(),
		NewScenarioBuilder("negative").WithCandidates(-1).WithIterations(2).Build())
	assert.Error(t, err)

	suite.AddScenario(NewScenarioBuilder("negative").WithCandidates(-1).WithIterations(2).Build())
	require.NoError(t, suite.RunAllScenarios(context.Background()))
	assert.Empty(t, suite.GetResults())
}

func TestSummarizeLatency(t *testing.T) {
	assert.Equal(t, LatencyMetrics{}, summarizeLatency(nil))

	samples := []time.Duration{4, 1, 3, 2}
	got := summarizeLatency(samples)
	assert.Equal(t, time.Duration(2), got.Mean)
	assert.Equal(t, time.Duration(4), got.Max)
	assert.Equal(t, time.Duration(2), got.P50)
	assert.Equal(t, time.Duration(4), got.P99)

	single := summarizeLatency([]time.Duration{10})
	assert.Zero(t, single.StdDev)
}

func TestSuite_RunAndSave(t *testing.T) {
	suite := NewSuite(t.TempDir(), zaptest.NewLogger(t))
	suite.AddScenario(NewScenarioBuilder("face").WithCandidates(20).WithIterations(3).WithWarmupRuns(1).Build())
	suite.AddScenario(NewScenarioBuilder("unknown").WithModel("hand_landmark").WithIterations(3).Build())
	suite.AddScenario(NewScenarioBuilder("zero").WithIterations(0).Build())

	require.NoError(t, suite.RunAllScenarios(context.Background()))

	results := suite.GetResults()
	require.Len(t, results, 1)
	assert.Equal(t, "face", results[0].Scenario.Name)
	assert.Positive(t, results[0].DetectionCount)
	assert.Zero(t, results[0].ErrorRate)

	resultsFile, summaryFile, err := suite.SaveResults()
	require.NoError(t, err)
	assert.FileExists(t, resultsFile)

	f, err := os.Open(summaryFile)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "face", rows[1][0])
}

func TestSuite_Cancelled(t *testing.T) {
	suite := NewSuite(t.TempDir(), nil)
	suite.AddScenario(NewScenarioBuilder("face").WithIterations(10).Build())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, suite.RunAllScenarios(ctx), context.Canceled)
	assert.Empty(t, suite.GetResults())
}

func TestLoadScenarioSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: custom
scenarios:
  - name: palm
    model: palm_detection
    candidates: 64
    iterations: 10
`), 0o600))

	set, err := LoadScenarioSet(path)
	require.NoError(t, err)
	require.Len(t, set.Scenarios, 1)
	assert.Equal(t, model.ModelNamePalm, set.Scenarios[0].Model)
	assert.Equal(t, 64, set.Scenarios[0].Candidates)

	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  - nme: typo\n"), 0o600))
	_, err = LoadScenarioSet(path)
	assert.Error(t, err)
}
