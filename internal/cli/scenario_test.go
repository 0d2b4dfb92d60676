package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToConfig_FromBetaForm(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, validScenarioYAML))
	require.NoError(t, err)

	cfg, err := sc.ToConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Cost)
	assert.Equal(t, 5.0, cfg.Loss0)
	assert.Equal(t, 51, cfg.GridSize)
	assert.Len(t, cfg.Weights0, 20)
	assert.Len(t, cfg.Weights1, 20)
	assert.Equal(t, 1e-6, cfg.Tol)
	assert.Equal(t, 2000, cfg.MaxSweeps)

	// Beta(1,1) discretizes to uniform weights.
	for _, w := range cfg.Weights0 {
		assert.InDelta(t, 1.0, w, 1e-12)
	}
}

func TestToConfig_FromRawWeights(t *testing.T) {
	sc := &Scenario{
		Name:  "raw",
		Cost:  1,
		Loss0: 2,
		Loss1: 3,
		Grid:  21,
		Distributions: Distributions{
			Weights0: []float64{4, 1},
			Weights1: []float64{1, 4},
		},
	}

	cfg, err := sc.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 1}, cfg.Weights0)
	assert.Equal(t, []float64{1, 4}, cfg.Weights1)
}

func TestBuild_ConstructsSolvableModel(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, validScenarioYAML))
	require.NoError(t, err)

	m, err := sc.Build()
	require.NoError(t, err)

	_, err = m.Solve()
	require.NoError(t, err)
	cut, err := m.Cutoffs()
	require.NoError(t, err)
	assert.Less(t, cut.Beta, cut.Alpha)
}

func TestBuild_SurfacesModelValidation(t *testing.T) {
	sc := &Scenario{
		Name:  "bad",
		Cost:  1,
		Loss0: 1,
		Loss1: 1,
		Grid:  1, // too coarse
		Distributions: Distributions{
			Weights0: []float64{1, 1},
			Weights1: []float64{1, 2},
		},
	}
	_, err := sc.Build()
	assert.Error(t, err)
}
