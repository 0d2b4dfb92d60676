package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/policy"
	"github.com/roach88/sequent/internal/testutil"
)

// twoPoint builds the simplest informative observation model: index 0
// favors hypothesis 0 with 4:1 odds, index 1 favors hypothesis 1.
// From belief 0.5, one draw moves the belief to 0.8 or 0.2.
func twoPoint(t *testing.T) *dist.Pair {
	t.Helper()
	d, err := dist.New([]float64{4, 1}, []float64{1, 4})
	require.NoError(t, err)
	return d
}

func TestRun_AcceptsH0OnFavorableDraw(t *testing.T) {
	r := &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0.3, Alpha: 0.7},
	}

	// Truth H0: the sampler's cdf puts index 0 at cumulative 0.8, so a
	// uniform of 0.5 draws index 0 and pushes the belief to 0.8 > alpha.
	out, err := r.Run(dist.H0, 0.5, testutil.NewFixedUniform(0.5))
	require.NoError(t, err)

	assert.Equal(t, dist.H0, out.Decision)
	assert.Equal(t, 1, out.Draws)
	assert.InDelta(t, 0.8, out.FinalBelief, 1e-12)
	assert.True(t, out.Correct(dist.H0))
	assert.False(t, out.Correct(dist.H1))
}

func TestRun_AcceptsH1OnUnfavorableDraws(t *testing.T) {
	r := &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0.1, Alpha: 0.9},
	}

	// Truth H0 but the uniforms land in f0's unlucky tail (> 0.8), so
	// every draw is index 1 and the belief walks down: 0.5 -> 0.2 ->
	// 0.059 < beta after two draws.
	out, err := r.Run(dist.H0, 0.5, testutil.NewFixedUniform(0.9))
	require.NoError(t, err)

	assert.Equal(t, dist.H1, out.Decision)
	assert.Equal(t, 2, out.Draws)
	assert.Less(t, out.FinalBelief, 0.1)
	assert.False(t, out.Correct(dist.H0))
}

func TestRun_ContinuesInsideBand(t *testing.T) {
	r := &Runner{
		Dists:    twoPoint(t),
		Cutoffs:  policy.Cutoffs{Beta: 0.1, Alpha: 0.9},
		MaxDraws: 100,
	}

	// Alternating draws bounce the belief between 0.8 and 0.5 forever,
	// never leaving [0.1, 0.9]: the safety bound has to end the run.
	_, err := r.Run(dist.H0, 0.5, testutil.NewFixedUniform(0.5, 0.9))
	require.Error(t, err)

	var stopErr *StoppingError
	require.ErrorAs(t, err, &stopErr)
	assert.Equal(t, 100, stopErr.MaxDraws)
	assert.GreaterOrEqual(t, stopErr.Belief, 0.1)
	assert.LessOrEqual(t, stopErr.Belief, 0.9)
}

func TestRun_RefusesDegenerateCutoffs(t *testing.T) {
	r := &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0, Alpha: 1},
	}

	_, err := r.Run(dist.H0, 0.5, testutil.NewFixedUniform(0.5))
	require.Error(t, err)

	var degErr *policy.DegenerateError
	assert.ErrorAs(t, err, &degErr)
}

func TestRun_RejectsPriorOutsideUnitInterval(t *testing.T) {
	r := &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0.3, Alpha: 0.7},
	}

	_, err := r.Run(dist.H0, -0.1, testutil.NewFixedUniform(0.5))
	assert.Error(t, err)
	_, err = r.Run(dist.H0, 1.5, testutil.NewFixedUniform(0.5))
	assert.Error(t, err)
}

func TestRun_PriorAlreadyPastCutoff(t *testing.T) {
	r := &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0.3, Alpha: 0.7},
	}

	// Even starting at belief 0.95 one draw happens first: the state
	// machine checks cutoffs after updating, so Draws is always >= 1.
	out, err := r.Run(dist.H0, 0.95, testutil.NewFixedUniform(0.5))
	require.NoError(t, err)
	assert.Equal(t, dist.H0, out.Decision)
	assert.Equal(t, 1, out.Draws)
}

func TestState_Strings(t *testing.T) {
	assert.Equal(t, "CONTINUE", Continue.String())
	assert.Equal(t, "ACCEPT_0", Accept0.String())
	assert.Equal(t, "ACCEPT_1", Accept1.String())
}

func TestState_DecisionMapping(t *testing.T) {
	assert.Equal(t, dist.H0, Accept0.Decision())
	assert.Equal(t, dist.H1, Accept1.Decision())
	assert.Panics(t, func() { Continue.Decision() })
}
