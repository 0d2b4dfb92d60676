package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Normalizes(t *testing.T) {
	d, err := New([]float64{2, 2}, []float64{1, 3})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, d.F0(0), 1e-12)
	assert.InDelta(t, 0.5, d.F0(1), 1e-12)
	assert.InDelta(t, 0.25, d.F1(0), 1e-12)
	assert.InDelta(t, 0.75, d.F1(1), 1e-12)
}

func TestNew_RejectsMalformedInputs(t *testing.T) {
	tests := []struct {
		name   string
		w0, w1 []float64
	}{
		{"mismatched lengths", []float64{1, 2, 3}, []float64{1, 2}},
		{"single point support", []float64{1}, []float64{1}},
		{"negative weight", []float64{1, -0.5}, []float64{1, 1}},
		{"all zero weights", []float64{1, 1}, []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w0, tt.w1)
			require.Error(t, err)

			var inputErr *InputError
			assert.ErrorAs(t, err, &inputErr)
		})
	}
}

func TestNew_ClipsZeroMasses(t *testing.T) {
	// One support point has zero mass under f1 but positive mass under
	// f0: without clipping, observing it would send the belief to
	// exactly 1 and the likelihood ratio to infinity.
	d, err := New([]float64{1, 1, 1}, []float64{1, 0, 1})
	require.NoError(t, err)

	assert.Greater(t, d.F1(1), 0.0, "zero mass must be clipped away from 0")
	post := d.Posterior(0.5, 1)
	assert.Less(t, post, 1.0, "clipped mass must keep the posterior finite")
}

func TestMixture_SumsToOne(t *testing.T) {
	d, err := New([]float64{1, 2, 3, 4}, []float64{4, 3, 2, 1})
	require.NoError(t, err)

	for _, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
		mix := d.Mixture(p, nil)
		sum := 0.0
		for _, m := range mix {
			sum += m
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "mixture at p=%g", p)
	}
}

func TestMixture_Endpoints(t *testing.T) {
	d, err := New([]float64{3, 1}, []float64{1, 3})
	require.NoError(t, err)

	mix0 := d.Mixture(1, nil) // pure f0
	assert.InDelta(t, 0.75, mix0[0], 1e-12)

	mix1 := d.Mixture(0, nil) // pure f1
	assert.InDelta(t, 0.25, mix1[0], 1e-12)
}

func TestPosterior_StaysInUnitInterval(t *testing.T) {
	d, err := New([]float64{5, 3, 1, 0.01}, []float64{0.01, 1, 3, 5})
	require.NoError(t, err)

	for _, p := range []float64{0, 0.001, 0.25, 0.5, 0.75, 0.999, 1} {
		for k := 0; k < d.Len(); k++ {
			post := d.Posterior(p, k)
			assert.GreaterOrEqual(t, post, 0.0, "p=%g k=%d", p, k)
			assert.LessOrEqual(t, post, 1.0, "p=%g k=%d", p, k)
		}
	}
}

func TestPosterior_BayesRule(t *testing.T) {
	d, err := New([]float64{4, 1}, []float64{1, 4})
	require.NoError(t, err)

	// p'=0.5*0.8/(0.5*0.8+0.5*0.2) = 0.8 after the f0-favoring index.
	assert.InDelta(t, 0.8, d.Posterior(0.5, 0), 1e-12)
	// Symmetrically 0.2 after the f1-favoring index.
	assert.InDelta(t, 0.2, d.Posterior(0.5, 1), 1e-12)
}

func TestPosteriors_MatchesPointwise(t *testing.T) {
	d, err := New([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NoError(t, err)

	all := d.Posteriors(0.4, nil)
	require.Len(t, all, d.Len())
	for k := range all {
		assert.Equal(t, d.Posterior(0.4, k), all[k])
	}
}

func TestPMF_ReturnsCopy(t *testing.T) {
	d, err := New([]float64{1, 1}, []float64{1, 1})
	require.NoError(t, err)

	pmf := d.PMF(H0)
	pmf[0] = 99
	assert.InDelta(t, 0.5, d.F0(0), 1e-12, "mutating the copy must not touch the pair")
}

func TestHypothesis_String(t *testing.T) {
	assert.Equal(t, "H0", H0.String())
	assert.Equal(t, "H1", H1.String())
}
