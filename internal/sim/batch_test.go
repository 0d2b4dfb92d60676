package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/policy"
)

func batchRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0.2, Alpha: 0.8},
	}
}

func TestBatch_CollectsAllRuns(t *testing.T) {
	r := batchRunner(t)

	res, err := r.Batch(context.Background(), 200, dist.H0, 0.5, 1, 4)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, dist.H0, res.Truth)
	require.Len(t, res.Draws, 200)
	require.Len(t, res.Correct, 200)
	for i, d := range res.Draws {
		assert.GreaterOrEqual(t, d, 1, "run %d", i)
	}
}

func TestBatch_DeterministicAcrossWorkerCounts(t *testing.T) {
	r := batchRunner(t)

	base, err := r.Batch(context.Background(), 100, dist.H0, 0.5, 42, 1)
	require.NoError(t, err)

	for _, workers := range []int{2, 8} {
		got, err := r.Batch(context.Background(), 100, dist.H0, 0.5, 42, workers)
		require.NoError(t, err, "workers=%d", workers)
		assert.Equal(t, base.Draws, got.Draws, "workers=%d", workers)
		assert.Equal(t, base.Correct, got.Correct, "workers=%d", workers)
	}
}

func TestBatch_SeedChangesRuns(t *testing.T) {
	r := batchRunner(t)

	a, err := r.Batch(context.Background(), 100, dist.H0, 0.5, 1, 4)
	require.NoError(t, err)
	b, err := r.Batch(context.Background(), 100, dist.H0, 0.5, 2, 4)
	require.NoError(t, err)

	assert.NotEqual(t, a.Draws, b.Draws, "different seeds should give different observation streams")
}

func TestBatch_MostDecisionsCorrectUnderEitherTruth(t *testing.T) {
	r := batchRunner(t)

	for _, truth := range []dist.Hypothesis{dist.H0, dist.H1} {
		res, err := r.Batch(context.Background(), 500, truth, 0.5, 3, 4)
		require.NoError(t, err)

		s := res.Summarize()
		assert.GreaterOrEqual(t, s.CorrectRate, 0.5, "truth %s", truth)
	}
}

func TestBatch_AbortsOnDegeneratePolicy(t *testing.T) {
	r := &Runner{
		Dists:   twoPoint(t),
		Cutoffs: policy.Cutoffs{Beta: 0, Alpha: 1},
	}

	_, err := r.Batch(context.Background(), 10, dist.H0, 0.5, 1, 2)
	require.Error(t, err)

	var degErr *policy.DegenerateError
	assert.ErrorAs(t, err, &degErr)
}

func TestSummarize_KnownValues(t *testing.T) {
	b := &BatchResult{
		Draws:   []int{1, 2, 3, 4},
		Correct: []bool{true, true, true, false},
	}

	s := b.Summarize()
	assert.Equal(t, 4, s.Runs)
	assert.InDelta(t, 2.5, s.MeanDraws, 1e-12)
	assert.InDelta(t, 1.2909944487, s.StdDevDraws, 1e-9)
	assert.InDelta(t, 2.0, s.MedianDraws, 1e-12)
	assert.Equal(t, 4, s.MaxDraws)
	assert.InDelta(t, 0.75, s.CorrectRate, 1e-12)
}

func TestSummarize_Empty(t *testing.T) {
	s := (&BatchResult{}).Summarize()
	assert.Equal(t, 0, s.Runs)
	assert.Equal(t, 0.0, s.MeanDraws)
}
