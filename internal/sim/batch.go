package sim

import (
	"context"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/roach88/sequent/internal/dist"
)

// BatchResult collects the two scalars retained from every run in a
// batch: the draw count and whether the decision was correct.
type BatchResult struct {
	// ID tags the batch for log and report correlation.
	ID string

	// Truth is the data-generating hypothesis all runs were drawn from.
	Truth dist.Hypothesis

	// Draws holds each run's sequential sample size, in run order.
	Draws []int

	// Correct records, per run, whether the decision matched Truth.
	Correct []bool
}

// Summary reduces a batch to its headline statistics.
type Summary struct {
	Runs        int
	MeanDraws   float64
	StdDevDraws float64
	MedianDraws float64
	P90Draws    float64
	MaxDraws    int
	CorrectRate float64
}

// Batch runs n independent simulations under the given true hypothesis
// and prior, all from a single batch seed.
//
// Run i draws its observations from its own PCG stream derived from
// (seed, i), so results are identical for any worker count and any
// scheduling order. Runs execute across an errgroup bounded at workers
// goroutines (GOMAXPROCS if workers <= 0); the runner's shared state is
// read-only, so no synchronization beyond the group itself is needed.
//
// A single failed run (safety bound breached) aborts the whole batch:
// under a sane configuration no run should ever hit the bound, so one
// failure means the batch statistics would be meaningless anyway.
func (r *Runner) Batch(ctx context.Context, n int, truth dist.Hypothesis, prior float64, seed uint64, workers int) (*BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	res := &BatchResult{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Truth:   truth,
		Draws:   make([]int, n),
		Correct: make([]bool, n),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u := dist.NewPCG(seed + uint64(i))
			out, err := r.Run(truth, prior, u)
			if err != nil {
				return err
			}
			res.Draws[i] = out.Draws
			res.Correct[i] = out.Correct(truth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Summarize computes the batch's headline statistics: mean, standard
// deviation, and quantiles of the stopping-time distribution plus the
// fraction of correct decisions.
func (b *BatchResult) Summarize() Summary {
	s := Summary{Runs: len(b.Draws)}
	if s.Runs == 0 {
		return s
	}

	draws := make([]float64, len(b.Draws))
	for i, d := range b.Draws {
		draws[i] = float64(d)
		if d > s.MaxDraws {
			s.MaxDraws = d
		}
	}
	sort.Float64s(draws)

	s.MeanDraws = stat.Mean(draws, nil)
	if len(draws) > 1 {
		s.StdDevDraws = stat.StdDev(draws, nil)
	}
	s.MedianDraws = stat.Quantile(0.5, stat.Empirical, draws, nil)
	s.P90Draws = stat.Quantile(0.9, stat.Empirical, draws, nil)

	correct := 0
	for _, ok := range b.Correct {
		if ok {
			correct++
		}
	}
	s.CorrectRate = float64(correct) / float64(s.Runs)
	return s
}
