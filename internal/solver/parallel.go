package solver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SolveParallel computes the same fixed point as Solve but distributes
// each sweep's per-point updates across workers.
//
// Every worker reads only the previous sweep's array and writes disjoint
// chunks of the next one, with errgroup.Wait as the barrier between
// sweeps, so the iteration stays a faithful Jacobi update and produces
// bit-identical results to Solve.
//
// workers <= 0 uses GOMAXPROCS. Cancelling ctx abandons the solve between
// sweeps and returns ctx.Err().
func (s *Solver) SolveParallel(ctx context.Context, workers int, from []float64) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	t := s.precompute()
	cur, err := s.initial(from)
	if err != nil {
		return nil, err
	}
	next := make([]float64, len(cur))

	m := len(cur)
	chunk := (m + workers - 1) / workers

	res := &Result{}
	tol, limit := s.tol(), s.maxSweeps()
	for sweep := 1; sweep <= limit; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g, _ := errgroup.WithContext(ctx)
		residuals := make([]float64, workers)
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, m)
			if lo >= hi {
				break
			}
			w := w
			g.Go(func() error {
				worst := 0.0
				for i := lo; i < hi; i++ {
					next[i] = s.applyAt(t, cur, i)
					if d := abs(next[i] - cur[i]); d > worst {
						worst = d
					}
				}
				residuals[w] = worst
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		cur, next = next, cur

		residual := 0.0
		for _, r := range residuals {
			if r > residual {
				residual = r
			}
		}
		res.Sweeps = sweep
		res.Residual = residual
		res.Trace = append(res.Trace, residual)
		if residual < tol {
			res.Values = cur
			return res, nil
		}
	}

	res.Values = cur
	return res, &ConvergenceError{Sweeps: res.Sweeps, Residual: res.Residual, Tol: tol}
}
