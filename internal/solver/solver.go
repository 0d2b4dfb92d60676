// Package solver computes the fixed point of the Bellman operator for the
// sequential hypothesis-testing problem.
//
// The operator acts on a value function J over the belief grid:
//
//	J(p) = min( (1-p)*L0, p*L1, c + sum_k mix(p)[k] * J(p'_k) )
//
// where L0 and L1 are the losses for wrongly accepting each hypothesis, c
// is the per-observation sampling cost, mix(p) is the belief-weighted
// mixture pmf, and p'_k is the Bayes-updated belief after observing
// support index k. Off-grid evaluations use piecewise-linear
// interpolation.
//
// With c > 0 and finite losses the operator is a monotone contraction;
// Result.Trace records the per-sweep residuals so callers can verify the
// contraction empirically for their parameters rather than assume it.
package solver

import (
	"fmt"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/grid"
)

// Defaults for the iteration controls when the caller leaves them zero.
const (
	DefaultTol       = 1e-8
	DefaultMaxSweeps = 1000
)

// Solver holds the problem parameters. Fields are read-only during Solve.
type Solver struct {
	Dists *dist.Pair
	Grid  grid.Grid

	Cost  float64 // per-observation sampling cost, must be > 0
	Loss0 float64 // loss for wrongly accepting hypothesis 0
	Loss1 float64 // loss for wrongly accepting hypothesis 1

	Tol       float64 // sup-norm convergence tolerance (DefaultTol if 0)
	MaxSweeps int     // iteration cap (DefaultMaxSweeps if 0)
}

// Result is the outcome of a Solve call.
//
// On convergence failure the Result is still populated with the last
// sweep's array and residual, so callers can inspect or resume from the
// partial fixed point.
type Result struct {
	// Values is the value function over the grid after the final sweep.
	Values []float64

	// Sweeps is the number of full Jacobi sweeps performed.
	Sweeps int

	// Residual is the final sup-norm change between consecutive sweeps.
	Residual float64

	// Trace holds the residual after every sweep, in order. A (roughly)
	// geometrically decaying trace is the empirical signature of the
	// contraction property.
	Trace []float64
}

// ConvergenceError reports that the iteration cap was exhausted before
// the residual fell below tolerance.
type ConvergenceError struct {
	Sweeps   int
	Residual float64
	Tol      float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("value iteration did not converge: residual %.3e > tol %.3e after %d sweeps",
		e.Residual, e.Tol, e.Sweeps)
}

func (s *Solver) validate() error {
	if s.Dists == nil {
		return fmt.Errorf("solver: nil distribution pair")
	}
	if s.Grid.Len() < 2 {
		return fmt.Errorf("solver: grid has %d points, need at least 2", s.Grid.Len())
	}
	if s.Cost <= 0 {
		return fmt.Errorf("solver: sampling cost must be positive, got %g", s.Cost)
	}
	if s.Loss0 < 0 || s.Loss1 < 0 {
		return fmt.Errorf("solver: losses must be non-negative, got L0=%g L1=%g", s.Loss0, s.Loss1)
	}
	return nil
}

func (s *Solver) tol() float64 {
	if s.Tol > 0 {
		return s.Tol
	}
	return DefaultTol
}

func (s *Solver) maxSweeps() int {
	if s.MaxSweeps > 0 {
		return s.MaxSweeps
	}
	return DefaultMaxSweeps
}

// tables holds the per-grid-point quantities that do not change across
// sweeps: the mixture pmf and the Bayes-updated beliefs at every support
// index. Precomputing them once makes each sweep a pure interpolate-and-
// minimize pass.
type tables struct {
	mix  [][]float64 // [gridPoint][supportIndex] mixture mass
	post [][]float64 // [gridPoint][supportIndex] posterior belief
}

func (s *Solver) precompute() *tables {
	m := s.Grid.Len()
	t := &tables{
		mix:  make([][]float64, m),
		post: make([][]float64, m),
	}
	for i := 0; i < m; i++ {
		p := s.Grid.At(i)
		t.mix[i] = s.Dists.Mixture(p, nil)
		t.post[i] = s.Dists.Posteriors(p, nil)
	}
	return t
}

// accept0Loss is the immediate loss of accepting hypothesis 0 at belief p.
func (s *Solver) accept0Loss(p float64) float64 { return (1 - p) * s.Loss0 }

// accept1Loss is the immediate loss of accepting hypothesis 1 at belief p.
func (s *Solver) accept1Loss(p float64) float64 { return p * s.Loss1 }

// applyAt evaluates the Bellman operator at grid point i against the
// previous sweep's array.
func (s *Solver) applyAt(t *tables, prev []float64, i int) float64 {
	p := s.Grid.At(i)

	cont := s.Cost
	mix, post := t.mix[i], t.post[i]
	for k := range mix {
		cont += mix[k] * s.Grid.Interp(prev, post[k])
	}

	v := s.accept0Loss(p)
	if d1 := s.accept1Loss(p); d1 < v {
		v = d1
	}
	if cont < v {
		v = cont
	}
	return v
}

// initial returns the starting array for the iteration: the caller's
// array when given, otherwise the immediate-decision envelope
// min((1-p)L0, pL1), which already satisfies the domination invariant.
func (s *Solver) initial(from []float64) ([]float64, error) {
	m := s.Grid.Len()
	if from != nil {
		if len(from) != m {
			return nil, fmt.Errorf("solver: initial array has %d entries for a %d-point grid", len(from), m)
		}
		out := make([]float64, m)
		copy(out, from)
		return out, nil
	}
	out := make([]float64, m)
	for i := range out {
		p := s.Grid.At(i)
		out[i] = min(s.accept0Loss(p), s.accept1Loss(p))
	}
	return out, nil
}

// Solve iterates the Bellman operator to its fixed point.
//
// Each sweep writes into a fresh array and swaps it in only after every
// grid point has been updated (Jacobi, not Gauss-Seidel), so the
// iteration is a well-defined application of the operator to the previous
// array. Iteration stops when the sup-norm change falls below tolerance.
//
// from may be nil (fresh solve) or a previous Result.Values to resume
// from; resuming from a converged array terminates in one sweep.
//
// If MaxSweeps is exhausted the partial Result is returned together with
// a *ConvergenceError; the caller decides whether to accept it.
func (s *Solver) Solve(from []float64) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	t := s.precompute()
	cur, err := s.initial(from)
	if err != nil {
		return nil, err
	}
	next := make([]float64, len(cur))

	res := &Result{}
	tol, limit := s.tol(), s.maxSweeps()
	for sweep := 1; sweep <= limit; sweep++ {
		residual := 0.0
		for i := range cur {
			next[i] = s.applyAt(t, cur, i)
			if d := abs(next[i] - cur[i]); d > residual {
				residual = d
			}
		}
		cur, next = next, cur

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

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
