// Package model ties the sequential-decision pipeline together behind a
// single value object: construct once, solve once, then read cutoffs and
// run simulations against the converged value function.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/grid"
	"github.com/roach88/sequent/internal/policy"
	"github.com/roach88/sequent/internal/sim"
	"github.com/roach88/sequent/internal/solver"
)

// Config is the full construction-parameter surface of a model.
type Config struct {
	// Cost is the per-observation sampling cost. Must be positive; a
	// zero cost would make endless sampling free and break the
	// contraction the solver relies on.
	Cost float64

	// Loss0 is the loss for wrongly accepting hypothesis 0; Loss1 for
	// wrongly accepting hypothesis 1. Both non-negative.
	Loss0 float64
	Loss1 float64

	// Weights0 and Weights1 are the raw non-negative weights of the two
	// hypothesis distributions over the shared support.
	Weights0 []float64
	Weights1 []float64

	// GridSize is the belief-grid resolution m (>= 2).
	GridSize int

	// Tol and MaxSweeps control the value iteration; zero means the
	// solver defaults.
	Tol       float64
	MaxSweeps int

	// MaxDraws is the per-run safety bound; zero means sim default.
	MaxDraws int

	// Prior is the default starting belief for simulations. Zero value
	// is replaced by 0.5; set PriorSet to use an explicit 0.
	Prior    float64
	PriorSet bool
}

func (c Config) prior() float64 {
	if !c.PriorSet && c.Prior == 0 {
		return 0.5
	}
	return c.Prior
}

// Model is the solved-or-not state of one parameterization.
//
// The value array and cutoffs are written exactly once, under mu, by the
// first Solve; after that every reader sees the same converged copy.
// There is no hidden process-wide state: everything lives in the Model.
type Model struct {
	cfg   Config
	dists *dist.Pair
	g     grid.Grid

	mu      sync.Mutex
	solved  bool
	values  []float64
	result  *solver.Result
	cutoffs policy.Cutoffs
}

// New validates the configuration and constructs an unsolved model.
func New(cfg Config) (*Model, error) {
	if cfg.Cost <= 0 {
		return nil, fmt.Errorf("model: sampling cost must be positive, got %g", cfg.Cost)
	}
	if cfg.Loss0 < 0 || cfg.Loss1 < 0 {
		return nil, fmt.Errorf("model: losses must be non-negative, got L0=%g L1=%g", cfg.Loss0, cfg.Loss1)
	}
	if p := cfg.prior(); p < 0 || p > 1 {
		return nil, fmt.Errorf("model: prior belief %g outside [0,1]", p)
	}

	d, err := dist.New(cfg.Weights0, cfg.Weights1)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(cfg.GridSize)
	if err != nil {
		return nil, err
	}
	return &Model{cfg: cfg, dists: d, g: g}, nil
}

// Dists exposes the observation model.
func (m *Model) Dists() *dist.Pair { return m.dists }

// Grid exposes the belief grid.
func (m *Model) Grid() grid.Grid { return m.g }

// Config returns the construction parameters.
func (m *Model) Config() Config { return m.cfg }

func (m *Model) solver() *solver.Solver {
	return &solver.Solver{
		Dists:     m.dists,
		Grid:      m.g,
		Cost:      m.cfg.Cost,
		Loss0:     m.cfg.Loss0,
		Loss1:     m.cfg.Loss1,
		Tol:       m.cfg.Tol,
		MaxSweeps: m.cfg.MaxSweeps,
	}
}

// solveLocked runs the value iteration and the cutoff extraction,
// starting from `from` (nil for a fresh solve). Caller holds mu.
func (m *Model) solveLocked(from []float64) error {
	res, err := m.solver().Solve(from)
	if err != nil {
		return err
	}
	cut, err := policy.Extract(m.g, res.Values, m.cfg.Loss0, m.cfg.Loss1, 0)
	if err != nil {
		return err
	}
	m.values = res.Values
	m.result = res
	m.cutoffs = cut
	m.solved = true
	return nil
}

// Solve computes the value function and cutoffs if not already solved
// and returns a copy of the converged array.
//
// Deterministic given the configuration, and idempotent: a second call
// returns the cached fixed point unchanged.
func (m *Model) Solve() ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.solved {
		if err := m.solveLocked(nil); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(m.values))
	copy(out, m.values)
	return out, nil
}

// Resolve re-runs the value iteration starting from the previously
// converged array. Used to confirm idempotence or to continue after a
// convergence failure with a larger sweep budget.
func (m *Model) Resolve() ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.solveLocked(m.values); err != nil {
		return nil, err
	}
	out := make([]float64, len(m.values))
	copy(out, m.values)
	return out, nil
}

// Result returns the solver diagnostics (sweep count, residual trace)
// from the last solve. Requires a prior Solve.
func (m *Model) Result() (*solver.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.solved {
		return nil, fmt.Errorf("model: not solved yet")
	}
	return m.result, nil
}

// Cutoffs returns the decision thresholds (beta, alpha).
// Requires a prior Solve.
func (m *Model) Cutoffs() (policy.Cutoffs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.solved {
		return policy.Cutoffs{}, fmt.Errorf("model: not solved yet")
	}
	return m.cutoffs, nil
}

// ensureSolved triggers a solve if none has happened, then returns a
// runner over the (now read-only) cutoffs. simulate must never operate
// on stale or zero-valued state.
func (m *Model) ensureSolved() (*sim.Runner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.solved {
		if err := m.solveLocked(nil); err != nil {
			return nil, err
		}
	}
	return &sim.Runner{
		Dists:    m.dists,
		Cutoffs:  m.cutoffs,
		MaxDraws: m.cfg.MaxDraws,
	}, nil
}

// Simulate runs a single belief path under the given true hypothesis,
// starting from the configured prior, drawing uniforms from u.
// Solves lazily if needed.
func (m *Model) Simulate(truth dist.Hypothesis, u dist.Uniform) (sim.Outcome, error) {
	r, err := m.ensureSolved()
	if err != nil {
		return sim.Outcome{}, err
	}
	return r.Run(truth, m.cfg.prior(), u)
}

// SimulateFrom is Simulate with an explicit prior belief.
func (m *Model) SimulateFrom(truth dist.Hypothesis, prior float64, u dist.Uniform) (sim.Outcome, error) {
	r, err := m.ensureSolved()
	if err != nil {
		return sim.Outcome{}, err
	}
	return r.Run(truth, prior, u)
}

// StoppingDistribution runs n independent simulations under the given
// true hypothesis and returns the batch of draw counts and correctness
// flags. Solves lazily if needed.
func (m *Model) StoppingDistribution(ctx context.Context, n int, truth dist.Hypothesis, seed uint64, workers int) (*sim.BatchResult, error) {
	r, err := m.ensureSolved()
	if err != nil {
		return nil, err
	}
	return r.Batch(ctx, n, truth, m.cfg.prior(), seed, workers)
}
