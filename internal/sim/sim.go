// Package sim runs the belief process under an extracted decision policy
// and aggregates repeated runs into stopping-time statistics.
package sim

import (
	"fmt"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/policy"
)

// DefaultMaxDraws is the safety bound on a single run's draw count.
//
// Under non-degenerate cutoffs the policy stops with probability 1; the
// bound exists so a misconfigured run fails loudly instead of looping.
const DefaultMaxDraws = 10000

// State is the simulator's position in a single run.
type State int

const (
	// Continue means the belief is inside [beta, alpha]: keep sampling.
	Continue State = iota
	// Accept0 is terminal: the belief crossed above alpha.
	Accept0
	// Accept1 is terminal: the belief crossed below beta.
	Accept1
)

func (s State) String() string {
	switch s {
	case Continue:
		return "CONTINUE"
	case Accept0:
		return "ACCEPT_0"
	case Accept1:
		return "ACCEPT_1"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Decision maps a terminal state to the accepted hypothesis.
// Panics on Continue, which is never terminal.
func (s State) Decision() dist.Hypothesis {
	switch s {
	case Accept0:
		return dist.H0
	case Accept1:
		return dist.H1
	}
	panic("sim: no decision in state " + s.String())
}

// StoppingError reports a run that breached the safety bound without
// reaching a decision. This is a defensive condition, not part of the
// model: with sampling cost > 0 and non-degenerate cutoffs it signals a
// configuration problem, not bad luck.
type StoppingError struct {
	MaxDraws int
	Belief   float64 // belief when the bound was hit
}

func (e *StoppingError) Error() string {
	return fmt.Sprintf("stopping time exceeded: no decision after %d draws (belief %.6f)", e.MaxDraws, e.Belief)
}

// Outcome is the terminal result of a single run.
type Outcome struct {
	Decision    dist.Hypothesis
	FinalBelief float64
	Draws       int // sequential sample size, always >= 1
}

// Correct reports whether the decision matched the true hypothesis.
func (o Outcome) Correct(truth dist.Hypothesis) bool { return o.Decision == truth }

// Runner executes single simulation runs under a fixed policy.
//
// Runner is read-only after construction: the pair, cutoffs, and bound
// are shared freely across concurrent runs.
type Runner struct {
	Dists    *dist.Pair
	Cutoffs  policy.Cutoffs
	MaxDraws int // safety bound (DefaultMaxDraws if 0)
}

// Run draws observations from the true generating distribution until the
// belief leaves [beta, alpha], starting from the supplied prior.
//
// Each step draws one support index from truth's pmf, updates the belief
// by Bayes' rule, then checks the cutoffs: belief < beta accepts
// hypothesis 1, belief > alpha accepts hypothesis 0, anything else keeps
// sampling. Degenerate edge cutoffs are rejected up front rather than
// simulated.
func (r *Runner) Run(truth dist.Hypothesis, prior float64, u dist.Uniform) (Outcome, error) {
	if prior < 0 || prior > 1 {
		return Outcome{}, fmt.Errorf("sim: prior belief %g outside [0,1]", prior)
	}
	if r.Cutoffs.Beta == 0 && r.Cutoffs.Alpha == 1 {
		return Outcome{}, &policy.DegenerateError{Cutoffs: r.Cutoffs}
	}
	bound := r.MaxDraws
	if bound <= 0 {
		bound = DefaultMaxDraws
	}

	sampler := r.Dists.SamplerFor(truth)
	belief := prior
	for draws := 1; draws <= bound; draws++ {
		k := sampler.Draw(u)
		belief = r.Dists.Posterior(belief, k)

		switch {
		case belief < r.Cutoffs.Beta:
			return Outcome{Decision: dist.H1, FinalBelief: belief, Draws: draws}, nil
		case belief > r.Cutoffs.Alpha:
			return Outcome{Decision: dist.H0, FinalBelief: belief, Draws: draws}, nil
		}
	}
	return Outcome{}, &StoppingError{MaxDraws: bound, Belief: belief}
}
