// Package dist implements the observation model for the sequential
// hypothesis test: a pair of discrete probability mass functions over a
// shared finite support, the belief-weighted mixture they induce, and the
// Bayes posterior update.
//
// The Bayes update lives here and nowhere else. The solver, the policy
// extractor, and the simulator all call Posterior/Posteriors rather than
// re-deriving the recursion.
package dist

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MinMass is the floor applied to every probability mass before
// normalization. Masses at exactly zero would make the likelihood ratio
// degenerate at that support point.
const MinMass = 1e-10

// Hypothesis identifies which of the two competing distributions is meant.
type Hypothesis int

const (
	// H0 is the null hypothesis: observations are drawn from f0.
	H0 Hypothesis = 0
	// H1 is the alternative hypothesis: observations are drawn from f1.
	H1 Hypothesis = 1
)

func (h Hypothesis) String() string {
	switch h {
	case H0:
		return "H0"
	case H1:
		return "H1"
	}
	return fmt.Sprintf("Hypothesis(%d)", int(h))
}

// InputError reports malformed distribution weights at construction.
type InputError struct {
	Field  string // "weights0" | "weights1"
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Pair holds the two hypothesis pmfs over the shared support.
//
// Both pmfs are normalized and strictly positive at every support point.
// A Pair is immutable after construction; all methods are pure functions
// of its state and safe for concurrent use.
type Pair struct {
	f0 []float64
	f1 []float64
}

// New builds a Pair from two raw non-negative weight vectors of equal
// length. Each vector is floored at MinMass and normalized to sum to 1.
//
// Rejected inputs: mismatched lengths, fewer than two support points,
// negative weights, and all-zero weights. These are construction errors,
// never silently patched into a usable pmf.
func New(w0, w1 []float64) (*Pair, error) {
	if len(w0) != len(w1) {
		return nil, &InputError{
			Field:  "weights1",
			Reason: fmt.Sprintf("support length %d does not match weights0 length %d", len(w1), len(w0)),
		}
	}
	if len(w0) < 2 {
		return nil, &InputError{Field: "weights0", Reason: "support needs at least 2 points"}
	}

	f0, err := normalize(w0, "weights0")
	if err != nil {
		return nil, err
	}
	f1, err := normalize(w1, "weights1")
	if err != nil {
		return nil, err
	}

	return &Pair{f0: f0, f1: f1}, nil
}

// normalize validates raw weights and returns a strictly positive pmf.
func normalize(w []float64, field string) ([]float64, error) {
	out := make([]float64, len(w))
	total := 0.0
	for i, v := range w {
		if v < 0 {
			return nil, &InputError{Field: field, Reason: fmt.Sprintf("negative weight %g at index %d", v, i)}
		}
		total += v
		out[i] = v
	}
	if total == 0 {
		return nil, &InputError{Field: field, Reason: "all weights are zero"}
	}
	for i := range out {
		if out[i] < MinMass {
			out[i] = MinMass
		}
	}
	// Re-sum after flooring so the pmf stays exactly normalized.
	floats.Scale(1/floats.Sum(out), out)
	return out, nil
}

// Len returns the number of support points K.
func (d *Pair) Len() int { return len(d.f0) }

// F0 returns the mass of hypothesis 0's pmf at support index k.
func (d *Pair) F0(k int) float64 { return d.f0[k] }

// F1 returns the mass of hypothesis 1's pmf at support index k.
func (d *Pair) F1(k int) float64 { return d.f1[k] }

// PMF returns a copy of the pmf for the given hypothesis.
func (d *Pair) PMF(h Hypothesis) []float64 {
	src := d.f1
	if h == H0 {
		src = d.f0
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Mixture fills dst with the marginal observation pmf implied by belief p:
// p*f0 + (1-p)*f1. If dst is nil or too short a new slice is allocated.
// The result sums to 1 up to floating error.
func (d *Pair) Mixture(p float64, dst []float64) []float64 {
	if cap(dst) < len(d.f0) {
		dst = make([]float64, len(d.f0))
	}
	dst = dst[:len(d.f0)]
	floats.ScaleTo(dst, p, d.f0)
	floats.AddScaled(dst, 1-p, d.f1)
	return dst
}

// Posterior returns the Bayes-updated belief after observing support
// index k from belief p:
//
//	p' = p*f0[k] / (p*f0[k] + (1-p)*f1[k])
//
// The result is clipped to [0,1] to absorb floating-point overshoot.
func (d *Pair) Posterior(p float64, k int) float64 {
	num := p * d.f0[k]
	return clip01(num / (num + (1-p)*d.f1[k]))
}

// Posteriors fills dst with the Bayes-updated belief for every support
// index at once. Used by the solver to evaluate the continuation
// expectation in a single pass. If dst is nil or too short a new slice
// is allocated.
func (d *Pair) Posteriors(p float64, dst []float64) []float64 {
	if cap(dst) < len(d.f0) {
		dst = make([]float64, len(d.f0))
	}
	dst = dst[:len(d.f0)]
	for k := range dst {
		dst[k] = d.Posterior(p, k)
	}
	return dst
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
