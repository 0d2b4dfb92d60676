package dist

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// BetaWeights evaluates a Beta(alpha, beta) density at the midpoints of
// k equal-width cells over (0,1) and returns the raw weights.
//
// Midpoints exclude both endpoints, so densities with poles at 0 or 1
// stay finite. The weights are unnormalized; New normalizes them.
func BetaWeights(k int, alpha, beta float64) ([]float64, error) {
	if k < 2 {
		return nil, &InputError{Field: "support", Reason: fmt.Sprintf("support size %d: need at least 2 points", k)}
	}
	if alpha <= 0 || beta <= 0 {
		return nil, &InputError{Field: "beta", Reason: fmt.Sprintf("shape parameters must be positive, got alpha=%g beta=%g", alpha, beta)}
	}

	d := distuv.Beta{Alpha: alpha, Beta: beta}
	w := make([]float64, k)
	for i := 0; i < k; i++ {
		x := (float64(i) + 0.5) / float64(k)
		w[i] = d.Prob(x)
	}
	return w, nil
}

// FromBeta discretizes two Beta densities onto a shared k-point support
// and builds the Pair from the resulting weights.
func FromBeta(k int, a0, b0, a1, b1 float64) (*Pair, error) {
	w0, err := BetaWeights(k, a0, b0)
	if err != nil {
		return nil, err
	}
	w1, err := BetaWeights(k, a1, b1)
	if err != nil {
		return nil, err
	}
	return New(w0, w1)
}
