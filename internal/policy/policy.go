// Package policy derives the two-threshold decision rule from a
// converged value function.
//
// The converged J partitions the belief axis into three bands: below β
// accepting hypothesis 1 is optimal, above α accepting hypothesis 0 is
// optimal, and on [β, α] continuing to sample is optimal. Extraction
// scans the grid for where each immediate-decision loss stops coinciding
// with J, with ties broken toward continuing to match the Bellman
// minimum's treatment of equal candidates.
package policy

import (
	"fmt"

	"github.com/roach88/sequent/internal/grid"
)

// DefaultTol is the dominance tolerance: J within DefaultTol of a
// decision loss counts as that decision being weakly optimal. This pins
// down tie-breaking at the grid resolution boundary.
const DefaultTol = 1e-9

// Cutoffs is the extracted decision policy.
//
// Invariant: 0 <= Beta <= Alpha <= 1. Beliefs strictly below Beta accept
// hypothesis 1, beliefs strictly above Alpha accept hypothesis 0, and
// the closed band between them continues sampling.
type Cutoffs struct {
	Beta  float64
	Alpha float64
}

// Width returns the length of the indecision band [Beta, Alpha].
// A width near zero means the policy decides almost immediately
// (sampling cost dominates).
func (c Cutoffs) Width() float64 { return c.Alpha - c.Beta }

// DegenerateError reports a policy that never reaches a decision: the
// cutoffs sit at the belief-space edges and every interior grid point
// prefers continuing, so a simulation from any interior prior would loop
// forever. Surfaced at extraction so the simulator never has to.
type DegenerateError struct {
	Cutoffs Cutoffs
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("policy never decides: cutoffs collapsed to [%g, %g], continuation optimal everywhere",
		e.Cutoffs.Beta, e.Cutoffs.Alpha)
}

// Extract computes the cutoffs from the converged value array.
//
// Beta is the largest grid point at or below which accepting hypothesis
// 1 weakly dominates (J(p) within tol of p*L1); Alpha is the smallest
// grid point at or above which accepting hypothesis 0 weakly dominates
// (J(p) within tol of (1-p)*L0). Both scans run from the edges inward,
// so an equality that reappears deep inside the continuation band (which
// can only be numerical noise) cannot move a cutoff.
//
// tol <= 0 uses DefaultTol. If no interior grid point triggers either
// decision the policy cannot stop and a *DegenerateError is returned
// with the edge cutoffs (0, 1).
func Extract(g grid.Grid, vals []float64, loss0, loss1, tol float64) (Cutoffs, error) {
	m := g.Len()
	if len(vals) != m {
		return Cutoffs{}, fmt.Errorf("policy: %d values over a %d-point grid", len(vals), m)
	}
	if tol <= 0 {
		tol = DefaultTol
	}

	// Scan up from p=0 while accept-1 still coincides with J. Inside the
	// continuation band J sits strictly below the decision loss, which is
	// what ends the scan; J can never exceed the loss (domination).
	beta := 0.0
	for i := 0; i < m; i++ {
		p := g.At(i)
		if vals[i] < p*loss1-tol {
			break
		}
		beta = p
	}

	// Scan down from p=1 while accept-0 still coincides with J.
	alpha := 1.0
	for i := m - 1; i >= 0; i-- {
		p := g.At(i)
		if vals[i] < (1-p)*loss0-tol {
			break
		}
		alpha = p
	}

	if beta > alpha {
		// Both decision regions overlap: the continuation band is empty
		// and the scans crossed. Collapse to the crossing point so the
		// invariant beta <= alpha holds.
		mid := (beta + alpha) / 2
		beta, alpha = mid, mid
	}

	c := Cutoffs{Beta: beta, Alpha: alpha}
	if beta == 0 && alpha == 1 {
		return c, &DegenerateError{Cutoffs: c}
	}
	return c, nil
}
