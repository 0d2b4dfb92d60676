// Package grid provides the belief grid the value function is solved on,
// together with piecewise-linear interpolation between grid points.
package grid

import "fmt"

// Grid is an ordered set of belief values spanning [0,1] inclusive.
//
// Points are evenly spaced and strictly increasing, with Points[0] == 0
// and Points[m-1] == 1 exactly. A Grid is immutable after construction.
type Grid struct {
	points []float64
}

// New builds an m-point grid over [0,1]. m must be at least 2.
func New(m int) (Grid, error) {
	if m < 2 {
		return Grid{}, fmt.Errorf("grid resolution %d: need at least 2 points", m)
	}
	pts := make([]float64, m)
	for i := range pts {
		pts[i] = float64(i) / float64(m-1)
	}
	pts[m-1] = 1
	return Grid{points: pts}, nil
}

// Len returns the number of grid points m.
func (g Grid) Len() int { return len(g.points) }

// At returns the belief value of grid point i.
func (g Grid) At(i int) float64 { return g.points[i] }

// Points returns a copy of the grid abscissae.
func (g Grid) Points() []float64 {
	out := make([]float64, len(g.points))
	copy(out, g.points)
	return out
}

// Interp evaluates the piecewise-linear interpolant of vals over the grid
// at belief p. vals must have one entry per grid point.
//
// p outside [0,1] clamps to the nearest endpoint. The grid spans [0,1]
// exactly, so clamping only ever absorbs floating-point overshoot from
// upstream belief updates.
func (g Grid) Interp(vals []float64, p float64) float64 {
	m := len(g.points)
	if len(vals) != m {
		panic(fmt.Sprintf("grid: interpolating %d values over %d points", len(vals), m))
	}
	if p <= 0 {
		return vals[0]
	}
	if p >= 1 {
		return vals[m-1]
	}

	// Binary search for the bracketing interval: largest i with points[i] <= p.
	lo, hi := 0, m-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if g.points[mid] <= p {
			lo = mid
		} else {
			hi = mid
		}
	}

	x0, x1 := g.points[lo], g.points[hi]
	t := (p - x0) / (x1 - x0)
	return vals[lo] + t*(vals[hi]-vals[lo])
}
