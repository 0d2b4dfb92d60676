// Package testutil provides deterministic stand-ins for the engine's
// sources of randomness.
package testutil

import "sync"

// FixedUniform returns a predetermined sequence of uniform variates.
//
// This makes inverse-CDF draws fully scripted: a test can pin down the
// exact observation sequence a simulation run will see and assert on the
// resulting belief path.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedUniform struct {
	mu   sync.Mutex
	vals []float64
	idx  int
}

// NewFixedUniform creates a source that returns vals in order and wraps
// around when exhausted.
//
// Example:
//
//	u := testutil.NewFixedUniform(0.1, 0.9)
//	u.Float64() // 0.1
//	u.Float64() // 0.9
//	u.Float64() // 0.1 again
func NewFixedUniform(vals ...float64) *FixedUniform {
	if len(vals) == 0 {
		panic("testutil: NewFixedUniform requires at least one value")
	}
	return &FixedUniform{vals: vals}
}

// Float64 returns the next scripted variate.
func (u *FixedUniform) Float64() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	v := u.vals[u.idx]
	u.idx = (u.idx + 1) % len(u.vals)
	return v
}

// Reset rewinds the sequence to the beginning.
func (u *FixedUniform) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.idx = 0
}
