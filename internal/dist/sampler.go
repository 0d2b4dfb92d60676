package dist

import "math/rand/v2"

// Uniform is the source of uniform variates behind the sampler.
// Implemented by *rand.Rand (production) and testutil.FixedUniform (tests).
type Uniform interface {
	Float64() float64
}

// NewPCG returns a seed-deterministic uniform source backed by
// math/rand/v2's PCG generator.
func NewPCG(seed uint64) Uniform {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sampler draws support indices from a fixed pmf by inverse-CDF lookup.
//
// The cumulative sum is precomputed once; each draw is a deterministic
// function of a single uniform variate, so swapping the Uniform source
// for a fixed sequence makes draws fully reproducible.
type Sampler struct {
	cdf []float64
}

// NewSampler precomputes the cumulative sum of pmf.
// The pmf is assumed normalized; the final cumulative entry is forced to
// 1 so a uniform draw of exactly 1.0 cannot fall off the end.
func NewSampler(pmf []float64) *Sampler {
	cdf := make([]float64, len(pmf))
	acc := 0.0
	for i, m := range pmf {
		acc += m
		cdf[i] = acc
	}
	cdf[len(cdf)-1] = 1
	return &Sampler{cdf: cdf}
}

// SamplerFor builds a Sampler for the pmf of the given hypothesis.
// This is the "true" data-generating process handed to the simulator.
func (d *Pair) SamplerFor(h Hypothesis) *Sampler {
	if h == H0 {
		return NewSampler(d.f0)
	}
	return NewSampler(d.f1)
}

// Draw returns the smallest support index whose cumulative mass reaches
// the uniform variate drawn from u.
func (s *Sampler) Draw(u Uniform) int {
	v := u.Float64()
	// Binary search over the cdf: first index with cdf[i] >= v.
	lo, hi := 0, len(s.cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if s.cdf[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
