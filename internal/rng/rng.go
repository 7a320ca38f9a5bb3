// Package rng provides the seeded uniform random source that drives policy
// sampling. Every agent owns its own Source so that fixed seeds reproduce
// identical action sequences without cross-agent interference.
package rng

import "math"

// LCG constants from Numerical Recipes.
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

// Source is a linear congruential generator with 32 bits of state.
// It is not safe for concurrent use; callers that share an agent across
// goroutines must serialize access themselves.
type Source struct {
	state    uint32
	spare    float64
	hasSpare bool
}

// New returns a Source seeded with the given value.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Float64 returns the next uniform draw in [0, 1).
func (s *Source) Float64() float64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return float64(s.state) / float64(1<<32)
}

// Norm returns a normally distributed draw with the given mean and standard
// deviation, using the Box-Muller transform. The second value of each pair
// is cached and returned on the following call.
func (s *Source) Norm(mean, stddev float64) float64 {
	if s.hasSpare {
		s.hasSpare = false
		return mean + stddev*s.spare
	}

	u1 := s.Float64()
	for u1 == 0 {
		u1 = s.Float64()
	}
	u2 := s.Float64()

	r := math.Sqrt(-2 * math.Log(u1))
	s.spare = r * math.Sin(2*math.Pi*u2)
	s.hasSpare = true
	return mean + stddev*r*math.Cos(2*math.Pi*u2)
}

// Reset reseeds the generator and discards any cached Gaussian spare,
// restoring the exact state of a freshly constructed Source.
func (s *Source) Reset(seed uint32) {
	s.state = seed
	s.spare = 0
	s.hasSpare = false
}
