package belief

import (
	"errors"
	"math"
)

var ErrNonPositiveVariance = errors.New("gaussian belief requires positive variance")

// Gaussian is a 1-D Gaussian belief. It is a value type; assignment copies.
type Gaussian struct {
	Mean     float64
	Variance float64
}

// NewGaussian builds a Gaussian belief, rejecting non-positive variance.
func NewGaussian(mean, variance float64) (Gaussian, error) {
	if variance <= 0 {
		return Gaussian{}, ErrNonPositiveVariance
	}
	return Gaussian{Mean: mean, Variance: variance}, nil
}

// Entropy returns the differential entropy ½·log(2πe·σ²) in nats.
func (g Gaussian) Entropy() float64 {
	return 0.5 * math.Log(2*math.Pi*math.E*g.Variance)
}

// Copy returns the belief by value; kept for symmetry with Discrete.
func (g Gaussian) Copy() Gaussian {
	return g
}
