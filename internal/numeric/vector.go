// Package numeric holds the elementary vector and probability helpers shared
// by belief updates and policy scoring. All functions are pure.
package numeric

import "math"

// Softmax maps a vector of scores to a probability distribution,
// P(i) ∝ exp(x_i). Inputs are shifted by their maximum before
// exponentiation to avoid overflow.
func Softmax(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}

	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}

	out := make([]float64, len(xs))
	total := 0.0
	for i, x := range xs {
		out[i] = math.Exp(x - max)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// Softmin maps a vector of costs to a probability distribution favoring low
// values, P(i) ∝ exp(−β·x_i). A beta of zero yields a uniform distribution.
// Inputs are shifted by their minimum before exponentiation.
func Softmin(xs []float64, beta float64) []float64 {
	if len(xs) == 0 {
		return nil
	}

	min := xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
	}

	out := make([]float64, len(xs))
	total := 0.0
	for i, x := range xs {
		out[i] = math.Exp(-beta * (x - min))
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// Normalize scales a non-negative vector to sum to one. A zero total yields
// an all-zero result rather than NaN.
func Normalize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	total := 0.0
	for _, x := range xs {
		total += x
	}
	if total == 0 {
		return out
	}
	for i, x := range xs {
		out[i] = x / total
	}
	return out
}

// Dot returns the inner product of a and b over their shared length.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += a[i] * b[i]
	}
	return total
}
