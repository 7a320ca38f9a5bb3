package model

import (
	"errors"
	"fmt"

	"github.com/ktrewin/percept/internal/belief"
)

var (
	ErrMissingDynamics   = errors.New("action has no dynamics")
	ErrNegativeNoise     = errors.New("process noise variance must be non-negative")
	ErrNonPositiveSensor = errors.New("observation noise variance must be positive")
)

// fdStep is the central finite-difference step used to linearize dynamics.
const fdStep = 1e-5

// Dynamics describes one action's effect on a continuous state: a
// deterministic map f: ℝ→ℝ plus additive process noise variance.
type Dynamics struct {
	F     func(float64) float64
	Noise float64
}

// ContinuousTransition propagates a Gaussian belief through per-action
// dynamics by first-order linearization.
type ContinuousTransition struct {
	actions []string
	dyn     map[string]Dynamics
}

// NewContinuousTransition requires dynamics for every declared action.
func NewContinuousTransition(actions []string, dyn map[string]Dynamics) (*ContinuousTransition, error) {
	if len(actions) == 0 {
		return nil, ErrNoActions
	}
	copied := make(map[string]Dynamics, len(actions))
	for _, a := range actions {
		d, ok := dyn[a]
		if !ok || d.F == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingDynamics, a)
		}
		if d.Noise < 0 {
			return nil, fmt.Errorf("%w: action %q", ErrNegativeNoise, a)
		}
		copied[a] = d
	}
	return &ContinuousTransition{
		actions: append([]string(nil), actions...),
		dyn:     copied,
	}, nil
}

func (t *ContinuousTransition) Actions() []string {
	return append([]string(nil), t.actions...)
}

// Predict applies f to the mean and propagates variance through the
// linearization f'(μ)²·σ² + noise, with f' estimated by central finite
// difference. An unknown action returns the belief unchanged.
func (t *ContinuousTransition) Predict(g belief.Gaussian, action string) belief.Gaussian {
	d, ok := t.dyn[action]
	if !ok {
		return g
	}
	deriv := (d.F(g.Mean+fdStep) - d.F(g.Mean-fdStep)) / (2 * fdStep)
	return belief.Gaussian{
		Mean:     d.F(g.Mean),
		Variance: deriv*deriv*g.Variance + d.Noise,
	}
}

// LinearGaussian is a linear sensor y = scale·x + bias + ε with
// ε ~ N(0, noise). It owns the Kalman update for Gaussian beliefs.
type LinearGaussian struct {
	scale float64
	bias  float64
	noise float64
}

// NewLinearGaussian rejects non-positive observation noise.
func NewLinearGaussian(scale, bias, noise float64) (LinearGaussian, error) {
	if noise <= 0 {
		return LinearGaussian{}, ErrNonPositiveSensor
	}
	return LinearGaussian{scale: scale, bias: bias, noise: noise}, nil
}

// Update performs the closed-form Kalman update for an observed value y:
// K = σ²·c / (c²·σ² + R), μ' = μ + K·(y − c·μ − b), σ²' = (1 − K·c)·σ².
func (m LinearGaussian) Update(g belief.Gaussian, y float64) belief.Gaussian {
	gain := g.Variance * m.scale / (m.scale*m.scale*g.Variance + m.noise)
	return belief.Gaussian{
		Mean:     g.Mean + gain*(y-m.scale*g.Mean-m.bias),
		Variance: (1 - gain*m.scale) * g.Variance,
	}
}

// ExpectedObservation returns E[y] = c·μ + b under the belief.
func (m LinearGaussian) ExpectedObservation(g belief.Gaussian) float64 {
	return m.scale*g.Mean + m.bias
}
