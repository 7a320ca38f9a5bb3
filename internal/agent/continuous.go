package agent

import (
	"time"

	"github.com/ktrewin/percept/internal/belief"
	"github.com/ktrewin/percept/internal/model"
	"github.com/ktrewin/percept/internal/rng"
)

// Continuous is an active-inference agent over a 1-D Gaussian belief. The
// observation model owns the Kalman update; planning reuses the same beam
// search as the discrete agent.
type Continuous struct {
	belief  belief.Gaussian
	trans   *model.ContinuousTransition
	sensor  model.LinearGaussian
	planner *Planner[belief.Gaussian]
	learn   func(observation float64, posterior belief.Gaussian)

	prevAction string
}

// NewContinuous builds a continuous agent scoring policies by
// −pref(E[y]). Defaults match the discrete agent: horizon 1, precision 1,
// unbounded beam width, time-seeded RNG.
func NewContinuous(b belief.Gaussian, trans *model.ContinuousTransition, sensor model.LinearGaussian, pref func(float64) float64) (*Continuous, error) {
	if trans == nil {
		return nil, ErrNilTransition
	}
	if b.Variance <= 0 {
		return nil, belief.ErrNonPositiveVariance
	}
	actions := trans.Actions()
	if len(actions) == 0 {
		return nil, ErrNoActions
	}

	a := &Continuous{
		belief: b,
		trans:  trans,
		sensor: sensor,
	}
	a.planner = &Planner[belief.Gaussian]{
		Actions:   actions,
		Predict:   trans.Predict,
		Score:     ContinuousEFE(sensor, pref),
		Horizon:   1,
		Precision: 1,
		Rand:      rng.New(uint32(time.Now().UnixNano())),
	}
	return a, nil
}

// SetHorizon sets the planning horizon (clamped to ≥1 at search time).
func (a *Continuous) SetHorizon(horizon int) { a.planner.Horizon = horizon }

// SetPrecision sets the softmin inverse temperature β (clamped to ≥0).
func (a *Continuous) SetPrecision(beta float64) { a.planner.Precision = beta }

// SetBeamWidth bounds the surviving policies per depth; ≤0 disables pruning.
func (a *Continuous) SetBeamWidth(width int) { a.planner.BeamWidth = width }

// SetHabits installs habitual action priors; unlisted actions weigh 1.
func (a *Continuous) SetHabits(habits map[string]float64) {
	copied := make(map[string]float64, len(habits))
	for k, v := range habits {
		copied[k] = v
	}
	a.planner.Habits = copied
}

// SetRand replaces the agent's random source.
func (a *Continuous) SetRand(r *rng.Source) { a.planner.Rand = r }

// SetLearn installs a post-observation callback.
func (a *Continuous) SetLearn(learn func(observation float64, posterior belief.Gaussian)) {
	a.learn = learn
}

// Observe applies the sensor's Kalman update for the observed value.
func (a *Continuous) Observe(observation float64) {
	a.belief = a.sensor.Update(a.belief, observation)
	if a.learn != nil {
		a.learn(observation, a.belief)
	}
}

// Act plans from the current belief and returns the sampled action.
func (a *Continuous) Act() string {
	action := a.planner.Act(a.belief)
	a.prevAction = action
	return action
}

// Step runs one full perception-action cycle.
func (a *Continuous) Step(observation float64) string {
	a.Observe(observation)
	return a.Act()
}

// Belief returns the current Gaussian belief by value.
func (a *Continuous) Belief() belief.Gaussian {
	return a.belief
}

// ResetBelief replaces the belief wholesale.
func (a *Continuous) ResetBelief(b belief.Gaussian) error {
	if b.Variance <= 0 {
		return belief.ErrNonPositiveVariance
	}
	a.belief = b
	return nil
}

// Uncertainty returns the differential entropy of the current belief.
func (a *Continuous) Uncertainty() float64 {
	return a.belief.Entropy()
}

// ExpectedObservation returns E[y] under the current belief.
func (a *Continuous) ExpectedObservation() float64 {
	return a.sensor.ExpectedObservation(a.belief)
}
