// Package model defines the generative-model contracts the agent plans with:
// transition models that propagate a belief through an action, and
// observation models that map states to observation likelihoods. Fixed
// discrete implementations live here; Dirichlet-learnable variants in
// package dirichlet satisfy the same interfaces.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/ktrewin/percept/internal/belief"
)

var (
	ErrNoActions        = errors.New("transition model requires at least one action")
	ErrNoObservations   = errors.New("observation model requires at least one observation")
	ErrNoStates         = errors.New("model requires at least one state")
	ErrUnknownAction    = errors.New("matrix references action outside the action set")
	ErrUnknownState     = errors.New("matrix references state outside the state set")
	ErrUnknownObs       = errors.New("matrix references observation outside the observation set")
	ErrRowNotNormalized = errors.New("distribution row does not sum to 1")
)

// rowTolerance bounds the accepted floating drift when validating that a
// configured distribution sums to one.
const rowTolerance = 1e-6

// TransitionModel predicts the next belief from a current belief and an
// action. Actions and States return the declared orderings.
type TransitionModel interface {
	Actions() []string
	States() []string
	Predict(b *belief.Discrete, action string) *belief.Discrete
}

// ObservationModel maps states to observation probabilities.
type ObservationModel interface {
	Observations() []string
	States() []string
	Probability(observation, state string) float64
	Likelihood(observation string) map[string]float64
}

// TransitionLearner is the capability a transition model implements when it
// can adapt from experience. The orchestration layer checks for it
// explicitly; there is no reflective dispatch.
type TransitionLearner interface {
	TransitionModel
	LearnTransition(action string, prior, posterior *belief.Discrete)
}

// ObservationLearner is the learnable-observation-model capability.
type ObservationLearner interface {
	ObservationModel
	LearnObservation(observation string, posterior *belief.Discrete)
}

// Transition is a fixed-parameter discrete transition model:
// action → state → distribution over next states.
type Transition struct {
	actions []string
	states  []string
	matrix  map[string]map[string]map[string]float64
}

// NewTransition validates and deep-copies the transition matrix. Every
// (action, state) row present must sum to 1; rows may be omitted entirely,
// in which case the state is treated as absorbing under that action.
func NewTransition(actions, states []string, matrix map[string]map[string]map[string]float64) (*Transition, error) {
	if len(actions) == 0 {
		return nil, ErrNoActions
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	stateSet := make(map[string]struct{}, len(states))
	for _, s := range states {
		stateSet[s] = struct{}{}
	}
	actionSet := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		actionSet[a] = struct{}{}
	}

	copied := make(map[string]map[string]map[string]float64, len(matrix))
	for a, rows := range matrix {
		if _, ok := actionSet[a]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a)
		}
		copied[a] = make(map[string]map[string]float64, len(rows))
		for s, row := range rows {
			if _, ok := stateSet[s]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownState, s)
			}
			total := 0.0
			copied[a][s] = make(map[string]float64, len(row))
			for next, p := range row {
				if _, ok := stateSet[next]; !ok {
					return nil, fmt.Errorf("%w: %q", ErrUnknownState, next)
				}
				copied[a][s][next] = p
				total += p
			}
			if math.Abs(total-1) > rowTolerance {
				return nil, fmt.Errorf("%w: action %q state %q sums to %v", ErrRowNotNormalized, a, s, total)
			}
		}
	}

	return &Transition{
		actions: append([]string(nil), actions...),
		states:  append([]string(nil), states...),
		matrix:  copied,
	}, nil
}

func (t *Transition) Actions() []string {
	return append([]string(nil), t.actions...)
}

func (t *Transition) States() []string {
	return append([]string(nil), t.states...)
}

// Predict propagates the belief one step: P(s') = Σ_s P(s'|s,a)·P(s).
// States absorbing under the action keep their mass in place.
func (t *Transition) Predict(b *belief.Discrete, action string) *belief.Discrete {
	next := make(map[string]float64, len(t.states))
	rows := t.matrix[action]
	for _, s := range t.states {
		p := b.Probability(s)
		if p == 0 {
			continue
		}
		row, ok := rows[s]
		if !ok {
			next[s] += p
			continue
		}
		for sNext, pTrans := range row {
			next[sNext] += pTrans * p
		}
	}

	predicted, err := belief.NewDiscrete(t.states, next)
	if err != nil {
		// Unreachable: next only contains states validated at construction.
		panic(err)
	}
	return predicted
}

// Observation is a fixed-parameter discrete observation model:
// observation → state → P(o|s). For every state, probabilities across
// observations must sum to 1.
type Observation struct {
	observations []string
	states       []string
	matrix       map[string]map[string]float64
}

// NewObservation validates and deep-copies the observation matrix.
func NewObservation(observations, states []string, matrix map[string]map[string]float64) (*Observation, error) {
	if len(observations) == 0 {
		return nil, ErrNoObservations
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	obsSet := make(map[string]struct{}, len(observations))
	for _, o := range observations {
		obsSet[o] = struct{}{}
	}
	stateSet := make(map[string]struct{}, len(states))
	for _, s := range states {
		stateSet[s] = struct{}{}
	}

	copied := make(map[string]map[string]float64, len(matrix))
	for o, row := range matrix {
		if _, ok := obsSet[o]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownObs, o)
		}
		copied[o] = make(map[string]float64, len(row))
		for s, p := range row {
			if _, ok := stateSet[s]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownState, s)
			}
			copied[o][s] = p
		}
	}

	for _, s := range states {
		total := 0.0
		for _, o := range observations {
			total += copied[o][s]
		}
		if math.Abs(total-1) > rowTolerance {
			return nil, fmt.Errorf("%w: state %q observation column sums to %v", ErrRowNotNormalized, s, total)
		}
	}

	return &Observation{
		observations: append([]string(nil), observations...),
		states:       append([]string(nil), states...),
		matrix:       copied,
	}, nil
}

func (o *Observation) Observations() []string {
	return append([]string(nil), o.observations...)
}

func (o *Observation) States() []string {
	return append([]string(nil), o.states...)
}

// Probability returns P(observation|state), or zero when either key is
// outside the configured sets.
func (o *Observation) Probability(observation, state string) float64 {
	row, ok := o.matrix[observation]
	if !ok {
		return 0
	}
	return row[state]
}

// Likelihood returns the row P(observation|·) over all states.
func (o *Observation) Likelihood(observation string) map[string]float64 {
	out := make(map[string]float64, len(o.states))
	row := o.matrix[observation]
	for _, s := range o.states {
		out[s] = row[s]
	}
	return out
}
