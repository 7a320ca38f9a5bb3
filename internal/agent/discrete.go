package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/ktrewin/percept/internal/belief"
	"github.com/ktrewin/percept/internal/model"
	"github.com/ktrewin/percept/internal/rng"
)

var (
	ErrNilBelief      = errors.New("agent requires an initial belief")
	ErrNilTransition  = errors.New("agent requires a transition model")
	ErrNilObservation = errors.New("agent requires an observation model")
	ErrNoActions      = errors.New("agent requires at least one action")
	ErrStateMismatch  = errors.New("belief and model state spaces differ")
)

// LearnFunc is the post-observation learning callback. It receives the
// observation, the post-observation belief, and the previous cycle's action
// and pre-action belief. On the agent's first cycle prevAction is empty and
// prior is nil; transition learning must be skipped then.
type LearnFunc func(observation string, posterior *belief.Discrete, prevAction string, prior *belief.Discrete)

// Discrete is an active-inference agent over a finite state space. It owns
// its belief exclusively; accessors hand out copies.
type Discrete struct {
	belief  *belief.Discrete
	trans   model.TransitionModel
	obs     model.ObservationModel
	planner *Planner[*belief.Discrete]
	learn   LearnFunc

	prevAction string
	prevBelief *belief.Discrete
}

// NewDiscrete builds an agent from an initial belief (deep-copied), a
// transition model and an observation model, scoring policies by the
// standard discrete EFE against the given preferences (nil prefs means
// every observation takes the default log-preference). Planning defaults:
// horizon 1, precision 1, unbounded beam width, a time-seeded RNG.
// Optional knobs are set afterwards via the Set methods.
func NewDiscrete(b *belief.Discrete, trans model.TransitionModel, obs model.ObservationModel, prefs PreferenceSource) (*Discrete, error) {
	if b == nil {
		return nil, ErrNilBelief
	}
	if trans == nil {
		return nil, ErrNilTransition
	}
	if obs == nil {
		return nil, ErrNilObservation
	}
	actions := trans.Actions()
	if len(actions) == 0 {
		return nil, ErrNoActions
	}
	if err := checkStateSpace(b.States(), trans.States()); err != nil {
		return nil, fmt.Errorf("transition model: %w", err)
	}
	if err := checkStateSpace(b.States(), obs.States()); err != nil {
		return nil, fmt.Errorf("observation model: %w", err)
	}

	a := &Discrete{
		belief: b.Copy(),
		trans:  trans,
		obs:    obs,
	}
	a.planner = &Planner[*belief.Discrete]{
		Actions:   actions,
		Predict:   trans.Predict,
		Score:     DiscreteEFE(obs, prefs),
		Horizon:   1,
		Precision: 1,
		Rand:      rng.New(uint32(time.Now().UnixNano())),
	}
	return a, nil
}

// SetHorizon sets the planning horizon (clamped to ≥1 at search time).
func (a *Discrete) SetHorizon(horizon int) { a.planner.Horizon = horizon }

// SetPrecision sets the softmin inverse temperature β (clamped to ≥0).
func (a *Discrete) SetPrecision(beta float64) { a.planner.Precision = beta }

// SetBeamWidth bounds the surviving policies per depth; ≤0 disables pruning.
func (a *Discrete) SetBeamWidth(width int) { a.planner.BeamWidth = width }

// SetHabits installs habitual action priors; unlisted actions weigh 1.
func (a *Discrete) SetHabits(habits map[string]float64) {
	copied := make(map[string]float64, len(habits))
	for k, v := range habits {
		copied[k] = v
	}
	a.planner.Habits = copied
}

// SetRand replaces the agent's random source, typically with a fixed seed.
func (a *Discrete) SetRand(r *rng.Source) { a.planner.Rand = r }

// SetScore replaces the EFE scorer used during planning.
func (a *Discrete) SetScore(score func(*belief.Discrete) float64) { a.planner.Score = score }

// SetLearn installs the post-observation learning callback.
func (a *Discrete) SetLearn(learn LearnFunc) { a.learn = learn }

// Observe updates the belief from an observation's likelihood and then runs
// the learning callback with the pre-action belief recorded by the previous
// Act and the fresh posterior.
func (a *Discrete) Observe(observation string) {
	a.belief.Update(a.obs.Likelihood(observation))
	if a.learn != nil {
		a.learn(observation, a.belief.Copy(), a.prevAction, a.prevBelief)
	}
}

// Act plans from the current belief and returns the sampled action,
// recording it and the current belief for the next cycle's transition
// learning.
func (a *Discrete) Act() string {
	action := a.planner.Act(a.belief.Copy())
	a.prevAction = action
	a.prevBelief = a.belief.Copy()
	return action
}

// Step runs one full perception-action cycle: observe, learn, act.
func (a *Discrete) Step(observation string) string {
	a.Observe(observation)
	return a.Act()
}

// Belief returns a copy of the current belief.
func (a *Discrete) Belief() *belief.Discrete {
	return a.belief.Copy()
}

// ResetBelief replaces the belief wholesale with a copy of b.
func (a *Discrete) ResetBelief(b *belief.Discrete) error {
	if b == nil {
		return ErrNilBelief
	}
	if err := checkStateSpace(a.belief.States(), b.States()); err != nil {
		return err
	}
	a.belief = b.Copy()
	return nil
}

// State returns the MAP estimate under the current belief.
func (a *Discrete) State() string {
	return a.belief.ArgMax()
}

// Uncertainty returns the entropy of the current belief in nats.
func (a *Discrete) Uncertainty() float64 {
	return a.belief.Entropy()
}

// FreeEnergy returns the Variational Free Energy of the current belief,
// −entropy + ambiguity.
func (a *Discrete) FreeEnergy() float64 {
	return -a.belief.Entropy() + Ambiguity(a.obs, a.belief)
}

// ExportBelief returns the belief as a plain state→probability map.
func (a *Discrete) ExportBelief() map[string]float64 {
	return a.belief.Export()
}

func checkStateSpace(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d states vs %d", ErrStateMismatch, len(want), len(got))
	}
	set := make(map[string]struct{}, len(want))
	for _, s := range want {
		set[s] = struct{}{}
	}
	for _, s := range got {
		if _, ok := set[s]; !ok {
			return fmt.Errorf("%w: unexpected state %q", ErrStateMismatch, s)
		}
	}
	return nil
}
