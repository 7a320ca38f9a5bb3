// Package belief implements the agent's probability distributions over
// hidden states: a categorical distribution over a finite state set and a
// 1-D Gaussian for continuous state spaces.
package belief

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoStates     = errors.New("belief requires at least one state")
	ErrUnknownState = errors.New("probability assigned to state outside the state set")
)

// klFloor substitutes for a zero q-probability inside KL so the divergence
// stays finite. A numerical concession, not a statistical correction.
const klFloor = 1e-10

// Discrete is a categorical belief over a finite, ordered state set.
// The order is the model's declared state ordering and decides ArgMax
// tie-breaks; it carries no probabilistic meaning.
type Discrete struct {
	states []string
	probs  map[string]float64
}

// NewDiscrete builds a belief over the given states. Probabilities for
// states missing from probs default to zero; probs naming a state outside
// the state set is a construction error.
func NewDiscrete(states []string, probs map[string]float64) (*Discrete, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	d := &Discrete{
		states: append([]string(nil), states...),
		probs:  make(map[string]float64, len(states)),
	}
	for _, s := range states {
		d.probs[s] = probs[s]
	}
	for s := range probs {
		if _, ok := d.probs[s]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownState, s)
		}
	}
	return d, nil
}

// Uniform builds a belief assigning equal probability to every state.
func Uniform(states []string) (*Discrete, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	probs := make(map[string]float64, len(states))
	for _, s := range states {
		probs[s] = 1 / float64(len(states))
	}
	return NewDiscrete(states, probs)
}

// States returns a copy of the declared state ordering.
func (d *Discrete) States() []string {
	return append([]string(nil), d.states...)
}

// Probability returns the belief mass on the given state, or zero for a
// state outside the state set.
func (d *Discrete) Probability(state string) float64 {
	return d.probs[state]
}

// ArgMax returns the most probable state. Ties resolve to the earliest
// state in the declared ordering.
func (d *Discrete) ArgMax() string {
	best := d.states[0]
	bestP := d.probs[best]
	for _, s := range d.states[1:] {
		if d.probs[s] > bestP {
			best = s
			bestP = d.probs[s]
		}
	}
	return best
}

// Entropy returns −Σ p·log(p) in nats over states with positive mass.
func (d *Discrete) Entropy() float64 {
	h := 0.0
	for _, s := range d.states {
		p := d.probs[s]
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}

// KL returns the Kullback-Leibler divergence from d to other. Where other
// assigns zero to a state d weights, the q term is floored at 1e-10 so the
// result stays finite.
func (d *Discrete) KL(other *Discrete) float64 {
	kl := 0.0
	for _, s := range d.states {
		p := d.probs[s]
		if p <= 0 {
			continue
		}
		q := other.Probability(s)
		if q < klFloor {
			q = klFloor
		}
		kl += p * math.Log(p/q)
	}
	return kl
}

// Update applies a Bayesian posterior in place: posterior(s) ∝
// likelihood(s)·prior(s), renormalized. When every weighted term is zero the
// belief is left as the all-zero vector; callers that care must check and
// reset (see ResetBelief on the agent).
func (d *Discrete) Update(likelihood map[string]float64) {
	total := 0.0
	for _, s := range d.states {
		d.probs[s] *= likelihood[s]
		total += d.probs[s]
	}
	if total == 0 {
		return
	}
	for _, s := range d.states {
		d.probs[s] /= total
	}
}

// Copy returns an independent deep copy.
func (d *Discrete) Copy() *Discrete {
	probs := make(map[string]float64, len(d.probs))
	for s, p := range d.probs {
		probs[s] = p
	}
	return &Discrete{
		states: append([]string(nil), d.states...),
		probs:  probs,
	}
}

// Export returns the belief as a plain state→probability map, detached from
// the live belief, for persistence or interop.
func (d *Discrete) Export() map[string]float64 {
	out := make(map[string]float64, len(d.probs))
	for s, p := range d.probs {
		out[s] = p
	}
	return out
}
