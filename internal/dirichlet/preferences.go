package dirichlet

import (
	"fmt"
	"math"
)

// prefFloor bounds the derived preference probability away from zero so the
// log stays finite.
const prefFloor = 1e-16

// Preferences is a Dirichlet-backed preference distribution over
// observations. The derived log-preference for o is
// log(c[o] / Σ c[o′]), floored at a minimum probability before the log.
type Preferences struct {
	observations []string
	counts       map[string]float64
	cached       map[string]float64
	dirty        bool
}

// NewPreferences deep-copies the supplied counts; every observation must
// have a positive concentration.
func NewPreferences(counts map[string]float64) (*Preferences, error) {
	if len(counts) == 0 {
		return nil, ErrNoObservations
	}
	p := &Preferences{
		counts: make(map[string]float64, len(counts)),
		dirty:  true,
	}
	for o, c := range counts {
		if c <= 0 {
			return nil, fmt.Errorf("%w: %q = %v", ErrNonPositiveCount, o, c)
		}
		p.counts[o] = c
		p.observations = append(p.observations, o)
	}
	return p, nil
}

// LogPreference returns the derived log-preference for the observation, with
// ok=false when the observation has no configured count (the caller applies
// its own default in that case).
func (p *Preferences) LogPreference(observation string) (float64, bool) {
	p.derive()
	v, ok := p.cached[observation]
	return v, ok
}

// Learn increments the observation's concentration by amount and invalidates
// the cached view. Observations outside the configured set are ignored.
func (p *Preferences) Learn(observation string, amount float64) {
	if _, ok := p.counts[observation]; !ok {
		return
	}
	p.counts[observation] += amount
	p.dirty = true
}

// Counts exposes the live concentration map for inspection and external
// persistence.
func (p *Preferences) Counts() map[string]float64 {
	return p.counts
}

func (p *Preferences) derive() {
	if !p.dirty {
		return
	}

	total := 0.0
	for _, c := range p.counts {
		total += c
	}

	p.cached = make(map[string]float64, len(p.counts))
	for o, c := range p.counts {
		pr := 0.0
		if total > 0 {
			pr = c / total
		}
		if pr < prefFloor {
			pr = prefFloor
		}
		p.cached[o] = math.Log(pr)
	}
	p.dirty = false
}
