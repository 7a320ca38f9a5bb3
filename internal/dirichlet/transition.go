package dirichlet

import (
	"github.com/ktrewin/percept/internal/belief"
)

// TransitionModel is a Dirichlet-backed transition model. P(s'|s,a) is
// derived per (action, state) row by normalizing counts across next states:
// P(s'|s,a) = b[a][s][s'] / Σ_s″ b[a][s][s″].
type TransitionModel struct {
	actions []string
	states  []string
	counts  map[string]map[string]map[string]float64
	cached  map[string]map[string]map[string]float64
	dirty   bool
}

// NewTransitionModel deep-copies the supplied concentrations; every
// (action, state, next-state) cell must be present and positive.
func NewTransitionModel(actions, states []string, counts map[string]map[string]map[string]float64) (*TransitionModel, error) {
	if len(actions) == 0 {
		return nil, ErrNoActions
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	copied := make(map[string]map[string]map[string]float64, len(actions))
	for _, a := range actions {
		inner, err := copyCountMatrix(states, states, counts[a])
		if err != nil {
			return nil, err
		}
		copied[a] = inner
	}

	return &TransitionModel{
		actions: append([]string(nil), actions...),
		states:  append([]string(nil), states...),
		counts:  copied,
		dirty:   true,
	}, nil
}

func (m *TransitionModel) Actions() []string {
	return append([]string(nil), m.actions...)
}

func (m *TransitionModel) States() []string {
	return append([]string(nil), m.states...)
}

// Predict propagates the belief through the derived transition matrix:
// P(s') = Σ_s P(s'|s,a)·P(s). An unknown action leaves the belief
// unchanged.
func (m *TransitionModel) Predict(b *belief.Discrete, action string) *belief.Discrete {
	m.derive()
	rows, ok := m.cached[action]
	if !ok {
		return b.Copy()
	}

	next := make(map[string]float64, len(m.states))
	for _, s := range m.states {
		p := b.Probability(s)
		if p == 0 {
			continue
		}
		for _, sNext := range m.states {
			next[sNext] += rows[s][sNext] * p
		}
	}

	predicted, err := belief.NewDiscrete(m.states, next)
	if err != nil {
		// Unreachable: next only contains declared states.
		panic(err)
	}
	return predicted
}

// LearnTransition applies the conjugate increment for an executed action:
// b[a][s][s'] += prior(s)·posterior(s') over every state pair, the outer
// product of the pre-action and post-observation beliefs. An action outside
// the declared set is ignored.
func (m *TransitionModel) LearnTransition(action string, prior, posterior *belief.Discrete) {
	rows, ok := m.counts[action]
	if !ok {
		return
	}
	for _, s := range m.states {
		p := prior.Probability(s)
		if p == 0 {
			continue
		}
		for _, sNext := range m.states {
			rows[s][sNext] += p * posterior.Probability(sNext)
		}
	}
	m.dirty = true
}

// Counts exposes the live concentration structure for inspection and
// external persistence.
func (m *TransitionModel) Counts() map[string]map[string]map[string]float64 {
	return m.counts
}

func (m *TransitionModel) derive() {
	if !m.dirty {
		return
	}

	m.cached = make(map[string]map[string]map[string]float64, len(m.actions))
	for _, a := range m.actions {
		m.cached[a] = make(map[string]map[string]float64, len(m.states))
		for _, s := range m.states {
			row := make(map[string]float64, len(m.states))
			total := 0.0
			for _, sNext := range m.states {
				total += m.counts[a][s][sNext]
			}
			if total > 0 {
				for _, sNext := range m.states {
					row[sNext] = m.counts[a][s][sNext] / total
				}
			}
			m.cached[a][s] = row
		}
	}
	m.dirty = false
}
