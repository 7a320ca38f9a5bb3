// Package dirichlet implements the learnable generative-model components.
// Each model keeps Dirichlet pseudo-counts shaped like the probability
// structure it stands in for; the probability view is derived by
// normalization, cached, and recomputed lazily after each learn step.
package dirichlet

import (
	"errors"
	"fmt"

	"github.com/ktrewin/percept/internal/belief"
)

var (
	ErrNonPositiveCount = errors.New("dirichlet concentration must be positive")
	ErrMissingCount     = errors.New("dirichlet concentration cell missing")
	ErrNoObservations   = errors.New("dirichlet model requires at least one observation")
	ErrNoStates         = errors.New("dirichlet model requires at least one state")
	ErrNoActions        = errors.New("dirichlet model requires at least one action")
	ErrUnknownKey       = errors.New("dirichlet concentration references key outside the declared sets")
)

// ObservationModel is a Dirichlet-backed observation model. P(o|s) is
// derived per state by normalizing counts across observations:
// P(o|s) = a[o][s] / Σ_o′ a[o′][s].
type ObservationModel struct {
	observations []string
	states       []string
	counts       map[string]map[string]float64
	cached       map[string]map[string]float64
	dirty        bool
}

// NewObservationModel deep-copies the supplied concentrations; every
// (observation, state) cell must be present and positive.
func NewObservationModel(observations, states []string, counts map[string]map[string]float64) (*ObservationModel, error) {
	if len(observations) == 0 {
		return nil, ErrNoObservations
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	copied, err := copyCountMatrix(observations, states, counts)
	if err != nil {
		return nil, err
	}
	return &ObservationModel{
		observations: append([]string(nil), observations...),
		states:       append([]string(nil), states...),
		counts:       copied,
		dirty:        true,
	}, nil
}

func (m *ObservationModel) Observations() []string {
	return append([]string(nil), m.observations...)
}

func (m *ObservationModel) States() []string {
	return append([]string(nil), m.states...)
}

// Probability returns the derived P(observation|state), recomputing the
// cached matrix if a learn step invalidated it. Unknown keys yield zero.
func (m *ObservationModel) Probability(observation, state string) float64 {
	m.derive()
	row, ok := m.cached[observation]
	if !ok {
		return 0
	}
	return row[state]
}

// Likelihood returns the derived row P(observation|·) over all states.
func (m *ObservationModel) Likelihood(observation string) map[string]float64 {
	m.derive()
	out := make(map[string]float64, len(m.states))
	row := m.cached[observation]
	for _, s := range m.states {
		out[s] = row[s]
	}
	return out
}

// LearnObservation applies the conjugate Dirichlet-categorical increment for
// an observed o: a[o][s] += posterior(s) for every state. An observation
// outside the declared set is ignored.
func (m *ObservationModel) LearnObservation(observation string, posterior *belief.Discrete) {
	row, ok := m.counts[observation]
	if !ok {
		return
	}
	for _, s := range m.states {
		row[s] += posterior.Probability(s)
	}
	m.dirty = true
}

// Counts exposes the live concentration structure for inspection and
// external persistence. Mutating it directly bypasses cache invalidation.
func (m *ObservationModel) Counts() map[string]map[string]float64 {
	return m.counts
}

func (m *ObservationModel) derive() {
	if !m.dirty {
		return
	}

	m.cached = make(map[string]map[string]float64, len(m.observations))
	for _, o := range m.observations {
		m.cached[o] = make(map[string]float64, len(m.states))
	}
	for _, s := range m.states {
		total := 0.0
		for _, o := range m.observations {
			total += m.counts[o][s]
		}
		if total == 0 {
			continue
		}
		for _, o := range m.observations {
			m.cached[o][s] = m.counts[o][s] / total
		}
	}
	m.dirty = false
}

// copyCountMatrix validates and deep-copies a two-level concentration map
// keyed by rows then cols.
func copyCountMatrix(rows, cols []string, counts map[string]map[string]float64) (map[string]map[string]float64, error) {
	colSet := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		colSet[c] = struct{}{}
	}
	rowSet := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		rowSet[r] = struct{}{}
	}

	for r, row := range counts {
		if _, ok := rowSet[r]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, r)
		}
		for c := range row {
			if _, ok := colSet[c]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownKey, c)
			}
		}
	}

	copied := make(map[string]map[string]float64, len(rows))
	for _, r := range rows {
		copied[r] = make(map[string]float64, len(cols))
		for _, c := range cols {
			v, ok := counts[r][c]
			if !ok {
				return nil, fmt.Errorf("%w: [%q][%q]", ErrMissingCount, r, c)
			}
			if v <= 0 {
				return nil, fmt.Errorf("%w: [%q][%q] = %v", ErrNonPositiveCount, r, c, v)
			}
			copied[r][c] = v
		}
	}
	return copied, nil
}
