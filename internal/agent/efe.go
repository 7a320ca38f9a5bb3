// Package agent ties beliefs, generative models and preferences into the
// perception-action loop: Bayesian (or Kalman) perception, Expected Free
// Energy scoring, beam-search planning over action sequences, and the
// optional online-learning callback run after each observation.
package agent

import (
	"math"

	"github.com/ktrewin/percept/internal/belief"
	"github.com/ktrewin/percept/internal/model"
)

// DefaultLogPreference is assigned to observations with no configured
// preference: undesired unless stated otherwise.
const DefaultLogPreference = -10

// PreferenceSource supplies log-preferences over observations. The second
// return reports whether the observation has a configured preference.
type PreferenceSource interface {
	LogPreference(observation string) (float64, bool)
}

// Preferences is a static log-preference map.
type Preferences map[string]float64

func (p Preferences) LogPreference(observation string) (float64, bool) {
	v, ok := p[observation]
	return v, ok
}

// Ambiguity is the epistemic EFE term: the expected conditional entropy of
// observations given predicted states, −Σ_s Q(s)·Σ_o P(o|s)·log P(o|s).
func Ambiguity(obs model.ObservationModel, q *belief.Discrete) float64 {
	amb := 0.0
	observations := obs.Observations()
	for _, s := range q.States() {
		qs := q.Probability(s)
		if qs == 0 {
			continue
		}
		inner := 0.0
		for _, o := range observations {
			po := obs.Probability(o, s)
			if po > 0 {
				inner += po * math.Log(po)
			}
		}
		amb -= qs * inner
	}
	return amb
}

// Risk is the pragmatic EFE term: −Σ_o Q(o)·pref(o) with
// Q(o) = Σ_s P(o|s)·Q(s). A nil prefs source means every observation takes
// the default log-preference.
func Risk(obs model.ObservationModel, prefs PreferenceSource, q *belief.Discrete) float64 {
	risk := 0.0
	states := q.States()
	for _, o := range obs.Observations() {
		qo := 0.0
		for _, s := range states {
			qo += obs.Probability(o, s) * q.Probability(s)
		}
		if qo == 0 {
			continue
		}
		pref := float64(DefaultLogPreference)
		if prefs != nil {
			if v, ok := prefs.LogPreference(o); ok {
				pref = v
			}
		}
		risk -= qo * pref
	}
	return risk
}

// DiscreteEFE builds the discrete scorer, EFE = ambiguity + risk.
func DiscreteEFE(obs model.ObservationModel, prefs PreferenceSource) func(*belief.Discrete) float64 {
	return func(q *belief.Discrete) float64 {
		return Ambiguity(obs, q) + Risk(obs, prefs, q)
	}
}

// ContinuousEFE builds the continuous scorer, EFE = −pref(E[y]). Under a
// fixed-noise linear sensor the ambiguity term is constant across actions
// and is omitted.
func ContinuousEFE(sensor model.LinearGaussian, pref func(float64) float64) func(belief.Gaussian) float64 {
	return func(g belief.Gaussian) float64 {
		return -pref(sensor.ExpectedObservation(g))
	}
}
