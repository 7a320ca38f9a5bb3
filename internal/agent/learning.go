package agent

import (
	"github.com/ktrewin/percept/internal/belief"
	"github.com/ktrewin/percept/internal/model"
)

// PreferenceLearner is the capability a preference source implements when it
// adapts from observed outcomes.
type PreferenceLearner interface {
	Learn(observation string, amount float64)
}

// DirichletLearning assembles the standard learning callback from whichever
// learnable components are present; any argument may be nil. Transition
// learning only runs once a previous action exists, so the agent's first
// cycle updates observation and preference counts only.
func DirichletLearning(obs model.ObservationLearner, trans model.TransitionLearner, prefs PreferenceLearner) LearnFunc {
	return func(observation string, posterior *belief.Discrete, prevAction string, prior *belief.Discrete) {
		if obs != nil {
			obs.LearnObservation(observation, posterior)
		}
		if trans != nil && prevAction != "" && prior != nil {
			trans.LearnTransition(prevAction, prior, posterior)
		}
		if prefs != nil {
			prefs.Learn(observation, 1)
		}
	}
}
