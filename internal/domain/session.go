// Package domain holds the wire-facing types for agent sessions.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionSpec is the full configuration for a discrete agent session. With
// Learning set, the transition and observation matrices are interpreted as
// Dirichlet concentrations (positive pseudo-counts) instead of fixed
// probabilities, and the agent updates them online after every step.
type SessionSpec struct {
	States       []string `json:"states"`
	Actions      []string `json:"actions"`
	Observations []string `json:"observations"`

	// Belief is the initial state→probability map; uniform when empty.
	Belief map[string]float64 `json:"belief,omitempty"`

	// Transition is action→state→next-state, probabilities or counts.
	Transition map[string]map[string]map[string]float64 `json:"transition"`

	// Observation is observation→state, probabilities or counts.
	Observation map[string]map[string]float64 `json:"observation"`

	// Preferences maps observations to fixed log-preferences. Ignored when
	// PreferenceCounts is set.
	Preferences map[string]float64 `json:"preferences,omitempty"`

	// PreferenceCounts makes preferences Dirichlet-learnable, seeded with
	// these positive pseudo-counts.
	PreferenceCounts map[string]float64 `json:"preference_counts,omitempty"`

	Learning  bool               `json:"learning,omitempty"`
	Horizon   int                `json:"horizon,omitempty"`
	Precision *float64           `json:"precision,omitempty"`
	BeamWidth int                `json:"beam_width,omitempty"`
	Habits    map[string]float64 `json:"habits,omitempty"`
	Seed      *uint32            `json:"seed,omitempty"`
}

// SessionInfo is the read-only view of a live session.
type SessionInfo struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	States       []string  `json:"states"`
	Actions      []string  `json:"actions"`
	Observations []string  `json:"observations"`
	Learning     bool      `json:"learning"`
}

// StepResult reports one perception-action cycle.
type StepResult struct {
	Action      string             `json:"action"`
	State       string             `json:"state"`
	Uncertainty float64            `json:"uncertainty"`
	FreeEnergy  float64            `json:"free_energy"`
	Belief      map[string]float64 `json:"belief"`
}
