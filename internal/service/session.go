package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ktrewin/percept/internal/agent"
	"github.com/ktrewin/percept/internal/belief"
	"github.com/ktrewin/percept/internal/dirichlet"
	"github.com/ktrewin/percept/internal/domain"
	"github.com/ktrewin/percept/internal/model"
	"github.com/ktrewin/percept/internal/rng"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

// Session is one live agent plus its spec-derived metadata. Sessions live
// in memory only; callers persist beliefs and concentrations through the
// export surfaces if they need durability.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Agent     *agent.Discrete
	Spec      domain.SessionSpec
}

// SessionService is the in-memory registry of agent sessions. Agents are
// single-threaded; the registry mutex serializes all access to them.
type SessionService struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*Session
	maxSessions int
	logger      *zap.Logger
}

func NewSessionService(maxSessions int, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions:    make(map[uuid.UUID]*Session),
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Create builds an agent from the spec and registers it. Model validation
// errors surface here, at construction, never during later searches.
func (s *SessionService) Create(spec domain.SessionSpec) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return nil, ErrSessionLimit
	}

	a, err := buildAgent(spec)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Agent:     a,
		Spec:      spec,
	}
	s.sessions[sess.ID] = sess

	s.logger.Info("session created",
		zap.String("session_id", sess.ID.String()),
		zap.Int("states", len(spec.States)),
		zap.Int("actions", len(spec.Actions)),
		zap.Bool("learning", spec.Learning))
	return sess, nil
}

// Observe updates the session's belief from an observation and returns the
// exported posterior.
func (s *SessionService) Observe(id uuid.UUID, observation string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Agent.Observe(observation)
	return sess.Agent.ExportBelief(), nil
}

// Act plans from the current belief and returns the sampled action.
func (s *SessionService) Act(id uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return "", ErrSessionNotFound
	}
	return sess.Agent.Act(), nil
}

// Step runs one full perception-action cycle and reports the outcome.
func (s *SessionService) Step(id uuid.UUID, observation string) (*domain.StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	action := sess.Agent.Step(observation)
	res := &domain.StepResult{
		Action:      action,
		State:       sess.Agent.State(),
		Uncertainty: sess.Agent.Uncertainty(),
		FreeEnergy:  sess.Agent.FreeEnergy(),
		Belief:      sess.Agent.ExportBelief(),
	}

	s.logger.Debug("session step",
		zap.String("session_id", id.String()),
		zap.String("observation", observation),
		zap.String("action", action),
		zap.Float64("free_energy", res.FreeEnergy))
	return res, nil
}

// Belief returns the session's exported belief.
func (s *SessionService) Belief(id uuid.UUID) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Agent.ExportBelief(), nil
}

// ResetBelief replaces the session's belief wholesale; an empty map resets
// to uniform.
func (s *SessionService) ResetBelief(id uuid.UUID, probs map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	var (
		b   *belief.Discrete
		err error
	)
	if len(probs) == 0 {
		b, err = belief.Uniform(sess.Spec.States)
	} else {
		b, err = belief.NewDiscrete(sess.Spec.States, probs)
	}
	if err != nil {
		return err
	}
	return sess.Agent.ResetBelief(b)
}

// Get returns the session's read-only info.
func (s *SessionService) Get(id uuid.UUID) (*domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sessionInfo(sess), nil
}

// List returns info for every live session.
func (s *SessionService) List() []domain.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sessionInfo(sess))
	}
	return out
}

// Delete removes a session.
func (s *SessionService) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Info("session deleted", zap.String("session_id", id.String()))
	return nil
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func sessionInfo(sess *Session) *domain.SessionInfo {
	return &domain.SessionInfo{
		ID:           sess.ID,
		CreatedAt:    sess.CreatedAt,
		States:       append([]string(nil), sess.Spec.States...),
		Actions:      append([]string(nil), sess.Spec.Actions...),
		Observations: append([]string(nil), sess.Spec.Observations...),
		Learning:     sess.Spec.Learning,
	}
}

// buildAgent assembles the belief, models, preferences and planner knobs
// described by a spec. With Learning set the matrices seed Dirichlet
// concentrations and the standard learning callback is installed.
func buildAgent(spec domain.SessionSpec) (*agent.Discrete, error) {
	var (
		b   *belief.Discrete
		err error
	)
	if len(spec.Belief) == 0 {
		b, err = belief.Uniform(spec.States)
	} else {
		b, err = belief.NewDiscrete(spec.States, spec.Belief)
	}
	if err != nil {
		return nil, err
	}

	var (
		trans model.TransitionModel
		obs   model.ObservationModel

		transLearner model.TransitionLearner
		obsLearner   model.ObservationLearner
		prefLearner  *dirichlet.Preferences
	)

	if spec.Learning {
		dt, err := dirichlet.NewTransitionModel(spec.Actions, spec.States, spec.Transition)
		if err != nil {
			return nil, err
		}
		do, err := dirichlet.NewObservationModel(spec.Observations, spec.States, spec.Observation)
		if err != nil {
			return nil, err
		}
		trans, transLearner = dt, dt
		obs, obsLearner = do, do
	} else {
		ft, err := model.NewTransition(spec.Actions, spec.States, spec.Transition)
		if err != nil {
			return nil, err
		}
		fo, err := model.NewObservation(spec.Observations, spec.States, spec.Observation)
		if err != nil {
			return nil, err
		}
		trans, obs = ft, fo
	}

	var prefs agent.PreferenceSource
	switch {
	case len(spec.PreferenceCounts) > 0:
		prefLearner, err = dirichlet.NewPreferences(spec.PreferenceCounts)
		if err != nil {
			return nil, err
		}
		prefs = prefLearner
	case len(spec.Preferences) > 0:
		prefs = agent.Preferences(spec.Preferences)
	}

	a, err := agent.NewDiscrete(b, trans, obs, prefs)
	if err != nil {
		return nil, err
	}

	if spec.Horizon > 0 {
		a.SetHorizon(spec.Horizon)
	}
	if spec.Precision != nil {
		a.SetPrecision(*spec.Precision)
	}
	if spec.BeamWidth > 0 {
		a.SetBeamWidth(spec.BeamWidth)
	}
	if len(spec.Habits) > 0 {
		a.SetHabits(spec.Habits)
	}
	if spec.Seed != nil {
		a.SetRand(rng.New(*spec.Seed))
	}
	if spec.Learning || prefLearner != nil {
		a.SetLearn(agent.DirichletLearning(obsLearner, transLearner, prefLearnerOrNil(prefLearner)))
	}
	return a, nil
}

// prefLearnerOrNil keeps a typed-nil *dirichlet.Preferences from sneaking
// into the PreferenceLearner interface.
func prefLearnerOrNil(p *dirichlet.Preferences) agent.PreferenceLearner {
	if p == nil {
		return nil
	}
	return p
}
