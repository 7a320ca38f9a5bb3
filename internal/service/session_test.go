package service

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ktrewin/percept/internal/domain"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func mazeSpec() domain.SessionSpec {
	seed := uint32(7)
	return domain.SessionSpec{
		States:       []string{"left", "right"},
		Actions:      []string{"go_left", "go_right"},
		Observations: []string{"cue_left", "cue_right"},
		Transition: map[string]map[string]map[string]float64{
			"go_left": {
				"left":  {"left": 1},
				"right": {"left": 0.8, "right": 0.2},
			},
			"go_right": {
				"left":  {"left": 0.2, "right": 0.8},
				"right": {"right": 1},
			},
		},
		Observation: map[string]map[string]float64{
			"cue_left":  {"left": 0.9, "right": 0.1},
			"cue_right": {"left": 0.1, "right": 0.9},
		},
		Preferences: map[string]float64{"cue_left": 0, "cue_right": -3},
		Seed:        &seed,
	}
}

func learningSpec() domain.SessionSpec {
	spec := mazeSpec()
	spec.Learning = true
	// Under Learning the matrices are concentrations; weak uniform priors.
	spec.Transition = map[string]map[string]map[string]float64{
		"go_left": {
			"left":  {"left": 1, "right": 1},
			"right": {"left": 1, "right": 1},
		},
		"go_right": {
			"left":  {"left": 1, "right": 1},
			"right": {"left": 1, "right": 1},
		},
	}
	spec.Observation = map[string]map[string]float64{
		"cue_left":  {"left": 2, "right": 1},
		"cue_right": {"left": 1, "right": 2},
	}
	return spec
}

func TestCreateAndGet(t *testing.T) {
	svc := NewSessionService(10, testLogger())

	sess, err := svc.Create(mazeSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := svc.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(info.States) != 2 || len(info.Actions) != 2 {
		t.Fatalf("unexpected session info: %+v", info)
	}
	if svc.Count() != 1 {
		t.Fatalf("count: got %d want 1", svc.Count())
	}
}

func TestCreateInvalidSpecFailsFast(t *testing.T) {
	svc := NewSessionService(10, testLogger())

	spec := mazeSpec()
	spec.Transition["go_left"]["right"] = map[string]float64{"left": 0.5, "right": 0.1}

	if _, err := svc.Create(spec); err == nil {
		t.Fatal("malformed transition row must fail at construction")
	}
	if svc.Count() != 0 {
		t.Fatal("failed create must not register a session")
	}
}

func TestSessionLimit(t *testing.T) {
	svc := NewSessionService(1, testLogger())

	if _, err := svc.Create(mazeSpec()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(mazeSpec()); !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("expected ErrSessionLimit, got %v", err)
	}
}

func TestObserveActStep(t *testing.T) {
	svc := NewSessionService(10, testLogger())
	sess, err := svc.Create(mazeSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	beliefOut, err := svc.Observe(sess.ID, "cue_left")
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if beliefOut["left"] <= beliefOut["right"] {
		t.Fatalf("cue_left should shift belief left: %v", beliefOut)
	}

	action, err := svc.Act(sess.ID)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if action != "go_left" && action != "go_right" {
		t.Fatalf("unknown action %q", action)
	}

	res, err := svc.Step(sess.ID, "cue_left")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.State != "left" {
		t.Fatalf("MAP state after cues: got %q want left", res.State)
	}
	total := 0.0
	for _, p := range res.Belief {
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("step belief sums to %v", total)
	}
}

func TestSeededSessionsReproducible(t *testing.T) {
	svc := NewSessionService(10, testLogger())

	s1, err := svc.Create(mazeSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s2, err := svc.Create(mazeSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 10; i++ {
		r1, err := svc.Step(s1.ID, "cue_left")
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		r2, err := svc.Step(s2.ID, "cue_left")
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if r1.Action != r2.Action {
			t.Fatalf("seeded sessions diverged at step %d", i)
		}
	}
}

func TestLearningSessionAdaptsObservationModel(t *testing.T) {
	svc := NewSessionService(10, testLogger())
	sess, err := svc.Create(learningSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Repeated consistent evidence both compounds in the belief and
	// sharpens the learned likelihood; five observations is plenty.
	var last map[string]float64
	for i := 0; i < 5; i++ {
		last, err = svc.Observe(sess.ID, "cue_left")
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
	}
	if last["left"] < 0.9 {
		t.Fatalf("learning session should converge on left, got %v", last)
	}

	// A full cycle still runs cleanly with the learned models and the
	// posterior keeps favoring left.
	res, err := svc.Step(sess.ID, "cue_left")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Belief["left"] <= res.Belief["right"] {
		t.Fatalf("step posterior should favor left, got %v", res.Belief)
	}
}

func TestResetBelief(t *testing.T) {
	svc := NewSessionService(10, testLogger())
	sess, err := svc.Create(mazeSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Observe(sess.ID, "cue_left"); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	if err := svc.ResetBelief(sess.ID, nil); err != nil {
		t.Fatalf("ResetBelief: %v", err)
	}
	beliefOut, err := svc.Belief(sess.ID)
	if err != nil {
		t.Fatalf("Belief: %v", err)
	}
	if beliefOut["left"] != 0.5 {
		t.Fatalf("empty reset should restore uniform, got %v", beliefOut)
	}

	if err := svc.ResetBelief(sess.ID, map[string]float64{"left": 0.9, "right": 0.1}); err != nil {
		t.Fatalf("ResetBelief explicit: %v", err)
	}
	beliefOut, _ = svc.Belief(sess.ID)
	if beliefOut["left"] != 0.9 {
		t.Fatalf("explicit reset not applied: %v", beliefOut)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	svc := NewSessionService(10, testLogger())
	sess, err := svc.Create(mazeSpec())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Act(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
