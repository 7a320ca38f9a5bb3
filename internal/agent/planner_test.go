package agent

import (
	"testing"

	"github.com/ktrewin/percept/internal/rng"
)

// costPlanner plans over plain float64 "beliefs" so search mechanics can be
// tested without a generative model.
func costPlanner(costs map[string]float64, seed uint32) *Planner[float64] {
	actions := []string{"a", "b", "c"}
	return &Planner[float64]{
		Actions: actions,
		Predict: func(x float64, action string) float64 { return x + costs[action] },
		Score:   func(x float64) float64 { return x },
		Horizon: 1,
		Rand:    rng.New(seed),
	}
}

func TestActPicksLowCostActionAtHighPrecision(t *testing.T) {
	p := costPlanner(map[string]float64{"a": 5, "b": 0, "c": 5}, 3)
	p.Precision = 50

	for i := 0; i < 20; i++ {
		if got := p.Act(0); got != "b" {
			t.Fatalf("high precision must lock onto the cheapest action, got %q", got)
		}
	}
}

func TestActZeroPrecisionUniform(t *testing.T) {
	p := costPlanner(map[string]float64{"a": 100, "b": 0, "c": 100}, 11)
	p.Precision = 0

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		seen[p.Act(0)]++
	}
	for _, a := range p.Actions {
		if seen[a] == 0 {
			t.Fatalf("beta=0 should sample every action; %q never drawn (%v)", a, seen)
		}
	}
}

func TestActNegativePrecisionClampedToZero(t *testing.T) {
	p := costPlanner(map[string]float64{"a": 100, "b": 0, "c": 100}, 12)
	p.Precision = -5

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		seen[p.Act(0)]++
	}
	if seen["a"] == 0 || seen["c"] == 0 {
		t.Fatalf("negative precision should behave as uniform, got %v", seen)
	}
}

func TestActHorizonClampedToOne(t *testing.T) {
	p := costPlanner(map[string]float64{"a": 1, "b": 1, "c": 1}, 8)
	p.Horizon = 0

	action := p.Act(0)
	found := false
	for _, a := range p.Actions {
		if a == action {
			found = true
		}
	}
	if !found {
		t.Fatalf("clamped horizon returned unknown action %q", action)
	}
}

func TestMultiStepPlanningAvoidsDelayedCost(t *testing.T) {
	// Costs accumulate through the carried belief, so policies containing
	// any "a" fall behind pure-"b" policies over two steps.
	predict := func(x float64, action string) float64 {
		if action == "a" {
			return x + 10
		}
		return x + 1
	}
	p := &Planner[float64]{
		Actions:   []string{"a", "b"},
		Predict:   predict,
		Score:     func(x float64) float64 { return x },
		Horizon:   2,
		Precision: 50,
		Rand:      rng.New(21),
	}

	for i := 0; i < 10; i++ {
		if got := p.Act(0); got != "b" {
			t.Fatalf("two-step planner should open with %q, got %q", "b", got)
		}
	}
}

func TestBeamWidthPruningKeepsBest(t *testing.T) {
	p := costPlanner(map[string]float64{"a": 0, "b": 1, "c": 2}, 17)
	p.Horizon = 3
	p.Precision = 50
	p.BeamWidth = 2

	// With width 2 the all-"a" prefix always survives pruning.
	for i := 0; i < 10; i++ {
		if got := p.Act(0); got != "a" {
			t.Fatalf("pruned search should keep the cheapest prefix, got %q", got)
		}
	}
}

func TestBeamWidthUnboundedMatchesFullEnumeration(t *testing.T) {
	full := costPlanner(map[string]float64{"a": 0, "b": 1, "c": 2}, 17)
	full.Horizon = 3
	full.Precision = 50

	wide := costPlanner(map[string]float64{"a": 0, "b": 1, "c": 2}, 17)
	wide.Horizon = 3
	wide.Precision = 50
	wide.BeamWidth = 1000 // wider than 3^3 expansions: no pruning happens

	for i := 0; i < 10; i++ {
		if full.Act(0) != wide.Act(0) {
			t.Fatal("oversized beam width must match full enumeration")
		}
	}
}

func TestHabitsBiasSelection(t *testing.T) {
	p := costPlanner(map[string]float64{"a": 1, "b": 1, "c": 1}, 29)
	p.Precision = 1
	p.Habits = map[string]float64{"c": 50}

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		seen[p.Act(0)]++
	}
	if seen["c"] <= seen["a"] || seen["c"] <= seen["b"] {
		t.Fatalf("habit weight should dominate equal-EFE actions, got %v", seen)
	}
}

func TestPlannerDeterministicForFixedSeed(t *testing.T) {
	p1 := costPlanner(map[string]float64{"a": 1, "b": 1.2, "c": 0.8}, 77)
	p2 := costPlanner(map[string]float64{"a": 1, "b": 1.2, "c": 0.8}, 77)

	for i := 0; i < 50; i++ {
		if p1.Act(0) != p2.Act(0) {
			t.Fatalf("seeded planners diverged at draw %d", i)
		}
	}
}
