package belief

import (
	"errors"
	"math"
	"testing"
)

func mustDiscrete(t *testing.T, states []string, probs map[string]float64) *Discrete {
	t.Helper()
	d, err := NewDiscrete(states, probs)
	if err != nil {
		t.Fatalf("NewDiscrete: %v", err)
	}
	return d
}

func TestNewDiscreteValidation(t *testing.T) {
	if _, err := NewDiscrete(nil, nil); !errors.Is(err, ErrNoStates) {
		t.Fatalf("expected ErrNoStates, got %v", err)
	}
	_, err := NewDiscrete([]string{"a"}, map[string]float64{"b": 1})
	if !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestProbabilityUnknownStateZero(t *testing.T) {
	d := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 1})
	if p := d.Probability("missing"); p != 0 {
		t.Fatalf("unknown state: got %v want 0", p)
	}
}

func TestArgMaxTieBreaksToEarliestState(t *testing.T) {
	d := mustDiscrete(t, []string{"x", "y", "z"}, map[string]float64{"x": 0.4, "y": 0.4, "z": 0.2})
	if got := d.ArgMax(); got != "x" {
		t.Fatalf("tie should resolve to earliest declared state, got %q", got)
	}
}

func TestEntropyNonNegativeAndUniformMaximal(t *testing.T) {
	uniform, err := Uniform([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	peaked := mustDiscrete(t, []string{"a", "b", "c"}, map[string]float64{"a": 0.9, "b": 0.05, "c": 0.05})

	if uniform.Entropy() < 0 || peaked.Entropy() < 0 {
		t.Fatal("entropy must be non-negative")
	}
	if uniform.Entropy() <= peaked.Entropy() {
		t.Fatalf("uniform entropy %v should exceed peaked %v", uniform.Entropy(), peaked.Entropy())
	}

	point := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 1})
	if h := point.Entropy(); h != 0 {
		t.Fatalf("point mass entropy: got %v want 0", h)
	}
}

func TestKLProperties(t *testing.T) {
	p := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.7, "b": 0.3})
	q := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.4, "b": 0.6})

	if kl := p.KL(p); math.Abs(kl) > 1e-12 {
		t.Fatalf("KL(p,p) = %v, want ~0", kl)
	}
	if kl := p.KL(q); kl < 0 {
		t.Fatalf("KL must be non-negative, got %v", kl)
	}
	if math.Abs(p.KL(q)-q.KL(p)) < 1e-12 {
		t.Fatal("KL should be asymmetric for these distributions")
	}
}

func TestKLZeroSupportFloored(t *testing.T) {
	p := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.5, "b": 0.5})
	q := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 1})

	kl := p.KL(q)
	if math.IsInf(kl, 0) || math.IsNaN(kl) {
		t.Fatalf("KL with zero q support should stay finite, got %v", kl)
	}
}

func TestUpdateNormalizes(t *testing.T) {
	d := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.5, "b": 0.5})
	d.Update(map[string]float64{"a": 0.9, "b": 0.1})

	total := d.Probability("a") + d.Probability("b")
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("posterior sums to %v", total)
	}
	if d.Probability("a") <= d.Probability("b") {
		t.Fatal("likelihood should shift mass toward a")
	}
}

// An all-zero weighted sum leaves the belief unnormalized rather than
// restoring the prior or erroring.
func TestUpdateZeroLikelihoodLeavesAllZero(t *testing.T) {
	d := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.5, "b": 0.5})
	d.Update(map[string]float64{"a": 0, "b": 0})

	if d.Probability("a") != 0 || d.Probability("b") != 0 {
		t.Fatalf("expected degenerate all-zero belief, got %v", d.Export())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	d := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.5, "b": 0.5})
	c := d.Copy()
	c.Update(map[string]float64{"a": 1, "b": 0})

	if d.Probability("a") != 0.5 {
		t.Fatal("updating a copy mutated the original")
	}
}

func TestExportDetached(t *testing.T) {
	d := mustDiscrete(t, []string{"a", "b"}, map[string]float64{"a": 0.5, "b": 0.5})
	out := d.Export()
	out["a"] = 99

	if d.Probability("a") != 0.5 {
		t.Fatal("mutating the export mutated the belief")
	}
}
