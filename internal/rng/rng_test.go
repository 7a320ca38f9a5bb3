package rng

import (
	"math"
	"testing"
)

func TestFloat64Range(t *testing.T) {
	s := New(42)
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, v)
		}
	}
}

func TestDeterminismAcrossInstances(t *testing.T) {
	a := New(1234)
	b := New(1234)
	for i := 0; i < 100; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("draw %d diverged: %v vs %v", i, av, bv)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical sequences")
	}
}

func TestResetRestoresSequence(t *testing.T) {
	s := New(99)
	first := make([]float64, 20)
	for i := range first {
		first[i] = s.Float64()
	}

	// Mix in a Gaussian draw so the spare cache has state to clear.
	s.Norm(0, 1)

	s.Reset(99)
	for i := range first {
		if v := s.Float64(); v != first[i] {
			t.Fatalf("draw %d after reset: got %v want %v", i, v, first[i])
		}
	}
}

func TestNormRoughMoments(t *testing.T) {
	s := New(7)
	const n = 20000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := s.Norm(5, 2)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean-5) > 0.1 {
		t.Fatalf("sample mean %v too far from 5", mean)
	}
	if math.Abs(variance-4) > 0.3 {
		t.Fatalf("sample variance %v too far from 4", variance)
	}
}
