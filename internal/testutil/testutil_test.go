package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicVoicePeak(t *testing.T) {
	s := DeterministicVoice(220, 44100, 0.8, 5, 2048)
	RequireFinite(t, s)
	peak := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	RequireNearlyEqual(t, peak, 0.8, 1e-12)
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	RequireSliceNearlyEqual(t, a, b, 0)
}

func TestMix(t *testing.T) {
	got := Mix([]float64{1, 2}, []float64{0.5, -2})
	RequireSliceNearlyEqual(t, got, []float64{1.5, 0}, 1e-15)
}
