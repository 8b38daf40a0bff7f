package playback

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Algorithm != "pyin" {
		t.Errorf("default algorithm = %q, want pyin", cfg.Algorithm)
	}
	rng, err := cfg.Range()
	if err != nil {
		t.Fatal(err)
	}
	if rng.Low != 48 || rng.High != 72 {
		t.Errorf("default range = %+v, want C3..C5", rng)
	}
	if cfg.TimeWindow() != 4*time.Second {
		t.Errorf("time window = %v, want 4s", cfg.TimeWindow())
	}
}

func TestDecodeConfigLayersOverDefaults(t *testing.T) {
	in := `
algorithm: swipe
toleranceSemitones: 0.6
rangeLow: "G2"
rangeHigh: "G4"
`
	cfg, err := DecodeConfig(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Algorithm != "swipe" {
		t.Errorf("algorithm = %q", cfg.Algorithm)
	}
	if cfg.ToleranceSemitones != 0.6 {
		t.Errorf("tolerance = %g", cfg.ToleranceSemitones)
	}
	// Untouched fields keep their defaults.
	if cfg.TempoMultiplier != 1 {
		t.Errorf("tempo multiplier = %g, want default 1", cfg.TempoMultiplier)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("sample rate = %g, want default", cfg.SampleRate)
	}
}

func TestDecodeConfigRejectsUnknownKeys(t *testing.T) {
	if _, err := DecodeConfig(strings.NewReader("reverb: 0.5\n")); err == nil {
		t.Fatal("unknown key should be rejected")
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Config{
		Algorithm:          "fft",
		NoiseGateThreshold: -1,
		SmoothingFactor:    2,
		TempoMultiplier:    0,
		ToleranceSemitones: 0,
		RangeLow:           "X1",
		RangeHigh:          "",
		TimeWindowSeconds:  0,
		CursorRatio:        1.5,
		SampleRate:         0,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{
		"unknown algorithm",
		"noiseGateThreshold",
		"smoothingFactor",
		"tempoMultiplier",
		"toleranceSemitones",
		"rangeLow",
		"rangeHigh",
		"timeWindowSeconds",
		"cursorRatio",
		"sampleRate",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q:\n%s", want, msg)
		}
	}
}

func TestRangeMustAscend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RangeLow, cfg.RangeHigh = "C5", "C3"
	if _, err := cfg.Range(); err == nil {
		t.Fatal("inverted range should fail")
	}
}
