package frame

import (
	"math"
	"testing"

	"github.com/ricardo736/voxlab-sub000/dsp/core"
	"github.com/ricardo736/voxlab-sub000/internal/testutil"
)

func TestAccumulatorEmitsAcrossChunkBoundaries(t *testing.T) {
	acc := NewAccumulator(core.WithWindowSize(8))

	var frames [][]float64
	emit := func(frame []float64) {
		cp := make([]float64, len(frame))
		copy(cp, frame)
		frames = append(frames, cp)
	}

	// 20 samples in uneven chunks: 3 + 9 + 8 = two full frames + 4 left.
	input := make([]float64, 20)
	for i := range input {
		input[i] = float64(i)
	}
	acc.Push(input[:3], emit)
	acc.Push(input[3:12], emit)
	acc.Push(input[12:], emit)

	if len(frames) != 2 {
		t.Fatalf("emitted %d frames, want 2", len(frames))
	}
	testutil.RequireSliceNearlyEqual(t, frames[0], input[:8], 0)
	testutil.RequireSliceNearlyEqual(t, frames[1], input[8:16], 0)
}

func TestAccumulatorChunkLargerThanFrame(t *testing.T) {
	acc := NewAccumulator(core.WithWindowSize(4))

	count := 0
	acc.Push(make([]float64, 13), func([]float64) { count++ })
	if count != 3 {
		t.Fatalf("emitted %d frames, want 3", count)
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewAccumulator(core.WithWindowSize(4))
	acc.Push(make([]float64, 3), nil)
	acc.Reset()

	count := 0
	acc.Push(make([]float64, 3), func([]float64) { count++ })
	if count != 0 {
		t.Fatalf("emitted %d frames after reset, want 0", count)
	}
}

func TestAccumulatorDefaultSize(t *testing.T) {
	if got := NewAccumulator().Size(); got != 2048 {
		t.Fatalf("default size = %d, want 2048", got)
	}
}

func TestRMS(t *testing.T) {
	sine := testutil.DeterministicSine(441, 44100, 0.5, 44100)
	testutil.RequireNearlyEqual(t, RMS(sine), 0.5/math.Sqrt2, 1e-6)

	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS([]float64{0, 0, 0}); got != 0 {
		t.Fatalf("RMS(zeros) = %v, want 0", got)
	}
}

func TestBelowGate(t *testing.T) {
	quiet := testutil.DeterministicSine(220, 44100, 0.005, 2048)
	loud := testutil.DeterministicSine(220, 44100, 0.5, 2048)

	if !BelowGate(quiet, DefaultGateThreshold) {
		t.Error("quiet signal should be below the gate")
	}
	if BelowGate(loud, DefaultGateThreshold) {
		t.Error("loud signal should pass the gate")
	}
}
