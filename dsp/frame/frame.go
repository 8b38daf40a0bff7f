// Package frame accumulates a continuous mono sample stream into fixed-size
// analysis windows and provides the RMS noise gate that decides whether a
// window is worth analyzing at all.
package frame

import (
	"math"

	"github.com/ricardo736/voxlab-sub000/dsp/core"
)

// DefaultGateThreshold is the default linear RMS level below which a frame
// is treated as silence.
const DefaultGateThreshold = 0.01

// Accumulator collects arbitrary-size input chunks into fixed-length frames.
//
// The slice passed to the emit callback aliases internal storage and is valid
// only until the next Push call; analysis must complete (or copy) before then.
// Accumulator is not safe for concurrent use; it is designed to live entirely
// on the audio capture goroutine.
type Accumulator struct {
	frame  []float64
	filled int
}

// NewAccumulator creates an accumulator emitting frames of the configured
// window size (default 2048 samples).
func NewAccumulator(opts ...core.AnalysisOption) *Accumulator {
	cfg := core.ApplyAnalysisOptions(opts...)
	return &Accumulator{
		frame: make([]float64, cfg.WindowSize),
	}
}

// Size returns the frame length in samples.
func (a *Accumulator) Size() int {
	return len(a.frame)
}

// Push appends samples and invokes emit once for every completed frame.
func (a *Accumulator) Push(samples []float64, emit func(frame []float64)) {
	for len(samples) > 0 {
		n := copy(a.frame[a.filled:], samples)
		a.filled += n
		samples = samples[n:]

		if a.filled == len(a.frame) {
			a.filled = 0
			if emit != nil {
				emit(a.frame)
			}
		}
	}
}

// Reset discards any partially accumulated frame.
func (a *Accumulator) Reset() {
	a.filled = 0
}

// RMS returns the root-mean-square level of samples, 0 for an empty slice.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// BelowGate reports whether the frame's RMS level falls under threshold.
func BelowGate(samples []float64, threshold float64) bool {
	return RMS(samples) < threshold
}
