// Package track smooths raw per-window pitch estimates into a stable
// current pitch. Voice pitch detectors occasionally jump an octave on
// transients; rejecting implausible jumps and exponentially smoothing the
// rest is cheaper and more robust than a full state-space filter at the
// semitone-level precision the exercises need.
package track

import (
	"math"

	"github.com/ricardo736/voxlab-sub000/dsp/pitch"
)

// DefaultSmoothing is the default exponential smoothing factor.
const DefaultSmoothing = 0.15

// maxJumpSemitones is the largest semitone step between consecutive raw
// estimates still treated as a genuine pitch change rather than a
// detection artifact.
const maxJumpSemitones = 12.0

// Tracked is the tracker state after one update.
//
// Live reports whether the most recent estimate carried a usable pitch;
// SmoothedHz keeps its last value across unvoiced frames so consumers can
// distinguish "signal lost" from "pitch changed" without the value zeroing.
type Tracked struct {
	SmoothedHz float64
	LastRawHz  float64
	Live       bool
}

// Tracker applies octave-jump rejection and exponential smoothing.
// It is not safe for concurrent use.
type Tracker struct {
	smoothing float64
	state     Tracked
	seeded    bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSmoothing sets the smoothing factor k in [0, 1];
// 0 means no smoothing (instant tracking).
func WithSmoothing(k float64) Option {
	return func(t *Tracker) {
		if k >= 0 && k <= 1 {
			t.smoothing = k
		}
	}
}

// NewTracker creates a tracker with the default smoothing factor.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{smoothing: DefaultSmoothing}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Update folds one raw estimate into the tracked state and returns it.
//
// Unvoiced estimates retain the previous smoothed value and clear Live.
// A voiced estimate further than 12 semitones from the last accepted raw
// frequency is discarded as an artifact, also clearing Live.
func (t *Tracker) Update(raw pitch.Estimate) Tracked {
	if !raw.Voiced || raw.Frequency <= 0 {
		t.state.Live = false
		return t.state
	}

	if !t.seeded {
		t.state = Tracked{SmoothedHz: raw.Frequency, LastRawHz: raw.Frequency, Live: true}
		t.seeded = true
		return t.state
	}

	jump := math.Abs(12 * math.Log2(raw.Frequency/t.state.LastRawHz))
	if jump > maxJumpSemitones {
		t.state.Live = false
		return t.state
	}

	k := t.smoothing
	if k == 0 {
		t.state.SmoothedHz = raw.Frequency
	} else {
		t.state.SmoothedHz = t.state.SmoothedHz*(1-k) + raw.Frequency*k
	}
	t.state.LastRawHz = raw.Frequency
	t.state.Live = true
	return t.state
}

// Current returns the tracked state without updating it.
func (t *Tracker) Current() Tracked {
	return t.state
}

// Reset clears all tracking state.
func (t *Tracker) Reset() {
	t.state = Tracked{}
	t.seeded = false
}
