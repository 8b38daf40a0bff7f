// Package pitch estimates the fundamental frequency of fixed-size mono
// audio frames using one of five selectable algorithms.
//
// All algorithms share the same contract: one frame in, one estimate out.
// Silence, ambiguous periodicity, and unvoiced input all collapse to an
// unvoiced estimate; there is no error distinct from "no pitch detected".
// Estimation errors only occur for contract violations such as a wrong
// frame length.
package pitch

import (
	"fmt"

	"github.com/ricardo736/voxlab-sub000/dsp/core"
	"github.com/ricardo736/voxlab-sub000/dsp/frame"
)

// Frequency search range shared by all algorithms.
const (
	MinFrequencyHz = 30.0
	MaxFrequencyHz = 2000.0
)

// Fixed acceptance thresholds per algorithm.
const (
	mpmClarityThreshold  = 0.90
	yinDipThreshold      = 0.15
	pyinDipThreshold     = 0.10
	swipeStrengthMin     = 0.01
	pyinContinuityWindow = 0.10
	pyinContinuityBonus  = 2.0
	pyinMultiplePenalty  = 0.5

	// mpmPeakRatio selects the first NSDF key maximum whose clarity reaches
	// this fraction of the highest one. Every multiple of the true period
	// scores near-identical clarity on periodic input, so the earliest
	// qualifying peak is the fundamental.
	mpmPeakRatio = 0.93

	// hpsProductMin rejects degenerate spectra. A clean tone carries only
	// the analysis noise floor at its upper harmonics, leaving a normalized
	// harmonic product far below 1; the threshold sits under the product a
	// tone at 20 dB SNR still forms.
	hpsProductMin = 1e-12
)

// Algorithm selects one of the available pitch estimation algorithms.
type Algorithm int

const (
	// AlgorithmMPM is the McLeod pitch method (NSDF peak picking).
	AlgorithmMPM Algorithm = iota
	// AlgorithmYIN is the classic YIN difference-function method.
	AlgorithmYIN
	// AlgorithmPYIN is YIN with continuity-biased candidate selection.
	// It is the default.
	AlgorithmPYIN
	// AlgorithmSWIPE evaluates log-spaced candidates by subharmonic summation.
	AlgorithmSWIPE
	// AlgorithmHPS is the harmonic product spectrum method.
	AlgorithmHPS
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = AlgorithmPYIN

// String returns the lower-case tag of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmMPM:
		return "mpm"
	case AlgorithmYIN:
		return "yin"
	case AlgorithmPYIN:
		return "pyin"
	case AlgorithmSWIPE:
		return "swipe"
	case AlgorithmHPS:
		return "hps"
	default:
		return "unknown"
	}
}

// Algorithms lists all selectable algorithms in tag order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmMPM, AlgorithmYIN, AlgorithmPYIN, AlgorithmSWIPE, AlgorithmHPS}
}

// ParseAlgorithm converts a tag (mpm|yin|pyin|swipe|hps) to an Algorithm.
func ParseAlgorithm(tag string) (Algorithm, error) {
	for _, a := range Algorithms() {
		if a.String() == tag {
			return a, nil
		}
	}
	return 0, fmt.Errorf("pitch: unknown algorithm %q (valid: mpm, yin, pyin, swipe, hps)", tag)
}

// Estimate is the result of analyzing one frame.
//
// Voiced false means no reliable pitch was found in the window; Frequency is
// 0 in that case. Loudness is the linear RMS level of the frame and is
// reported for voiced and unvoiced frames alike.
type Estimate struct {
	Frequency float64
	Loudness  float64
	Voiced    bool
}

// Estimator runs one algorithm over fixed-size frames.
//
// All scratch memory and any cross-frame state (the PYIN continuity bias) is
// owned by the Estimator instance. Estimator is not safe for concurrent use;
// it is designed to live on the audio analysis goroutine.
type Estimator struct {
	algorithm     Algorithm
	cfg           core.AnalysisConfig
	gateThreshold float64

	minLag int
	maxLag int

	// Shared lag-domain scratch (MPM, YIN, PYIN).
	lagBuf []float64

	// PYIN continuity state: last accepted period in samples, 0 when unset.
	prevPeriod float64

	swipe *swipeState
	hps   *hpsState
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithGateThreshold sets the linear RMS noise-gate threshold.
// Frames below it return an unvoiced estimate without running the algorithm.
func WithGateThreshold(threshold float64) Option {
	return func(e *Estimator) {
		if threshold >= 0 {
			e.gateThreshold = threshold
		}
	}
}

// NewEstimator creates an estimator for the given algorithm.
func NewEstimator(algorithm Algorithm, coreOpts []core.AnalysisOption, opts ...Option) (*Estimator, error) {
	cfg := core.ApplyAnalysisOptions(coreOpts...)
	if cfg.WindowSize < 64 {
		return nil, fmt.Errorf("pitch: window size too small for analysis: %d", cfg.WindowSize)
	}

	e := &Estimator{
		algorithm:     algorithm,
		cfg:           cfg,
		gateThreshold: frame.DefaultGateThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.minLag = int(cfg.SampleRate / MaxFrequencyHz)
	if e.minLag < 2 {
		e.minLag = 2
	}
	e.maxLag = int(cfg.SampleRate / MinFrequencyHz)
	if limit := cfg.WindowSize/2 - 1; e.maxLag > limit {
		e.maxLag = limit
	}
	if e.minLag >= e.maxLag {
		return nil, fmt.Errorf("pitch: window size %d cannot resolve the search range at %g Hz",
			cfg.WindowSize, cfg.SampleRate)
	}

	switch algorithm {
	case AlgorithmMPM, AlgorithmYIN, AlgorithmPYIN:
		e.lagBuf = make([]float64, e.maxLag+1)
	case AlgorithmSWIPE:
		s, err := newSwipeState(cfg.SampleRate)
		if err != nil {
			return nil, err
		}
		e.swipe = s
	case AlgorithmHPS:
		h, err := newHPSState(cfg)
		if err != nil {
			return nil, err
		}
		e.hps = h
	default:
		return nil, fmt.Errorf("pitch: unknown algorithm %d", algorithm)
	}

	return e, nil
}

// Algorithm returns the configured algorithm.
func (e *Estimator) Algorithm() Algorithm {
	return e.algorithm
}

// WindowSize returns the expected frame length in samples.
func (e *Estimator) WindowSize() int {
	return e.cfg.WindowSize
}

// Reset clears cross-frame state such as the PYIN continuity bias.
func (e *Estimator) Reset() {
	e.prevPeriod = 0
}

// Estimate analyzes one frame.
//
// The frame must have the configured window length. If its RMS level falls
// below the noise gate, the algorithm is skipped entirely and an unvoiced
// estimate carrying the loudness is returned.
func (e *Estimator) Estimate(samples []float64) (Estimate, error) {
	if len(samples) != e.cfg.WindowSize {
		return Estimate{}, fmt.Errorf("pitch: frame length must be %d: %d", e.cfg.WindowSize, len(samples))
	}

	loudness := frame.RMS(samples)
	if loudness < e.gateThreshold {
		return Estimate{Loudness: loudness}, nil
	}

	var freq float64
	switch e.algorithm {
	case AlgorithmMPM:
		freq = e.estimateMPM(samples)
	case AlgorithmYIN:
		freq = e.estimateYIN(samples)
	case AlgorithmPYIN:
		freq = e.estimatePYIN(samples)
	case AlgorithmSWIPE:
		freq = e.estimateSWIPE(samples)
	case AlgorithmHPS:
		freq = e.estimateHPS(samples)
	}

	if freq < MinFrequencyHz || freq > MaxFrequencyHz {
		return Estimate{Loudness: loudness}, nil
	}

	return Estimate{Frequency: freq, Loudness: loudness, Voiced: true}, nil
}

// parabolicOffset returns the fractional vertex offset in [-1, 1] of the
// parabola through three equally spaced samples around a peak or dip.
func parabolicOffset(y0, y1, y2 float64) float64 {
	denom := 2 * (2*y1 - y0 - y2)
	if denom == 0 {
		return 0
	}
	offset := (y2 - y0) / denom
	return core.Clamp(offset, -1, 1)
}
