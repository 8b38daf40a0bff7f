// Package signal generates deterministic test and synthesis signals.
//
// The harmonic tone generator approximates a sung vowel: a fundamental with
// rolled-off upper partials. It is the primary input for pitch-estimator
// accuracy tests and for the offline algorithm sweep command.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ricardo736/voxlab-sub000/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.AnalysisConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(coreOpts []core.AnalysisOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyAnalysisOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator configuration.
func (g *Generator) Config() core.AnalysisConfig {
	return g.cfg
}

// Sine generates a sine wave at freqHz.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// HarmonicTone generates a voice-like tone: a fundamental at freqHz plus
// partials with 1/n amplitude rolloff. partials counts the fundamental, so
// partials=1 is a pure sine. The result is peak-normalized to amplitude.
func (g *Generator) HarmonicTone(freqHz, amplitude float64, partials, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: harmonic tone samples must be > 0: %d", samples)
	}
	if partials < 1 {
		return nil, fmt.Errorf("signal: harmonic tone needs at least 1 partial: %d", partials)
	}

	nyquist := g.cfg.SampleRate / 2
	out := make([]float64, samples)
	for h := 1; h <= partials; h++ {
		f := freqHz * float64(h)
		if f >= nyquist {
			break
		}
		step := 2 * math.Pi * f / g.cfg.SampleRate
		gain := 1 / float64(h)
		for i := range out {
			out[i] += gain * math.Sin(step*float64(i))
		}
	}
	return Normalize(out, amplitude)
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("signal: noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Mix sums signals sample by sample into a new slice sized to the shortest input.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	n := len(signals[0])
	for _, s := range signals[1:] {
		if len(s) < n {
			n = len(s)
		}
	}
	out := make([]float64, n)
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// Normalize scales data to the target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("signal: normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("signal: normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		if av := math.Abs(v); av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}
