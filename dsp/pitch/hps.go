package pitch

import (
	"math"

	"github.com/ricardo736/voxlab-sub000/dsp/core"
	"github.com/ricardo736/voxlab-sub000/dsp/spectrum"
	"github.com/ricardo736/voxlab-sub000/dsp/window"
)

// Harmonic product spectrum: the magnitude spectrum is multiplied with its
// 2x, 3x and 4x downsampled copies; harmonics of the fundamental line up and
// reinforce each other while spurious peaks do not.

const (
	hpsDownsampleFactors = 4

	// On a clean tone a subharmonic bin forms the same product as the
	// fundamental's own: each collects one real harmonic and three noise
	// bins. The tie is broken toward the multiple that actually carries
	// the spectral energy.
	hpsTieRatio        = 0.01
	hpsTiePeakFraction = 0.5
)

type hpsState struct {
	analyzer *spectrum.Analyzer
	coeffs   []float64
	windowed []float64
	mags     []float64
	product  []float64
	minBin   int
	maxBin   int
}

func newHPSState(cfg core.AnalysisConfig) (*hpsState, error) {
	// Zero-padding to twice the window size sharpens bin resolution before
	// the product is formed.
	fftSize := cfg.WindowSize * 2
	analyzer, err := spectrum.NewAnalyzer(fftSize)
	if err != nil {
		return nil, err
	}

	h := &hpsState{
		analyzer: analyzer,
		coeffs:   window.Generate(window.TypeHann, cfg.WindowSize),
		windowed: make([]float64, cfg.WindowSize),
		mags:     make([]float64, analyzer.Bins()),
		product:  make([]float64, analyzer.Bins()),
	}

	h.minBin = int(MinFrequencyHz * float64(fftSize) / cfg.SampleRate)
	if h.minBin < 1 {
		h.minBin = 1
	}
	h.maxBin = int(MaxFrequencyHz * float64(fftSize) / cfg.SampleRate)
	if limit := (analyzer.Bins() - 1) / hpsDownsampleFactors; h.maxBin > limit {
		h.maxBin = limit
	}

	return h, nil
}

// estimateHPS returns the detected frequency or 0 when the strongest
// harmonic product stays below the acceptance threshold.
func (e *Estimator) estimateHPS(samples []float64) float64 {
	h := e.hps

	copy(h.windowed, samples)
	if err := window.ApplyInPlace(h.windowed, h.coeffs); err != nil {
		return 0
	}
	if err := h.analyzer.Magnitudes(h.mags, h.windowed); err != nil {
		return 0
	}

	// Normalize so the product threshold is gain-independent.
	peak := 0.0
	for _, m := range h.mags {
		if m > peak {
			peak = m
		}
	}
	if peak == 0 {
		return 0
	}

	bestBin := -1
	bestProduct := 0.0
	for b := h.minBin; b <= h.maxBin; b++ {
		p := 1.0
		for d := 1; d <= hpsDownsampleFactors; d++ {
			p *= h.mags[b*d] / peak
		}
		h.product[b] = p
		if p > bestProduct {
			bestProduct = p
			bestBin = b
		}
	}

	if bestBin < 0 || bestProduct < hpsProductMin {
		return 0
	}

	// Subharmonic tie-break: prefer the highest multiple of the winning
	// bin that is itself a significant spectral line with a comparable
	// product. A noise bin never qualifies on magnitude, a real harmonic
	// of a richer tone never qualifies on product.
	for k := hpsDownsampleFactors; k >= 2; k-- {
		mb := bestBin * k
		if mb > h.maxBin {
			continue
		}
		if h.mags[mb] >= hpsTiePeakFraction*peak && h.product[mb] >= bestProduct*hpsTieRatio {
			bestBin = mb
			break
		}
	}

	// Refine on the fundamental's own magnitude lobe. The product's noise
	// terms would dominate a parabolic fit for clean tones, while the
	// windowed main lobe around the winning bin is smooth.
	bin := float64(bestBin)
	if bestBin > 1 && bestBin < len(h.mags)-1 &&
		h.mags[bestBin-1] > 0 && h.mags[bestBin] > 0 && h.mags[bestBin+1] > 0 {
		bin += parabolicOffset(
			math.Log(h.mags[bestBin-1]),
			math.Log(h.mags[bestBin]),
			math.Log(h.mags[bestBin+1]),
		)
	}

	return h.analyzer.BinToHz(bin, e.cfg.SampleRate)
}
