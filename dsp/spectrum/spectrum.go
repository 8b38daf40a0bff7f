// Package spectrum provides the frequency-domain primitives behind the
// spectral pitch estimators: a reusable FFT magnitude analyzer and a
// Goertzel probe for off-grid frequencies.
package spectrum

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Analyzer computes magnitude spectra of real input frames using a fixed
// FFT size. Frames shorter than the FFT size are zero-padded, which is how
// the harmonic-product estimator gains sub-bin resolution.
//
// All scratch memory is allocated once; Magnitudes performs no allocations
// in steady state. Analyzer is not safe for concurrent use.
type Analyzer struct {
	size int
	plan *algofft.Plan[complex128]

	timeBuf []complex128
	freqBuf []complex128
	re      []float64
	im      []float64
}

// NewAnalyzer creates an analyzer with the given FFT size (a power of two).
func NewAnalyzer(fftSize int) (*Analyzer, error) {
	if fftSize <= 0 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("spectrum: fft size must be a positive power of two: %d", fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	return &Analyzer{
		size:    fftSize,
		plan:    plan,
		timeBuf: make([]complex128, fftSize),
		freqBuf: make([]complex128, fftSize),
		re:      make([]float64, fftSize/2+1),
		im:      make([]float64, fftSize/2+1),
	}, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int {
	return a.size
}

// Bins returns the number of non-redundant magnitude bins (size/2 + 1).
func (a *Analyzer) Bins() int {
	return a.size/2 + 1
}

// BinToHz converts a (possibly fractional) bin index to a frequency.
func (a *Analyzer) BinToHz(bin, sampleRate float64) float64 {
	return bin * sampleRate / float64(a.size)
}

// Magnitudes fills dst with |X[k]| for bins 0..size/2 of frame.
// frame must not be longer than the FFT size; dst must have length Bins().
func (a *Analyzer) Magnitudes(dst, frame []float64) error {
	if len(frame) > a.size {
		return fmt.Errorf("spectrum: frame length %d exceeds fft size %d", len(frame), a.size)
	}
	if len(dst) != a.Bins() {
		return fmt.Errorf("spectrum: dst length must be %d: %d", a.Bins(), len(dst))
	}

	for i := range a.timeBuf {
		if i < len(frame) {
			a.timeBuf[i] = complex(frame[i], 0)
		} else {
			a.timeBuf[i] = 0
		}
	}

	if err := a.plan.Forward(a.freqBuf, a.timeBuf); err != nil {
		return fmt.Errorf("spectrum: forward FFT: %w", err)
	}

	for i := range a.re {
		a.re[i] = real(a.freqBuf[i])
		a.im[i] = imag(a.freqBuf[i])
	}
	vecmath.Magnitude(dst, a.re, a.im)

	return nil
}
