package pitch

import (
	"math"

	"github.com/ricardo736/voxlab-sub000/dsp/spectrum"
)

// Subharmonic summation over a fixed grid of log-spaced candidates: each
// candidate is scored by the level of its first five harmonics, probed with
// Goertzel filters so candidates need not align with FFT bins. Harmonic
// weights decay geometrically so a candidate an octave low cannot match the
// fundamental's strength on its second harmonic alone.

const (
	swipeCandidates    = 100
	swipeHarmonics     = 5
	swipeHarmonicDecay = 0.84
	swipeRefineTop     = 3
	swipeFineSteps     = 25
)

type swipeState struct {
	candidates []float64
	// probes[i] holds one Goertzel per harmonic of candidate i that fits
	// below Nyquist.
	probes [][]*spectrum.Goertzel
}

func newSwipeState(sampleRate float64) (*swipeState, error) {
	s := &swipeState{
		candidates: make([]float64, swipeCandidates),
		probes:     make([][]*spectrum.Goertzel, swipeCandidates),
	}

	logMin := math.Log2(MinFrequencyHz)
	logMax := math.Log2(MaxFrequencyHz)
	nyquist := sampleRate / 2

	for i := range s.candidates {
		x := float64(i) / float64(swipeCandidates-1)
		f := math.Exp2(logMin + x*(logMax-logMin))
		s.candidates[i] = f

		for h := 1; h <= swipeHarmonics; h++ {
			hf := f * float64(h)
			if hf >= nyquist {
				break
			}
			g, err := spectrum.NewGoertzel(hf, sampleRate)
			if err != nil {
				return nil, err
			}
			s.probes[i] = append(s.probes[i], g)
		}
	}

	return s, nil
}

// swipeCoarseStep is the log2 spacing of the candidate grid.
func swipeCoarseStep() float64 {
	return (math.Log2(MaxFrequencyHz) - math.Log2(MinFrequencyHz)) / float64(swipeCandidates-1)
}

// estimateSWIPE returns the detected frequency or 0 when no candidate
// reaches the strength threshold.
func (e *Estimator) estimateSWIPE(samples []float64) float64 {
	s := e.swipe
	n := float64(len(samples))

	// Normalize harmonic magnitudes against the frame level so the
	// acceptance threshold is independent of input gain. A full-scale sine
	// has spectral magnitude A*N/2 and RMS A/sqrt(2).
	var energy float64
	for _, v := range samples {
		energy += v * v
	}
	rms := math.Sqrt(energy / n)
	if rms == 0 {
		return 0
	}
	norm := 2 / (n * rms * math.Sqrt2)

	// Coarse pass: keep the strongest few candidates. At the top of the
	// search range the grid spacing exceeds the Goertzel main lobe, so the
	// candidate nearest the true pitch can score below a subharmonic and
	// only surface during refinement.
	var topIdx [swipeRefineTop]int
	var topStrength [swipeRefineTop]float64
	for k := range topIdx {
		topIdx[k] = -1
	}

	for i, probes := range s.probes {
		var sum, weightSum float64
		w := 1.0
		for _, g := range probes {
			g.Reset()
			g.ProcessBlock(samples)
			sum += w * g.Magnitude() * norm
			weightSum += w
			w *= swipeHarmonicDecay
		}
		if weightSum == 0 {
			continue
		}
		strength := sum / weightSum

		for k := 0; k < swipeRefineTop; k++ {
			if strength <= topStrength[k] {
				continue
			}
			copy(topStrength[k+1:], topStrength[k:])
			copy(topIdx[k+1:], topIdx[k:])
			topStrength[k] = strength
			topIdx[k] = i
			break
		}
	}

	if topIdx[0] < 0 || topStrength[0] < swipeStrengthMin {
		return 0
	}

	bestFreq := 0.0
	bestStrength := 0.0
	for k := 0; k < swipeRefineTop; k++ {
		if topIdx[k] < 0 || topStrength[k] < swipeStrengthMin {
			continue
		}
		f, strength := e.refineSWIPE(samples, s.candidates[topIdx[k]], norm)
		if strength > bestStrength {
			bestFreq, bestStrength = f, strength
		}
	}
	if bestFreq == 0 {
		return 0
	}

	// A candidate an octave below the fundamental rides on its even
	// harmonics; climb while the octave above is genuinely stronger.
	for bestFreq*2 <= MaxFrequencyHz {
		f, strength := e.refineSWIPE(samples, bestFreq*2, norm)
		if strength <= bestStrength {
			break
		}
		bestFreq, bestStrength = f, strength
	}

	return bestFreq
}

// refineSWIPE zooms in on a candidate with two fine log-spaced sweeps: the
// first spans one coarse grid interval on each side, the second one fine
// interval around that winner. The coarse spacing (~4.3%) is wider than the
// Goertzel main lobe at the top of the search range, so direct sweeps are
// more reliable there than parabolic interpolation of the coarse strengths.
func (e *Estimator) refineSWIPE(samples []float64, center, norm float64) (float64, float64) {
	step := swipeCoarseStep()
	f, strength := e.sweepSWIPE(samples, center, step, norm)
	fineStep := 2 * step / float64(swipeFineSteps-1)
	f2, s2 := e.sweepSWIPE(samples, f, fineStep, norm)
	if s2 > strength {
		return f2, s2
	}
	return f, strength
}

// sweepSWIPE evaluates swipeFineSteps log-spaced frequencies spanning
// halfSpan (in octaves) on each side of center and returns the strongest.
func (e *Estimator) sweepSWIPE(samples []float64, center, halfSpan, norm float64) (float64, float64) {
	logCenter := math.Log2(center)
	bestFreq := center
	bestStrength := 0.0
	for i := 0; i < swipeFineSteps; i++ {
		x := 2*float64(i)/float64(swipeFineSteps-1) - 1
		f := math.Exp2(logCenter + x*halfSpan)
		if f < MinFrequencyHz || f > MaxFrequencyHz {
			continue
		}
		strength := e.swipeStrengthAt(samples, f, norm)
		if strength > bestStrength {
			bestStrength = strength
			bestFreq = f
		}
	}
	return bestFreq, bestStrength
}

// swipeStrengthAt computes the subharmonic-summation strength at an
// arbitrary frequency using one-shot Goertzel probes.
func (e *Estimator) swipeStrengthAt(samples []float64, f, norm float64) float64 {
	nyquist := e.cfg.SampleRate / 2

	var sum, weightSum float64
	w := 1.0
	for h := 1; h <= swipeHarmonics; h++ {
		hf := f * float64(h)
		if hf >= nyquist {
			break
		}
		mag, err := spectrum.MagnitudeAt(samples, hf, e.cfg.SampleRate)
		if err != nil {
			break
		}
		sum += w * mag * norm
		weightSum += w
		w *= swipeHarmonicDecay
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}
