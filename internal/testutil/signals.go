package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicVoice generates a voice-like tone: the fundamental plus
// harmonics with a 1/n amplitude rolloff, peak-normalized to amplitude.
// Harmonics at or above Nyquist are skipped.
func DeterministicVoice(freqHz, sampleRate, amplitude float64, harmonics, length int) []float64 {
	out := make([]float64, length)
	for n := 1; n <= harmonics; n++ {
		f := freqHz * float64(n)
		if f >= sampleRate/2 {
			break
		}
		step := 2 * math.Pi * f / sampleRate
		gain := 1 / float64(n)
		for i := range out {
			out[i] += gain * math.Sin(step*float64(i))
		}
	}
	peak := 0.0
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		scale := amplitude / peak
		for i := range out {
			out[i] *= scale
		}
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Mix sums the given signals sample by sample. All inputs must share one
// length.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}
