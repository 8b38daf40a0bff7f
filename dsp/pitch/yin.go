package pitch

// YIN: squared-difference function with cumulative-mean normalization.
//
// Reference: de Cheveigné & Kawahara, "YIN, a fundamental frequency
// estimator for speech and music" (2002).

// cumulativeDifference fills e.lagBuf with the cumulative-mean-normalized
// difference function (CMNDF) of samples for lags 0..maxLag.
func (e *Estimator) cumulativeDifference(samples []float64) []float64 {
	cmndf := e.lagBuf
	w := len(samples) / 2

	cmndf[0] = 1
	runningSum := 0.0
	for tau := 1; tau <= e.maxLag; tau++ {
		var d float64
		for i := 0; i < w; i++ {
			delta := samples[i] - samples[i+tau]
			d += delta * delta
		}
		runningSum += d
		if runningSum == 0 {
			cmndf[tau] = 1
		} else {
			cmndf[tau] = d * float64(tau) / runningSum
		}
	}
	return cmndf
}

// refineDip applies parabolic interpolation around a CMNDF dip.
func (e *Estimator) refineDip(cmndf []float64, tau int) float64 {
	lag := float64(tau)
	if tau > 0 && tau < e.maxLag {
		lag += parabolicOffset(cmndf[tau-1], cmndf[tau], cmndf[tau+1])
	}
	return lag
}

// estimateYIN returns the detected frequency or 0 when no dip falls below
// the acceptance threshold.
func (e *Estimator) estimateYIN(samples []float64) float64 {
	cmndf := e.cumulativeDifference(samples)

	// First dip under the threshold, walked forward to its local minimum.
	tau := -1
	for t := e.minLag; t <= e.maxLag; t++ {
		if cmndf[t] < yinDipThreshold {
			for t+1 <= e.maxLag && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0
	}

	lag := e.refineDip(cmndf, tau)
	if lag <= 0 {
		return 0
	}

	return e.cfg.SampleRate / lag
}
