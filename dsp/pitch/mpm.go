package pitch

// McLeod pitch method: normalized square-difference function (NSDF) with
// positive-slope zero-crossing peak picking.
//
// Reference: McLeod & Wyvill, "A smarter way to find pitch" (2005).

// estimateMPM returns the detected frequency or 0 when no peak reaches the
// clarity threshold.
func (e *Estimator) estimateMPM(samples []float64) float64 {
	nsdf := e.lagBuf
	n := len(samples)

	for tau := 0; tau <= e.maxLag; tau++ {
		var acf, norm float64
		for i := 0; i < n-tau; i++ {
			a := samples[i]
			b := samples[i+tau]
			acf += a * b
			norm += a*a + b*b
		}
		if norm == 0 {
			nsdf[tau] = 0
			continue
		}
		nsdf[tau] = 2 * acf / norm
	}

	// Key maxima: skip the initial lobe around tau=0, then record the
	// maximum between each positive- and negative-going zero crossing.
	// First pass finds the highest key maximum.
	highest := 0.0
	pastLobe := false
	peakVal := 0.0

	for tau := e.minLag; tau <= e.maxLag; tau++ {
		v := nsdf[tau]
		if !pastLobe {
			if v <= 0 {
				pastLobe = true
			}
			continue
		}
		if v > 0 {
			if v > peakVal {
				peakVal = v
			}
			continue
		}
		if peakVal > highest {
			highest = peakVal
		}
		peakVal = 0
	}
	if peakVal > highest {
		highest = peakVal
	}
	if highest <= 0 {
		return 0
	}

	// Second pass takes the FIRST key maximum within mpmPeakRatio of the
	// highest. The tallest peak routinely sits at a period multiple, where
	// noise tips near-identical clarities toward a deep subharmonic; the
	// earliest qualifying peak is the fundamental.
	cutoff := mpmPeakRatio * highest
	bestLag := -1
	bestVal := 0.0
	pastLobe = false
	peakLag := -1
	peakVal = 0

	for tau := e.minLag; tau <= e.maxLag; tau++ {
		v := nsdf[tau]
		if !pastLobe {
			if v <= 0 {
				pastLobe = true
			}
			continue
		}
		if v > 0 {
			if v > peakVal {
				peakVal = v
				peakLag = tau
			}
			continue
		}
		if peakLag >= 0 && peakVal >= cutoff {
			bestLag, bestVal = peakLag, peakVal
			break
		}
		peakLag = -1
		peakVal = 0
	}
	if bestLag < 0 && peakLag >= 0 && peakVal >= cutoff {
		bestLag, bestVal = peakLag, peakVal
	}

	if bestLag < 0 || bestVal < mpmClarityThreshold {
		return 0
	}

	lag := float64(bestLag)
	if bestLag > 0 && bestLag < e.maxLag {
		lag += parabolicOffset(nsdf[bestLag-1], nsdf[bestLag], nsdf[bestLag+1])
	}
	if lag <= 0 {
		return 0
	}

	return e.cfg.SampleRate / lag
}
