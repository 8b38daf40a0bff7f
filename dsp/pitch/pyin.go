package pitch

import "math"

// PYIN-style estimation: YIN's normalized difference function, but all dips
// below the threshold become candidates and selection is biased toward the
// shortest candidate period and toward continuity with the previously
// accepted pitch. This suppresses the octave flips plain YIN produces on
// sustained-note transients.

// estimatePYIN returns the detected frequency or 0 when no candidate dip
// falls below the acceptance threshold.
func (e *Estimator) estimatePYIN(samples []float64) float64 {
	cmndf := e.cumulativeDifference(samples)

	firstLag := -1
	bestLag := -1
	bestScore := 0.0

	for tau := e.minLag; tau <= e.maxLag; tau++ {
		v := cmndf[tau]
		if v >= pyinDipThreshold {
			continue
		}
		if cmndf[tau-1] < v || (tau < e.maxLag && cmndf[tau+1] < v) {
			continue // not a local minimum
		}
		if firstLag < 0 {
			firstLag = tau
		}

		// The deepest dip routinely sits at a period multiple of the
		// first one, so weight candidates against the shortest period
		// and let the continuity bias adjust from there.
		score := 1 - v
		if tau != firstLag && integerMultiple(float64(tau), float64(firstLag)) {
			score *= pyinMultiplePenalty
		}
		if e.prevPeriod > 0 {
			period := float64(tau)
			if math.Abs(period-e.prevPeriod)/e.prevPeriod <= pyinContinuityWindow {
				score *= pyinContinuityBonus
			} else if integerMultiple(period, e.prevPeriod) {
				score *= pyinMultiplePenalty
			}
		}

		if score > bestScore {
			bestScore = score
			bestLag = tau
		}
	}

	if bestLag < 0 {
		return 0
	}

	lag := e.refineDip(cmndf, bestLag)
	if lag <= 0 {
		return 0
	}

	e.prevPeriod = lag
	return e.cfg.SampleRate / lag
}

// integerMultiple reports whether the larger of two periods sits within 10%
// of an integer multiple (2:1, 3:1, ...) of the smaller.
func integerMultiple(a, b float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	ratio := a / b
	if ratio < 1 {
		ratio = 1 / ratio
	}
	m := math.Round(ratio)
	if m < 2 {
		return false
	}
	return math.Abs(ratio-m) <= pyinContinuityWindow*m
}
