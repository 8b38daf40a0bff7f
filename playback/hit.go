package playback

import (
	"math"

	"github.com/ricardo736/voxlab-sub000/dsp/track"
	"github.com/ricardo736/voxlab-sub000/music"
)

// DefaultToleranceSemitones is the default half-width of the band around a
// target pitch still counted as a match.
const DefaultToleranceSemitones = 0.7

// HitState is the evaluation state of one scheduled note.
type HitState int

// Hit states. Hit and Miss are terminal: once resolved, a note is counted
// exactly once toward the accuracy statistics.
const (
	HitUpcoming HitState = iota
	HitResolved
	MissResolved
)

// String returns "upcoming", "hit" or "miss".
func (s HitState) String() string {
	switch s {
	case HitResolved:
		return "hit"
	case MissResolved:
		return "miss"
	default:
		return "upcoming"
	}
}

// Stats accumulates resolved note outcomes for one session.
type Stats struct {
	Hits   int
	Misses int
}

// Total returns the number of resolved notes.
func (s Stats) Total() int {
	return s.Hits + s.Misses
}

// Accuracy returns the hit ratio in [0, 1], or 0 before any note resolved.
func (s Stats) Accuracy() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// HitEvaluator compares the tracked pitch against active target notes.
type HitEvaluator struct {
	tolerance float64
	stats     Stats
}

// NewHitEvaluator creates an evaluator with the given tolerance band
// half-width in semitones; non-positive values fall back to the default.
func NewHitEvaluator(toleranceSemitones float64) *HitEvaluator {
	if toleranceSemitones <= 0 {
		toleranceSemitones = DefaultToleranceSemitones
	}
	return &HitEvaluator{tolerance: toleranceSemitones}
}

// Matches reports whether the tracked pitch lies within the tolerance band
// of the target semitone. A stale (non-live) tracked value never matches.
func (h *HitEvaluator) Matches(tracked track.Tracked, targetSemitone float64) bool {
	if !tracked.Live || tracked.SmoothedHz <= 0 {
		return false
	}
	distance := math.Abs(music.MIDIFromHz(tracked.SmoothedHz) - targetSemitone)
	return distance <= h.tolerance
}

// RecordHit counts one note resolved as hit.
func (h *HitEvaluator) RecordHit() {
	h.stats.Hits++
}

// RecordMiss counts one note resolved as miss.
func (h *HitEvaluator) RecordMiss() {
	h.stats.Misses++
}

// Stats returns the accumulated outcome counts.
func (h *HitEvaluator) Stats() Stats {
	return h.stats
}

// Reset clears the accumulated statistics.
func (h *HitEvaluator) Reset() {
	h.stats = Stats{}
}
