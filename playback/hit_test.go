package playback

import (
	"testing"

	"github.com/ricardo736/voxlab-sub000/dsp/track"
	"github.com/ricardo736/voxlab-sub000/music"
)

func liveAt(hz float64) track.Tracked {
	return track.Tracked{SmoothedHz: hz, LastRawHz: hz, Live: true}
}

func TestMatchesWithinTolerance(t *testing.T) {
	h := NewHitEvaluator(DefaultToleranceSemitones)
	const target = 60 // C4

	tests := []struct {
		name string
		hz   float64
		want bool
	}{
		{"exact", music.HzFromMIDI(60), true},
		{"half semitone sharp", music.HzFromMIDI(60.5), true},
		{"just inside band", music.HzFromMIDI(60.69), true},
		{"just outside band", music.HzFromMIDI(60.71), false},
		{"whole tone flat", music.HzFromMIDI(58), false},
		{"octave error", music.HzFromMIDI(72), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Matches(liveAt(tt.hz), target); got != tt.want {
				t.Errorf("Matches(%g Hz) = %v, want %v", tt.hz, got, tt.want)
			}
		})
	}
}

func TestStaleTrackingNeverMatches(t *testing.T) {
	h := NewHitEvaluator(DefaultToleranceSemitones)
	stale := track.Tracked{SmoothedHz: music.HzFromMIDI(60), Live: false}
	if h.Matches(stale, 60) {
		t.Error("a stale tracked value must not count as a hit")
	}
	if h.Matches(track.Tracked{}, 60) {
		t.Error("zero state must not count as a hit")
	}
}

func TestCustomTolerance(t *testing.T) {
	wide := NewHitEvaluator(0.8)
	narrow := NewHitEvaluator(0.6)
	probe := liveAt(music.HzFromMIDI(60.7))

	if !wide.Matches(probe, 60) {
		t.Error("0.7 semitones off should hit with a 0.8 band")
	}
	if narrow.Matches(probe, 60) {
		t.Error("0.7 semitones off should miss with a 0.6 band")
	}
}

func TestStats(t *testing.T) {
	h := NewHitEvaluator(DefaultToleranceSemitones)
	h.RecordHit()
	h.RecordHit()
	h.RecordHit()
	h.RecordMiss()

	s := h.Stats()
	if s.Hits != 3 || s.Misses != 1 {
		t.Fatalf("stats = %+v", s)
	}
	if s.Total() != 4 {
		t.Errorf("total = %d", s.Total())
	}
	if got := s.Accuracy(); got != 0.75 {
		t.Errorf("accuracy = %v, want 0.75", got)
	}

	h.Reset()
	if h.Stats().Total() != 0 {
		t.Error("reset should clear counters")
	}
}

func TestAccuracyEmpty(t *testing.T) {
	if got := (Stats{}).Accuracy(); got != 0 {
		t.Errorf("accuracy of empty stats = %v, want 0", got)
	}
}
