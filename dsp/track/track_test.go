package track

import (
	"math"
	"testing"

	"github.com/ricardo736/voxlab-sub000/dsp/pitch"
)

func voiced(hz float64) pitch.Estimate {
	return pitch.Estimate{Frequency: hz, Loudness: 0.5, Voiced: true}
}

func TestOctaveJumpRejected(t *testing.T) {
	tr := NewTracker()

	first := tr.Update(voiced(220))
	if !first.Live || first.SmoothedHz != 220 {
		t.Fatalf("seed state = %+v", first)
	}

	// 220 -> 880 is two octaves up: a detection artifact, not singing.
	jumped := tr.Update(voiced(880))
	if jumped.Live {
		t.Error("octave jump should clear Live")
	}
	if jumped.SmoothedHz != 220 || jumped.LastRawHz != 220 {
		t.Errorf("state changed on rejected jump: %+v", jumped)
	}

	// 220 -> 225 is a small step and smooths toward the new value.
	stepped := tr.Update(voiced(225))
	if !stepped.Live {
		t.Error("small step should keep Live")
	}
	want := 220*(1-DefaultSmoothing) + 225*DefaultSmoothing
	if math.Abs(stepped.SmoothedHz-want) > 1e-9 {
		t.Errorf("smoothed = %v, want %v", stepped.SmoothedHz, want)
	}
	if stepped.LastRawHz != 225 {
		t.Errorf("last raw = %v, want 225", stepped.LastRawHz)
	}
}

func TestExactlyTwelveSemitonesAccepted(t *testing.T) {
	tr := NewTracker(WithSmoothing(0))
	tr.Update(voiced(220))
	got := tr.Update(voiced(440))
	if !got.Live || got.SmoothedHz != 440 {
		t.Fatalf("one octave exactly should be accepted: %+v", got)
	}
}

func TestUnvoicedRetainsSmoothedValue(t *testing.T) {
	tr := NewTracker()
	tr.Update(voiced(330))

	got := tr.Update(pitch.Estimate{})
	if got.Live {
		t.Error("unvoiced frame should clear Live")
	}
	if got.SmoothedHz != 330 {
		t.Errorf("smoothed = %v, want 330 retained", got.SmoothedHz)
	}

	// Pitch resumes near the retained value.
	resumed := tr.Update(voiced(331))
	if !resumed.Live {
		t.Error("resumed pitch should set Live")
	}
}

func TestZeroSmoothingTracksInstantly(t *testing.T) {
	tr := NewTracker(WithSmoothing(0))
	tr.Update(voiced(200))
	got := tr.Update(voiced(210))
	if got.SmoothedHz != 210 {
		t.Errorf("smoothed = %v, want 210", got.SmoothedHz)
	}
}

func TestSmoothingConverges(t *testing.T) {
	tr := NewTracker(WithSmoothing(0.5))
	tr.Update(voiced(200))
	for i := 0; i < 50; i++ {
		tr.Update(voiced(210))
	}
	if math.Abs(tr.Current().SmoothedHz-210) > 1e-6 {
		t.Errorf("smoothed = %v, want to converge to 210", tr.Current().SmoothedHz)
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.Update(voiced(440))
	tr.Reset()

	if got := tr.Current(); got != (Tracked{}) {
		t.Fatalf("state after reset = %+v", got)
	}

	// A post-reset estimate reseeds even if far from the old pitch.
	got := tr.Update(voiced(100))
	if !got.Live || got.SmoothedHz != 100 {
		t.Fatalf("reseed state = %+v", got)
	}
}
