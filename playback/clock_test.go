package playback

import (
	"testing"
	"time"
)

func TestGameTimeAdvances(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := StartClock(t0)

	if got := c.GameTime(t0); got != 0 {
		t.Fatalf("game time at start = %v, want 0", got)
	}
	if got := c.GameTime(t0.Add(3 * time.Second)); got != 3*time.Second {
		t.Fatalf("game time = %v, want 3s", got)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := StartClock(t0)

	// Run 5s, pause for 2s, run 1s more: game time is 6s.
	c = c.Pause(t0.Add(5 * time.Second))
	c = c.Resume(t0.Add(7 * time.Second))
	if got := c.GameTime(t0.Add(8 * time.Second)); got != 6*time.Second {
		t.Fatalf("game time = %v, want 6s", got)
	}
}

func TestGameTimeFrozenWhilePaused(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := StartClock(t0).Pause(t0.Add(2 * time.Second))

	for _, wall := range []time.Duration{2 * time.Second, 10 * time.Second, time.Hour} {
		if got := c.GameTime(t0.Add(wall)); got != 2*time.Second {
			t.Fatalf("game time at +%v = %v, want frozen 2s", wall, got)
		}
	}
}

func TestRedundantTransitionsAreNoOps(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := StartClock(t0)

	// Resume while running changes nothing.
	c = c.Resume(t0.Add(time.Second))
	if got := c.GameTime(t0.Add(2 * time.Second)); got != 2*time.Second {
		t.Fatalf("game time = %v, want 2s", got)
	}

	// Pausing twice keeps the first pause point.
	c = c.Pause(t0.Add(3 * time.Second))
	c = c.Pause(t0.Add(4 * time.Second))
	if got := c.GameTime(t0.Add(5 * time.Second)); got != 3*time.Second {
		t.Fatalf("game time = %v, want 3s", got)
	}
}

func TestMultiplePauseCycles(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := StartClock(t0)

	c = c.Pause(t0.Add(1 * time.Second))
	c = c.Resume(t0.Add(2 * time.Second))
	c = c.Pause(t0.Add(4 * time.Second)) // game time 3s
	c = c.Resume(t0.Add(10 * time.Second))

	if got := c.GameTime(t0.Add(11 * time.Second)); got != 4*time.Second {
		t.Fatalf("game time = %v, want 4s", got)
	}
}
