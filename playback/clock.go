package playback

import "time"

// Clock is the transport clock: the single source of truth for game time,
// which is wall time minus accumulated paused time. It is a value type with
// pure transition functions so pause/resume accounting is testable without
// any real timer. Only the Scheduler mutates it; every other component
// treats game time as read-only.
type Clock struct {
	StartedAt      time.Time
	TotalPaused    time.Duration
	Paused         bool
	PauseStartedAt time.Time
}

// StartClock returns a running clock whose game time is zero at now.
func StartClock(now time.Time) Clock {
	return Clock{StartedAt: now}
}

// Pause returns the clock paused at now. Pausing a paused clock is a no-op.
func (c Clock) Pause(now time.Time) Clock {
	if c.Paused {
		return c
	}
	c.Paused = true
	c.PauseStartedAt = now
	return c
}

// Resume returns the clock running again, with the pause interval added to
// the total paused duration. Resuming a running clock is a no-op.
func (c Clock) Resume(now time.Time) Clock {
	if !c.Paused {
		return c
	}
	c.TotalPaused += now.Sub(c.PauseStartedAt)
	c.Paused = false
	c.PauseStartedAt = time.Time{}
	return c
}

// GameTime returns the elapsed game time at now. While paused, game time
// stands still at the pause point.
func (c Clock) GameTime(now time.Time) time.Duration {
	if c.Paused {
		now = c.PauseStartedAt
	}
	return now.Sub(c.StartedAt) - c.TotalPaused
}
