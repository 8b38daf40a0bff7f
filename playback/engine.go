package playback

import "time"

// Waveform selects the oscillator shape of a scheduled tone.
type Waveform string

// Supported waveforms.
const (
	WaveformSine     Waveform = "sine"
	WaveformTriangle Waveform = "triangle"
	WaveformSquare   Waveform = "square"
	WaveformSawtooth Waveform = "sawtooth"
)

// SampleRef names a sample buffer preloaded into the host engine.
type SampleRef string

// SampleMetronomeClick is the click sample used for the count-in and the
// per-beat metronome.
const SampleMetronomeClick SampleRef = "metronome-click"

// Voice is a handle to one submitted audio event. The host engine may not
// support retracting an already-submitted event outright; FadeOut ramps its
// gain to near-zero instead, avoiding the audible click of a hard stop.
type Voice interface {
	// FadeOut ramps the voice to silence over the given duration.
	FadeOut(over time.Duration)
	// Cancel revokes the voice if it has not started, otherwise stops it.
	Cancel()
}

// Engine is the host audio engine boundary. The core never performs audio
// I/O itself; it only schedules against the engine's monotonic clock.
// Implementations must accept start times in that clock's domain.
type Engine interface {
	// ScheduleTone schedules a tone of the given frequency and waveform.
	ScheduleTone(freqHz float64, start, duration time.Duration, waveform Waveform, volume float64) (Voice, error)
	// ScheduleSample schedules playback of a preloaded sample buffer.
	ScheduleSample(ref SampleRef, start time.Duration, playbackRate float64, duration time.Duration) (Voice, error)
	// Now returns the engine's monotonic current time.
	Now() time.Duration
}
