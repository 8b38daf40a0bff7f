package main

import (
	"math"
	"sync"
	"time"

	"github.com/ricardo736/voxlab-sub000/playback"
)

const (
	voiceAttack  = 10 * time.Millisecond
	voiceRelease = 20 * time.Millisecond
	clickDecay   = 40 * time.Millisecond
	clickFreq    = 1760.0
)

// audioEngine satisfies playback.Engine with a software synthesizer rendered
// inside the portaudio output callback. Engine time is the number of samples
// rendered so far, which is the only clock the scheduler may trust for
// glitch-free timing.
type audioEngine struct {
	sampleRate float64

	mu     sync.Mutex
	clock  int64
	voices []*audioVoice
}

type audioVoice struct {
	engine *audioEngine

	freqHz   float64
	waveform playback.Waveform
	volume   float64
	click    bool

	startSample int64
	endSample   int64
	fadeStart   int64 // sample at which a FadeOut ramp begins, 0 when unset
	fadeEnd     int64
	cancelled   bool

	phase float64
}

func newAudioEngine(sampleRate float64) *audioEngine {
	return &audioEngine{sampleRate: sampleRate}
}

func (e *audioEngine) Now() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samplesToTime(e.clock)
}

func (e *audioEngine) ScheduleTone(freqHz float64, start, duration time.Duration, waveform playback.Waveform, volume float64) (playback.Voice, error) {
	return e.schedule(&audioVoice{
		freqHz:   freqHz,
		waveform: waveform,
		volume:   volume,
	}, start, duration), nil
}

// ScheduleSample synthesizes the metronome click instead of streaming a
// sample file; rate shifts its pitch like a playback-rate change would.
func (e *audioEngine) ScheduleSample(_ playback.SampleRef, start time.Duration, rate float64, duration time.Duration) (playback.Voice, error) {
	if rate <= 0 {
		rate = 1
	}
	return e.schedule(&audioVoice{
		freqHz: clickFreq * rate,
		volume: 0.6,
		click:  true,
	}, start, duration), nil
}

func (e *audioEngine) schedule(v *audioVoice, start, duration time.Duration) *audioVoice {
	v.engine = e
	v.startSample = e.timeToSamples(start)
	v.endSample = v.startSample + e.timeToSamples(duration)

	e.mu.Lock()
	defer e.mu.Unlock()
	if v.startSample < e.clock {
		v.startSample = e.clock
	}
	e.voices = append(e.voices, v)
	return v
}

func (v *audioVoice) FadeOut(over time.Duration) {
	e := v.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if v.fadeStart != 0 || v.cancelled {
		return
	}
	v.fadeStart = e.clock
	v.fadeEnd = e.clock + e.timeToSamples(over)
	if v.fadeEnd <= v.fadeStart {
		v.fadeEnd = v.fadeStart + 1
	}
}

func (v *audioVoice) Cancel() {
	e := v.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	v.cancelled = true
}

// render mixes all voices into out, advancing the engine clock. Runs on the
// audio callback; must not allocate or block beyond the engine mutex.
func (e *audioEngine) render(out []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range out {
		sample := 0.0
		for _, v := range e.voices {
			sample += v.render(e.clock)
		}
		out[i] = float32(clampUnit(sample))
		e.clock++
	}

	live := e.voices[:0]
	for _, v := range e.voices {
		if !v.done(e.clock) {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = live
}

func (v *audioVoice) done(clock int64) bool {
	if v.cancelled {
		return true
	}
	if v.fadeStart != 0 && clock >= v.fadeEnd {
		return true
	}
	return clock >= v.endSample
}

func (v *audioVoice) render(clock int64) float64 {
	if v.cancelled || clock < v.startSample || clock >= v.endSample {
		return 0
	}

	e := v.engine
	gain := v.volume

	// Attack/release ramps keep note boundaries click-free.
	attack := e.timeToSamples(voiceAttack)
	if d := clock - v.startSample; d < attack {
		gain *= float64(d) / float64(attack)
	}
	release := e.timeToSamples(voiceRelease)
	if d := v.endSample - clock; d < release {
		gain *= float64(d) / float64(release)
	}

	if v.fadeStart != 0 {
		if clock >= v.fadeEnd {
			return 0
		}
		gain *= float64(v.fadeEnd-clock) / float64(v.fadeEnd-v.fadeStart)
	}

	if v.click {
		// Exponential decay gives the click its percussive envelope.
		t := float64(clock-v.startSample) / e.sampleRate
		gain *= math.Exp(-t / clickDecay.Seconds())
	}

	v.phase += v.freqHz / e.sampleRate
	if v.phase >= 1 {
		v.phase -= 1
	}
	return gain * oscillate(v.waveform, v.phase)
}

func oscillate(w playback.Waveform, phase float64) float64 {
	switch w {
	case playback.WaveformTriangle:
		return 1 - 4*math.Abs(phase-0.5)
	case playback.WaveformSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case playback.WaveformSawtooth:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func (e *audioEngine) timeToSamples(d time.Duration) int64 {
	return int64(d.Seconds() * e.sampleRate)
}

func (e *audioEngine) samplesToTime(n int64) time.Duration {
	return time.Duration(float64(n) / e.sampleRate * float64(time.Second))
}
