// Package music provides conversions between frequency, MIDI note numbers,
// and note names under twelve-tone equal temperament with A4 = 440 Hz.
package music

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReferenceHz is the tuning reference frequency (A4).
const ReferenceHz = 440.0

// ReferenceMIDI is the MIDI note number of the tuning reference (A4).
const ReferenceMIDI = 69

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// HzFromMIDI returns the frequency of a (possibly fractional) MIDI note number.
func HzFromMIDI(midi float64) float64 {
	return ReferenceHz * math.Pow(2, (midi-ReferenceMIDI)/12)
}

// MIDIFromHz returns the fractional MIDI note number of a frequency.
// The result is NaN for non-positive frequencies.
func MIDIFromHz(hz float64) float64 {
	if hz <= 0 {
		return math.NaN()
	}
	return ReferenceMIDI + 12*math.Log2(hz/ReferenceHz)
}

// SemitoneDistance returns the signed distance in semitones from one
// frequency to another. The result is NaN if either frequency is non-positive.
func SemitoneDistance(fromHz, toHz float64) float64 {
	if fromHz <= 0 || toHz <= 0 {
		return math.NaN()
	}
	return 12 * math.Log2(toHz/fromHz)
}

// ParseNote converts a scientific pitch name such as "C3", "F#4" or "Bb2"
// to its MIDI note number.
func ParseNote(name string) (int, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return 0, fmt.Errorf("music: invalid note name %q", name)
	}

	pitchClass := -1
	for i, n := range noteNames {
		if strings.EqualFold(s[:1], n) {
			pitchClass = i
			break
		}
	}
	if pitchClass < 0 {
		return 0, fmt.Errorf("music: invalid note name %q", name)
	}

	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		pitchClass++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		pitchClass--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("music: invalid octave in note name %q", name)
	}

	return (octave+1)*12 + pitchClass, nil
}

// NoteName returns the scientific pitch name of a MIDI note number,
// e.g. 60 -> "C4", 69 -> "A4".
func NoteName(midi int) string {
	name := noteNames[((midi%12)+12)%12]
	octave := midi/12 - 1
	if midi < 0 && midi%12 != 0 {
		octave--
	}
	return fmt.Sprintf("%s%d", name, octave)
}
