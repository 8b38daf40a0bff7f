// Package exercise defines the declarative vocal-exercise format and
// compiles it into absolute-time event lists, one transposed pass at a time.
package exercise

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StepType identifies one entry of an exercise pattern.
type StepType string

// Valid step types.
const (
	StepNote  StepType = "note"
	StepRest  StepType = "rest"
	StepChord StepType = "chord"
)

// Step is one root-relative entry of an exercise pattern. Durations are in
// beats. Advance, when set, overrides Duration for timeline advancement
// only, so a sustained chord can ring under the steps that follow it.
type Step struct {
	Type       StepType `yaml:"type" json:"type"`
	Semitone   int      `yaml:"semitone,omitempty" json:"semitone,omitempty"`
	Intervals  []int    `yaml:"intervals,omitempty" json:"intervals,omitempty"`
	RootOffset int      `yaml:"rootOffset,omitempty" json:"rootOffset,omitempty"`
	Duration   float64  `yaml:"duration" json:"duration"`
	Advance    *float64 `yaml:"advance,omitempty" json:"advance,omitempty"`
	Lyric      string   `yaml:"lyric,omitempty" json:"lyric,omitempty"`
}

// Definition is the externally authored exercise format, accepted verbatim.
type Definition struct {
	ExerciseID    string  `yaml:"exerciseId" json:"exerciseId"`
	TempoBPM      float64 `yaml:"tempoBpm" json:"tempoBpm"`
	TimeSignature string  `yaml:"timeSignature,omitempty" json:"timeSignature,omitempty"`
	Notes         []Step  `yaml:"notes" json:"notes"`
}

// Load reads and validates a YAML exercise definition from path.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("exercise: open %q: %w", path, err)
	}
	defer f.Close()

	def, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("exercise: parse %q: %w", path, err)
	}
	return def, nil
}

// Decode parses a YAML exercise definition from r and validates the result.
func Decode(r io.Reader) (*Definition, error) {
	def := &Definition{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(def); err != nil {
		return nil, fmt.Errorf("exercise: decode yaml: %w", err)
	}
	if err := Validate(def); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate checks that def is playable. It returns a joined error listing
// every problem found, so malformed definitions fail fast and completely
// before anything is scheduled.
func Validate(def *Definition) error {
	var errs []error

	if def.ExerciseID == "" {
		errs = append(errs, errors.New("exerciseId must not be empty"))
	}
	if def.TempoBPM <= 0 {
		errs = append(errs, fmt.Errorf("tempoBpm must be > 0: %g", def.TempoBPM))
	}
	if len(def.Notes) == 0 {
		errs = append(errs, errors.New("notes must not be empty"))
	}

	for i, step := range def.Notes {
		switch step.Type {
		case StepNote, StepRest, StepChord:
		case "":
			errs = append(errs, fmt.Errorf("notes[%d]: missing type", i))
			continue
		default:
			errs = append(errs, fmt.Errorf("notes[%d]: unknown type %q", i, step.Type))
			continue
		}

		if step.Duration <= 0 {
			errs = append(errs, fmt.Errorf("notes[%d]: duration must be > 0: %g", i, step.Duration))
		}
		if step.Advance != nil && *step.Advance < 0 {
			errs = append(errs, fmt.Errorf("notes[%d]: advance must be >= 0: %g", i, *step.Advance))
		}
		if step.Type == StepChord && len(step.Intervals) == 0 {
			errs = append(errs, fmt.Errorf("notes[%d]: chord requires intervals", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("exercise: invalid definition: %w", errors.Join(errs...))
	}
	return nil
}

// advanceBeats returns the timeline advancement of a step.
func (s Step) advanceBeats() float64 {
	if s.Advance != nil {
		return *s.Advance
	}
	return s.Duration
}
