package playback

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ricardo736/voxlab-sub000/dsp/frame"
	"github.com/ricardo736/voxlab-sub000/dsp/pitch"
	"github.com/ricardo736/voxlab-sub000/dsp/track"
	"github.com/ricardo736/voxlab-sub000/exercise"
	"github.com/ricardo736/voxlab-sub000/music"
)

// Config carries the user-tunable session parameters. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// Algorithm selects the pitch detection algorithm by tag
	// (mpm, yin, pyin, swipe, hps).
	Algorithm string `yaml:"algorithm" json:"algorithm"`
	// NoiseGateThreshold is the linear RMS level below which frames are
	// treated as silence.
	NoiseGateThreshold float64 `yaml:"noiseGateThreshold" json:"noiseGateThreshold"`
	// SmoothingFactor is the pitch display smoothing k in [0, 1];
	// 0 follows the raw pitch instantly.
	SmoothingFactor float64 `yaml:"smoothingFactor" json:"smoothingFactor"`
	// TempoMultiplier scales every exercise tempo (0.5 = half speed).
	TempoMultiplier float64 `yaml:"tempoMultiplier" json:"tempoMultiplier"`
	// ToleranceSemitones is the hit tolerance band half-width.
	ToleranceSemitones float64 `yaml:"toleranceSemitones" json:"toleranceSemitones"`
	// RangeLow and RangeHigh bound the vocal range as note names ("C3").
	RangeLow  string `yaml:"rangeLow" json:"rangeLow"`
	RangeHigh string `yaml:"rangeHigh" json:"rangeHigh"`
	// TimeWindowSeconds and CursorRatio control the scheduling lookahead:
	// horizon = window * ratio.
	TimeWindowSeconds float64 `yaml:"timeWindowSeconds" json:"timeWindowSeconds"`
	CursorRatio       float64 `yaml:"cursorRatio" json:"cursorRatio"`
	// SampleRate of the incoming microphone stream in Hz.
	SampleRate float64 `yaml:"sampleRate" json:"sampleRate"`
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm:          pitch.DefaultAlgorithm.String(),
		NoiseGateThreshold: frame.DefaultGateThreshold,
		SmoothingFactor:    track.DefaultSmoothing,
		TempoMultiplier:    1.0,
		ToleranceSemitones: DefaultToleranceSemitones,
		RangeLow:           "C3",
		RangeHigh:          "C5",
		TimeWindowSeconds:  defaultTimeWindow.Seconds(),
		CursorRatio:        defaultCursorRatio,
		SampleRate:         44100,
	}
}

// LoadConfig reads a YAML session config from path, layered over the
// defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("playback: open config: %w", err)
	}
	defer f.Close()

	cfg, err := DecodeConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("playback: config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes a YAML session config from r, layered over the
// defaults. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := pitch.ParseAlgorithm(c.Algorithm); err != nil {
		errs = append(errs, err)
	}
	if c.NoiseGateThreshold < 0 {
		errs = append(errs, errors.New("noiseGateThreshold must not be negative"))
	}
	if c.SmoothingFactor < 0 || c.SmoothingFactor > 1 {
		errs = append(errs, errors.New("smoothingFactor must be within [0, 1]"))
	}
	if c.TempoMultiplier <= 0 {
		errs = append(errs, errors.New("tempoMultiplier must be positive"))
	}
	if c.ToleranceSemitones <= 0 {
		errs = append(errs, errors.New("toleranceSemitones must be positive"))
	}
	if _, err := music.ParseNote(c.RangeLow); err != nil {
		errs = append(errs, fmt.Errorf("rangeLow: %w", err))
	}
	if _, err := music.ParseNote(c.RangeHigh); err != nil {
		errs = append(errs, fmt.Errorf("rangeHigh: %w", err))
	}
	if c.TimeWindowSeconds <= 0 {
		errs = append(errs, errors.New("timeWindowSeconds must be positive"))
	}
	if c.CursorRatio <= 0 || c.CursorRatio > 1 {
		errs = append(errs, errors.New("cursorRatio must be within (0, 1]"))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, errors.New("sampleRate must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("playback: invalid config: %w", err)
	}
	return nil
}

// Range resolves the configured note names into a semitone range.
func (c Config) Range() (exercise.Range, error) {
	low, err := music.ParseNote(c.RangeLow)
	if err != nil {
		return exercise.Range{}, fmt.Errorf("playback: rangeLow: %w", err)
	}
	high, err := music.ParseNote(c.RangeHigh)
	if err != nil {
		return exercise.Range{}, fmt.Errorf("playback: rangeHigh: %w", err)
	}
	if low >= high {
		return exercise.Range{}, fmt.Errorf("playback: vocal range %s..%s is empty", c.RangeLow, c.RangeHigh)
	}
	return exercise.Range{Low: low, High: high}, nil
}

// TimeWindow returns the scheduling time window as a duration.
func (c Config) TimeWindow() time.Duration {
	return secondsToDuration(c.TimeWindowSeconds)
}
