package exercise

import (
	"fmt"
	"time"
)

// Direction is the transposition direction of a range traversal.
type Direction int

// Traversal directions.
const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// String returns "ascending" or "descending".
func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// EventKind identifies the kind of a compiled event.
type EventKind int

// Compiled event kinds.
const (
	KindNote EventKind = iota
	KindRest
	KindChord
)

// Event is one compiled, absolute-time entry of a pass. Events are immutable
// once compiled and ordered by StartBeat within a pass; AdvanceBeats decides
// when the next event begins, which may be before this one ends.
type Event struct {
	Kind EventKind

	// Semitone is the absolute target pitch of a note event.
	Semitone int
	// ChordSemitones are the absolute pitches sounding together in a chord
	// event, already transposed for root, root offset, and direction.
	ChordSemitones []int

	Lyric string

	StartBeat     float64
	DurationBeats float64
	AdvanceBeats  float64

	// Start and Duration are the beat values scaled to wall time at the
	// compiled tempo.
	Start    time.Duration
	Duration time.Duration
}

// End returns the time at which the event stops sounding.
func (e Event) End() time.Duration {
	return e.Start + e.Duration
}

// Pass is one compiled traversal of the pattern anchored at Root.
type Pass struct {
	Root      int
	Direction Direction
	Events    []Event

	TotalBeats float64
	// Total is TotalBeats scaled to wall time at the compiled tempo.
	Total time.Duration
}

// Compiler expands a validated definition into passes. Compilation is a pure
// function of (definition, root, direction, tempo): compiling the same pass
// twice yields identical event lists.
type Compiler struct {
	def             *Definition
	tempoMultiplier float64
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithTempoMultiplier scales playback speed; 2 plays twice as fast.
func WithTempoMultiplier(m float64) CompilerOption {
	return func(c *Compiler) {
		if m > 0 {
			c.tempoMultiplier = m
		}
	}
}

// NewCompiler validates def and creates a compiler for it.
func NewCompiler(def *Definition, opts ...CompilerOption) (*Compiler, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	c := &Compiler{def: def, tempoMultiplier: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Definition returns the compiled definition.
func (c *Compiler) Definition() *Definition {
	return c.def
}

// SecondsPerBeat returns the length of one beat at the effective tempo.
func (c *Compiler) SecondsPerBeat() float64 {
	return 60 / (c.def.TempoBPM * c.tempoMultiplier)
}

// CompilePass expands the pattern into absolute-time events anchored at
// root, walking the steps and accumulating beat time. Rests produce a rest
// event that advances time but schedules no audio.
func (c *Compiler) CompilePass(root int, direction Direction) Pass {
	spb := c.SecondsPerBeat()
	events := make([]Event, 0, len(c.def.Notes))

	currentBeat := 0.0
	for _, step := range c.def.Notes {
		ev := Event{
			Lyric:         step.Lyric,
			StartBeat:     currentBeat,
			DurationBeats: step.Duration,
			AdvanceBeats:  step.advanceBeats(),
		}

		switch step.Type {
		case StepNote:
			ev.Kind = KindNote
			ev.Semitone = root + step.Semitone
		case StepRest:
			ev.Kind = KindRest
			ev.DurationBeats = 0
		case StepChord:
			ev.Kind = KindChord
			chordRoot := root + step.RootOffset*int(direction)
			for _, interval := range step.Intervals {
				ev.ChordSemitones = append(ev.ChordSemitones, chordRoot+interval)
			}
		}

		ev.Start = secondsToDuration(ev.StartBeat * spb)
		ev.Duration = secondsToDuration(ev.DurationBeats * spb)
		events = append(events, ev)

		currentBeat += ev.AdvanceBeats
	}

	// A trailing sustained event may outlast the accumulated advance time.
	totalBeats := currentBeat
	for _, ev := range events {
		if end := ev.StartBeat + ev.DurationBeats; end > totalBeats {
			totalBeats = end
		}
	}

	return Pass{
		Root:       root,
		Direction:  direction,
		Events:     events,
		TotalBeats: totalBeats,
		Total:      secondsToDuration(totalBeats * spb),
	}
}

// Span returns the lowest and highest root-relative semitone offsets the
// pattern reaches in the given direction, chords included.
func (c *Compiler) Span(direction Direction) (low, high int) {
	first := true
	consider := func(offset int) {
		if first {
			low, high = offset, offset
			first = false
			return
		}
		if offset < low {
			low = offset
		}
		if offset > high {
			high = offset
		}
	}

	for _, step := range c.def.Notes {
		switch step.Type {
		case StepNote:
			consider(step.Semitone)
		case StepChord:
			base := step.RootOffset * int(direction)
			for _, interval := range step.Intervals {
				consider(base + interval)
			}
		}
	}
	return low, high
}

// Range is an inclusive vocal range in absolute semitones.
type Range struct {
	Low  int
	High int
}

// Traversal walks pass roots across a vocal range: up one semitone per pass
// from the low end, flipping to descending when the pattern would exceed the
// ceiling, ending when it would fall below the floor.
type Traversal struct {
	compiler *Compiler
	rng      Range
}

// Traverse creates a traversal of rng. It fails when the range is narrower
// than the pattern's span, which would make the exercise unreachable.
func (c *Compiler) Traverse(rng Range) (*Traversal, error) {
	if rng.Low > rng.High {
		return nil, fmt.Errorf("exercise: invalid range: low %d above high %d", rng.Low, rng.High)
	}
	for _, dir := range []Direction{Ascending, Descending} {
		low, high := c.Span(dir)
		if high-low > rng.High-rng.Low {
			return nil, fmt.Errorf("exercise: range of %d semitones is narrower than the pattern span of %d",
				rng.High-rng.Low, high-low)
		}
	}
	return &Traversal{compiler: c, rng: rng}, nil
}

// Start returns the first pass's root and direction: the lowest pattern
// note sits on the range floor, ascending.
func (t *Traversal) Start() (root int, direction Direction) {
	low, _ := t.compiler.Span(Ascending)
	return t.rng.Low - low, Ascending
}

// Next returns the root and direction following the given pass, or
// done=true when the traversal is complete.
func (t *Traversal) Next(root int, direction Direction) (nextRoot int, nextDirection Direction, done bool) {
	if direction == Ascending {
		next := root + 1
		_, high := t.compiler.Span(Ascending)
		if next+high <= t.rng.High {
			return next, Ascending, false
		}
		direction = Descending
	}

	next := root - 1
	low, _ := t.compiler.Span(Descending)
	if next+low < t.rng.Low {
		return 0, direction, true
	}
	return next, Descending, false
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
