package exercise

import (
	"reflect"
	"testing"
	"time"
)

func noteStep(semitone int, duration float64) Step {
	return Step{Type: StepNote, Semitone: semitone, Duration: duration}
}

func simpleDefinition(steps ...Step) *Definition {
	return &Definition{ExerciseID: "test", TempoBPM: 60, Notes: steps}
}

func TestCompilePassTiming(t *testing.T) {
	// At 60 BPM: note 1 beat, rest 0.5 beats, note 1 beat.
	def := simpleDefinition(
		noteStep(0, 1),
		Step{Type: StepRest, Duration: 0.5},
		noteStep(4, 1),
	)
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}

	pass := c.CompilePass(60, Ascending)
	if len(pass.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(pass.Events))
	}

	if pass.Events[0].Start != 0 || pass.Events[0].Duration != time.Second {
		t.Errorf("first note start %v duration %v", pass.Events[0].Start, pass.Events[0].Duration)
	}
	if pass.Events[2].Start != 1500*time.Millisecond {
		t.Errorf("second note starts at %v, want 1.5s", pass.Events[2].Start)
	}
	if pass.Total != 2500*time.Millisecond {
		t.Errorf("total %v, want 2.5s", pass.Total)
	}

	// Rests advance time but never sound.
	if pass.Events[1].Kind != KindRest || pass.Events[1].Duration != 0 {
		t.Errorf("rest event = %+v", pass.Events[1])
	}

	if pass.Events[0].Semitone != 60 || pass.Events[2].Semitone != 64 {
		t.Errorf("transposed semitones %d, %d", pass.Events[0].Semitone, pass.Events[2].Semitone)
	}
}

func TestCompilePassIdempotent(t *testing.T) {
	def := simpleDefinition(noteStep(0, 1), noteStep(2, 0.5), noteStep(4, 1))
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}

	a := c.CompilePass(55, Descending)
	b := c.CompilePass(55, Descending)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated compilation differs:\n%+v\n%+v", a, b)
	}
}

func TestCompilePassSustainedChord(t *testing.T) {
	adv := 0.0
	def := simpleDefinition(
		Step{Type: StepChord, Intervals: []int{0, 4, 7}, Duration: 2, Advance: &adv},
		noteStep(0, 1),
	)
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}

	pass := c.CompilePass(60, Ascending)
	chord, note := pass.Events[0], pass.Events[1]

	// The chord rings under the note that follows it.
	if chord.Start != 0 || note.Start != 0 {
		t.Errorf("chord %v, note %v should both start at 0", chord.Start, note.Start)
	}
	if want := []int{60, 64, 67}; !reflect.DeepEqual(chord.ChordSemitones, want) {
		t.Errorf("chord semitones %v, want %v", chord.ChordSemitones, want)
	}

	// The sustained chord outlasts the advance-based timeline.
	if pass.TotalBeats != 2 {
		t.Errorf("total beats %g, want 2 (chord tail)", pass.TotalBeats)
	}
}

func TestCompilePassChordDirection(t *testing.T) {
	def := simpleDefinition(
		Step{Type: StepChord, Intervals: []int{0, 3}, RootOffset: 5, Duration: 1},
	)
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}

	up := c.CompilePass(60, Ascending).Events[0].ChordSemitones
	if want := []int{65, 68}; !reflect.DeepEqual(up, want) {
		t.Errorf("ascending chord %v, want %v", up, want)
	}

	down := c.CompilePass(60, Descending).Events[0].ChordSemitones
	if want := []int{55, 58}; !reflect.DeepEqual(down, want) {
		t.Errorf("descending chord %v, want %v", down, want)
	}
}

func TestTempoMultiplier(t *testing.T) {
	def := simpleDefinition(noteStep(0, 1))
	c, err := NewCompiler(def, WithTempoMultiplier(2))
	if err != nil {
		t.Fatal(err)
	}
	if got := c.SecondsPerBeat(); got != 0.5 {
		t.Errorf("seconds per beat = %g, want 0.5", got)
	}
	if got := c.CompilePass(60, Ascending).Total; got != 500*time.Millisecond {
		t.Errorf("total = %v, want 0.5s", got)
	}
}

func TestSpan(t *testing.T) {
	def := simpleDefinition(
		noteStep(-2, 1),
		noteStep(7, 1),
		Step{Type: StepChord, Intervals: []int{0, 4}, RootOffset: 3, Duration: 1},
		Step{Type: StepRest, Duration: 1},
	)
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}

	low, high := c.Span(Ascending)
	if low != -2 || high != 7 {
		t.Errorf("ascending span = [%d, %d], want [-2, 7]", low, high)
	}

	// Descending mirrors the chord root offset: 0 + [-3, 1].
	low, high = c.Span(Descending)
	if low != -3 || high != 7 {
		t.Errorf("descending span = [%d, %d], want [-3, 7]", low, high)
	}
}

func TestTraversalPassCount(t *testing.T) {
	// Pattern spanning 7 semitones across a 24-semitone range: the root can
	// sit at 18 ascending positions before the top note leaves the range.
	def := simpleDefinition(noteStep(0, 1), noteStep(7, 1))
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := c.Traverse(Range{Low: 48, High: 72})
	if err != nil {
		t.Fatal(err)
	}

	root, dir := tr.Start()
	if root != 48 || dir != Ascending {
		t.Fatalf("start = %d %v, want 48 ascending", root, dir)
	}

	ascending := 0
	total := 0
	for done := false; !done; {
		if dir == Ascending {
			ascending++
		}
		total++
		if total > 100 {
			t.Fatal("traversal does not terminate")
		}
		root, dir, done = tr.Next(root, dir)
	}

	if ascending != 18 {
		t.Errorf("ascending passes = %d, want 18", ascending)
	}
	// Descending revisits every root from 64 down to 48.
	if total != 35 {
		t.Errorf("total passes = %d, want 35", total)
	}
}

func TestTraverseRejectsNarrowRange(t *testing.T) {
	def := simpleDefinition(noteStep(0, 1), noteStep(12, 1))
	c, err := NewCompiler(def)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Traverse(Range{Low: 60, High: 65}); err == nil {
		t.Fatal("range narrower than the pattern span should fail")
	}
	if _, err := c.Traverse(Range{Low: 65, High: 60}); err == nil {
		t.Fatal("inverted range should fail")
	}
}

func TestNewCompilerValidates(t *testing.T) {
	if _, err := NewCompiler(&Definition{}); err == nil {
		t.Fatal("invalid definition should fail compilation")
	}
}
