package playback

import (
	"testing"

	"github.com/ricardo736/voxlab-sub000/exercise"
)

func sessionDefinition() *exercise.Definition {
	return &exercise.Definition{
		ExerciseID: "single",
		TempoBPM:   60,
		Notes:      []exercise.Step{{Type: exercise.StepNote, Duration: 1}},
	}
}

func TestNewSession(t *testing.T) {
	s, err := NewSession(&fakeEngine{}, sessionDefinition(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %v, want idle", s.State())
	}
	if s.Stats().Total() != 0 {
		t.Error("fresh session should have no stats")
	}
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = "cepstrum"
	if _, err := NewSession(&fakeEngine{}, sessionDefinition(), cfg); err == nil {
		t.Fatal("invalid config should fail")
	}
}

func TestNewSessionRejectsNarrowRange(t *testing.T) {
	def := sessionDefinition()
	def.Notes = append(def.Notes, exercise.Step{Type: exercise.StepNote, Semitone: 36, Duration: 1})
	if _, err := NewSession(&fakeEngine{}, def, DefaultConfig()); err == nil {
		t.Fatal("pattern wider than the vocal range should fail")
	}
}

func TestPushSamplesNeverBlocks(t *testing.T) {
	s, err := NewSession(&fakeEngine{}, sessionDefinition(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Nobody is draining the queue: pushing far beyond its depth must
	// drop chunks instead of blocking the caller.
	chunk := make([]float64, 256)
	for i := 0; i < sampleQueueDepth*4; i++ {
		s.PushSamples(chunk)
	}
	if got := len(s.samples); got != sampleQueueDepth {
		t.Fatalf("queued chunks = %d, want full queue of %d", got, sampleQueueDepth)
	}

	s.PushSamples(nil) // no-op
}
