package playback

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ricardo736/voxlab-sub000/dsp/track"
	"github.com/ricardo736/voxlab-sub000/exercise"
	"github.com/ricardo736/voxlab-sub000/music"
)

// State is the scheduler's transport state.
type State int

// Transport states.
const (
	StateIdle State = iota
	StateCountingIn
	StatePlaying
	StatePaused
	StateComplete
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountingIn:
		return "counting-in"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Callbacks notify the caller of playback progress. All fields are optional.
// Callbacks run on the goroutine driving the scheduler and must not call
// back into the Session or Scheduler.
type Callbacks struct {
	OnPitchUpdate      func(smoothedHz, loudness float64)
	OnNoteHit          func(eventID int)
	OnNoteMiss         func(eventID int)
	OnPassComplete     func(rootPitch int)
	OnExerciseComplete func()
}

const (
	defaultTimeWindow  = 4 * time.Second
	defaultCursorRatio = 0.5
	defaultToneVolume  = 0.8

	countInClicks    = 4
	clickDuration    = 50 * time.Millisecond
	pauseFadeOut     = 30 * time.Millisecond
	chordVolumeScale = 0.5
)

// scheduledEvent is one audible event bound to game time, tracked until its
// end time passes. Voices are the engine handles currently sounding it.
type scheduledEvent struct {
	id       int
	kind     exercise.EventKind
	semitone int
	chord    []int
	start    time.Duration
	end      time.Duration
	voices   []Voice
	hit      HitState
}

type scheduledClick struct {
	at    time.Duration
	voice Voice
}

type passRecord struct {
	root int
	end  time.Duration
}

// Scheduler owns the transport clock and converts compiled passes into
// engine submissions ahead of real time.
//
// It never schedules further ahead than the lookahead horizon (time window x
// cursor ratio), which bounds the number of live scheduled events and keeps
// transposition decisions just-in-time. The scheduler is driven by periodic
// Tick calls on the application's control flow; it is not safe for
// concurrent use.
type Scheduler struct {
	engine    Engine
	compiler  *exercise.Compiler
	traversal *exercise.Traversal
	evaluator *HitEvaluator
	callbacks Callbacks
	logger    *slog.Logger

	timeWindow  time.Duration
	cursorRatio float64
	waveform    Waveform
	toneVolume  float64

	state        State
	pausedFrom   State
	clock        Clock
	countInEnd   time.Duration
	nextID       int
	events       []*scheduledEvent
	clicks       []*scheduledClick
	passes       []passRecord
	nextPassAt   time.Duration
	nextRoot     int
	direction    exercise.Direction
	traversalEnd bool
	lastEnd      time.Duration
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTimeWindow sets the scheduling time window.
func WithTimeWindow(w time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if w > 0 {
			s.timeWindow = w
		}
	}
}

// WithCursorRatio sets how far through the time window the playhead sits;
// the lookahead horizon is timeWindow * cursorRatio.
func WithCursorRatio(r float64) SchedulerOption {
	return func(s *Scheduler) {
		if r > 0 && r <= 1 {
			s.cursorRatio = r
		}
	}
}

// WithWaveform sets the oscillator used for scheduled notes.
func WithWaveform(w Waveform) SchedulerOption {
	return func(s *Scheduler) {
		s.waveform = w
	}
}

// WithToneVolume sets the note volume in [0, 1].
func WithToneVolume(v float64) SchedulerOption {
	return func(s *Scheduler) {
		if v >= 0 && v <= 1 {
			s.toneVolume = v
		}
	}
}

// WithCallbacks sets the progress callbacks.
func WithCallbacks(cb Callbacks) SchedulerOption {
	return func(s *Scheduler) {
		s.callbacks = cb
	}
}

// WithTolerance sets the hit tolerance band half-width in semitones.
func WithTolerance(semitones float64) SchedulerOption {
	return func(s *Scheduler) {
		s.evaluator = NewHitEvaluator(semitones)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler for one exercise over one vocal range.
// It fails if the range cannot accommodate the pattern.
func NewScheduler(engine Engine, compiler *exercise.Compiler, rng exercise.Range, opts ...SchedulerOption) (*Scheduler, error) {
	if engine == nil {
		return nil, fmt.Errorf("playback: engine must not be nil")
	}

	traversal, err := compiler.Traverse(rng)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		engine:      engine,
		compiler:    compiler,
		traversal:   traversal,
		evaluator:   NewHitEvaluator(DefaultToleranceSemitones),
		logger:      slog.Default(),
		timeWindow:  defaultTimeWindow,
		cursorRatio: defaultCursorRatio,
		waveform:    WaveformSine,
		toneVolume:  defaultToneVolume,
		state:       StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// State returns the current transport state.
func (s *Scheduler) State() State {
	return s.state
}

// Stats returns the accumulated hit/miss statistics.
func (s *Scheduler) Stats() Stats {
	return s.evaluator.Stats()
}

// GameTime returns the current game time.
func (s *Scheduler) GameTime(now time.Time) time.Duration {
	return s.clock.GameTime(now)
}

func (s *Scheduler) horizon() time.Duration {
	return time.Duration(float64(s.timeWindow) * s.cursorRatio)
}

// Start begins the count-in at now and schedules as far ahead as the
// lookahead horizon allows. Starting is only valid from Idle or Complete.
func (s *Scheduler) Start(now time.Time) error {
	if s.state != StateIdle && s.state != StateComplete {
		return fmt.Errorf("playback: cannot start from state %s", s.state)
	}

	s.clock = StartClock(now)
	s.nextID = 0
	s.events = nil
	s.clicks = nil
	s.passes = nil
	s.traversalEnd = false
	s.lastEnd = 0
	s.evaluator.Reset()
	s.nextRoot, s.direction = s.traversal.Start()

	spb := secondsToDuration(s.compiler.SecondsPerBeat())
	s.countInEnd = time.Duration(countInClicks-1) * spb
	firstAnchor := time.Duration(countInClicks) * spb
	if h := s.horizon(); firstAnchor < h {
		firstAnchor = h
	}
	s.nextPassAt = firstAnchor

	s.state = StateCountingIn
	s.logger.Info("playback started",
		"exercise", s.compiler.Definition().ExerciseID,
		"root", music.NoteName(s.nextRoot),
		"countInBeats", countInClicks)

	for i := 0; i < countInClicks; i++ {
		if err := s.submitClick(time.Duration(i)*spb, 0); err != nil {
			s.teardown()
			return err
		}
	}

	return s.Tick(now)
}

// Tick advances the state machine to now: it promotes the count-in once its
// last click has elapsed, compiles and submits passes entering the lookahead
// horizon, resolves misses for closed note windows, garbage-collects expired
// events, and fires completion callbacks.
func (s *Scheduler) Tick(now time.Time) error {
	if s.state != StateCountingIn && s.state != StatePlaying {
		return nil
	}

	gameNow := s.clock.GameTime(now)

	if s.state == StateCountingIn && gameNow >= s.countInEnd {
		s.state = StatePlaying
		s.logger.Debug("count-in finished", "gameTime", gameNow)
	}

	if err := s.scheduleAhead(gameNow); err != nil {
		s.teardown()
		return err
	}

	s.resolveAndCollect(gameNow)

	if s.state == StatePlaying && s.traversalEnd && gameNow >= s.lastEnd {
		s.state = StateComplete
		s.logger.Info("exercise complete", "stats", s.evaluator.Stats())
		if s.callbacks.OnExerciseComplete != nil {
			s.callbacks.OnExerciseComplete()
		}
	}

	return nil
}

// scheduleAhead compiles and submits passes whose start falls within the
// lookahead horizon.
func (s *Scheduler) scheduleAhead(gameNow time.Duration) error {
	for !s.traversalEnd && s.nextPassAt <= gameNow+s.horizon() {
		pass := s.compiler.CompilePass(s.nextRoot, s.direction)
		if err := s.submitPass(pass, s.nextPassAt, gameNow); err != nil {
			return err
		}

		s.logger.Debug("pass scheduled",
			"root", music.NoteName(pass.Root),
			"direction", pass.Direction.String(),
			"startsAt", s.nextPassAt)

		s.nextPassAt += pass.Total

		next, dir, done := s.traversal.Next(s.nextRoot, s.direction)
		if done {
			s.traversalEnd = true
			s.logger.Debug("range traversal finished", "lastRoot", music.NoteName(s.nextRoot))
			break
		}
		s.nextRoot, s.direction = next, dir
	}
	return nil
}

// submitPass schedules every audible event of a compiled pass plus its
// per-beat metronome clicks, anchored at the given game time.
func (s *Scheduler) submitPass(pass exercise.Pass, anchor, gameNow time.Duration) error {
	for _, ev := range pass.Events {
		if ev.Kind == exercise.KindRest {
			continue
		}

		rec := &scheduledEvent{
			id:    s.nextID,
			kind:  ev.Kind,
			start: anchor + ev.Start,
			end:   anchor + ev.End(),
			hit:   HitUpcoming,
		}
		s.nextID++

		switch ev.Kind {
		case exercise.KindNote:
			rec.semitone = ev.Semitone
		case exercise.KindChord:
			rec.chord = ev.ChordSemitones
		}

		if err := s.submitVoices(rec, gameNow); err != nil {
			return err
		}
		s.events = append(s.events, rec)
	}

	spb := secondsToDuration(s.compiler.SecondsPerBeat())
	for beat := 0; float64(beat) < pass.TotalBeats; beat++ {
		if err := s.submitClick(anchor+time.Duration(beat)*spb, gameNow); err != nil {
			return err
		}
	}

	end := anchor + pass.Total
	s.passes = append(s.passes, passRecord{root: pass.Root, end: end})
	if end > s.lastEnd {
		s.lastEnd = end
	}
	return nil
}

// submitVoices hands an event's tones to the engine. Notes already in
// progress (resubmission after resume) sound only their remaining duration.
func (s *Scheduler) submitVoices(rec *scheduledEvent, gameNow time.Duration) error {
	start := rec.start
	duration := rec.end - rec.start
	if start < gameNow {
		start = gameNow
		duration = rec.end - gameNow
	}
	if duration <= 0 {
		return nil
	}
	engineStart := s.engineAt(start, gameNow)

	schedule := func(semitone int, volume float64) error {
		voice, err := s.engine.ScheduleTone(music.HzFromMIDI(float64(semitone)), engineStart, duration, s.waveform, volume)
		if err != nil {
			return fmt.Errorf("playback: schedule tone: %w", err)
		}
		rec.voices = append(rec.voices, voice)
		return nil
	}

	switch rec.kind {
	case exercise.KindNote:
		return schedule(rec.semitone, s.toneVolume)
	case exercise.KindChord:
		for _, semitone := range rec.chord {
			if err := schedule(semitone, s.toneVolume*chordVolumeScale); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scheduler) submitClick(at, gameNow time.Duration) error {
	voice, err := s.engine.ScheduleSample(SampleMetronomeClick, s.engineAt(at, gameNow), 1.0, clickDuration)
	if err != nil {
		return fmt.Errorf("playback: schedule metronome click: %w", err)
	}
	s.clicks = append(s.clicks, &scheduledClick{at: at, voice: voice})
	return nil
}

// engineAt maps a game time to the engine clock given the current game time.
func (s *Scheduler) engineAt(gameT, gameNow time.Duration) time.Duration {
	return s.engine.Now() + (gameT - gameNow)
}

// resolveAndCollect miss-resolves note windows that closed while Upcoming,
// fires pass-completion callbacks, and drops state whose end time passed.
func (s *Scheduler) resolveAndCollect(gameNow time.Duration) {
	live := s.events[:0]
	for _, rec := range s.events {
		if rec.end > gameNow {
			live = append(live, rec)
			continue
		}
		if rec.kind == exercise.KindNote && rec.hit == HitUpcoming {
			rec.hit = MissResolved
			s.evaluator.RecordMiss()
			if s.callbacks.OnNoteMiss != nil {
				s.callbacks.OnNoteMiss(rec.id)
			}
		}
	}
	s.events = live

	liveClicks := s.clicks[:0]
	for _, c := range s.clicks {
		if c.at+clickDuration > gameNow {
			liveClicks = append(liveClicks, c)
		}
	}
	s.clicks = liveClicks

	remaining := s.passes[:0]
	for _, p := range s.passes {
		if p.end > gameNow {
			remaining = append(remaining, p)
			continue
		}
		s.logger.Debug("pass complete", "root", music.NoteName(p.root))
		if s.callbacks.OnPassComplete != nil {
			s.callbacks.OnPassComplete(p.root)
		}
	}
	s.passes = remaining
}

// Pause freezes the transport at now. Voices already sounding are ramped to
// silence rather than hard-stopped; voices that have not started yet are
// revoked. Both are resubmitted on Resume.
func (s *Scheduler) Pause(now time.Time) {
	if s.state != StateCountingIn && s.state != StatePlaying {
		return
	}

	gameNow := s.clock.GameTime(now)
	s.pausedFrom = s.state
	s.clock = s.clock.Pause(now)
	s.state = StatePaused

	for _, rec := range s.events {
		for _, v := range rec.voices {
			if rec.start <= gameNow {
				v.FadeOut(pauseFadeOut)
			} else {
				v.Cancel()
			}
		}
		rec.voices = nil
	}
	for _, c := range s.clicks {
		if c.at > gameNow && c.voice != nil {
			c.voice.Cancel()
			c.voice = nil
		}
	}

	s.logger.Info("playback paused", "gameTime", gameNow)
}

// Resume continues the transport at now. Every event whose end lies after
// the pause point is resubmitted — notes spanning the pause point play only
// their remaining duration — along with the pending metronome clicks.
func (s *Scheduler) Resume(now time.Time) error {
	if s.state != StatePaused {
		return nil
	}

	s.clock = s.clock.Resume(now)
	s.state = s.pausedFrom
	gameNow := s.clock.GameTime(now)

	for _, rec := range s.events {
		if rec.end <= gameNow {
			continue
		}
		if err := s.submitVoices(rec, gameNow); err != nil {
			s.teardown()
			return err
		}
	}
	for _, c := range s.clicks {
		if c.at <= gameNow || c.voice != nil {
			continue
		}
		voice, err := s.engine.ScheduleSample(SampleMetronomeClick, s.engineAt(c.at, gameNow), 1.0, clickDuration)
		if err != nil {
			s.teardown()
			return fmt.Errorf("playback: reschedule metronome click: %w", err)
		}
		c.voice = voice
	}

	s.logger.Info("playback resumed", "gameTime", gameNow)
	return nil
}

// Stop tears the transport down to Idle, revoking every pending voice.
// Unlike Pause, stopped events are gone for good.
func (s *Scheduler) Stop() {
	if s.state == StateIdle {
		return
	}
	s.teardown()
	s.logger.Info("playback stopped")
}

func (s *Scheduler) teardown() {
	for _, rec := range s.events {
		for _, v := range rec.voices {
			v.Cancel()
		}
	}
	for _, c := range s.clicks {
		if c.voice != nil {
			c.voice.Cancel()
		}
	}
	s.events = nil
	s.clicks = nil
	s.passes = nil
	s.state = StateIdle
}

// UpdatePitch evaluates the tracked pitch against every note whose time
// window is active. A note resolves to Hit the moment the pitch enters the
// tolerance band; resolution is terminal.
func (s *Scheduler) UpdatePitch(tracked track.Tracked, now time.Time) {
	if s.state != StatePlaying {
		return
	}

	gameNow := s.clock.GameTime(now)
	for _, rec := range s.events {
		if rec.kind != exercise.KindNote || rec.hit != HitUpcoming {
			continue
		}
		if gameNow < rec.start || gameNow >= rec.end {
			continue
		}
		if s.evaluator.Matches(tracked, float64(rec.semitone)) {
			rec.hit = HitResolved
			s.evaluator.RecordHit()
			if s.callbacks.OnNoteHit != nil {
				s.callbacks.OnNoteHit(rec.id)
			}
		}
	}
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// ActiveTarget returns the semitone of the note whose window contains now,
// if any. When windows overlap, the earliest-starting note wins.
func (s *Scheduler) ActiveTarget(now time.Time) (semitone int, ok bool) {
	gameNow := s.clock.GameTime(now)
	best := (*scheduledEvent)(nil)
	for _, rec := range s.events {
		if rec.kind != exercise.KindNote {
			continue
		}
		if gameNow < rec.start || gameNow >= rec.end {
			continue
		}
		if best == nil || rec.start < best.start {
			best = rec
		}
	}
	if best == nil {
		return 0, false
	}
	return best.semitone, true
}
