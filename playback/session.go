package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ricardo736/voxlab-sub000/dsp/core"
	"github.com/ricardo736/voxlab-sub000/dsp/frame"
	"github.com/ricardo736/voxlab-sub000/dsp/pitch"
	"github.com/ricardo736/voxlab-sub000/dsp/track"
	"github.com/ricardo736/voxlab-sub000/exercise"
)

const (
	// sessionTick paces the scheduler control loop. Well under half a frame
	// period at the default 2048/44.1k so pass compilation never lags the
	// lookahead horizon.
	sessionTick = 20 * time.Millisecond

	// sampleQueueDepth bounds the microphone chunk queue. On overflow the
	// oldest chunk is dropped; the capture side must never block.
	sampleQueueDepth = 16
)

// Session wires a microphone stream through the pitch pipeline and drives
// one exercise through the scheduler. Audio chunks enter through
// PushSamples from the capture callback; everything else happens on the
// session's own goroutines.
type Session struct {
	cfg       Config
	scheduler *Scheduler
	callbacks Callbacks
	logger    *slog.Logger

	accumulator *frame.Accumulator
	estimator   *pitch.Estimator
	tracker     *track.Tracker

	samples   chan []float64
	chunkPool sync.Pool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionCallbacks sets the progress callbacks.
func WithSessionCallbacks(cb Callbacks) SessionOption {
	return func(s *Session) {
		s.callbacks = cb
	}
}

// WithSessionLogger sets the structured logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession builds the full pipeline for one exercise: frame accumulator,
// pitch estimator, tracker and scheduler, all parameterised from cfg.
func NewSession(engine Engine, def *exercise.Definition, cfg Config, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		logger:  slog.Default(),
		samples: make(chan []float64, sampleQueueDepth),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	algorithm, err := pitch.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	coreOpts := []core.AnalysisOption{core.WithSampleRate(cfg.SampleRate)}

	s.accumulator = frame.NewAccumulator(coreOpts...)
	s.estimator, err = pitch.NewEstimator(algorithm, coreOpts,
		pitch.WithGateThreshold(cfg.NoiseGateThreshold))
	if err != nil {
		return nil, err
	}
	s.tracker = track.NewTracker(track.WithSmoothing(cfg.SmoothingFactor))

	compiler, err := exercise.NewCompiler(def, exercise.WithTempoMultiplier(cfg.TempoMultiplier))
	if err != nil {
		return nil, err
	}
	rng, err := cfg.Range()
	if err != nil {
		return nil, err
	}
	s.scheduler, err = NewScheduler(engine, compiler, rng,
		WithTolerance(cfg.ToleranceSemitones),
		WithTimeWindow(cfg.TimeWindow()),
		WithCursorRatio(cfg.CursorRatio),
		WithCallbacks(s.callbacks),
		WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins playback and launches the session goroutines. It returns
// immediately; fatal errors surface from Stop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("playback: session already running")
	}

	s.tracker.Reset()
	s.estimator.Reset()
	s.accumulator.Reset()
	drain(s.samples)

	if err := s.scheduler.Start(time.Now()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = group
	s.running = true

	group.Go(func() error { return s.controlLoop(ctx) })
	group.Go(func() error { return s.estimateLoop(ctx) })

	s.logger.Info("session started",
		"algorithm", s.cfg.Algorithm,
		"range", s.cfg.RangeLow+".."+s.cfg.RangeHigh)
	return nil
}

// PushSamples feeds one mono capture chunk into the session. Safe to call
// from the audio callback: it copies the chunk and never blocks, dropping
// the oldest queued chunk when the pipeline falls behind.
func (s *Session) PushSamples(chunk []float64) {
	if len(chunk) == 0 {
		return
	}

	buf, _ := s.chunkPool.Get().([]float64)
	buf = core.EnsureLen(buf, len(chunk))
	copy(buf, chunk)

	select {
	case s.samples <- buf:
		return
	default:
	}
	select {
	case dropped := <-s.samples:
		s.chunkPool.Put(dropped[:0])
	default:
	}
	select {
	case s.samples <- buf:
	default:
		s.chunkPool.Put(buf[:0])
	}
}

// Pause freezes playback; scheduled events are kept for resumption.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.Pause(time.Now())
}

// Resume continues paused playback.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Resume(time.Now())
}

// Stop tears the session down and waits for its goroutines. It returns the
// first fatal error seen, if any. The session may be started again.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel, group := s.cancel, s.group
	s.mu.Unlock()

	cancel()
	err := group.Wait()

	s.mu.Lock()
	s.scheduler.Stop()
	s.mu.Unlock()

	s.logger.Info("session stopped", "stats", s.scheduler.Stats())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// State returns the scheduler's transport state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.State()
}

// Stats returns the hit/miss statistics so far.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Stats()
}

// controlLoop ticks the scheduler until the exercise completes or the
// context is cancelled. Scheduler errors are fatal for the session.
func (s *Session) controlLoop(ctx context.Context) error {
	ticker := time.NewTicker(sessionTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.mu.Lock()
			err := s.scheduler.Tick(now)
			state := s.scheduler.State()
			s.mu.Unlock()
			if err != nil {
				s.logger.Error("scheduler failure", "error", err)
				return err
			}
			if state == StateComplete {
				return nil
			}
		}
	}
}

// estimateLoop drains capture chunks, assembles analysis frames and pushes
// tracked pitch into the scheduler's hit evaluation.
func (s *Session) estimateLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk := <-s.samples:
			var loopErr error
			s.accumulator.Push(chunk, func(window []float64) {
				if loopErr != nil {
					return
				}
				loopErr = s.analyzeFrame(window)
			})
			s.chunkPool.Put(chunk[:0])
			if loopErr != nil {
				return loopErr
			}
		}
	}
}

func (s *Session) analyzeFrame(window []float64) error {
	est, err := s.estimator.Estimate(window)
	if err != nil {
		return fmt.Errorf("playback: estimate: %w", err)
	}
	tracked := s.tracker.Update(est)

	if s.callbacks.OnPitchUpdate != nil {
		s.callbacks.OnPitchUpdate(tracked.SmoothedHz, est.Loudness)
	}

	s.mu.Lock()
	s.scheduler.UpdatePitch(tracked, time.Now())
	s.mu.Unlock()
	return nil
}

func drain(ch chan []float64) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
