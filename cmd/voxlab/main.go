// Command voxlab runs a live vocal practice session: microphone input is
// pitch-tracked while the exercise plays through the speakers.
//
// Usage:
//
//	voxlab [flags] exercise.yaml
//
// Examples:
//
//	voxlab five-tone.yaml
//	voxlab -config session.yaml five-tone.yaml
//	voxlab -algorithm swipe -range G2:G4 five-tone.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/ricardo736/voxlab-sub000/exercise"
	"github.com/ricardo736/voxlab-sub000/music"
	"github.com/ricardo736/voxlab-sub000/playback"
)

const framesPerBuffer = 256

func main() {
	configPath := flag.String("config", "", "session config YAML (defaults apply when empty)")
	algorithm := flag.String("algorithm", "", "override the pitch algorithm (mpm|yin|pyin|swipe|hps)")
	rangeSpec := flag.String("range", "", "override the vocal range, e.g. G2:G4")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: voxlab [flags] exercise.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Runs a live vocal practice session.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(flag.Arg(0), *configPath, *algorithm, *rangeSpec, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(exercisePath, configPath, algorithm, rangeSpec string, logger *slog.Logger) error {
	def, err := exercise.Load(exercisePath)
	if err != nil {
		return err
	}

	cfg := playback.DefaultConfig()
	if configPath != "" {
		cfg, err = playback.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}
	if algorithm != "" {
		cfg.Algorithm = algorithm
	}
	if rangeSpec != "" {
		low, high, ok := strings.Cut(rangeSpec, ":")
		if !ok {
			return fmt.Errorf("range must be low:high, got %q", rangeSpec)
		}
		cfg.RangeLow, cfg.RangeHigh = low, high
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	engine := newAudioEngine(cfg.SampleRate)

	done := make(chan struct{})
	session, err := playback.NewSession(engine, def, cfg,
		playback.WithSessionLogger(logger),
		playback.WithSessionCallbacks(playback.Callbacks{
			OnPitchUpdate: func(hz, loudness float64) {
				if hz > 0 {
					fmt.Printf("\r%-12s %7.1f Hz   ", music.NoteName(int(music.MIDIFromHz(hz)+0.5)), hz)
				}
			},
			OnNoteHit:          func(int) { fmt.Print("\rhit!                    \n") },
			OnNoteMiss:         func(int) { fmt.Print("\rmiss                    \n") },
			OnPassComplete:     func(root int) { fmt.Printf("\rpass done (root %s)\n", music.NoteName(root)) },
			OnExerciseComplete: func() { close(done) },
		}))
	if err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(1, 1, cfg.SampleRate, framesPerBuffer,
		func(in, out []float32) {
			chunk := make([]float64, len(in))
			for i, v := range in {
				chunk[i] = float64(v)
			}
			session.PushSamples(chunk)
			engine.render(out)
		})
	if err != nil {
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start stream: %w", err)
	}
	defer stream.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("interrupted")
	case <-done:
		// Leave a moment for the final release tails to ring out.
		time.Sleep(500 * time.Millisecond)
	}

	if err := session.Stop(); err != nil {
		return err
	}

	stats := session.Stats()
	fmt.Printf("\n%d notes: %d hit, %d missed (%.0f%%)\n",
		stats.Total(), stats.Hits, stats.Misses, stats.Accuracy()*100)
	return nil
}
