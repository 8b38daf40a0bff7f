package core

// AnalysisConfig defines common settings for streaming pitch analysis.
type AnalysisConfig struct {
	SampleRate float64
	WindowSize int
}

// AnalysisOption mutates an AnalysisConfig.
type AnalysisOption func(*AnalysisConfig)

// DefaultAnalysisConfig returns the defaults used across the analysis chain:
// 44.1 kHz sample rate and a 2048-sample analysis window.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SampleRate: 44100,
		WindowSize: 2048,
	}
}

// WithSampleRate sets the analysis sample rate.
func WithSampleRate(sampleRate float64) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithWindowSize sets the analysis window length in samples.
func WithWindowSize(windowSize int) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		if windowSize > 0 {
			cfg.WindowSize = windowSize
		}
	}
}

// ApplyAnalysisOptions applies zero or more options to the default config.
func ApplyAnalysisOptions(opts ...AnalysisOption) AnalysisConfig {
	cfg := DefaultAnalysisConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
