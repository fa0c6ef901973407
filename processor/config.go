// Package processor drives the voicefx effect pipeline over sample buffers
// and WAV files.
//
// A Processor holds an immutable Config snapshot. Each call builds the
// enabled stages in the fixed order RMS normalize, filter, spectral gate,
// amplitude gate, gain boost, limiter and fade-in, then runs them through a
// dsp.Chain.
package processor

import (
	"fmt"

	"github.com/opd-ai/voicefx/audioerr"
)

// Frequency bounds accepted by Validate.
const (
	MinHighpassHz = 0.0
	MaxHighpassHz = 1000.0
	MinLowpassHz  = 1000.0
	MaxLowpassHz  = 24000.0
)

// Config holds every effect parameter and stage toggle.
type Config struct {
	SampleRate float64

	// Spectral gate threshold applied to bin magnitudes.
	ThresholdDB float64

	AmplitudeThresholdDB float64
	AmplitudeAttackMs    float64
	AmplitudeReleaseMs   float64
	AmplitudeLookaheadMs float64

	GainDB float64

	LimiterThresholdDB float64
	LimiterReleaseMs   float64
	LimiterLookaheadMs float64

	LowpassFreq  float64
	HighpassFreq float64

	RMSTargetDB float64

	// FadeInMs of 0 disables the fade. The stage itself is always present.
	FadeInMs float64

	RMSEnabled           bool
	FiltersEnabled       bool
	SpectralGateEnabled  bool
	AmplitudeGateEnabled bool
	GainBoostEnabled     bool
	LimiterEnabled       bool
}

// DefaultConfig returns the voice-oriented default parameters.
func DefaultConfig() Config {
	return Config{
		SampleRate:           48000,
		ThresholdDB:          5.0,
		AmplitudeThresholdDB: -20,
		AmplitudeAttackMs:    10,
		AmplitudeReleaseMs:   100,
		AmplitudeLookaheadMs: 5,
		GainDB:               6,
		LimiterThresholdDB:   -1,
		LimiterReleaseMs:     50,
		LimiterLookaheadMs:   5,
		LowpassFreq:          20000,
		HighpassFreq:         75,
		RMSTargetDB:          -20,
		FadeInMs:             200,
		RMSEnabled:           true,
		FiltersEnabled:       true,
		SpectralGateEnabled:  true,
		AmplitudeGateEnabled: true,
		GainBoostEnabled:     false,
		LimiterEnabled:       true,
	}
}

// Validate checks parameter ranges. dB values are unrestricted.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %v", audioerr.ErrInvalidConfig, c.SampleRate)
	}
	if c.HighpassFreq < MinHighpassHz || c.HighpassFreq > MaxHighpassHz {
		return fmt.Errorf("%w: highpass %v Hz outside [%v, %v]",
			audioerr.ErrInvalidConfig, c.HighpassFreq, MinHighpassHz, MaxHighpassHz)
	}
	if c.LowpassFreq < MinLowpassHz || c.LowpassFreq > MaxLowpassHz {
		return fmt.Errorf("%w: lowpass %v Hz outside [%v, %v]",
			audioerr.ErrInvalidConfig, c.LowpassFreq, MinLowpassHz, MaxLowpassHz)
	}

	times := []struct {
		name  string
		value float64
	}{
		{"amplitude attack", c.AmplitudeAttackMs},
		{"amplitude release", c.AmplitudeReleaseMs},
		{"amplitude lookahead", c.AmplitudeLookaheadMs},
		{"limiter release", c.LimiterReleaseMs},
		{"limiter lookahead", c.LimiterLookaheadMs},
	}
	for _, tm := range times {
		if tm.value <= 0 {
			return fmt.Errorf("%w: %s time must be positive, got %v ms",
				audioerr.ErrInvalidConfig, tm.name, tm.value)
		}
	}

	if c.FadeInMs < 0 {
		return fmt.Errorf("%w: fade-in must not be negative, got %v ms", audioerr.ErrInvalidConfig, c.FadeInMs)
	}
	return nil
}
