package dsp

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

const spectralNoiseFloor = 1e-10

// FilterStage is a brick-wall band-pass built on the STFT.
//
// Bins whose absolute frequency lies outside [HighpassHz, LowpassHz] are
// zeroed, as are bins already below the numerical noise floor. HighpassHz
// must be below LowpassHz; the stage does not check.
type FilterStage struct {
	HighpassHz float64
	LowpassHz  float64
}

// Kind implements Stage.
func (f FilterStage) Kind() StageKind { return KindFilter }

// GetName implements Stage.
func (f FilterStage) GetName() string {
	return fmt.Sprintf("Filter(%.0f-%.0fHz)", f.HighpassHz, f.LowpassHz)
}

// Process implements Stage.
func (f FilterStage) Process(samples []float32, sampleRate float64) ([]float32, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "FilterStage.Process",
		"sample_count": len(samples),
		"highpass_hz":  f.HighpassHz,
		"lowpass_hz":   f.LowpassHz,
	}).Debug("Applying band filter")

	return NewSTFT(sampleRate).Process(samples, func(_ int, freqHz float64, v complex128) complex128 {
		freq := math.Abs(freqHz)
		if freq < f.HighpassHz || freq > f.LowpassHz {
			return 0
		}
		if magnitude(v) < spectralNoiseFloor {
			return 0
		}
		return v
	}), nil
}

// SpectralGateStage zeroes every STFT bin whose magnitude is below the
// linear threshold 10^(ThresholdDB/20).
type SpectralGateStage struct {
	ThresholdDB float64
}

// Kind implements Stage.
func (g SpectralGateStage) Kind() StageKind { return KindSpectralGate }

// GetName implements Stage.
func (g SpectralGateStage) GetName() string {
	return fmt.Sprintf("SpectralGate(%.1fdB)", g.ThresholdDB)
}

// Process implements Stage.
func (g SpectralGateStage) Process(samples []float32, sampleRate float64) ([]float32, error) {
	threshold := DBToLinear(g.ThresholdDB)

	logrus.WithFields(logrus.Fields{
		"function":     "SpectralGateStage.Process",
		"sample_count": len(samples),
		"threshold_db": g.ThresholdDB,
		"threshold":    threshold,
	}).Debug("Applying spectral gate")

	return NewSTFT(sampleRate).Process(samples, func(_ int, _ float64, v complex128) complex128 {
		if magnitude(v) < threshold {
			return 0
		}
		return v
	}), nil
}
