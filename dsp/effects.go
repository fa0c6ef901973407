package dsp

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/sirupsen/logrus"
)

const (
	kneeStart = 0.95
	kneeWidth = 1 - kneeStart
)

// GainBoostStage multiplies every sample by 10^(GainDB/20).
//
// Results are intentionally left unclamped; the limiter downstream handles
// excursions past full scale.
type GainBoostStage struct {
	GainDB float64
}

// Kind implements Stage.
func (g GainBoostStage) Kind() StageKind { return KindGainBoost }

// GetName implements Stage.
func (g GainBoostStage) GetName() string {
	return fmt.Sprintf("GainBoost(%+.1fdB)", g.GainDB)
}

// Process implements Stage.
func (g GainBoostStage) Process(samples []float32, _ float64) ([]float32, error) {
	gain := DBToLinear(g.GainDB)
	overCount := 0

	for i, s := range samples {
		v := float64(s) * gain
		if v > 1 || v < -1 {
			overCount++
		}
		samples[i] = float32(v)
	}

	logrus.WithFields(logrus.Fields{
		"function":     "GainBoostStage.Process",
		"sample_count": len(samples),
		"gain_db":      g.GainDB,
		"gain":         gain,
	}).Debug("Gain boost applied")

	if overCount > 0 {
		logrus.WithFields(logrus.Fields{
			"function":      "GainBoostStage.Process",
			"over_count":    overCount,
			"total_samples": len(samples),
			"gain_db":       g.GainDB,
		}).Warn("Samples exceed full scale after gain boost")
	}

	return samples, nil
}

// RMSNormalizeStage scales the buffer to a target RMS level and shapes peaks
// with a soft knee. A silent buffer passes through unchanged.
type RMSNormalizeStage struct {
	TargetDB float64
}

// Kind implements Stage.
func (r RMSNormalizeStage) Kind() StageKind { return KindRMSNormalize }

// GetName implements Stage.
func (r RMSNormalizeStage) GetName() string {
	return fmt.Sprintf("RMSNormalize(%.1fdB)", r.TargetDB)
}

// Process implements Stage.
func (r RMSNormalizeStage) Process(samples []float32, _ float64) ([]float32, error) {
	out, err := NormalizeRMS(samples, r.TargetDB)
	if errors.Is(err, audioerr.ErrDivisionDegenerate) {
		logrus.WithFields(logrus.Fields{
			"function":     "RMSNormalizeStage.Process",
			"sample_count": len(samples),
		}).Warn("Silent buffer, skipping RMS normalization")
		return samples, nil
	}
	return out, err
}

// NormalizeRMS scales samples in place so their RMS matches targetDB, then
// applies a quadratic soft knee above 0.95 and clamps to [-1, 1].
//
// Parameters:
//   - samples: Buffer to normalize
//   - targetDB: Target RMS level in dBFS
//
// Returns:
//   - []float32: samples, normalized
//   - error: ErrDivisionDegenerate if the buffer RMS is zero
func NormalizeRMS(samples []float32, targetDB float64) ([]float32, error) {
	current := RMS(samples)
	if current == 0 {
		return samples, fmt.Errorf("%w: %d samples", audioerr.ErrDivisionDegenerate, len(samples))
	}

	target := DBToLinear(targetDB)
	gain := target / current

	for i, s := range samples {
		samples[i] = float32(softKnee(float64(s) * gain))
	}

	logrus.WithFields(logrus.Fields{
		"function":       "NormalizeRMS",
		"current_rms_db": LinearToDB(current),
		"target_rms_db":  targetDB,
		"gain_factor":    gain,
		"new_rms_db":     LinearToDB(RMS(samples)),
	}).Info("RMS normalization applied")

	return samples, nil
}

// softKnee eases magnitudes above kneeStart with a quadratic curve, keeps the
// sign, and clamps the result to full scale.
func softKnee(v float64) float64 {
	a := math.Abs(v)
	if a > kneeStart {
		x := 1 - (a-kneeStart)/kneeWidth
		a = kneeStart + kneeWidth*(1-x*x)
		v = math.Copysign(a, v)
	}
	return math.Max(-1, math.Min(1, v))
}

// FadeInStage ramps the first FadeMs of the buffer up from silence with a
// smoothstep curve. FadeMs of zero leaves the buffer untouched.
type FadeInStage struct {
	FadeMs float64
}

// Kind implements Stage.
func (f FadeInStage) Kind() StageKind { return KindFadeIn }

// GetName implements Stage.
func (f FadeInStage) GetName() string {
	return fmt.Sprintf("FadeIn(%.0fms)", f.FadeMs)
}

// Process implements Stage.
func (f FadeInStage) Process(samples []float32, sampleRate float64) ([]float32, error) {
	n := min(LookaheadSamples(f.FadeMs, sampleRate), len(samples))

	logrus.WithFields(logrus.Fields{
		"function":     "FadeInStage.Process",
		"fade_ms":      f.FadeMs,
		"fade_samples": n,
	}).Debug("Applying fade-in")

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		samples[i] = float32(float64(samples[i]) * t * t * (3 - 2*t))
	}
	return samples, nil
}
