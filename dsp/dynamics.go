package dsp

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// AmplitudeGateStage opens when the lookahead peak reaches the threshold and
// closes otherwise, with attack and release smoothing in both directions.
type AmplitudeGateStage struct {
	ThresholdDB float64
	AttackMs    float64
	ReleaseMs   float64
	LookaheadMs float64
}

// Kind implements Stage.
func (g AmplitudeGateStage) Kind() StageKind { return KindAmplitudeGate }

// GetName implements Stage.
func (g AmplitudeGateStage) GetName() string {
	return fmt.Sprintf("AmplitudeGate(%.1fdB)", g.ThresholdDB)
}

// Follower returns the envelope follower configured for sampleRate.
func (g AmplitudeGateStage) Follower(sampleRate float64) *EnvelopeFollower {
	threshold := DBToLinear(g.ThresholdDB)
	return &EnvelopeFollower{
		LookaheadSamples: LookaheadSamples(g.LookaheadMs, sampleRate),
		Attack:           Coefficient(g.AttackMs, sampleRate),
		Release:          Coefficient(g.ReleaseMs, sampleRate),
		InitialGain:      0,
		Target: func(peak float64) float64 {
			if peak >= threshold {
				return 1
			}
			return 0
		},
		Smooth: gateSmoothing,
	}
}

// Process implements Stage.
func (g AmplitudeGateStage) Process(samples []float32, sampleRate float64) ([]float32, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "AmplitudeGateStage.Process",
		"sample_count": len(samples),
		"threshold_db": g.ThresholdDB,
		"attack_ms":    g.AttackMs,
		"release_ms":   g.ReleaseMs,
		"lookahead_ms": g.LookaheadMs,
	}).Debug("Applying amplitude gate")

	return g.Follower(sampleRate).Process(samples), nil
}

// gateSmoothing blends toward target with the attack coefficient while
// opening and the release coefficient while closing.
func gateSmoothing(gain, target, attack, release float64) float64 {
	coef := release
	if target > gain {
		coef = attack
	}
	return gain*coef + target*(1-coef)
}

// LimiterStage is a lookahead peak limiter. Gain reduction is applied
// instantly and recovers with the release coefficient, so no output sample
// exceeds the ceiling.
type LimiterStage struct {
	ThresholdDB float64
	ReleaseMs   float64
	LookaheadMs float64
}

// Kind implements Stage.
func (l LimiterStage) Kind() StageKind { return KindLimiter }

// GetName implements Stage.
func (l LimiterStage) GetName() string {
	return fmt.Sprintf("Limiter(%.1fdB)", l.ThresholdDB)
}

// Follower returns the envelope follower configured for sampleRate.
func (l LimiterStage) Follower(sampleRate float64) *EnvelopeFollower {
	threshold := DBToLinear(l.ThresholdDB)
	return &EnvelopeFollower{
		LookaheadSamples: LookaheadSamples(l.LookaheadMs, sampleRate),
		Release:          Coefficient(l.ReleaseMs, sampleRate),
		InitialGain:      1,
		Target: func(peak float64) float64 {
			if peak > threshold {
				return threshold / peak
			}
			return 1
		},
		Smooth: limiterSmoothing,
	}
}

// Process implements Stage.
func (l LimiterStage) Process(samples []float32, sampleRate float64) ([]float32, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "LimiterStage.Process",
		"sample_count": len(samples),
		"threshold_db": l.ThresholdDB,
		"release_ms":   l.ReleaseMs,
		"lookahead_ms": l.LookaheadMs,
	}).Debug("Applying lookahead limiter")

	return l.Follower(sampleRate).Process(samples), nil
}

// limiterSmoothing clamps down immediately and recovers gradually.
func limiterSmoothing(gain, target, _, release float64) float64 {
	if target < gain {
		return target
	}
	return gain*release + target*(1-release)
}
