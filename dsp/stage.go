package dsp

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// StageKind tags a Stage variant.
type StageKind string

// Stage kinds in pipeline order.
const (
	KindRMSNormalize  StageKind = "rms_normalize"
	KindFilter        StageKind = "filter"
	KindSpectralGate  StageKind = "spectral_gate"
	KindAmplitudeGate StageKind = "amplitude_gate"
	KindGainBoost     StageKind = "gain_boost"
	KindLimiter       StageKind = "limiter"
	KindFadeIn        StageKind = "fade_in"
)

// Stage is one effect in the processing pipeline.
//
// Process takes ownership of samples and returns the buffer that now holds
// the result, which may be samples itself or a new slice.
type Stage interface {
	Kind() StageKind
	Process(samples []float32, sampleRate float64) ([]float32, error)
	GetName() string
}

// Chain manages an ordered sequence of stages.
//
// Stages are applied in insertion order. The first failing stage stops the
// chain and its error is returned wrapped with the stage position.
type Chain struct {
	stages []Stage
}

// NewChain creates a chain holding stages in the given order.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: append([]Stage(nil), stages...)}
}

// AddStage appends a stage to the end of the chain.
func (c *Chain) AddStage(stage Stage) {
	logrus.WithFields(logrus.Fields{
		"function":     "Chain.AddStage",
		"stage_name":   stage.GetName(),
		"new_position": len(c.stages),
	}).Debug("Adding stage to chain")

	c.stages = append(c.stages, stage)
}

// Process applies every stage in order.
//
// ctx is checked between stages; a stage that has started always finishes.
//
// Parameters:
//   - ctx: Cancellation for the whole chain
//   - samples: Mono input buffer, owned by the chain from here on
//   - sampleRate: Sample rate of samples in Hz
//
// Returns:
//   - []float32: Processed samples
//   - error: First stage error or ctx.Err()
func (c *Chain) Process(ctx context.Context, samples []float32, sampleRate float64) ([]float32, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "Chain.Process",
		"sample_count": len(samples),
		"stage_count":  len(c.stages),
		"sample_rate":  sampleRate,
	}).Debug("Processing buffer through stage chain")

	current := samples
	for i, stage := range c.stages {
		if err := ctx.Err(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "Chain.Process",
				"stage_index": i,
				"error":       err.Error(),
			}).Warn("Stage chain cancelled")
			return nil, err
		}

		processed, err := stage.Process(current, sampleRate)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "Chain.Process",
				"stage_index": i,
				"stage_name":  stage.GetName(),
				"error":       err.Error(),
			}).Error("Stage processing failed")
			return nil, fmt.Errorf("stage %d (%s) failed: %w", i, stage.GetName(), err)
		}
		current = processed
	}

	return current, nil
}

// GetStageCount returns the number of stages in the chain.
func (c *Chain) GetStageCount() int {
	return len(c.stages)
}

// GetStageNames returns the names of all stages in order.
func (c *Chain) GetStageNames() []string {
	names := make([]string, len(c.stages))
	for i, stage := range c.stages {
		names[i] = stage.GetName()
	}
	return names
}

// Kinds returns the kind of every stage in order.
func (c *Chain) Kinds() []StageKind {
	kinds := make([]StageKind, len(c.stages))
	for i, stage := range c.stages {
		kinds[i] = stage.Kind()
	}
	return kinds
}
