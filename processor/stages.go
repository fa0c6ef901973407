package processor

import "github.com/opd-ai/voicefx/dsp"

// BuildStages returns the enabled stages of cfg in pipeline order. The
// fade-in stage is always last.
func BuildStages(cfg Config) []dsp.Stage {
	stages := make([]dsp.Stage, 0, 7)

	if cfg.RMSEnabled {
		stages = append(stages, dsp.RMSNormalizeStage{TargetDB: cfg.RMSTargetDB})
	}
	if cfg.FiltersEnabled {
		stages = append(stages, dsp.FilterStage{HighpassHz: cfg.HighpassFreq, LowpassHz: cfg.LowpassFreq})
	}
	if cfg.SpectralGateEnabled {
		stages = append(stages, dsp.SpectralGateStage{ThresholdDB: cfg.ThresholdDB})
	}
	if cfg.AmplitudeGateEnabled {
		stages = append(stages, dsp.AmplitudeGateStage{
			ThresholdDB: cfg.AmplitudeThresholdDB,
			AttackMs:    cfg.AmplitudeAttackMs,
			ReleaseMs:   cfg.AmplitudeReleaseMs,
			LookaheadMs: cfg.AmplitudeLookaheadMs,
		})
	}
	if cfg.GainBoostEnabled {
		stages = append(stages, dsp.GainBoostStage{GainDB: cfg.GainDB})
	}
	if cfg.LimiterEnabled {
		stages = append(stages, dsp.LimiterStage{
			ThresholdDB: cfg.LimiterThresholdDB,
			ReleaseMs:   cfg.LimiterReleaseMs,
			LookaheadMs: cfg.LimiterLookaheadMs,
		})
	}

	return append(stages, dsp.FadeInStage{FadeMs: cfg.FadeInMs})
}
