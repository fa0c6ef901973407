package main

import (
	"fmt"
	"strings"

	"github.com/opd-ai/voicefx"
	"github.com/opd-ai/voicefx/oggopus"
	"github.com/opd-ai/voicefx/pcm"
	"github.com/opd-ai/voicefx/processor"
)

// EffectFlags exposes every processor setting. Defaults match
// processor.DefaultConfig.
type EffectFlags struct {
	ThresholdDB          float64 `name:"spectral-threshold" help:"Spectral gate threshold in dB" default:"5"`
	AmplitudeThresholdDB float64 `name:"gate-threshold" help:"Amplitude gate threshold in dBFS" default:"-20"`
	AmplitudeAttackMs    float64 `name:"gate-attack" help:"Amplitude gate attack in ms" default:"10"`
	AmplitudeReleaseMs   float64 `name:"gate-release" help:"Amplitude gate release in ms" default:"100"`
	AmplitudeLookaheadMs float64 `name:"gate-lookahead" help:"Amplitude gate lookahead in ms" default:"5"`
	GainDB               float64 `name:"gain" help:"Gain boost in dB" default:"6"`
	LimiterThresholdDB   float64 `name:"limiter-threshold" help:"Limiter ceiling in dBFS" default:"-1"`
	LimiterReleaseMs     float64 `name:"limiter-release" help:"Limiter release in ms" default:"50"`
	LimiterLookaheadMs   float64 `name:"limiter-lookahead" help:"Limiter lookahead in ms" default:"5"`
	LowpassFreq          float64 `name:"lowpass" help:"Lowpass cutoff in Hz" default:"20000"`
	HighpassFreq         float64 `name:"highpass" help:"Highpass cutoff in Hz" default:"75"`
	RMSTargetDB          float64 `name:"rms-target" help:"RMS normalization target in dBFS" default:"-20"`
	FadeInMs             float64 `name:"fade-in" help:"Fade-in length in ms" default:"200"`

	RMS           bool `help:"Enable RMS normalization" default:"true" negatable:""`
	Filters       bool `help:"Enable highpass and lowpass filtering" default:"true" negatable:""`
	SpectralGate  bool `name:"spectral-gate" help:"Enable the spectral gate" default:"true" negatable:""`
	AmplitudeGate bool `name:"amplitude-gate" help:"Enable the amplitude gate" default:"true" negatable:""`
	GainBoost     bool `name:"gain-boost" help:"Enable gain boost" default:"false" negatable:""`
	Limiter       bool `help:"Enable the limiter" default:"true" negatable:""`
}

// Config converts the flags to a processor configuration.
func (f EffectFlags) Config() processor.Config {
	cfg := processor.DefaultConfig()
	cfg.ThresholdDB = f.ThresholdDB
	cfg.AmplitudeThresholdDB = f.AmplitudeThresholdDB
	cfg.AmplitudeAttackMs = f.AmplitudeAttackMs
	cfg.AmplitudeReleaseMs = f.AmplitudeReleaseMs
	cfg.AmplitudeLookaheadMs = f.AmplitudeLookaheadMs
	cfg.GainDB = f.GainDB
	cfg.LimiterThresholdDB = f.LimiterThresholdDB
	cfg.LimiterReleaseMs = f.LimiterReleaseMs
	cfg.LimiterLookaheadMs = f.LimiterLookaheadMs
	cfg.LowpassFreq = f.LowpassFreq
	cfg.HighpassFreq = f.HighpassFreq
	cfg.RMSTargetDB = f.RMSTargetDB
	cfg.FadeInMs = f.FadeInMs
	cfg.RMSEnabled = f.RMS
	cfg.FiltersEnabled = f.Filters
	cfg.SpectralGateEnabled = f.SpectralGate
	cfg.AmplitudeGateEnabled = f.AmplitudeGate
	cfg.GainBoostEnabled = f.GainBoost
	cfg.LimiterEnabled = f.Limiter
	return cfg
}

// ProcessCmd runs the effect pipeline.
type ProcessCmd struct {
	EffectFlags `embed:""`

	Input  string `arg:"" type:"existingfile" help:"Input WAV file"`
	Output string `arg:"" type:"path" help:"Output WAV file"`
}

// Run executes the command.
func (c *ProcessCmd) Run(g *Globals) error {
	proc, err := processor.NewProcessor(c.Config())
	if err != nil {
		return err
	}
	if err := proc.ProcessFile(g.ctx, c.Input, c.Output); err != nil {
		return err
	}

	kinds := proc.Stages()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	printReport("Processed", []field{
		{"Input", c.Input},
		{"Output", c.Output},
		{"Stages", strings.Join(names, " → ")},
	})
	return nil
}

// EncodeCmd encodes WAV to Ogg Opus.
type EncodeCmd struct {
	Bitrate int    `short:"b" help:"Target bitrate in bits per second (6000, 12000, 24000 or any positive value)" default:"12000"`
	Input   string `arg:"" type:"existingfile" help:"Input WAV file"`
	Output  string `arg:"" type:"path" help:"Output Ogg Opus file"`
}

// Run executes the command.
func (c *EncodeCmd) Run(g *Globals) error {
	enc := oggopus.NewEncoder()
	if err := enc.SetBitrate(c.Bitrate); err != nil {
		return err
	}
	if err := enc.EncodeFile(c.Input, c.Output); err != nil {
		return err
	}

	info, err := oggopus.GetInfo(c.Output)
	if err != nil {
		return err
	}
	printReport("Encoded", []field{
		{"Output", c.Output},
		{"Bitrate", fmt.Sprintf("%d bps", c.Bitrate)},
		{"Size", formatBytes(info.FileSize)},
		{"Duration", formatSeconds(info.Duration)},
		{"Bandwidth", formatBandwidth(info.Bandwidth)},
	})
	return nil
}

// DecodeCmd decodes Ogg Opus to WAV.
type DecodeCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Input Ogg Opus file"`
	Output string `arg:"" type:"path" help:"Output WAV file (48 kHz mono 16-bit)"`
}

// Run executes the command.
func (c *DecodeCmd) Run(g *Globals) error {
	dec, err := oggopus.OpenDecoder(c.Input)
	if err != nil {
		return err
	}
	samples, err := dec.DecodeAll()
	if err != nil {
		return err
	}

	buf := &pcm.Buffer{Format: pcm.MonoFormat(oggopus.SampleRate), Samples: samples}
	if err := pcm.WriteFile(c.Output, buf); err != nil {
		return err
	}
	printReport("Decoded", []field{
		{"Output", c.Output},
		{"Packets", fmt.Sprintf("%d", dec.PacketCount())},
		{"Duration", formatSeconds(buf.Duration())},
	})
	return nil
}

// InfoCmd reports Ogg Opus file information.
type InfoCmd struct {
	File string `arg:"" type:"existingfile" help:"Ogg Opus file"`
}

// Run executes the command.
func (c *InfoCmd) Run(g *Globals) error {
	info, err := oggopus.GetInfo(c.File)
	if err != nil {
		return err
	}
	printReport(c.File, []field{
		{"Size", formatBytes(info.FileSize)},
		{"Packets", fmt.Sprintf("%d", info.Packets)},
		{"Duration", formatSeconds(info.Duration)},
		{"Bandwidth", formatBandwidth(info.Bandwidth)},
	})
	return nil
}

// PipelineCmd runs the full post-recording workflow.
type PipelineCmd struct {
	EffectFlags `embed:""`

	Bitrate int    `short:"b" help:"Target Opus bitrate in bits per second" default:"12000"`
	Input   string `arg:"" type:"existingfile" help:"Recorded WAV file"`
}

// Run executes the command.
func (c *PipelineCmd) Run(g *Globals) error {
	enc := oggopus.NewEncoder()
	if err := enc.SetBitrate(c.Bitrate); err != nil {
		return err
	}
	session, err := voicefx.NewSession(voicefx.WithConfig(c.Config()), voicefx.WithEncoder(enc))
	if err != nil {
		return err
	}

	art, err := session.ProcessRecording(g.ctx, c.Input)
	if err != nil {
		return err
	}

	info := session.AudioInfo()
	printReport("Recording processed", []field{
		{"Original", art.Original},
		{"Processed", art.Processed},
		{"Processed Opus", art.ProcessedOpus},
		{"Unprocessed Opus", art.UnprocessedOpus},
		{"Duration", formatSeconds(info.Duration)},
		{"Original WAV size", formatBytes(info.OriginalWAVSize)},
		{"Processed Opus size", formatBytes(info.ProcessedOpusSize)},
		{"Unprocessed Opus size", formatBytes(info.UnprocessedOpusSize)},
		{"Status", info.LastMessage},
	})
	return nil
}
