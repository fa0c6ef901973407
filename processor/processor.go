package processor

import (
	"context"
	"fmt"

	"github.com/opd-ai/voicefx/dsp"
	"github.com/opd-ai/voicefx/pcm"
	"github.com/sirupsen/logrus"
)

// Processor applies the configured effect pipeline to buffers and files.
//
// A Processor is immutable after construction and safe for concurrent use.
// Changing parameters means building a new Processor.
type Processor struct {
	config Config
}

// NewProcessor validates cfg and returns a Processor that uses it.
func NewProcessor(cfg Config) (*Processor, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewProcessor",
		"sample_rate": cfg.SampleRate,
		"fade_in_ms":  cfg.FadeInMs,
	}).Info("Creating new audio processor")

	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewProcessor",
			"error":    err.Error(),
		}).Error("Processor configuration rejected")
		return nil, err
	}

	p := &Processor{config: cfg}

	logrus.WithFields(logrus.Fields{
		"function": "NewProcessor",
		"stages":   p.chain().GetStageNames(),
	}).Info("Audio processor created successfully")

	return p, nil
}

// Config returns a copy of the processor's configuration.
func (p *Processor) Config() Config {
	return p.config
}

// Stages returns the kinds of the stages that will run, in order.
func (p *Processor) Stages() []dsp.StageKind {
	return p.chain().Kinds()
}

func (p *Processor) chain() *dsp.Chain {
	return dsp.NewChain(BuildStages(p.config)...)
}

// ProcessBuffer runs the pipeline over a mono buffer.
//
// samples is consumed; the returned slice holds the result and has the same
// length. A sampleRate of zero or less means Config.SampleRate.
func (p *Processor) ProcessBuffer(samples []float32, sampleRate float64) ([]float32, error) {
	cfg := p.config
	if sampleRate > 0 {
		cfg.SampleRate = sampleRate
	}
	return processBuffer(context.Background(), cfg, samples)
}

func processBuffer(ctx context.Context, cfg Config, samples []float32) ([]float32, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "Processor.ProcessBuffer",
		"sample_count": len(samples),
		"sample_rate":  cfg.SampleRate,
	}).Debug("Processing buffer")

	return dsp.NewChain(BuildStages(cfg)...).Process(ctx, samples, cfg.SampleRate)
}

// ProcessFile reads a WAV file, runs the pipeline on each channel and writes
// the result to outputPath in the input's exact format. The file's sample
// rate replaces Config.SampleRate for this call.
//
// Parameters:
//   - ctx: Cancellation, checked between channels and stages
//   - inputPath: 16-bit integer or 32-bit float WAV file
//   - outputPath: Destination WAV file, created or truncated
//
// Returns:
//   - error: ErrIO, ErrUnsupportedFormat, a stage failure or ctx.Err()
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string) error {
	logrus.WithFields(logrus.Fields{
		"function":    "Processor.ProcessFile",
		"input_path":  inputPath,
		"output_path": outputPath,
	}).Info("Processing audio file")

	buf, err := pcm.ReadFile(inputPath)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Processor.ProcessFile",
			"input_path": inputPath,
			"error":      err.Error(),
		}).Error("Failed to read input file")
		return err
	}

	cfg := p.config
	cfg.SampleRate = float64(buf.Format.SampleRate)

	channels := pcm.Deinterleave(buf.Samples, buf.Format.Channels)
	for c, data := range channels {
		processed, err := processBuffer(ctx, cfg, data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Processor.ProcessFile",
				"channel":  c,
				"error":    err.Error(),
			}).Error("Channel processing failed")
			return fmt.Errorf("channel %d: %w", c, err)
		}
		channels[c] = processed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	out := &pcm.Buffer{Format: buf.Format, Samples: pcm.Interleave(channels)}
	if err := pcm.WriteFile(outputPath, out); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "Processor.ProcessFile",
			"output_path": outputPath,
			"error":       err.Error(),
		}).Error("Failed to write output file")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Processor.ProcessFile",
		"input_path":  inputPath,
		"output_path": outputPath,
		"channels":    buf.Format.Channels,
		"frames":      buf.Frames(),
		"duration":    buf.Duration(),
	}).Info("Audio file processed successfully")

	return nil
}
