package dsp

import (
	"fmt"
	"math"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/sirupsen/logrus"
)

// Resampler provides sample rate conversion for whole mono buffers.
//
// Uses linear interpolation between adjacent samples. The first and last
// output samples land exactly on the first and last input samples, so a
// buffer is stretched end to end rather than streamed. The Opus encoder
// uses it to bring whole recordings to 48 kHz; playback streams through
// StreamResampler instead.
type Resampler struct {
	inputRate  uint32
	outputRate uint32
}

// ResamplerConfig holds configuration for creating a resampler.
type ResamplerConfig struct {
	InputRate  uint32 // Input sample rate in Hz
	OutputRate uint32 // Output sample rate in Hz
}

// NewResampler creates a new resampler instance.
//
// Parameters:
//   - config: Resampler configuration
//
// Returns:
//   - *Resampler: New resampler instance
//   - error: ErrInvalidConfig if either rate is zero
func NewResampler(config ResamplerConfig) (*Resampler, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewResampler",
		"input_rate":  config.InputRate,
		"output_rate": config.OutputRate,
	}).Debug("Creating resampler")

	if config.InputRate == 0 || config.OutputRate == 0 {
		logrus.WithFields(logrus.Fields{
			"function":    "NewResampler",
			"input_rate":  config.InputRate,
			"output_rate": config.OutputRate,
			"error":       "invalid sample rates",
		}).Error("Sample rate validation failed")
		return nil, fmt.Errorf("%w: invalid sample rates: input=%d, output=%d",
			audioerr.ErrInvalidConfig, config.InputRate, config.OutputRate)
	}

	return &Resampler{
		inputRate:  config.InputRate,
		outputRate: config.OutputRate,
	}, nil
}

// Resample converts a buffer from the input rate to the output rate.
//
// Parameters:
//   - input: Mono samples at the input rate
//
// Returns:
//   - []float32: New buffer at the output rate
func (r *Resampler) Resample(input []float32) []float32 {
	if r.inputRate == r.outputRate {
		result := make([]float32, len(input))
		copy(result, input)
		return result
	}

	outLen := r.CalculateOutputSize(len(input))
	output := make([]float32, outLen)
	if outLen == 0 || len(input) == 0 {
		return output
	}

	scale := 0.0
	if outLen > 1 {
		scale = float64(len(input)-1) / float64(outLen-1)
	}
	last := len(input) - 1

	for i := range output {
		pos := float64(i) * scale
		index := int(pos)
		if index >= last {
			output[i] = input[last]
			continue
		}
		frac := pos - float64(index)
		output[i] = float32(float64(input[index])*(1-frac) + float64(input[index+1])*frac)
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Resampler.Resample",
		"input_rate":   r.inputRate,
		"output_rate":  r.outputRate,
		"input_length": len(input),
		"output_size":  len(output),
	}).Debug("Resampling completed")

	return output
}

// CalculateOutputSize returns the output length for an input of inputSize
// samples.
func (r *Resampler) CalculateOutputSize(inputSize int) int {
	if r.inputRate == r.outputRate {
		return inputSize
	}
	return int(float64(inputSize) * float64(r.outputRate) / float64(r.inputRate))
}

// GetInputRate returns the configured input sample rate.
func (r *Resampler) GetInputRate() uint32 {
	return r.inputRate
}

// GetOutputRate returns the configured output sample rate.
func (r *Resampler) GetOutputRate() uint32 {
	return r.outputRate
}

// Resample converts samples between two rates with a one-off Resampler.
func Resample(samples []float32, inputRate, outputRate uint32) ([]float32, error) {
	r, err := NewResampler(ResamplerConfig{InputRate: inputRate, OutputRate: outputRate})
	if err != nil {
		return nil, err
	}
	return r.Resample(samples), nil
}

// StreamResampler converts a signal delivered in consecutive chunks.
//
// The fractional read position and the last input sample carry over from
// one chunk to the next, so chunk boundaries are invisible in the output and
// the long-run rate ratio is exact. ResampleInto neither allocates nor logs,
// which makes it usable from a real-time callback.
type StreamResampler struct {
	inputRate  uint32
	outputRate uint32
	step       float64
	pos        float64
	prev       float32
}

// NewStreamResampler creates a streaming resampler for config.
//
// Returns ErrInvalidConfig if either rate is zero.
func NewStreamResampler(config ResamplerConfig) (*StreamResampler, error) {
	if config.InputRate == 0 || config.OutputRate == 0 {
		return nil, fmt.Errorf("%w: invalid sample rates: input=%d, output=%d",
			audioerr.ErrInvalidConfig, config.InputRate, config.OutputRate)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewStreamResampler",
		"input_rate":  config.InputRate,
		"output_rate": config.OutputRate,
	}).Debug("Creating stream resampler")

	return &StreamResampler{
		inputRate:  config.InputRate,
		outputRate: config.OutputRate,
		step:       float64(config.InputRate) / float64(config.OutputRate),
	}, nil
}

// MaxOutputSize returns the largest number of samples ResampleInto can
// produce from an input chunk of inputSize samples.
func (r *StreamResampler) MaxOutputSize(inputSize int) int {
	return int(math.Ceil(float64(inputSize)/r.step)) + 1
}

// ResampleInto converts src, the next chunk of the stream, into dst and
// returns the number of samples written. dst must hold at least
// MaxOutputSize(len(src)) samples; output beyond len(dst) is dropped.
func (r *StreamResampler) ResampleInto(dst, src []float32) int {
	n := len(src)
	if n == 0 {
		return 0
	}

	last := float64(n - 1)
	written := 0
	// pos is relative to src[0]; -1 addresses the previous chunk's last sample.
	for r.pos < last && written < len(dst) {
		index := int(math.Floor(r.pos))
		frac := r.pos - float64(index)
		a := r.prev
		if index >= 0 {
			a = src[index]
		}
		b := src[index+1]
		dst[written] = float32(float64(a)*(1-frac) + float64(b)*frac)
		written++
		r.pos += r.step
	}
	if r.pos < last {
		// dst was too short; skip the dropped span
		r.pos = last
	}

	r.pos -= float64(n)
	r.prev = src[n-1]
	return written
}

// Reset returns the resampler to the start of a new stream.
func (r *StreamResampler) Reset() {
	r.pos = 0
	r.prev = 0
}
