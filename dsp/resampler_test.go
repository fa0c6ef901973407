package dsp

import (
	"errors"
	"math"
	"testing"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResampler(t *testing.T) {
	tests := []struct {
		name      string
		config    ResamplerConfig
		expectErr bool
	}{
		{
			name:   "valid_config",
			config: ResamplerConfig{InputRate: 44100, OutputRate: 48000},
		},
		{
			name:      "zero_input_rate",
			config:    ResamplerConfig{InputRate: 0, OutputRate: 48000},
			expectErr: true,
		},
		{
			name:      "zero_output_rate",
			config:    ResamplerConfig{InputRate: 44100, OutputRate: 0},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResampler(tt.config)
			if tt.expectErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, audioerr.ErrInvalidConfig))
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.InputRate, r.GetInputRate())
			assert.Equal(t, tt.config.OutputRate, r.GetOutputRate())
		})
	}
}

func TestResampleSameRateCopies(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 48000, OutputRate: 48000})
	require.NoError(t, err)

	input := []float32{0.1, -0.2, 0.3}
	output := r.Resample(input)
	assert.Equal(t, input, output)

	output[0] = 1
	assert.Equal(t, float32(0.1), input[0], "output must not alias input")
}

func TestResampleLength(t *testing.T) {
	tests := []struct {
		name       string
		inputRate  uint32
		outputRate uint32
		inputLen   int
		wantLen    int
	}{
		{"upsample_cd", 44100, 48000, 44100, 48000},
		{"upsample_wideband", 16000, 48000, 160, 480},
		{"downsample", 48000, 16000, 480, 160},
		{"empty", 44100, 48000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResampler(ResamplerConfig{InputRate: tt.inputRate, OutputRate: tt.outputRate})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, r.CalculateOutputSize(tt.inputLen))
			assert.Len(t, r.Resample(make([]float32, tt.inputLen)), tt.wantLen)
		})
	}
}

func TestResampleLinearRampStaysLinear(t *testing.T) {
	input := make([]float32, 100)
	for i := range input {
		input[i] = float32(i) / 99
	}

	output, err := Resample(input, 16000, 48000)
	require.NoError(t, err)
	require.Len(t, output, 300)

	assert.InDelta(t, 0.0, output[0], 1e-6)
	assert.InDelta(t, 1.0, output[len(output)-1], 1e-6)
	for i, v := range output {
		want := float64(i) / float64(len(output)-1)
		if diff := float64(v) - want; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("output[%d] = %f, want %f", i, v, want)
		}
	}
}

func TestResampleSingleSample(t *testing.T) {
	output, err := Resample([]float32{0.5}, 8000, 48000)
	require.NoError(t, err)
	require.Len(t, output, 6)
	for _, v := range output {
		assert.Equal(t, float32(0.5), v)
	}
}

func TestNewStreamResamplerInvalidRates(t *testing.T) {
	_, err := NewStreamResampler(ResamplerConfig{InputRate: 0, OutputRate: 48000})
	assert.True(t, errors.Is(err, audioerr.ErrInvalidConfig))
	_, err = NewStreamResampler(ResamplerConfig{InputRate: 48000, OutputRate: 0})
	assert.True(t, errors.Is(err, audioerr.ErrInvalidConfig))
}

func streamRamp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * 1e-5
	}
	return out
}

func TestStreamResamplerIsContinuousAcrossChunks(t *testing.T) {
	tests := []struct {
		name       string
		inputRate  uint32
		outputRate uint32
		chunk      int
	}{
		{"44100 to 48000 in frames", 44100, 48000, 960},
		{"48000 to 44100 in frames", 48000, 44100, 960},
		{"16000 to 48000 odd chunks", 16000, 48000, 317},
		{"48000 to 8000 single samples", 48000, 8000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewStreamResampler(ResamplerConfig{InputRate: tt.inputRate, OutputRate: tt.outputRate})
			require.NoError(t, err)

			input := streamRamp(int(tt.inputRate))
			var output []float32
			dst := make([]float32, r.MaxOutputSize(tt.chunk))
			for pos := 0; pos < len(input); pos += tt.chunk {
				chunk := input[pos:min(pos+tt.chunk, len(input))]
				n := r.ResampleInto(dst, chunk)
				require.LessOrEqual(t, n, r.MaxOutputSize(len(chunk)))
				output = append(output, dst[:n]...)
			}

			// Every output position before the last input sample is emitted.
			step := float64(tt.inputRate) / float64(tt.outputRate)
			assert.InDelta(t, math.Ceil(float64(len(input)-1)/step), float64(len(output)), 1)

			// A ramp is reproduced exactly by linear interpolation, so any
			// seam or dropped sample at a chunk boundary shows up here.
			for j, v := range output {
				want := float64(j) * step * 1e-5
				if !assert.InDelta(t, want, float64(v), 1e-6, "sample %d", j) {
					break
				}
			}
		})
	}
}

func TestStreamResamplerReset(t *testing.T) {
	r, err := NewStreamResampler(ResamplerConfig{InputRate: 44100, OutputRate: 48000})
	require.NoError(t, err)

	input := streamRamp(960)
	dst := make([]float32, r.MaxOutputSize(len(input)))
	first := append([]float32(nil), dst[:r.ResampleInto(dst, input)]...)
	r.ResampleInto(dst, input)

	r.Reset()
	again := dst[:r.ResampleInto(dst, input)]
	assert.Equal(t, first, again)
	assert.Equal(t, float32(0), again[0])
}

func TestStreamResamplerShortDestination(t *testing.T) {
	r, err := NewStreamResampler(ResamplerConfig{InputRate: 8000, OutputRate: 48000})
	require.NoError(t, err)

	dst := make([]float32, 10)
	assert.Equal(t, 10, r.ResampleInto(dst, streamRamp(100)))

	input := streamRamp(100)
	full := make([]float32, r.MaxOutputSize(100))
	n := r.ResampleInto(full, input)
	assert.Positive(t, n)
	assert.Equal(t, input[99], full[0], "the next chunk starts from the previous last sample")
}

func TestStreamResamplerDoesNotAllocate(t *testing.T) {
	r, err := NewStreamResampler(ResamplerConfig{InputRate: 44100, OutputRate: 48000})
	require.NoError(t, err)

	input := streamRamp(960)
	dst := make([]float32, r.MaxOutputSize(len(input)))
	allocs := testing.AllocsPerRun(100, func() {
		r.ResampleInto(dst, input)
	})
	assert.Zero(t, allocs)
}
