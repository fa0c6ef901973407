package processor

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/opd-ai/voicefx/audioerr"
	"github.com/opd-ai/voicefx/dsp"
	"github.com/opd-ai/voicefx/pcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, amp float64, sampleRate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func constant(v float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func allDisabled() Config {
	cfg := DefaultConfig()
	cfg.RMSEnabled = false
	cfg.FiltersEnabled = false
	cfg.SpectralGateEnabled = false
	cfg.AmplitudeGateEnabled = false
	cfg.GainBoostEnabled = false
	cfg.LimiterEnabled = false
	cfg.FadeInMs = 0
	return cfg
}

func writeWAV(t *testing.T, path string, format pcm.Format, samples []float32) {
	t.Helper()
	require.NoError(t, pcm.WriteFile(path, &pcm.Buffer{Format: format, Samples: samples}))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 48000.0, cfg.SampleRate)
	assert.False(t, cfg.GainBoostEnabled)
	assert.True(t, cfg.LimiterEnabled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero highpass", func(c *Config) { c.HighpassFreq = 0 }, false},
		{"zero fade", func(c *Config) { c.FadeInMs = 0 }, false},
		{"negative dB values", func(c *Config) { c.GainDB = -12; c.ThresholdDB = -40 }, false},
		{"highpass too high", func(c *Config) { c.HighpassFreq = 1500 }, true},
		{"negative highpass", func(c *Config) { c.HighpassFreq = -1 }, true},
		{"lowpass too low", func(c *Config) { c.LowpassFreq = 500 }, true},
		{"lowpass too high", func(c *Config) { c.LowpassFreq = 30000 }, true},
		{"zero attack", func(c *Config) { c.AmplitudeAttackMs = 0 }, true},
		{"negative release", func(c *Config) { c.LimiterReleaseMs = -5 }, true},
		{"zero lookahead", func(c *Config) { c.LimiterLookaheadMs = 0 }, true},
		{"negative fade", func(c *Config) { c.FadeInMs = -1 }, true},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, audioerr.ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}

			_, err = NewProcessor(cfg)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestStageOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []dsp.StageKind
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
			want: []dsp.StageKind{
				dsp.KindRMSNormalize, dsp.KindFilter, dsp.KindSpectralGate,
				dsp.KindAmplitudeGate, dsp.KindLimiter, dsp.KindFadeIn,
			},
		},
		{
			name: "everything",
			mutate: func(c *Config) {
				c.GainBoostEnabled = true
			},
			want: []dsp.StageKind{
				dsp.KindRMSNormalize, dsp.KindFilter, dsp.KindSpectralGate,
				dsp.KindAmplitudeGate, dsp.KindGainBoost, dsp.KindLimiter, dsp.KindFadeIn,
			},
		},
		{
			name:   "nothing",
			mutate: func(c *Config) { *c = allDisabled() },
			want:   []dsp.StageKind{dsp.KindFadeIn},
		},
		{
			name: "boost and filter",
			mutate: func(c *Config) {
				*c = allDisabled()
				c.GainBoostEnabled = true
				c.FiltersEnabled = true
			},
			want: []dsp.StageKind{dsp.KindFilter, dsp.KindGainBoost, dsp.KindFadeIn},
		},
		{
			name: "gates only",
			mutate: func(c *Config) {
				*c = allDisabled()
				c.AmplitudeGateEnabled = true
				c.SpectralGateEnabled = true
			},
			want: []dsp.StageKind{dsp.KindSpectralGate, dsp.KindAmplitudeGate, dsp.KindFadeIn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			p, err := NewProcessor(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Stages())
		})
	}
}

func TestProcessBufferPreservesLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GainBoostEnabled = true
	p, err := NewProcessor(cfg)
	require.NoError(t, err)

	for _, n := range []int{0, 1, 100, 4096, 10000} {
		out, err := p.ProcessBuffer(sine(440, 0.5, 48000, n), 48000)
		require.NoError(t, err)
		assert.Len(t, out, n)
	}
}

func TestProcessBufferRespectsLimiterCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GainBoostEnabled = true
	cfg.GainDB = 20
	p, err := NewProcessor(cfg)
	require.NoError(t, err)

	out, err := p.ProcessBuffer(sine(440, 0.8, 48000, 48000), 48000)
	require.NoError(t, err)
	assert.LessOrEqual(t, dsp.Peak(out), dsp.DBToLinear(cfg.LimiterThresholdDB)+1e-6)
}

func TestProcessBufferDefaultsToConfigRate(t *testing.T) {
	cfg := allDisabled()
	cfg.FadeInMs = 100
	cfg.SampleRate = 16000
	p, err := NewProcessor(cfg)
	require.NoError(t, err)

	withDefault, err := p.ProcessBuffer(constant(0.5, 3200), 0)
	require.NoError(t, err)
	explicit, err := p.ProcessBuffer(constant(0.5, 3200), 16000)
	require.NoError(t, err)
	assert.Equal(t, explicit, withDefault)

	// 100 ms at 16 kHz is 1600 samples of fade.
	assert.Less(t, withDefault[800], float32(0.5))
	assert.Equal(t, float32(0.5), withDefault[1700])
}

func TestProcessFileUsesFileRate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	writeWAV(t, in, pcm.MonoFormat(16000), constant(0.5, 3200))

	cfg := allDisabled()
	cfg.FadeInMs = 100
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	require.Equal(t, 48000.0, p.Config().SampleRate)
	require.NoError(t, p.ProcessFile(context.Background(), in, out))

	buf, err := pcm.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, buf.Samples, 3200)
	assert.Less(t, buf.Samples[800], float32(0.5))
	assert.Equal(t, float32(0.5), buf.Samples[1700], "fade length must follow the 16 kHz file rate")
	assert.Equal(t, 48000.0, p.Config().SampleRate)
}

func TestProcessFileAllDisabledIsBitIdentical(t *testing.T) {
	tests := []struct {
		name   string
		format pcm.Format
	}{
		{"int16 mono", pcm.Format{Channels: 1, SampleRate: 44100, BitDepth: 16, SampleFormat: pcm.SampleFormatInt}},
		{"int16 stereo", pcm.Format{Channels: 2, SampleRate: 48000, BitDepth: 16, SampleFormat: pcm.SampleFormatInt}},
		{"float mono", pcm.Format{Channels: 1, SampleRate: 48000, BitDepth: 32, SampleFormat: pcm.SampleFormatFloat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.wav")
			out := filepath.Join(dir, "out.wav")
			writeWAV(t, in, tt.format, sine(440, 0.5, tt.format.SampleRate, 4800*tt.format.Channels))

			p, err := NewProcessor(allDisabled())
			require.NoError(t, err)
			require.NoError(t, p.ProcessFile(context.Background(), in, out))

			want, err := os.ReadFile(in)
			require.NoError(t, err)
			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestProcessFileKeepsFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	format := pcm.Format{Channels: 2, SampleRate: 44100, BitDepth: 32, SampleFormat: pcm.SampleFormatFloat}
	writeWAV(t, in, format, sine(300, 0.3, 44100, 2*22050))

	p, err := NewProcessor(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, p.ProcessFile(context.Background(), in, out))

	buf, err := pcm.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, format, buf.Format)
	assert.Equal(t, 22050, buf.Frames())
}

func TestProcessFileErrors(t *testing.T) {
	dir := t.TempDir()
	p, err := NewProcessor(DefaultConfig())
	require.NoError(t, err)

	t.Run("missing input", func(t *testing.T) {
		err := p.ProcessFile(context.Background(), filepath.Join(dir, "nope.wav"), filepath.Join(dir, "out.wav"))
		assert.True(t, errors.Is(err, audioerr.ErrIO))
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(dir, "8bit.wav")
		f, err := os.Create(path)
		require.NoError(t, err)
		enc := wav.NewEncoder(f, 8000, 8, 1, 1)
		require.NoError(t, enc.Write(&audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
			Data:           []int{128, 130, 126},
			SourceBitDepth: 8,
		}))
		require.NoError(t, enc.Close())
		require.NoError(t, f.Close())

		err = p.ProcessFile(context.Background(), path, filepath.Join(dir, "out.wav"))
		assert.True(t, errors.Is(err, audioerr.ErrUnsupportedFormat))
	})

	t.Run("unwritable output", func(t *testing.T) {
		in := filepath.Join(dir, "in.wav")
		writeWAV(t, in, pcm.MonoFormat(48000), sine(440, 0.5, 48000, 480))
		err := p.ProcessFile(context.Background(), in, filepath.Join(dir, "missing-dir", "out.wav"))
		assert.True(t, errors.Is(err, audioerr.ErrIO))
	})

	t.Run("cancelled", func(t *testing.T) {
		in := filepath.Join(dir, "cancel.wav")
		out := filepath.Join(dir, "cancel-out.wav")
		writeWAV(t, in, pcm.MonoFormat(48000), sine(440, 0.5, 48000, 480))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.ProcessFile(ctx, in, out)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoFileExists(t, out)
	})
}
