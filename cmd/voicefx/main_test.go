package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/opd-ai/voicefx/processor"
	pionopus "github.com/pion/opus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("voicefx"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestEffectFlagDefaultsMatchProcessor(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(in, nil, 0o644))

	cli, kctx := parse(t, "process", in, "out.wav")
	assert.Equal(t, "process <input> <output>", kctx.Command())
	assert.Equal(t, processor.DefaultConfig(), cli.Process.Config())
}

func TestEffectFlagToggles(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(in, nil, 0o644))

	cli, _ := parse(t, "pipeline", "--no-limiter", "--gain-boost", "--gain=12", "--highpass=0", "--bitrate=24000", in)
	cfg := cli.Pipeline.Config()
	assert.False(t, cfg.LimiterEnabled)
	assert.True(t, cfg.GainBoostEnabled)
	assert.Equal(t, 12.0, cfg.GainDB)
	assert.Equal(t, 0.0, cfg.HighpassFreq)
	assert.Equal(t, 24000, cli.Pipeline.Bitrate)
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)

	closeLog, err := configureLogging("DEBUG", "")
	require.NoError(t, err)
	closeLog()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	path := filepath.Join(t.TempDir(), "voicefx.log")
	closeLog, err = configureLogging("warn", path)
	require.NoError(t, err)
	logrus.Warn("written to file")
	closeLog()
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	_, err = configureLogging("loud", "")
	assert.Error(t, err)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KiB", formatBytes(2048))
	assert.Equal(t, "1.50 MiB", formatBytes(3<<19))
}

func TestFormatBandwidth(t *testing.T) {
	assert.Equal(t, "Wideband (16 kHz)", formatBandwidth(pionopus.BandwidthWideband))
	assert.Equal(t, "Fullband (48 kHz)", formatBandwidth(pionopus.BandwidthFullband))
	assert.Equal(t, "none", formatBandwidth(0))
}
