package playback

import (
	"github.com/opd-ai/voicefx/pcm"
	"github.com/sirupsen/logrus"
)

// FrameSize is the block length BufferSource hands out.
const FrameSize = 960

// BufferSource serves an in-memory mono buffer in fixed-size frames.
type BufferSource struct {
	samples    []float32
	sampleRate int
	pos        int
}

// NewBufferSource wraps samples recorded at sampleRate. The slice is not
// copied.
func NewBufferSource(samples []float32, sampleRate int) *BufferSource {
	return &BufferSource{samples: samples, sampleRate: sampleRate}
}

// NewWAVSource loads the first channel of the WAV file at path.
func NewWAVSource(path string) (*BufferSource, error) {
	buf, err := pcm.ReadFile(path)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewWAVSource",
		"path":        path,
		"sample_rate": buf.Format.SampleRate,
		"duration":    buf.Duration(),
	}).Debug("WAV playback source loaded")

	return NewBufferSource(pcm.FirstChannel(buf), buf.Format.SampleRate), nil
}

// NextFrame implements Source. The final frame may be short.
func (b *BufferSource) NextFrame() ([]float32, bool) {
	if b.pos >= len(b.samples) {
		return nil, false
	}
	end := min(b.pos+FrameSize, len(b.samples))
	frame := b.samples[b.pos:end]
	b.pos = end
	return frame, true
}

// SampleRate implements Source.
func (b *BufferSource) SampleRate() int {
	return b.sampleRate
}

// Reset implements Source.
func (b *BufferSource) Reset() {
	b.pos = 0
}
