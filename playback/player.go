// Package playback feeds decoded audio to a real-time output callback.
//
// A Player pulls frames from a Source, converts them to the device rate and
// copies them into the buffers the audio callback hands it. Fill never
// blocks: when the control side holds the lock, or playback is stopped or
// finished, the callback gets silence.
package playback

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/opd-ai/voicefx/dsp"
	"github.com/sirupsen/logrus"
)

// Source produces mono frames on demand.
type Source interface {
	// NextFrame returns the next frame, or false when the source is
	// exhausted. The slice is only valid until the next call.
	NextFrame() ([]float32, bool)
	// SampleRate returns the rate of the frames in Hz.
	SampleRate() int
	// Reset rewinds to the first frame.
	Reset()
}

// Player adapts a Source to a real-time fill callback.
type Player struct {
	mu         sync.Mutex
	src        Source
	resampler  *dsp.StreamResampler
	outputRate int
	pending    []float32
	converted  []float32

	stopped  atomic.Bool
	finished atomic.Bool
}

// NewPlayer creates a player that delivers src at outputRate.
//
// Frames are converted with a streaming linear resampler when the rates
// differ. The conversion buffer is sized here so Fill does not allocate for
// frames up to FrameSize samples.
func NewPlayer(src Source, outputRate int) (*Player, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewPlayer",
		"source_rate": src.SampleRate(),
		"output_rate": outputRate,
	}).Info("Creating new player")

	if outputRate <= 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: sample rates must be positive, source %d output %d",
			audioerr.ErrInvalidConfig, src.SampleRate(), outputRate)
	}

	p := &Player{src: src, outputRate: outputRate}
	if src.SampleRate() != outputRate {
		r, err := dsp.NewStreamResampler(dsp.ResamplerConfig{
			InputRate:  uint32(src.SampleRate()),
			OutputRate: uint32(outputRate),
		})
		if err != nil {
			return nil, err
		}
		p.resampler = r
		p.converted = make([]float32, r.MaxOutputSize(FrameSize))
	}
	return p, nil
}

// OutputRate returns the rate Fill delivers in Hz.
func (p *Player) OutputRate() int {
	return p.outputRate
}

// Fill writes the next len(out) samples into out and reports whether any
// audio was produced. It is safe to call from a real-time thread.
//
// The remainder of out is zeroed after stop, after the source is exhausted,
// and whenever the control side holds the player lock.
func (p *Player) Fill(out []float32) bool {
	if p.stopped.Load() {
		clear(out)
		return false
	}
	if !p.mu.TryLock() {
		clear(out)
		return false
	}
	defer p.mu.Unlock()

	written := 0
	for written < len(out) {
		if len(p.pending) == 0 && !p.pull() {
			break
		}
		n := copy(out[written:], p.pending)
		p.pending = p.pending[n:]
		written += n
	}
	clear(out[written:])
	return written > 0
}

// pull fetches and converts the next frame. Caller holds mu.
func (p *Player) pull() bool {
	for {
		frame, ok := p.src.NextFrame()
		if !ok {
			p.finished.Store(true)
			return false
		}
		if p.resampler == nil {
			p.pending = frame
			return true
		}
		if need := p.resampler.MaxOutputSize(len(frame)); need > len(p.converted) {
			p.converted = make([]float32, need)
		}
		n := p.resampler.ResampleInto(p.converted, frame)
		if n > 0 {
			p.pending = p.converted[:n]
			return true
		}
	}
}

// Stop halts playback. The next Fill writes silence.
func (p *Player) Stop() {
	p.stopped.Store(true)
	logrus.WithFields(logrus.Fields{
		"function": "Player.Stop",
	}).Debug("Playback stop requested")
}

// Rewind restarts playback from the first frame and clears the stopped and
// finished flags. It blocks until an in-flight Fill returns.
func (p *Player) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.src.Reset()
	p.pending = nil
	if p.resampler != nil {
		p.resampler.Reset()
	}
	p.finished.Store(false)
	p.stopped.Store(false)

	logrus.WithFields(logrus.Fields{
		"function": "Player.Rewind",
	}).Debug("Playback rewound")
}

// Stopped reports whether Stop was called since the last Rewind.
func (p *Player) Stopped() bool {
	return p.stopped.Load()
}

// Finished reports whether the source has been exhausted.
func (p *Player) Finished() bool {
	return p.finished.Load()
}
