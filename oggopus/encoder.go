package oggopus

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/opd-ai/voicefx/dsp"
	"github.com/opd-ai/voicefx/pcm"
	"github.com/sirupsen/logrus"
	"gopkg.in/hraban/opus.v2"
)

// Encoder converts PCM into Ogg Opus streams.
//
// Settings may be changed between calls from any goroutine. Each Encode call
// works on a snapshot of the settings taken when it starts.
type Encoder struct {
	mu          sync.RWMutex
	bitrate     int
	vendor      string
	serial      uint32
	fixedSerial bool
}

type encoderSettings struct {
	bitrate     int
	vendor      string
	serial      uint32
	fixedSerial bool
}

// NewEncoder returns an encoder at DefaultBitrate.
func NewEncoder() *Encoder {
	logrus.WithFields(logrus.Fields{
		"function": "NewEncoder",
		"bitrate":  DefaultBitrate,
	}).Info("Creating new Ogg Opus encoder")

	return &Encoder{bitrate: DefaultBitrate, vendor: DefaultVendor}
}

// SetBitrate sets the target bitrate in bits per second.
func (e *Encoder) SetBitrate(bitrate int) error {
	if bitrate <= 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Encoder.SetBitrate",
			"bitrate":  bitrate,
			"error":    "bitrate must be positive",
		}).Error("Bitrate validation failed")
		return fmt.Errorf("%w: bitrate must be positive, got %d", audioerr.ErrInvalidConfig, bitrate)
	}

	e.mu.Lock()
	old := e.bitrate
	e.bitrate = bitrate
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "Encoder.SetBitrate",
		"old_bitrate": old,
		"new_bitrate": bitrate,
	}).Info("Encoder bitrate updated")
	return nil
}

// Bitrate returns the current target bitrate.
func (e *Encoder) Bitrate() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bitrate
}

// SetVendor sets the vendor string written to the OpusTags header.
func (e *Encoder) SetVendor(vendor string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vendor = vendor
}

// SetSerial fixes the Ogg stream serial. Without it the serial is derived
// from the encoded content.
func (e *Encoder) SetSerial(serial uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.serial = serial
	e.fixedSerial = true
}

func (e *Encoder) settings() encoderSettings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return encoderSettings{
		bitrate:     e.bitrate,
		vendor:      e.vendor,
		serial:      e.serial,
		fixedSerial: e.fixedSerial,
	}
}

// EncodeFile encodes the WAV file at wavPath into a new Ogg Opus file at
// opusPath. Multi-channel input is reduced to its first channel.
func (e *Encoder) EncodeFile(wavPath, opusPath string) error {
	logrus.WithFields(logrus.Fields{
		"function":  "Encoder.EncodeFile",
		"wav_path":  wavPath,
		"opus_path": opusPath,
	}).Info("Encoding WAV file to Ogg Opus")

	buf, err := pcm.ReadFile(wavPath)
	if err != nil {
		return err
	}

	f, err := os.Create(opusPath)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "Encoder.EncodeFile",
			"opus_path": opusPath,
			"error":     err.Error(),
		}).Error("Failed to create output file")
		return fmt.Errorf("%w: create %s: %v", audioerr.ErrIO, opusPath, err)
	}

	bw := bufio.NewWriter(f)
	if err := e.Encode(bw, pcm.FirstChannel(buf), buf.Format.SampleRate); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: flush %s: %v", audioerr.ErrIO, opusPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", audioerr.ErrIO, opusPath, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Encoder.EncodeFile",
		"wav_path":  wavPath,
		"opus_path": opusPath,
		"duration":  buf.Duration(),
	}).Info("WAV file encoded successfully")
	return nil
}

// Encode writes samples as a complete Ogg Opus stream to w.
//
// Parameters:
//   - w: Destination for the Ogg pages
//   - samples: Mono samples normalized to [-1, 1]
//   - sampleRate: Rate of samples in Hz, resampled to 48 kHz when different
//
// Returns:
//   - error: ErrInvalidConfig for a non-positive rate, ErrCodec when libopus
//     fails, ErrIO when a page cannot be written
func (e *Encoder) Encode(w io.Writer, samples []float32, sampleRate int) error {
	s := e.settings()

	logrus.WithFields(logrus.Fields{
		"function":     "Encoder.Encode",
		"sample_count": len(samples),
		"sample_rate":  sampleRate,
		"bitrate":      s.bitrate,
	}).Info("Encoding PCM to Ogg Opus")

	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", audioerr.ErrInvalidConfig, sampleRate)
	}

	resampled, err := dsp.Resample(samples, uint32(sampleRate), SampleRate)
	if err != nil {
		return err
	}
	quantized := quantize(resampled)

	enc, err := newOpusEncoder(s.bitrate, sampleRate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Encoder.Encode",
			"bitrate":  s.bitrate,
			"error":    err.Error(),
		}).Error("Failed to create libopus encoder")
		return err
	}

	serial := s.serial
	if !s.fixedSerial {
		serial = deriveSerial(s.bitrate, sampleRate, s.vendor, quantized)
	}
	pw := NewPageWriter(w, serial)

	if err := pw.WritePage(opusHead(), PageBeginOfStream, 0); err != nil {
		return err
	}
	if err := pw.WritePage(opusTags(s.vendor), PageContinuation, 0); err != nil {
		return err
	}

	frame := make([]int16, FrameSize)
	packet := make([]byte, MaxPacketSize)
	var granule uint64
	frames := 0

	for pos := 0; pos < len(quantized); pos += FrameSize {
		n := copy(frame, quantized[pos:])
		clear(frame[n:])

		size, err := enc.Encode(frame, packet)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "Encoder.Encode",
				"frame_index": frames,
				"error":       err.Error(),
			}).Error("Frame encoding failed")
			return fmt.Errorf("%w: encode frame %d: %v", audioerr.ErrCodec, frames, err)
		}

		granule += FrameSize
		if err := pw.WritePage(packet[:size], PageContinuation, granule); err != nil {
			return err
		}
		frames++
	}

	if err := pw.WritePage(nil, PageEndOfStream, granule); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Encoder.Encode",
		"frames":   frames,
		"pages":    pw.PagesWritten(),
		"serial":   serial,
		"granule":  granule,
	}).Info("Ogg Opus stream encoded successfully")
	return nil
}

func newOpusEncoder(bitrate, sourceRate int) (*opus.Encoder, error) {
	enc, err := opus.NewEncoder(SampleRate, Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("%w: create encoder: %v", audioerr.ErrCodec, err)
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return nil, fmt.Errorf("%w: set bitrate %d: %v", audioerr.ErrCodec, bitrate, err)
	}
	if err := enc.SetMaxBandwidth(encoderBandwidth(GetBandwidthFromSampleRate(sourceRate))); err != nil {
		return nil, fmt.Errorf("%w: set max bandwidth: %v", audioerr.ErrCodec, err)
	}
	return enc, nil
}

// quantize converts normalized samples to 16-bit with rounding and clamping.
func quantize(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(math.Max(-32768, math.Min(32767, math.Round(float64(s)*32767))))
	}
	return out
}
