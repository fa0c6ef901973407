// Package pcm is the linear-PCM container boundary of voicefx.
//
// WAV files are decoded into interleaved float32 samples normalized to
// [-1, 1] together with the original format tuple, and written back using
// that tuple verbatim. Only 16-bit integer and 32-bit float sample formats
// are supported.
package pcm

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/opd-ai/voicefx/audioerr"
	"github.com/sirupsen/logrus"
)

// WAV format codes.
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// SampleFormat is the on-disk sample encoding.
type SampleFormat int

const (
	// SampleFormatInt is signed 16-bit integer PCM.
	SampleFormatInt SampleFormat = iota
	// SampleFormatFloat is 32-bit IEEE float PCM.
	SampleFormatFloat
)

// String returns the format name.
func (f SampleFormat) String() string {
	switch f {
	case SampleFormatInt:
		return "int"
	case SampleFormatFloat:
		return "float"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// Format is the (channels, sample_rate, bits_per_sample, sample_format)
// tuple of a PCM stream.
type Format struct {
	Channels     int
	SampleRate   int
	BitDepth     int
	SampleFormat SampleFormat
}

// Buffer holds decoded, interleaved samples and the format they came from.
type Buffer struct {
	Format  Format
	Samples []float32
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length in seconds.
func (b *Buffer) Duration() float64 {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Format.SampleRate)
}

// MonoFormat returns a 16-bit integer mono format at sampleRate.
func MonoFormat(sampleRate int) Format {
	return Format{Channels: 1, SampleRate: sampleRate, BitDepth: 16, SampleFormat: SampleFormatInt}
}

// ReadFile opens and decodes the WAV file at path.
func ReadFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ReadFile",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to open WAV file")
		return nil, fmt.Errorf("%w: open %s: %v", audioerr.ErrIO, path, err)
	}
	defer f.Close()

	buf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "ReadFile",
		"path":          path,
		"channels":      buf.Format.Channels,
		"sample_rate":   buf.Format.SampleRate,
		"bit_depth":     buf.Format.BitDepth,
		"sample_format": buf.Format.SampleFormat.String(),
		"frames":        buf.Frames(),
	}).Info("WAV file decoded")

	return buf, nil
}

// Decode reads a WAV stream.
//
// Integer samples are normalized by 1/32768. WAVE_FORMAT_EXTENSIBLE files
// are classified by their SubFormat. Returns ErrUnsupportedFormat for
// anything other than 16-bit integer or 32-bit float data and ErrIO when the
// stream cannot be parsed.
func Decode(r io.ReadSeeker) (*Buffer, error) {
	// Errors surface below from the wav decoder; an unreadable extension just
	// leaves the sub-format unknown.
	subFormat, _ := subFormatCode(r)

	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: read wav header: %v", audioerr.ErrIO, err)
	}
	if dec.NumChans == 0 {
		return nil, fmt.Errorf("%w: missing wav fmt chunk", audioerr.ErrIO)
	}

	format, err := formatFromHeader(dec.WavAudioFormat, subFormat, int(dec.BitDepth))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":     "Decode",
			"audio_format": dec.WavAudioFormat,
			"sub_format":   subFormat,
			"bit_depth":    dec.BitDepth,
			"error":        err.Error(),
		}).Error("Unsupported WAV sample format")
		return nil, err
	}
	format.Channels = int(dec.NumChans)
	format.SampleRate = int(dec.SampleRate)

	intBuf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: read pcm data: %v", audioerr.ErrIO, err)
	}

	samples := make([]float32, len(intBuf.Data))
	switch format.SampleFormat {
	case SampleFormatFloat:
		for i, v := range intBuf.Data {
			samples[i] = math.Float32frombits(uint32(int32(v)))
		}
	default:
		for i, v := range intBuf.Data {
			samples[i] = float32(v) / 32768
		}
	}

	return &Buffer{Format: format, Samples: samples}, nil
}

// formatFromHeader resolves the sample format. For WAVE_FORMAT_EXTENSIBLE the
// SubFormat code decides; an unknown one (0) is taken as integer PCM.
func formatFromHeader(audioFormat, subFormat uint16, bitDepth int) (Format, error) {
	code := audioFormat
	if audioFormat == wavFormatExtensible && subFormat != 0 {
		code = subFormat
	}

	switch {
	case code == wavFormatIEEEFloat && bitDepth == 32:
		return Format{BitDepth: 32, SampleFormat: SampleFormatFloat}, nil
	case (code == wavFormatPCM || code == wavFormatExtensible) && bitDepth == 16:
		return Format{BitDepth: 16, SampleFormat: SampleFormatInt}, nil
	default:
		return Format{}, fmt.Errorf("%w: wav format %#x with %d bits per sample",
			audioerr.ErrUnsupportedFormat, code, bitDepth)
	}
}

// WriteFile encodes buf to a new WAV file at path.
func WriteFile(path string, buf *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "WriteFile",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to create WAV file")
		return fmt.Errorf("%w: create %s: %v", audioerr.ErrIO, path, err)
	}

	if err := Encode(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", audioerr.ErrIO, path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "WriteFile",
		"path":          path,
		"channels":      buf.Format.Channels,
		"sample_rate":   buf.Format.SampleRate,
		"sample_format": buf.Format.SampleFormat.String(),
		"frames":        buf.Frames(),
	}).Info("WAV file written")

	return nil
}

// Encode writes buf as WAV using buf.Format verbatim.
//
// Integer output uses the same 32768 scale as Decode, so an unmodified
// buffer round-trips bit-identically.
func Encode(w io.WriteSeeker, buf *Buffer) error {
	var audioFormat int
	data := make([]int, len(buf.Samples))

	switch {
	case buf.Format.SampleFormat == SampleFormatFloat && buf.Format.BitDepth == 32:
		audioFormat = wavFormatIEEEFloat
		for i, s := range buf.Samples {
			data[i] = int(int32(math.Float32bits(s)))
		}
	case buf.Format.SampleFormat == SampleFormatInt && buf.Format.BitDepth == 16:
		audioFormat = wavFormatPCM
		for i, s := range buf.Samples {
			data[i] = int(Int16(s))
		}
	default:
		return fmt.Errorf("%w: %s with %d bits per sample",
			audioerr.ErrUnsupportedFormat, buf.Format.SampleFormat, buf.Format.BitDepth)
	}

	enc := wav.NewEncoder(w, buf.Format.SampleRate, buf.Format.BitDepth, buf.Format.Channels, audioFormat)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Format.Channels,
			SampleRate:  buf.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: buf.Format.BitDepth,
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("%w: write pcm data: %v", audioerr.ErrIO, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: finalize wav: %v", audioerr.ErrIO, err)
	}
	return nil
}

// Int16 converts a normalized sample to 16-bit PCM, rounding to the nearest
// step and clamping to the int16 range.
func Int16(s float32) int16 {
	v := math.Max(-32768, math.Min(32767, math.Round(float64(s)*32768)))
	return int16(v)
}
