package oggopus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
	"github.com/sirupsen/logrus"
	"gopkg.in/hraban/opus.v2"
)

// Decoder is a pull source of 20 ms mono frames at 48 kHz.
//
// All packets are read when the Decoder is created. NextFrame only decodes
// from memory and reuses one frame buffer, so it does not allocate or block.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	dec     *opus.Decoder
	header  *oggreader.OggHeader
	packets [][]byte
	next    int
	frame   []float32
	err     error
}

// OpenDecoder reads the Ogg Opus file at path into a new Decoder.
func OpenDecoder(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "OpenDecoder",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to open Ogg Opus file")
		return nil, fmt.Errorf("%w: open %s: %v", audioerr.ErrIO, path, err)
	}
	defer f.Close()

	d, err := NewDecoder(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// NewDecoder parses an Ogg Opus stream from r.
//
// The identification header is validated and the comment header skipped.
// Returns ErrCodec for a malformed stream or when libopus cannot be set up.
func NewDecoder(r io.Reader) (*Decoder, error) {
	header, packets, err := readPackets(r)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewDecoder",
			"error":    err.Error(),
		}).Error("Failed to parse Ogg Opus stream")
		return nil, err
	}

	dec, err := opus.NewDecoder(SampleRate, Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: create decoder: %v", audioerr.ErrCodec, err)
	}

	d := &Decoder{
		dec:     dec,
		header:  header,
		packets: packets,
		frame:   make([]float32, FrameSize),
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NewDecoder",
		"channels":     header.Channels,
		"input_rate":   header.SampleRate,
		"pre_skip":     header.PreSkip,
		"packet_count": len(packets),
		"duration":     d.Duration(),
	}).Info("Ogg Opus stream loaded")

	return d, nil
}

// readPackets returns the identification header and every non-empty audio
// packet following the comment header.
func readPackets(r io.Reader) (*oggreader.OggHeader, [][]byte, error) {
	reader, header, err := oggreader.NewWith(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read opus identification header: %v", audioerr.ErrCodec, err)
	}
	if header.Channels != Channels {
		logrus.WithFields(logrus.Fields{
			"function": "readPackets",
			"channels": header.Channels,
		}).Warn("Stream is not mono, decoding as mono")
	}

	if _, _, err := reader.ParseNextPage(); err != nil {
		return nil, nil, fmt.Errorf("%w: read opus comment header: %v", audioerr.ErrCodec, err)
	}

	var packets [][]byte
	for {
		payload, _, err := reader.ParseNextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read ogg page: %v", audioerr.ErrCodec, err)
		}
		if len(payload) == 0 {
			continue
		}
		packets = append(packets, payload)
	}
	return header, packets, nil
}

// NextFrame decodes the next packet.
//
// The returned slice is reused by the following call. ok is false once
// packets are exhausted or a packet fails to decode; Err tells the two
// apart.
func (d *Decoder) NextFrame() (frame []float32, ok bool) {
	if d.err != nil || d.next >= len(d.packets) {
		return nil, false
	}

	n, err := d.dec.DecodeFloat32(d.packets[d.next], d.frame)
	if err != nil {
		d.err = fmt.Errorf("%w: decode packet %d: %v", audioerr.ErrCodec, d.next, err)
		logrus.WithFields(logrus.Fields{
			"function":     "Decoder.NextFrame",
			"packet_index": d.next,
			"error":        err.Error(),
		}).Error("Packet decoding failed")
		return nil, false
	}
	d.next++
	return d.frame[:n], true
}

// Err returns the decode failure that stopped NextFrame, if any.
func (d *Decoder) Err() error {
	return d.err
}

// SampleRate returns the output rate of NextFrame, always 48000.
func (d *Decoder) SampleRate() int {
	return SampleRate
}

// Reset rewinds to the first audio packet and clears any decode error.
func (d *Decoder) Reset() {
	d.next = 0
	d.err = nil
}

// PacketCount returns the number of audio packets in the stream.
func (d *Decoder) PacketCount() int {
	return len(d.packets)
}

// Duration estimates the stream length in seconds from the packet count.
func (d *Decoder) Duration() float64 {
	return float64(len(d.packets)) * FrameDuration
}

// DecodeAll rewinds and decodes the whole stream into one buffer.
func (d *Decoder) DecodeAll() ([]float32, error) {
	d.Reset()
	out := make([]float32, 0, len(d.packets)*FrameSize)
	for frame, ok := d.NextFrame(); ok; frame, ok = d.NextFrame() {
		out = append(out, frame...)
	}
	if d.err != nil {
		return nil, d.err
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Decoder.DecodeAll",
		"packet_count": len(d.packets),
		"sample_count": len(out),
	}).Debug("Stream fully decoded")
	return out, nil
}
