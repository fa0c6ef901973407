package voicefx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/opd-ai/voicefx/oggopus"
	"github.com/opd-ai/voicefx/playback"
	"github.com/opd-ai/voicefx/processor"
	"github.com/sirupsen/logrus"
)

// Artifact file suffixes, appended to the recording's base name.
const (
	SuffixOriginal        = "_original.wav"
	SuffixProcessed       = "_processed.wav"
	SuffixProcessedOpus   = "_processed.opus"
	SuffixUnprocessedOpus = "_unprocessed.opus"
)

// AudioFileInfo summarizes the artifacts of the most recent recording.
type AudioFileInfo struct {
	// FileSize and Duration describe the processed Opus file.
	FileSize int64
	Duration float64

	OriginalWAVSize     int64
	UnprocessedOpusSize int64
	ProcessedOpusSize   int64

	// LastMessage is a human-readable status of the last operation.
	LastMessage string
}

// Artifacts lists the files produced for one recording.
type Artifacts struct {
	Input           string
	Original        string
	Processed       string
	ProcessedOpus   string
	UnprocessedOpus string
}

// ArtifactsFor returns the artifact paths derived from a recording path.
// A trailing ".wav" is stripped before the suffixes are appended.
func ArtifactsFor(wavPath string) Artifacts {
	base := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))
	return Artifacts{
		Input:           wavPath,
		Original:        base + SuffixOriginal,
		Processed:       base + SuffixProcessed,
		ProcessedOpus:   base + SuffixProcessedOpus,
		UnprocessedOpus: base + SuffixUnprocessedOpus,
	}
}

// Variant selects which artifact a player reads.
type Variant int

const (
	// VariantOriginal plays the untouched copy of the recording.
	VariantOriginal Variant = iota
	// VariantProcessedWAV plays the processed WAV file.
	VariantProcessedWAV
	// VariantProcessedOpus plays the processed recording after Opus coding.
	VariantProcessedOpus
	// VariantUnprocessedOpus plays the original recording after Opus coding.
	VariantUnprocessedOpus
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantOriginal:
		return "original"
	case VariantProcessedWAV:
		return "processed-wav"
	case VariantProcessedOpus:
		return "processed-opus"
	case VariantUnprocessedOpus:
		return "unprocessed-opus"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the processor configuration.
func WithConfig(cfg processor.Config) Option {
	return func(s *Session) {
		s.config = cfg
	}
}

// WithEncoder sets the Opus encoder used for both Opus artifacts.
func WithEncoder(enc *oggopus.Encoder) Option {
	return func(s *Session) {
		s.encoder = enc
	}
}

// Session runs the post-recording workflow and keeps its bookkeeping.
//
// Only one ProcessRecording runs at a time; a concurrent call fails with
// ErrBusy instead of waiting.
type Session struct {
	mu        sync.Mutex
	config    processor.Config
	encoder   *oggopus.Encoder
	info      AudioFileInfo
	artifacts *Artifacts

	busy atomic.Bool
}

// NewSession creates a session with default processing and encoding
// settings, then applies opts.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		config:  processor.DefaultConfig(),
		encoder: oggopus.NewEncoder(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewSession",
			"error":    err.Error(),
		}).Error("Session configuration rejected")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewSession",
		"bitrate":  s.encoder.Bitrate(),
	}).Info("Session created")
	return s, nil
}

// Config returns the current processor configuration.
func (s *Session) Config() processor.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetConfig validates and replaces the processor configuration. It takes
// effect on the next ProcessRecording.
func (s *Session) SetConfig(cfg processor.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}

// Encoder returns the session's Opus encoder for bitrate changes.
func (s *Session) Encoder() *oggopus.Encoder {
	return s.encoder
}

// AudioInfo returns a copy of the current bookkeeping.
func (s *Session) AudioInfo() AudioFileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// LastArtifacts returns the artifacts of the last successful recording.
func (s *Session) LastArtifacts() (Artifacts, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts == nil {
		return Artifacts{}, false
	}
	return *s.artifacts, true
}

// ProcessRecording turns a finished recording into its comparison artifacts.
//
// For <base>.wav it writes <base>_original.wav, <base>_processed.wav,
// <base>_processed.opus and <base>_unprocessed.opus, updating AudioInfo as
// each step completes. A failure is recorded in LastMessage and returned.
//
// Parameters:
//   - ctx: Cancellation, checked between steps and processing stages
//   - wavPath: The recorded WAV file
//
// Returns:
//   - Artifacts: Paths of the produced files
//   - error: ErrBusy when another call is running, otherwise the first
//     failing step's error
func (s *Session) ProcessRecording(ctx context.Context, wavPath string) (Artifacts, error) {
	if !s.busy.CompareAndSwap(false, true) {
		logrus.WithFields(logrus.Fields{
			"function": "Session.ProcessRecording",
			"wav_path": wavPath,
		}).Warn("Rejected recording while another operation is running")
		return Artifacts{}, fmt.Errorf("%w: processing %s", audioerr.ErrBusy, wavPath)
	}
	defer s.busy.Store(false)

	logrus.WithFields(logrus.Fields{
		"function": "Session.ProcessRecording",
		"wav_path": wavPath,
	}).Info("Processing recording")

	art := ArtifactsFor(wavPath)
	proc, err := processor.NewProcessor(s.Config())
	if err != nil {
		return Artifacts{}, s.fail("Error configuring processor", err)
	}

	if err := copyFile(wavPath, art.Original); err != nil {
		return Artifacts{}, s.fail("Error copying to original file", err)
	}
	if size, err := fileSize(art.Original); err == nil {
		s.update(func(info *AudioFileInfo) { info.OriginalWAVSize = size })
	}

	if err := proc.ProcessFile(ctx, wavPath, art.Processed); err != nil {
		return Artifacts{}, s.fail("Error processing audio", err)
	}
	if err := ctx.Err(); err != nil {
		return Artifacts{}, s.fail("Processing cancelled", err)
	}

	if err := s.encoder.EncodeFile(art.Processed, art.ProcessedOpus); err != nil {
		return Artifacts{}, s.fail("Error encoding to Opus", err)
	}
	info, err := oggopus.GetInfo(art.ProcessedOpus)
	if err != nil {
		return Artifacts{}, s.fail("Error getting Opus file info", err)
	}
	s.update(func(ai *AudioFileInfo) {
		ai.FileSize = info.FileSize
		ai.ProcessedOpusSize = info.FileSize
		ai.Duration = info.Duration
	})
	if err := ctx.Err(); err != nil {
		return Artifacts{}, s.fail("Processing cancelled", err)
	}

	if err := s.encoder.EncodeFile(art.Original, art.UnprocessedOpus); err != nil {
		return Artifacts{}, s.fail("Error encoding unprocessed audio", err)
	}
	if size, err := fileSize(art.UnprocessedOpus); err == nil {
		s.update(func(ai *AudioFileInfo) { ai.UnprocessedOpusSize = size })
	}

	s.mu.Lock()
	s.info.LastMessage = "Processing and Opus encoding completed successfully"
	s.artifacts = &art
	snapshot := s.info
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":              "Session.ProcessRecording",
		"wav_path":              wavPath,
		"duration":              snapshot.Duration,
		"original_wav_size":     snapshot.OriginalWAVSize,
		"processed_opus_size":   snapshot.ProcessedOpusSize,
		"unprocessed_opus_size": snapshot.UnprocessedOpusSize,
	}).Info("Recording processed successfully")

	return art, nil
}

// NewPlayer opens a player over one artifact of the last recording.
func (s *Session) NewPlayer(variant Variant, outputRate int) (*playback.Player, error) {
	art, ok := s.LastArtifacts()
	if !ok {
		return nil, fmt.Errorf("%w: no recording has been processed", audioerr.ErrIO)
	}

	var (
		src playback.Source
		err error
	)
	switch variant {
	case VariantOriginal:
		src, err = playback.NewWAVSource(art.Original)
	case VariantProcessedWAV:
		src, err = playback.NewWAVSource(art.Processed)
	case VariantProcessedOpus:
		src, err = oggopus.OpenDecoder(art.ProcessedOpus)
	case VariantUnprocessedOpus:
		src, err = oggopus.OpenDecoder(art.UnprocessedOpus)
	default:
		return nil, fmt.Errorf("%w: unknown playback variant %d", audioerr.ErrInvalidConfig, int(variant))
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Session.NewPlayer",
			"variant":  variant.String(),
			"error":    err.Error(),
		}).Error("Failed to open playback source")
		return nil, err
	}

	return playback.NewPlayer(src, outputRate)
}

func (s *Session) update(fn func(*AudioFileInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.info)
}

// fail records err in LastMessage and returns it.
func (s *Session) fail(message string, err error) error {
	s.update(func(info *AudioFileInfo) {
		info.LastMessage = fmt.Sprintf("%s: %v", message, err)
	})
	logrus.WithFields(logrus.Fields{
		"function": "Session.ProcessRecording",
		"step":     message,
		"error":    err.Error(),
	}).Error("Recording processing failed")
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", audioerr.ErrIO, src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", audioerr.ErrIO, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: copy %s to %s: %v", audioerr.ErrIO, src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", audioerr.ErrIO, dst, err)
	}
	return nil
}

func fileSize(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}
