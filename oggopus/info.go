package oggopus

import (
	"bufio"
	"fmt"
	"os"

	"github.com/opd-ai/voicefx/audioerr"
	pionopus "github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// Info describes an Ogg Opus file without decoding it.
type Info struct {
	// FileSize is the size on disk in bytes.
	FileSize int64
	// Packets is the number of audio packets after the headers.
	Packets int
	// Duration is Packets multiplied by the 20 ms frame length.
	Duration float64
	// Bandwidth is the widest band any packet was coded at, read from the
	// packet TOC bytes. Zero for a stream without audio packets.
	Bandwidth pionopus.Bandwidth
}

// GetInfo reports the size, estimated duration and coded bandwidth of the
// file at path.
func GetInfo(path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: stat %s: %v", audioerr.ErrIO, path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: open %s: %v", audioerr.ErrIO, path, err)
	}
	defer f.Close()

	_, packets, err := readPackets(bufio.NewReader(f))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "GetInfo",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to read Ogg Opus file")
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}

	bandwidth, err := widestBandwidth(packets)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}

	info := Info{
		FileSize:  stat.Size(),
		Packets:   len(packets),
		Duration:  float64(len(packets)) * FrameDuration,
		Bandwidth: bandwidth,
	}

	logrus.WithFields(logrus.Fields{
		"function":  "GetInfo",
		"path":      path,
		"file_size": info.FileSize,
		"packets":   info.Packets,
		"duration":  info.Duration,
		"bandwidth": info.Bandwidth.String(),
	}).Debug("Ogg Opus file inspected")

	return info, nil
}
