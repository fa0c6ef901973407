package oggopus

import (
	pionopus "github.com/pion/opus"
	"github.com/sirupsen/logrus"
	"gopkg.in/hraban/opus.v2"
)

// GetBandwidthFromSampleRate returns the widest Opus bandwidth a source
// recorded at sampleRate can carry.
//
// Rates between the Opus steps round down to the narrower band. Rates above
// 48 kHz map to fullband.
func GetBandwidthFromSampleRate(sampleRate int) pionopus.Bandwidth {
	logrus.WithFields(logrus.Fields{
		"function":    "GetBandwidthFromSampleRate",
		"sample_rate": sampleRate,
	}).Debug("Mapping sample rate to Opus bandwidth")

	var bandwidth pionopus.Bandwidth
	switch {
	case sampleRate < 12000:
		bandwidth = pionopus.BandwidthNarrowband
	case sampleRate < 16000:
		bandwidth = pionopus.BandwidthMediumband
	case sampleRate < 24000:
		bandwidth = pionopus.BandwidthWideband
	case sampleRate < 48000:
		bandwidth = pionopus.BandwidthSuperwideband
	default:
		bandwidth = pionopus.BandwidthFullband
		if sampleRate > 48000 {
			logrus.WithFields(logrus.Fields{
				"function":    "GetBandwidthFromSampleRate",
				"sample_rate": sampleRate,
				"warning":     "source rate above Opus maximum, content above 20 kHz is discarded",
			}).Warn("Source sample rate exceeds fullband")
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":    "GetBandwidthFromSampleRate",
		"sample_rate": sampleRate,
		"bandwidth":   bandwidth.String(),
	}).Debug("Sample rate mapped to Opus bandwidth")

	return bandwidth
}

// encoderBandwidth converts a bandwidth to the libopus encoder setting.
func encoderBandwidth(b pionopus.Bandwidth) opus.Bandwidth {
	switch b {
	case pionopus.BandwidthNarrowband:
		return opus.Narrowband
	case pionopus.BandwidthMediumband:
		return opus.Mediumband
	case pionopus.BandwidthWideband:
		return opus.Wideband
	case pionopus.BandwidthSuperwideband:
		return opus.SuperWideband
	default:
		return opus.Fullband
	}
}
