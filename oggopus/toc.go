package oggopus

import (
	"fmt"

	"github.com/opd-ai/voicefx/audioerr"
	pionopus "github.com/pion/opus"
)

// PacketConfiguration returns the configuration number carried in the top
// five bits of an Opus packet's TOC byte (RFC 6716 section 3.1).
func PacketConfiguration(packet []byte) (pionopus.Configuration, error) {
	if len(packet) == 0 {
		return 0, fmt.Errorf("%w: packet too short for TOC byte", audioerr.ErrCodec)
	}
	return pionopus.Configuration(packet[0] >> 3), nil
}

// PacketBandwidth returns the audio bandwidth an Opus packet was coded at.
func PacketBandwidth(packet []byte) (pionopus.Bandwidth, error) {
	config, err := PacketConfiguration(packet)
	if err != nil {
		return 0, err
	}

	switch {
	case config <= 3:
		return pionopus.BandwidthNarrowband, nil
	case config <= 7:
		return pionopus.BandwidthMediumband, nil
	case config <= 11:
		return pionopus.BandwidthWideband, nil
	case config <= 13:
		return pionopus.BandwidthSuperwideband, nil
	case config <= 15:
		return pionopus.BandwidthFullband, nil
	case config <= 19:
		return pionopus.BandwidthNarrowband, nil
	case config <= 23:
		return pionopus.BandwidthWideband, nil
	case config <= 27:
		return pionopus.BandwidthSuperwideband, nil
	default:
		return pionopus.BandwidthFullband, nil
	}
}

// widestBandwidth returns the widest bandwidth among packets, or zero when
// there are none.
func widestBandwidth(packets [][]byte) (pionopus.Bandwidth, error) {
	var widest pionopus.Bandwidth
	for i, pkt := range packets {
		bw, err := PacketBandwidth(pkt)
		if err != nil {
			return 0, fmt.Errorf("packet %d: %w", i, err)
		}
		widest = max(widest, bw)
	}
	return widest, nil
}
