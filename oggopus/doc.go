// Package oggopus packages mono PCM as Opus inside an Ogg container and reads
// such streams back as 20 ms frames.
//
// # Encoding
//
// The Encoder downmixes to the first channel, resamples to 48 kHz with the
// shared dsp.Resampler, quantizes to 16-bit and encodes 960-sample frames
// with libopus:
//
//	enc := oggopus.NewEncoder()
//	if err := enc.SetBitrate(oggopus.BitrateHigh); err != nil {
//		return err
//	}
//	err := enc.EncodeFile("take_processed.wav", "take_processed.opus")
//
// Every packet is written on its own Ogg page. The stream is:
//
//	page 0   OpusHead  (beginning of stream, granule 0)
//	page 1   OpusTags  (granule 0)
//	page 2.. one audio packet each, granule +960
//	last     empty packet (end of stream)
//
// # Decoding
//
// The Decoder stages every packet in memory when it is created, so pulling
// frames never touches I/O and is safe to drive from an audio callback:
//
//	dec, err := oggopus.OpenDecoder("take_processed.opus")
//	if err != nil {
//		return err
//	}
//	for frame, ok := dec.NextFrame(); ok; frame, ok = dec.NextFrame() {
//		play(frame)
//	}
//
// The Decoder reads streams laid out one packet per page, which is what the
// Encoder produces.
package oggopus
