package oggopus

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// deriveSerial hashes the stream parameters and quantized PCM so the same
// input always produces the same stream serial.
func deriveSerial(bitrate, sourceRate int, vendor string, pcm []int16) uint32 {
	data := make([]byte, 0, 8+len(vendor)+2*len(pcm))
	data = binary.LittleEndian.AppendUint32(data, uint32(bitrate))
	data = binary.LittleEndian.AppendUint32(data, uint32(sourceRate))
	data = append(data, vendor...)
	for _, s := range pcm {
		data = binary.LittleEndian.AppendUint16(data, uint16(s))
	}

	sum := blake2b.Sum256(data)
	return binary.LittleEndian.Uint32(sum[:4])
}
