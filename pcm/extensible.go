package pcm

import (
	"encoding/binary"
	"errors"
	"io"
)

// fmtExtensibleSize is the fmt chunk body length of WAVE_FORMAT_EXTENSIBLE.
const fmtExtensibleSize = 40

var errNoFmtChunk = errors.New("no fmt chunk")

// subFormatCode returns the format code stored in the first two bytes of the
// SubFormat GUID of a WAVE_FORMAT_EXTENSIBLE fmt chunk. It returns 0 when the
// stream is not extensible. The reader is left at the start of the stream.
//
// go-audio's decoder reads past the fmt extension without keeping it, so the
// chunk is located here directly.
func subFormatCode(r io.ReadSeeker) (uint16, error) {
	defer r.Seek(0, io.SeekStart)

	if _, err := r.Seek(12, io.SeekStart); err != nil {
		return 0, err
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return 0, errNoFmtChunk
		}
		size := int64(binary.LittleEndian.Uint32(header[4:]))
		if string(header[:4]) != "fmt " {
			if _, err := r.Seek(size+size&1, io.SeekCurrent); err != nil {
				return 0, err
			}
			continue
		}

		if size < fmtExtensibleSize {
			return 0, nil
		}
		var body [fmtExtensibleSize]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return 0, err
		}
		if binary.LittleEndian.Uint16(body[0:]) != wavFormatExtensible {
			return 0, nil
		}
		return binary.LittleEndian.Uint16(body[24:]), nil
	}
}
