package oggopus

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opd-ai/voicefx/audioerr"
	"github.com/sirupsen/logrus"
)

// Ogg page header types.
const (
	PageContinuation  byte = 0x00
	PageBeginOfStream byte = 0x02
	PageEndOfStream   byte = 0x04
)

const (
	pageHeaderSize    = 27
	maxSegmentSize    = 255
	maxSegments       = 255
	maxPagePayload    = maxSegments*maxSegmentSize - 1
	pageCRCPolynomial = 0x04c11db7
)

var crcTable = newCRCTable()

func newCRCTable() *[256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ pageCRCPolynomial
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return &table
}

// pageChecksum is the Ogg CRC32: polynomial 0x04c11db7, not reflected, zero
// initial value and no final xor.
func pageChecksum(page []byte) uint32 {
	var crc uint32
	for _, b := range page {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// PageWriter serializes packets as Ogg pages of a single logical stream,
// one packet per page.
type PageWriter struct {
	w         io.Writer
	serial    uint32
	pageIndex uint32
}

// NewPageWriter returns a writer for the logical stream serial.
func NewPageWriter(w io.Writer, serial uint32) *PageWriter {
	return &PageWriter{w: w, serial: serial}
}

// Serial returns the stream serial number.
func (p *PageWriter) Serial() uint32 {
	return p.serial
}

// PagesWritten returns the number of pages emitted so far.
func (p *PageWriter) PagesWritten() uint32 {
	return p.pageIndex
}

// WritePage emits packet as a complete page.
//
// Parameters:
//   - packet: Packet payload, at most 65024 bytes
//   - headerType: PageBeginOfStream, PageEndOfStream or PageContinuation
//   - granule: Granule position of the last sample completed on this page
//
// Returns:
//   - error: ErrCodec for an oversize packet, ErrIO when the write fails
func (p *PageWriter) WritePage(packet []byte, headerType byte, granule uint64) error {
	if len(packet) > maxPagePayload {
		return fmt.Errorf("%w: packet of %d bytes does not fit one ogg page", audioerr.ErrCodec, len(packet))
	}

	page := buildPage(packet, headerType, granule, p.serial, p.pageIndex)
	if _, err := p.w.Write(page); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "PageWriter.WritePage",
			"page_index": p.pageIndex,
			"error":      err.Error(),
		}).Error("Failed to write ogg page")
		return fmt.Errorf("%w: write ogg page %d: %v", audioerr.ErrIO, p.pageIndex, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "PageWriter.WritePage",
		"page_index":  p.pageIndex,
		"header_type": headerType,
		"granule":     granule,
		"packet_size": len(packet),
	}).Debug("Ogg page written")

	p.pageIndex++
	return nil
}

// buildPage lays out header, lacing values and payload, then stamps the CRC.
func buildPage(packet []byte, headerType byte, granule uint64, serial, index uint32) []byte {
	segments := len(packet)/maxSegmentSize + 1
	page := make([]byte, pageHeaderSize+segments+len(packet))

	copy(page[0:], "OggS")
	page[4] = 0
	page[5] = headerType
	binary.LittleEndian.PutUint64(page[6:], granule)
	binary.LittleEndian.PutUint32(page[14:], serial)
	binary.LittleEndian.PutUint32(page[18:], index)
	page[26] = byte(segments)

	lacing := page[pageHeaderSize : pageHeaderSize+segments]
	for i := 0; i < segments-1; i++ {
		lacing[i] = maxSegmentSize
	}
	lacing[segments-1] = byte(len(packet) % maxSegmentSize)

	copy(page[pageHeaderSize+segments:], packet)
	binary.LittleEndian.PutUint32(page[22:], pageChecksum(page))
	return page
}

// opusHead builds the 19-byte identification header: version 1, mono, zero
// pre-skip, 48 kHz input rate, zero output gain, mapping family 0.
func opusHead() []byte {
	head := make([]byte, opusHeadSize)
	copy(head[0:], opusHeadMagic)
	head[8] = 1
	head[9] = Channels
	binary.LittleEndian.PutUint16(head[10:], 0)
	binary.LittleEndian.PutUint32(head[12:], SampleRate)
	binary.LittleEndian.PutUint16(head[16:], 0)
	head[18] = 0
	return head
}

// opusTags builds the comment header with vendor and no user comments.
func opusTags(vendor string) []byte {
	tags := make([]byte, 8+4+len(vendor)+4)
	copy(tags[0:], opusTagsMagic)
	binary.LittleEndian.PutUint32(tags[8:], uint32(len(vendor)))
	copy(tags[12:], vendor)
	binary.LittleEndian.PutUint32(tags[12+len(vendor):], 0)
	return tags
}
