package oggopus

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pion/webrtc/v4/pkg/media/oggreader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawPage struct {
	headerType byte
	granule    uint64
	serial     uint32
	index      uint32
	lacing     []byte
	payload    []byte
}

// parsePages splits a byte stream into pages without validating checksums.
func parsePages(t *testing.T, data []byte) []rawPage {
	t.Helper()
	var pages []rawPage
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), pageHeaderSize)
		require.Equal(t, "OggS", string(data[:4]))

		segments := int(data[26])
		lacing := data[pageHeaderSize : pageHeaderSize+segments]
		size := 0
		for _, l := range lacing {
			size += int(l)
		}
		start := pageHeaderSize + segments
		pages = append(pages, rawPage{
			headerType: data[5],
			granule:    binary.LittleEndian.Uint64(data[6:]),
			serial:     binary.LittleEndian.Uint32(data[14:]),
			index:      binary.LittleEndian.Uint32(data[18:]),
			lacing:     lacing,
			payload:    data[start : start+size],
		})
		data = data[start+size:]
	}
	return pages
}

func TestBuildPageLacing(t *testing.T) {
	tests := []struct {
		size       int
		wantLacing []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{254, []byte{254}},
		{255, []byte{255, 0}},
		{300, []byte{255, 45}},
		{510, []byte{255, 255, 0}},
	}

	for _, tt := range tests {
		packet := bytes.Repeat([]byte{0xAB}, tt.size)
		page := buildPage(packet, PageContinuation, 960, 7, 3)
		pages := parsePages(t, page)
		require.Len(t, pages, 1)
		assert.Equal(t, tt.wantLacing, pages[0].lacing, "size %d", tt.size)
		assert.Equal(t, packet, pages[0].payload)
		assert.Equal(t, uint64(960), pages[0].granule)
		assert.Equal(t, uint32(7), pages[0].serial)
		assert.Equal(t, uint32(3), pages[0].index)
	}
}

func TestPageChecksumCoversWholePage(t *testing.T) {
	page := buildPage([]byte("payload"), PageContinuation, 0, 1, 0)
	stored := binary.LittleEndian.Uint32(page[22:])

	zeroed := append([]byte(nil), page...)
	binary.LittleEndian.PutUint32(zeroed[22:], 0)
	assert.Equal(t, stored, pageChecksum(zeroed))

	zeroed[len(zeroed)-1] ^= 0xFF
	assert.NotEqual(t, stored, pageChecksum(zeroed))
}

func TestOpusHeadBytes(t *testing.T) {
	want := []byte{
		'O', 'p', 'u', 's', 'H', 'e', 'a', 'd',
		1,    // version
		1,    // channels
		0, 0, // pre-skip
		0x80, 0xBB, 0, 0, // 48000
		0, 0, // output gain
		0, // mapping family
	}
	assert.Equal(t, want, opusHead())
}

func TestOpusTagsBytes(t *testing.T) {
	want := append([]byte("OpusTags"), 3, 0, 0, 0, 'a', 'b', 'c', 0, 0, 0, 0)
	assert.Equal(t, want, opusTags("abc"))
}

func TestPageWriterReadableByOggReader(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPageWriter(&buf, 0xDEADBEEF)
	require.NoError(t, pw.WritePage(opusHead(), PageBeginOfStream, 0))
	require.NoError(t, pw.WritePage(opusTags(DefaultVendor), PageContinuation, 0))
	require.NoError(t, pw.WritePage([]byte{1, 2, 3}, PageContinuation, 960))
	require.NoError(t, pw.WritePage(nil, PageEndOfStream, 960))
	assert.Equal(t, uint32(4), pw.PagesWritten())
	assert.Equal(t, uint32(0xDEADBEEF), pw.Serial())

	reader, header, err := oggreader.NewWith(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), header.Channels)
	assert.Equal(t, uint32(48000), header.SampleRate)
	assert.Equal(t, uint16(0), header.PreSkip)

	tags, _, err := reader.ParseNextPage()
	require.NoError(t, err)
	assert.Equal(t, opusTags(DefaultVendor), tags)

	payload, pageHeader, err := reader.ParseNextPage()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)
	assert.Equal(t, uint64(960), pageHeader.GranulePosition)
}

func TestPageWriterRejectsOversizePacket(t *testing.T) {
	var buf bytes.Buffer
	err := NewPageWriter(&buf, 1).WritePage(make([]byte, maxPagePayload+1), PageContinuation, 0)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
