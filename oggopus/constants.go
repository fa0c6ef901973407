package oggopus

// Stream constants.
const (
	// SampleRate is the Opus coding rate used for every stream.
	SampleRate = 48000
	// Channels is the channel count of every stream.
	Channels = 1
	// FrameSize is the number of samples per 20 ms frame at SampleRate.
	FrameSize = 960
	// FrameDuration is the length of one frame in seconds.
	FrameDuration = 0.02
	// MaxPacketSize is the largest Opus packet the encoder will emit.
	MaxPacketSize = 1275
)

// Bitrate presets in bits per second. Any positive value is accepted.
const (
	BitrateLow    = 6000
	BitrateMedium = 12000
	BitrateHigh   = 24000

	DefaultBitrate = BitrateMedium
)

// DefaultVendor is written into the OpusTags header.
const DefaultVendor = "voicefx"

const (
	opusHeadMagic = "OpusHead"
	opusTagsMagic = "OpusTags"
	opusHeadSize  = 19
)
