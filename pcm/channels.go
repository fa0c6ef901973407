package pcm

// FirstChannel returns the first channel of buf as a new mono buffer. A mono
// buffer is copied as is.
func FirstChannel(buf *Buffer) []float32 {
	ch := buf.Format.Channels
	if ch <= 1 {
		return append([]float32(nil), buf.Samples...)
	}
	mono := make([]float32, buf.Frames())
	for i := range mono {
		mono[i] = buf.Samples[i*ch]
	}
	return mono
}

// Deinterleave splits interleaved samples into one slice per channel.
func Deinterleave(samples []float32, channels int) [][]float32 {
	if channels <= 1 {
		return [][]float32{samples}
	}
	frames := len(samples) / channels
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			out[c][i] = samples[i*channels+c]
		}
	}
	return out
}

// Interleave merges per-channel slices of equal length back into one
// interleaved slice.
func Interleave(channels [][]float32) []float32 {
	if len(channels) == 1 {
		return channels[0]
	}
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for c, data := range channels {
		for i := 0; i < frames; i++ {
			out[i*len(channels)+c] = data[i]
		}
	}
	return out
}
