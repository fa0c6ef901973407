package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/sirupsen/logrus"
)

const (
	// FFTSize is the STFT frame length in samples.
	FFTSize = 4096
	// HopSize is the distance between frame starts (50% overlap).
	HopSize = FFTSize / 2

	normalizationFloor = 1e-10
)

// BinTransform maps one spectral bin to its replacement. freqHz is signed:
// bins above FFTSize/2 carry negative frequencies.
type BinTransform func(bin int, freqHz float64, v complex128) complex128

// STFT is an overlap-add short-time Fourier transform.
type STFT struct {
	sampleRate float64
	fftSize    int
	hopSize    int
	window     []float64
}

// NewSTFT creates an STFT for the given sample rate with a periodic Hann
// window of FFTSize points.
func NewSTFT(sampleRate float64) *STFT {
	window := make([]float64, FFTSize)
	for n := range window {
		window[n] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(FFTSize))
	}
	return &STFT{
		sampleRate: sampleRate,
		fftSize:    FFTSize,
		hopSize:    HopSize,
		window:     window,
	}
}

// BinFrequency returns the signed frequency in Hz of bin i.
func (s *STFT) BinFrequency(i int) float64 {
	k := float64(i)
	if i > s.fftSize/2 {
		k -= float64(s.fftSize)
	}
	return k * s.sampleRate / float64(s.fftSize)
}

// Process runs fn over every bin of every frame and resynthesizes a buffer
// of the same length as samples.
//
// Output samples whose accumulated squared window stays below 1e-10 are left
// at zero.
func (s *STFT) Process(samples []float32, fn BinTransform) []float32 {
	n := len(samples)
	output := make([]float64, n)
	normalization := make([]float64, n)
	frame := make([]complex128, s.fftSize)
	frames := 0

	for pos := 0; pos < n; pos += s.hopSize {
		for i := range frame {
			frame[i] = 0
		}
		copyLen := min(s.fftSize, n-pos)
		for i := 0; i < copyLen; i++ {
			frame[i] = complex(float64(samples[pos+i])*s.window[i], 0)
		}

		spectrum := fft.FFT(frame)
		for i, v := range spectrum {
			spectrum[i] = fn(i, s.BinFrequency(i), v)
		}
		resynth := fft.IFFT(spectrum)

		for i := 0; i < s.fftSize && pos+i < n; i++ {
			output[pos+i] += real(resynth[i]) * s.window[i]
			normalization[pos+i] += s.window[i] * s.window[i]
		}
		frames++
	}

	result := make([]float32, n)
	for i := range output {
		if normalization[i] > normalizationFloor {
			result[i] = float32(output[i] / normalization[i])
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":     "STFT.Process",
		"sample_count": n,
		"frames":       frames,
		"sample_rate":  s.sampleRate,
	}).Debug("STFT processing completed")

	return result
}

// magnitude is |v|.
func magnitude(v complex128) float64 {
	return cmplx.Abs(v)
}
