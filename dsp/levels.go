package dsp

import "math"

// DBToLinear converts a level in decibels to a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude to decibels. Zero maps to -Inf.
func LinearToDB(v float64) float64 {
	return 20 * math.Log10(v)
}

// RMS returns the root mean square of the buffer, or 0 for an empty buffer.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// Coefficient returns the one-pole smoothing coefficient for a time constant
// in milliseconds. The 2.2 factor makes timeMs the 10%-90% settling time.
func Coefficient(timeMs, sampleRate float64) float64 {
	return math.Exp(-2.2 / (timeMs / 1000 * sampleRate))
}

// LookaheadSamples converts a lookahead time to a whole number of samples.
func LookaheadSamples(timeMs, sampleRate float64) int {
	n := int(timeMs / 1000 * sampleRate)
	if n < 0 {
		return 0
	}
	return n
}
