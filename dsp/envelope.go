package dsp

import (
	"math"

	"github.com/sirupsen/logrus"
)

// GainTarget maps the lookahead window peak to the gain the follower should
// settle at.
type GainTarget func(peak float64) float64

// GainSmoother advances the smoothed gain one sample toward target.
type GainSmoother func(gain, target, attack, release float64) float64

// EnvelopeFollower is a lookahead peak detector driving a smoothed gain.
//
// Output is delayed by LookaheadSamples: the sample written at step i is the
// one that has just aged out of the window, scaled by the gain computed with
// the whole window in view. Gate and limiter behaviour differ only in Target,
// Smooth and InitialGain.
type EnvelopeFollower struct {
	LookaheadSamples int
	Attack           float64 // attack coefficient, see Coefficient
	Release          float64 // release coefficient, see Coefficient
	InitialGain      float64
	Target           GainTarget
	Smooth           GainSmoother
}

// Process applies the follower to samples and returns a new buffer of the
// same length.
func (e *EnvelopeFollower) Process(samples []float32) []float32 {
	ring := newLookaheadRing(e.LookaheadSamples)
	output := make([]float32, 0, len(samples))
	gain := e.InitialGain

	for _, s := range samples {
		ring.push(s)
		gain = e.Smooth(gain, e.Target(ring.peak()), e.Attack, e.Release)
		output = append(output, float32(float64(ring.pop())*gain))
	}

	// Trailing samples reuse the final gain.
	for ring.len() > 0 && len(output) < len(samples) {
		output = append(output, float32(float64(ring.pop())*gain))
	}

	logrus.WithFields(logrus.Fields{
		"function":   "EnvelopeFollower.Process",
		"samples":    len(samples),
		"lookahead":  e.LookaheadSamples,
		"final_gain": gain,
	}).Debug("Envelope follower pass completed")

	return output
}

// lookaheadRing is a FIFO of the most recent samples, pre-filled with zeros.
type lookaheadRing struct {
	data  []float32
	start int
	count int
}

func newLookaheadRing(lookahead int) *lookaheadRing {
	return &lookaheadRing{
		data:  make([]float32, lookahead+1),
		count: lookahead,
	}
}

func (r *lookaheadRing) push(s float32) {
	r.data[(r.start+r.count)%len(r.data)] = s
	r.count++
}

func (r *lookaheadRing) pop() float32 {
	s := r.data[r.start]
	r.start = (r.start + 1) % len(r.data)
	r.count--
	return s
}

func (r *lookaheadRing) len() int {
	return r.count
}

func (r *lookaheadRing) peak() float64 {
	var peak float64
	for i := 0; i < r.count; i++ {
		if a := math.Abs(float64(r.data[(r.start+i)%len(r.data)])); a > peak {
			peak = a
		}
	}
	return peak
}
