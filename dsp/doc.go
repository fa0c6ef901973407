// Package dsp implements the signal-processing core of voicefx.
//
// All processing operates on whole in-memory mono buffers of float32 samples
// normalized to [-1, 1]. Nothing in this package keeps state between calls:
// every STFT plan, lookahead ring and smoothed gain lives for exactly one
// Process invocation.
//
// # Architecture Overview
//
// The effect pipeline applied by the processor package is an ordered list of
// Stage values:
//
//	RMS → Filter → SpectralGate → AmplitudeGate → GainBoost → Limiter → FadeIn
//
// # Core Components
//
// ## STFT
//
// Overlap-add short-time Fourier transform with a 4096-point periodic Hann
// window and 50% overlap, parameterized by a per-bin transform:
//
//	stft := dsp.NewSTFT(48000)
//	out := stft.Process(samples, func(bin int, freq float64, v complex128) complex128 {
//	    if math.Abs(freq) > 8000 {
//	        return 0
//	    }
//	    return v
//	})
//
// ## EnvelopeFollower
//
// Lookahead peak detector with attack/release smoothing. The amplitude gate
// and the lookahead limiter are both thin configurations of it.
//
// ## Resampler
//
// Linear-interpolation sample-rate conversion shared by the Opus encoder and
// the playback path:
//
//	resampler, err := dsp.NewResampler(dsp.ResamplerConfig{
//	    InputRate:  44100,
//	    OutputRate: 48000,
//	})
//	resampled := resampler.Resample(samples)
//
// ## Stages
//
//   - FilterStage: brick-wall highpass and lowpass in the frequency domain
//   - SpectralGateStage: per-bin magnitude gate
//   - AmplitudeGateStage: time-domain gate with lookahead
//   - GainBoostStage: fixed gain in dB
//   - LimiterStage: lookahead peak limiter with instant attack
//   - RMSNormalizeStage: RMS normalization with a soft knee
//   - FadeInStage: smoothstep fade at buffer start
//   - Chain: sequential stage application
package dsp
