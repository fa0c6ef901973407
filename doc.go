// Package voicefx implements offline voice clean-up and Opus packaging for
// recorded audio.
//
// A finished recording is run through a fixed effect chain (RMS
// normalization, band-limiting, spectral and amplitude gating, optional gain,
// a lookahead limiter and a short fade-in) and then packaged as Ogg Opus so
// processed and unprocessed takes can be compared side by side.
//
// # Getting Started
//
// Create a Session and hand it each finished recording:
//
//	session, err := voicefx.NewSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	art, err := session.ProcessRecording(ctx, "take1.wav")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	info := session.AudioInfo()
//	fmt.Printf("%s: %.2fs, %d bytes\n", art.ProcessedOpus, info.Duration, info.ProcessedOpusSize)
//
// # Core Types
//
//   - [Session]: Post-recording workflow and bookkeeping
//   - [AudioFileInfo]: Sizes and duration of the last recording's artifacts
//   - [Artifacts]: Paths produced for one recording
//   - [Variant]: Which artifact a player reads
//
// # Playback
//
// Players pull frames from an artifact and never block the audio callback:
//
//	player, err := session.NewPlayer(voicefx.VariantProcessedOpus, 44100)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	device.OnFill(func(out []float32) { player.Fill(out) })
//
// # Subpackages
//
//   - dsp: Resampler, STFT engine, envelope follower and the effect stages
//   - pcm: WAV decoding and encoding
//   - processor: Configuration and the effect pipeline orchestrator
//   - oggopus: Ogg Opus encoder, decoder and file info
//   - playback: Real-time-safe player and frame sources
//   - audioerr: Shared error sentinels
//
// # Error Handling
//
// Every error wraps one of the audioerr sentinels:
//
//	if errors.Is(err, audioerr.ErrBusy) {
//	    // another recording is still being processed
//	}
package voicefx
