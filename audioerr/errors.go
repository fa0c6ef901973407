// Package audioerr declares the error taxonomy shared by the voicefx packages.
//
// Every failure returned by the pipeline, the codec wrapper and the session
// facade wraps exactly one of these sentinels, so callers classify errors with
// errors.Is while keeping the underlying cause in the message.
package audioerr

import "errors"

// Container and file errors.
var (
	// ErrIO indicates a file could not be opened, read or written.
	ErrIO = errors.New("i/o error")

	// ErrUnsupportedFormat indicates a PCM sample format other than
	// 32-bit float or 16-bit integer.
	ErrUnsupportedFormat = errors.New("unsupported sample format")
)

// Codec errors.
var (
	// ErrCodec indicates Opus encoder or decoder construction failed, or a
	// single frame could not be encoded or decoded.
	ErrCodec = errors.New("codec error")
)

// Numeric errors.
var (
	// ErrDivisionDegenerate indicates RMS normalization was asked to scale a
	// buffer whose RMS is zero.
	ErrDivisionDegenerate = errors.New("division by zero rms")
)

// Configuration and state errors.
var (
	// ErrInvalidConfig indicates a parameter outside its accepted range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBusy indicates another session operation is already in progress.
	ErrBusy = errors.New("another operation is already in progress")
)
