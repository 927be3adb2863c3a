// Package audio provides playback, microphone capture, and time-domain
// amplitude analysis for the speech pipeline.
package audio

import "errors"

// Common errors
var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrPlaybackActive    = errors.New("playback already active")
	ErrCaptureNotStarted = errors.New("capture not started")
	ErrPlayerClosed      = errors.New("player closed")
)

// Capture defaults. The microphone side is always mono 16-bit at a fixed
// rate; device selection beyond the system default is out of scope.
const (
	CaptureSampleRate = 16000
	CaptureChannels   = 1
	CaptureFrameSize  = 512
)
