// Package stt transcribes captured audio through a remote speech
// recognition service.
package stt

import (
	"errors"
	"time"
)

var (
	// ErrAudioTooShort is returned when the clip carries no usable samples.
	ErrAudioTooShort = errors.New("audio clip too short to transcribe")

	// ErrServiceUnavailable indicates the transcription endpoint could not
	// be reached.
	ErrServiceUnavailable = errors.New("transcription service unavailable")
)

// TranscribeRequest carries one clip of mono float32 audio.
type TranscribeRequest struct {
	Samples    []float32
	SampleRate uint32
	Language   string
}

// TranscribeResponse holds the recognized text.
type TranscribeResponse struct {
	Text           string
	Language       string
	ProcessingTime time.Duration
}
