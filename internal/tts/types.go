// Package tts provides clients for the remote speech synthesis service.
package tts

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrServiceUnavailable = errors.New("synthesis service unavailable")
	ErrTextTooLong        = errors.New("text exceeds synthesizer input limit")
	ErrEmptyText          = errors.New("empty synthesis text")
)

// Provider is the synthesis service contract: one chunk in, audio bytes out.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Synthesize converts one chunk of text to audio.
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// Health checks whether the service is reachable and configured.
	Health(ctx context.Context) error

	// MaxTextLength returns the service's per-request input limit.
	MaxTextLength() int
}

// SynthesizeRequest is one chunk of text to speak.
type SynthesizeRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Model string  `json:"model,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// SynthesizeResponse carries the synthesized audio and timing metadata.
type SynthesizeResponse struct {
	Audio          []byte        `json:"audio"`
	Format         string        `json:"format"`
	SampleRate     int           `json:"sample_rate"`
	ProcessingTime time.Duration `json:"processing_time"`
	Provider       string        `json:"provider"`
}

// ServiceError is a structured failure from the synthesis service.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("synthesis service error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("synthesis service error %d: %s", e.Status, e.Message)
}
