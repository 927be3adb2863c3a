// Package speech drives the utterance pipeline: text is chunked,
// synthesized one chunk at a time, and played back in order.
package speech

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned when a new utterance arrives while the
	// pending queue is at capacity.
	ErrQueueFull = errors.New("speech queue full")
)

// State is the pipeline's coarse activity state.
type State int

const (
	// StateIdle means nothing is queued, synthesizing, or playing.
	StateIdle State = iota

	// StateProcessing means a chunk is out for synthesis.
	StateProcessing

	// StateSpeaking means a synthesized chunk is playing.
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Utterance is one request to speak a piece of text.
type Utterance struct {
	ID        uuid.UUID
	Text      string
	CreatedAt time.Time
}

// Config holds queue configuration.
type Config struct {
	Voice        string
	Model        string
	MaxChunkLen  int
	MaxQueueSize int
	QueueEnabled bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxChunkLen:  280,
		MaxQueueSize: 8,
		QueueEnabled: true,
	}
}
