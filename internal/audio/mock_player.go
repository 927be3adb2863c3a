package audio

import (
	"sync"

	"github.com/voxpuppet/voxpuppet/internal/wav"
)

// MockPlayer is a deterministic Player for tests. Playback progresses only
// when Advance is called, so tests control exactly when a container finishes.
type MockPlayer struct {
	mu       sync.Mutex
	current  *wav.Container
	playhead int
	playing  bool
	closed   bool

	PlayCalls int
	StopCalls int
}

// NewMockPlayer returns an idle mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play accepts the container and holds it until Advance or Finish.
func (m *MockPlayer) Play(c *wav.Container) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrPlayerClosed
	}
	if m.playing {
		return ErrPlaybackActive
	}
	m.current = c
	m.playhead = 0
	m.playing = true
	m.PlayCalls++
	return nil
}

// Stop halts playback.
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.current = nil
	m.playhead = 0
	m.StopCalls++
}

// IsPlaying reports whether a container is mid-playback.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Window copies samples behind the simulated playhead.
func (m *MockPlayer) Window(dst []float32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return 0
	}
	start := m.playhead - len(dst)
	if start < 0 {
		start = 0
	}
	return copy(dst, m.current.Samples[start:m.playhead])
}

// Close marks the player unusable.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.playing = false
	return nil
}

// Advance moves the simulated playhead by n samples, finishing playback when
// the end of the container is reached.
func (m *MockPlayer) Advance(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	m.playhead += n
	if m.playhead >= len(m.current.Samples) {
		m.playhead = len(m.current.Samples)
		m.playing = false
	}
}

// Finish completes the current playback immediately.
func (m *MockPlayer) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.playhead = len(m.current.Samples)
	}
	m.playing = false
}

// Current returns the container most recently handed to Play.
func (m *MockPlayer) Current() *wav.Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
