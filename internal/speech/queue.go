package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxpuppet/voxpuppet/internal/audio"
	"github.com/voxpuppet/voxpuppet/internal/bus"
	"github.com/voxpuppet/voxpuppet/internal/chunker"
	"github.com/voxpuppet/voxpuppet/internal/tts"
	"github.com/voxpuppet/voxpuppet/internal/wav"
)

// synthResult is the output of one chunk synthesis, deposited by the
// worker goroutine and consumed on the next Update tick.
type synthResult struct {
	gen       uint64
	container *wav.Container
	err       error
}

// Queue serializes utterances through synthesize-then-play, one chunk at a
// time. All mutation happens under one mutex; completion is observed by
// polling the player from Update.
type Queue struct {
	mu sync.Mutex

	config   *Config
	provider tts.Provider
	player   audio.Player
	events   *bus.EventBus
	logger   zerolog.Logger

	state   State
	pending []Utterance

	current  *Utterance
	chunks   []string
	chunkIdx int

	// gen invalidates in-flight synthesis: results stamped with an older
	// generation are discarded on arrival.
	gen     uint64
	inWork  bool
	result  *synthResult

	// outbox collects events raised while holding mu. They are delivered
	// with PublishSync after unlocking, so observers see them in queue
	// mutation order without deadlocking handlers that call back in.
	outbox []bus.Event

	ctx    context.Context
	cancel context.CancelFunc
}

// NewQueue creates a speech queue.
func NewQueue(logger zerolog.Logger, config *Config, provider tts.Provider, player audio.Player, events *bus.EventBus) *Queue {
	if config == nil {
		config = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		config:   config,
		provider: provider,
		player:   player,
		events:   events,
		logger:   logger.With().Str("component", "speech-queue").Logger(),
		state:    StateIdle,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetConfig swaps in new settings. The utterance in progress keeps the
// chunking it started with; everything after it picks up the new values.
func (q *Queue) SetConfig(config *Config) {
	if config == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.config = config
}

// State returns the current pipeline state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Speaking reports whether a chunk is currently playing.
func (q *Queue) Speaking() bool {
	return q.State() == StateSpeaking
}

// Pending returns the number of queued utterances, not counting the one
// in progress.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Speak submits text to be spoken. Whitespace-only text is ignored. When
// the pipeline is busy the utterance queues behind the current one, or
// interrupts it if queueing is disabled. A full queue drops the new
// utterance and returns ErrQueueFull.
func (q *Queue) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	u := Utterance{
		ID:        uuid.New(),
		Text:      text,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	err := q.speakLocked(u)
	out := q.takeOutboxLocked()
	q.mu.Unlock()

	q.deliver(out)
	return err
}

func (q *Queue) speakLocked(u Utterance) error {
	if q.state == StateIdle {
		q.startUtteranceLocked(u)
		return nil
	}

	if !q.config.QueueEnabled {
		q.logger.Debug().Str("id", u.ID.String()).Msg("interrupting current utterance")
		q.stopLocked()
		q.startUtteranceLocked(u)
		return nil
	}

	if len(q.pending) >= q.config.MaxQueueSize {
		q.logger.Warn().Int("queued", len(q.pending)).Msg("queue full, dropping utterance")
		q.emitLocked(bus.Event{
			Type: bus.EventTypeSpeechDropped,
			Data: map[string]any{"id": u.ID.String(), "text": u.Text},
		})
		return ErrQueueFull
	}

	q.pending = append(q.pending, u)
	q.emitLocked(bus.Event{
		Type: bus.EventTypeSpeechQueued,
		Data: map[string]any{"id": u.ID.String(), "queued": len(q.pending)},
	})
	return nil
}

// emitLocked queues an event for delivery after the mutex is released.
func (q *Queue) emitLocked(e bus.Event) {
	q.outbox = append(q.outbox, e)
}

// takeOutboxLocked drains the pending events.
func (q *Queue) takeOutboxLocked() []bus.Event {
	out := q.outbox
	q.outbox = nil
	return out
}

// deliver publishes drained events synchronously, preserving the order
// they were raised in. Must be called without holding mu.
func (q *Queue) deliver(out []bus.Event) {
	for _, e := range out {
		q.events.PublishSync(e)
	}
}

// Stop aborts the current utterance and discards everything queued. Audio
// already out for synthesis is ignored when it lands.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.state != StateIdle || len(q.pending) > 0 {
		q.stopLocked()
		q.emitLocked(bus.Event{Type: bus.EventTypeSpeechStopped})
	}
	out := q.takeOutboxLocked()
	q.mu.Unlock()

	q.deliver(out)
}

// stopLocked resets the pipeline to idle and invalidates in-flight work.
func (q *Queue) stopLocked() {
	q.gen++
	q.result = nil
	q.pending = nil
	q.current = nil
	q.chunks = nil
	q.chunkIdx = 0
	q.player.Stop()
	q.state = StateIdle
}

// Update advances the pipeline by one tick: consume a landed synthesis
// result, or notice that playback finished and move to the next chunk or
// utterance. Call it from the main loop.
func (q *Queue) Update() {
	q.mu.Lock()
	q.updateLocked()
	out := q.takeOutboxLocked()
	q.mu.Unlock()

	q.deliver(out)
}

func (q *Queue) updateLocked() {
	if q.result != nil {
		res := q.result
		q.result = nil
		q.handleResultLocked(res)
		return
	}

	// A stale worker from before an interrupt can leave a fresh chunk
	// waiting with nothing in flight. Relaunch it.
	if q.state == StateProcessing && !q.inWork && q.current != nil {
		q.requestChunkLocked()
		return
	}

	if q.state == StateSpeaking && !q.player.IsPlaying() {
		q.chunkIdx++
		if q.chunkIdx < len(q.chunks) {
			q.state = StateProcessing
			q.requestChunkLocked()
			return
		}
		q.finishUtteranceLocked()
	}
}

// Close stops the pipeline and releases the synthesis context.
func (q *Queue) Close() {
	q.Stop()
	q.cancel()
}

// startUtteranceLocked chunks the text and requests synthesis of the
// first chunk.
func (q *Queue) startUtteranceLocked(u Utterance) {
	chunks, truncated, err := chunker.Split(u.Text, q.config.MaxChunkLen)
	if err != nil || len(chunks) == 0 {
		q.logger.Error().Err(err).Str("id", u.ID.String()).Msg("chunking failed")
		q.advanceLocked()
		return
	}
	if truncated {
		q.logger.Warn().Str("id", u.ID.String()).Msg("oversized word truncated during chunking")
		q.emitLocked(bus.Event{
			Type: bus.EventTypeSpeechTruncated,
			Data: map[string]any{"id": u.ID.String()},
		})
	}

	q.current = &u
	q.chunks = chunks
	q.chunkIdx = 0
	q.state = StateProcessing
	q.requestChunkLocked()
}

// requestChunkLocked launches synthesis of the current chunk. At most one
// request is outstanding at a time.
func (q *Queue) requestChunkLocked() {
	if q.inWork {
		return
	}
	q.inWork = true

	gen := q.gen
	text := q.chunks[q.chunkIdx]

	go func() {
		res := &synthResult{gen: gen}

		resp, err := q.provider.Synthesize(q.ctx, &tts.SynthesizeRequest{
			Text:  text,
			Voice: q.config.Voice,
			Model: q.config.Model,
		})
		if err != nil {
			res.err = err
		} else {
			res.container, res.err = wav.Decode(resp.Audio)
		}

		q.mu.Lock()
		defer q.mu.Unlock()
		q.inWork = false
		if gen != q.gen {
			// Stopped while we were out. Drop the audio.
			return
		}
		q.result = res
	}()
}

// handleResultLocked consumes one synthesis result: start playback, or
// abort the utterance on error.
func (q *Queue) handleResultLocked(res *synthResult) {
	if res.gen != q.gen || q.current == nil {
		return
	}

	if res.err != nil {
		q.logger.Error().Err(res.err).Str("id", q.current.ID.String()).Int("chunk", q.chunkIdx).Msg("chunk synthesis failed")
		q.emitLocked(bus.Event{
			Type: bus.EventTypeSpeechError,
			Data: map[string]any{"id": q.current.ID.String(), "error": res.err.Error()},
		})
		q.advanceLocked()
		return
	}

	if err := q.player.Play(res.container); err != nil {
		q.logger.Error().Err(err).Msg("playback failed")
		q.emitLocked(bus.Event{
			Type: bus.EventTypeSpeechError,
			Data: map[string]any{"id": q.current.ID.String(), "error": err.Error()},
		})
		q.advanceLocked()
		return
	}

	if q.chunkIdx == 0 {
		q.emitLocked(bus.Event{
			Type: bus.EventTypeSpeechStarted,
			Data: map[string]any{"id": q.current.ID.String(), "chunks": len(q.chunks)},
		})
	}
	q.emitLocked(bus.Event{
		Type: bus.EventTypeSpeechChunk,
		Data: map[string]any{"id": q.current.ID.String(), "chunk": q.chunkIdx, "duration": res.container.Duration().Seconds()},
	})
	q.state = StateSpeaking
}

// finishUtteranceLocked wraps up the current utterance and moves on.
func (q *Queue) finishUtteranceLocked() {
	if q.current != nil {
		q.logger.Info().Str("id", q.current.ID.String()).Int("chunks", len(q.chunks)).Msg("utterance finished")
		q.emitLocked(bus.Event{
			Type: bus.EventTypeSpeechFinished,
			Data: map[string]any{"id": q.current.ID.String()},
		})
	}
	q.advanceLocked()
}

// advanceLocked dequeues the next utterance or returns to idle.
func (q *Queue) advanceLocked() {
	q.current = nil
	q.chunks = nil
	q.chunkIdx = 0

	if len(q.pending) == 0 {
		q.state = StateIdle
		return
	}

	next := q.pending[0]
	q.pending = q.pending[1:]
	q.startUtteranceLocked(next)
}
