// Package bus provides an internal event bus for component communication
package bus

import (
	"sync"
)

// EventType identifies different event types
type EventType string

// Event types for the speech pipeline
const (
	// Speech lifecycle events
	EventTypeSpeechQueued    EventType = "speech.queued"
	EventTypeSpeechStarted   EventType = "speech.started"
	EventTypeSpeechChunk     EventType = "speech.chunk"
	EventTypeSpeechFinished  EventType = "speech.finished"
	EventTypeSpeechError     EventType = "speech.error"
	EventTypeSpeechDropped   EventType = "speech.dropped"
	EventTypeSpeechTruncated EventType = "speech.truncated"
	EventTypeSpeechStopped   EventType = "speech.stopped"

	// Audio events
	EventTypePlaybackStarted EventType = "audio.playback_started"
	EventTypePlaybackStopped EventType = "audio.playback_stopped"
	EventTypeCaptureStarted  EventType = "audio.capture_started"
	EventTypeCaptureStopped  EventType = "audio.capture_stopped"

	// STT events
	EventTypeTranscript EventType = "stt.transcript"

	// Config events
	EventTypeConfigReloaded EventType = "config.reloaded"
)

// Event represents a bus event
type Event struct {
	Type EventType
	Data map[string]any
}

// Handler is a function that handles events
type Handler func(Event)

// EventBus is a simple pub/sub event bus
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for an event type
func (b *EventBus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeMultiple adds a handler for multiple event types
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) {
	for _, et := range eventTypes {
		b.Subscribe(et, handler)
	}
}

// Publish sends an event to all subscribed handlers
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		// Call handlers in goroutines to avoid blocking
		go handler(event)
	}
}

// PublishSync invokes all handlers inline, in subscription order, before
// returning. Use it when observers must see events in the order they were
// published.
func (b *EventBus) PublishSync(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]Handler)
}
