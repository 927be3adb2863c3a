package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voxpuppet/voxpuppet/internal/wav"
)

// StreamProvider implements Provider over the service's WebSocket streaming
// endpoint. Audio arrives as base64 PCM frames which are assembled into one
// WAV container per request; the connection is reused between requests.
type StreamProvider struct {
	apiKey string
	logger zerolog.Logger
	config *StreamConfig

	connMu   sync.Mutex
	conn     *websocket.Conn
	lastUsed time.Time
}

// StreamConfig holds streaming synthesis configuration.
type StreamConfig struct {
	Endpoint    string        `json:"endpoint"` // wss:// URL
	APIKey      string        `json:"api_key"`
	Model       string        `json:"model"`
	Voice       string        `json:"voice"`
	SampleRate  uint32        `json:"sample_rate"`
	MaxInputLen int           `json:"max_input_len"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultStreamConfig returns sensible defaults.
func DefaultStreamConfig() *StreamConfig {
	return &StreamConfig{
		Endpoint:    "wss://api.voxstream.dev/v1/speech",
		Model:       "stream-1",
		SampleRate:  22050,
		MaxInputLen: 200,
		Timeout:     30 * time.Second,
	}
}

// NewStreamProvider creates a streaming synthesis provider.
func NewStreamProvider(logger zerolog.Logger, config *StreamConfig) *StreamProvider {
	if config == nil {
		config = DefaultStreamConfig()
	}
	defaults := DefaultStreamConfig()
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.SampleRate == 0 {
		config.SampleRate = defaults.SampleRate
	}
	if config.MaxInputLen == 0 {
		config.MaxInputLen = defaults.MaxInputLen
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("VOXPUPPET_STREAM_API_KEY")
	}

	return &StreamProvider{
		apiKey: apiKey,
		logger: logger.With().Str("provider", "speech-stream").Logger(),
		config: config,
	}
}

// Name returns the provider identifier.
func (p *StreamProvider) Name() string {
	return "speech-stream"
}

// MaxTextLength returns the per-request input limit. Streaming voice models
// carry a much tighter limit than the batch endpoint.
func (p *StreamProvider) MaxTextLength() int {
	return p.config.MaxInputLen
}

// streamRequest is the wire format of a generation request.
type streamRequest struct {
	Model     string `json:"model"`
	Input     string `json:"input"`
	Voice     string `json:"voice"`
	Format    string `json:"format"`
	ContextID string `json:"context_id,omitempty"`
}

// streamMessage is one frame from the service.
type streamMessage struct {
	Type  string `json:"type"` // "chunk", "done", "error"
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Synthesize sends one chunk and assembles the streamed PCM frames into a
// single WAV response.
func (p *StreamProvider) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}
	if len(req.Text) > p.config.MaxInputLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(req.Text), p.config.MaxInputLen)
	}

	startTime := time.Now()

	voice := req.Voice
	if voice == "" {
		voice = p.config.Voice
	}
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	p.connMu.Lock()
	defer p.connMu.Unlock()

	conn, err := p.ensureConnLocked(ctx)
	if err != nil {
		return nil, err
	}

	if err := conn.WriteJSON(streamRequest{
		Model:  model,
		Input:  req.Text,
		Voice:  voice,
		Format: "pcm_s16le",
	}); err != nil {
		p.dropConnLocked()
		return nil, fmt.Errorf("send generation request: %w", err)
	}

	var pcm []byte
	deadline := time.Now().Add(p.config.Timeout)
	for {
		if err := ctx.Err(); err != nil {
			p.dropConnLocked()
			return nil, err
		}
		conn.SetReadDeadline(deadline)

		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			p.dropConnLocked()
			return nil, fmt.Errorf("read stream frame: %w", err)
		}

		switch msg.Type {
		case "chunk":
			data, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				p.dropConnLocked()
				return nil, fmt.Errorf("decode audio frame: %w", err)
			}
			pcm = append(pcm, data...)
		case "done":
			p.lastUsed = time.Now()
			processingTime := time.Since(startTime)
			p.logger.Debug().
				Int("pcmBytes", len(pcm)).
				Dur("processingTime", processingTime).
				Msg("stream synthesis complete")
			return &SynthesizeResponse{
				Audio:          wav.EncodePCM16(pcm, p.config.SampleRate, 1),
				Format:         "wav",
				SampleRate:     int(p.config.SampleRate),
				ProcessingTime: processingTime,
				Provider:       p.Name(),
			}, nil
		case "error":
			p.lastUsed = time.Now()
			return nil, &ServiceError{Status: http.StatusBadGateway, Code: msg.Code, Message: msg.Error}
		default:
			p.logger.Warn().Str("type", msg.Type).Msg("ignoring unknown stream frame")
		}
	}
}

// ensureConnLocked dials the endpoint if no live connection exists. Callers
// hold connMu.
func (p *StreamProvider) ensureConnLocked(ctx context.Context) (*websocket.Conn, error) {
	if p.conn != nil {
		return p.conn, nil
	}

	header := http.Header{}
	if p.apiKey != "" {
		header.Set("Authorization", "Bearer "+p.apiKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.config.Endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	p.conn = conn
	p.lastUsed = time.Now()
	p.logger.Info().Str("endpoint", p.config.Endpoint).Msg("stream connection established")
	return conn, nil
}

// dropConnLocked discards a connection after a protocol failure. Callers
// hold connMu.
func (p *StreamProvider) dropConnLocked() {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// Health checks that the endpoint is dialable.
func (p *StreamProvider) Health(ctx context.Context) error {
	p.connMu.Lock()
	defer p.connMu.Unlock()
	_, err := p.ensureConnLocked(ctx)
	return err
}

// Close releases the connection.
func (p *StreamProvider) Close() error {
	p.connMu.Lock()
	defer p.connMu.Unlock()
	p.dropConnLocked()
	return nil
}
