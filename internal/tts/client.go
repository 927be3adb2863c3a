package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client implements Provider over the service's JSON speech endpoint.
type Client struct {
	apiKey string
	client *http.Client
	logger zerolog.Logger
	config *ClientConfig
}

// ClientConfig holds synthesis client configuration.
type ClientConfig struct {
	BaseURL      string        `json:"base_url"`
	APIKey       string        `json:"api_key"`
	Model        string        `json:"model"`
	DefaultVoice string        `json:"default_voice"`
	Speed        float64       `json:"speed"`
	MaxInputLen  int           `json:"max_input_len"`
	Timeout      time.Duration `json:"timeout"`
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "https://api.openai.com/v1",
		Model:        "tts-1",
		DefaultVoice: "nova",
		Speed:        1.0,
		MaxInputLen:  4096,
		Timeout:      30 * time.Second,
	}
}

// NewClient creates a synthesis client.
func NewClient(logger zerolog.Logger, config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("VOXPUPPET_API_KEY")
	}

	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("provider", "speech-api").Logger(),
		config: config,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "speech-api"
}

// MaxTextLength returns the per-request input limit.
func (c *Client) MaxTextLength() int {
	return c.config.MaxInputLen
}

// speechRequest is the wire format of the synthesis endpoint.
type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// errorPayload is the wire format of a synthesis failure.
type errorPayload struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Synthesize converts one chunk of text to WAV audio bytes.
func (c *Client) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if len(req.Text) > c.config.MaxInputLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(req.Text), c.config.MaxInputLen)
	}

	startTime := time.Now()

	voice := req.Voice
	if voice == "" {
		voice = c.config.DefaultVoice
	}
	model := req.Model
	if model == "" {
		model = c.config.Model
	}
	speed := req.Speed
	if speed == 0 {
		speed = c.config.Speed
	}

	body, err := json.Marshal(speechRequest{
		Model:          model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: "wav",
		Speed:          speed,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug().
		Str("voice", voice).
		Str("model", model).
		Int("textLen", len(req.Text)).
		Msg("sending synthesis request")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.serviceError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	processingTime := time.Since(startTime)
	c.logger.Info().
		Str("voice", voice).
		Int("audioBytes", len(audio)).
		Dur("processingTime", processingTime).
		Msg("synthesis complete")

	return &SynthesizeResponse{
		Audio:          audio,
		Format:         "wav",
		ProcessingTime: processingTime,
		Provider:       c.Name(),
	}, nil
}

// serviceError turns a non-200 response into a *ServiceError, falling back
// to the raw body when the error payload does not parse.
func (c *Client) serviceError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	svcErr := &ServiceError{Status: resp.StatusCode, Message: string(body)}
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		svcErr.Message = payload.Error.Message
		svcErr.Code = payload.Error.Code
	}

	c.logger.Error().
		Int("status", resp.StatusCode).
		Str("message", svcErr.Message).
		Msg("synthesis request failed")
	return svcErr
}

// Health checks that the client is configured.
func (c *Client) Health(ctx context.Context) error {
	if c.apiKey == "" {
		return ErrServiceUnavailable
	}
	return nil
}
