package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxpuppet/voxpuppet/internal/wav"
)

// ClientConfig holds transcription client configuration.
type ClientConfig struct {
	BaseURL  string        `json:"base_url" mapstructure:"base_url"`
	APIKey   string        `json:"api_key" mapstructure:"api_key"`
	Model    string        `json:"model" mapstructure:"model"`
	Language string        `json:"language" mapstructure:"language"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "https://api.openai.com/v1",
		Model:   "whisper-1",
		Timeout: 30 * time.Second,
	}
}

// Client transcribes audio clips over HTTP multipart uploads.
type Client struct {
	apiKey string
	http   *http.Client
	logger zerolog.Logger
	config *ClientConfig
}

// NewClient creates a transcription client.
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
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("provider", "stt-api").Logger(),
		config: config,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "stt-api"
}

// Transcribe uploads one clip as a WAV file and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	startTime := time.Now()

	if len(req.Samples) == 0 {
		return nil, ErrAudioTooShort
	}

	rate := req.SampleRate
	if rate == 0 {
		rate = 16000
	}
	wavData := wav.Encode(req.Samples, rate, 1)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.WriteField("model", c.config.Model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}

	language := req.Language
	if language == "" {
		language = c.config.Language
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("failed to write language field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("transcription API error")
		return nil, fmt.Errorf("transcription API error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	processingTime := time.Since(startTime)
	c.logger.Info().Dur("time", processingTime).Int("chars", len(result.Text)).Msg("transcription complete")

	return &TranscribeResponse{
		Text:           result.Text,
		Language:       language,
		ProcessingTime: processingTime,
	}, nil
}

// Health checks if the API is reachable with the configured credentials.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"/models", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}
