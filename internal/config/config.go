// Package config provides configuration management for VoxPuppet
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/voxpuppet/voxpuppet/internal/logging"
)

// Config holds all application configuration
type Config struct {
	TTS    TTSConfig      `mapstructure:"tts" yaml:"tts"`
	STT    STTConfig      `mapstructure:"stt" yaml:"stt"`
	Speech SpeechConfig   `mapstructure:"speech" yaml:"speech"`
	Audio  AudioConfig    `mapstructure:"audio" yaml:"audio"`
	Anim   AnimConfig     `mapstructure:"anim" yaml:"anim"`
	Log    logging.Config `mapstructure:"log" yaml:"log"`
}

// TTSConfig configures text-to-speech
type TTSConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider"` // http or stream
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"` // websocket endpoint for the stream provider
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Voice    string        `mapstructure:"voice" yaml:"voice"`
	Speed    float64       `mapstructure:"speed" yaml:"speed"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// STTConfig configures speech-to-text
type STTConfig struct {
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Language string        `mapstructure:"language" yaml:"language"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SpeechConfig configures chunking and the utterance queue
type SpeechConfig struct {
	MaxChunkLen  int  `mapstructure:"max_chunk_len" yaml:"max_chunk_len"`
	MaxQueueSize int  `mapstructure:"max_queue_size" yaml:"max_queue_size"`
	QueueEnabled bool `mapstructure:"queue_enabled" yaml:"queue_enabled"`
}

// AudioConfig configures playback, capture, and amplitude analysis
type AudioConfig struct {
	SampleRate  int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	Sensitivity float64 `mapstructure:"sensitivity" yaml:"sensitivity"`
}

// AnimConfig configures the avatar animation driver
type AnimConfig struct {
	MaxMouthOpen  float64 `mapstructure:"max_mouth_open" yaml:"max_mouth_open"`
	Smoothing     float64 `mapstructure:"smoothing" yaml:"smoothing"`
	SwayAmplitude float64 `mapstructure:"sway_amplitude" yaml:"sway_amplitude"`
	SwaySpeed     float64 `mapstructure:"sway_speed" yaml:"sway_speed"`
	GestureScale  float64 `mapstructure:"gesture_scale" yaml:"gesture_scale"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		TTS: TTSConfig{
			Provider: "http",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "tts-1",
			Voice:    "nova",
			Speed:    1.0,
			Timeout:  30 * time.Second,
		},
		STT: STTConfig{
			BaseURL:  "https://api.openai.com/v1",
			Model:    "whisper-1",
			Language: "",
			Timeout:  30 * time.Second,
		},
		Speech: SpeechConfig{
			MaxChunkLen:  280,
			MaxQueueSize: 8,
			QueueEnabled: true,
		},
		Audio: AudioConfig{
			SampleRate:  22050,
			Sensitivity: 8.0,
		},
		Anim: AnimConfig{
			MaxMouthOpen:  0.7,
			Smoothing:     12.0,
			SwayAmplitude: 0.02,
			SwaySpeed:     0.6,
			GestureScale:  1.0,
		},
		Log: *logging.DefaultConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".voxpuppet"), nil
}

// Load reads configuration from file and environment. An empty path loads
// config.yaml from the default config directory, creating it on first run.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return cfg, err
		}
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return cfg, err
		}
		v.SetConfigName("config")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	// Environment variable overrides
	v.SetEnvPrefix("VOXPUPPET")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if path == "" {
			if err := Save(cfg, ""); err != nil {
				return cfg, err
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to file. An empty path writes config.yaml
// in the default config directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return err
		}
		path = filepath.Join(configDir, "config.yaml")
	}

	v := viper.New()
	v.Set("tts", cfg.TTS)
	v.Set("stt", cfg.STT)
	v.Set("speech", cfg.Speech)
	v.Set("audio", cfg.Audio)
	v.Set("anim", cfg.Anim)
	v.Set("log", cfg.Log)

	return v.WriteConfigAs(path)
}
