package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TTS.Provider != "http" {
		t.Errorf("default provider = %q, want http", cfg.TTS.Provider)
	}
	if cfg.Speech.MaxChunkLen <= 0 {
		t.Error("default max chunk length must be positive")
	}
	if cfg.Speech.MaxQueueSize <= 0 {
		t.Error("default queue size must be positive")
	}
	if !cfg.Speech.QueueEnabled {
		t.Error("queueing should be enabled by default")
	}
	if cfg.Anim.MaxMouthOpen <= 0 || cfg.Anim.MaxMouthOpen > 1 {
		t.Errorf("default max mouth open %v out of range", cfg.Anim.MaxMouthOpen)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TTS.Model != "tts-1" {
		t.Errorf("model = %q, want default", cfg.TTS.Model)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := DefaultConfig()
	want.TTS.Voice = "onyx"
	want.Speech.MaxQueueSize = 3
	want.Speech.QueueEnabled = false
	want.Anim.Smoothing = 20.0
	want.TTS.Timeout = 5 * time.Second

	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.TTS.Voice != "onyx" {
		t.Errorf("voice = %q, want onyx", got.TTS.Voice)
	}
	if got.Speech.MaxQueueSize != 3 {
		t.Errorf("max queue size = %d, want 3", got.Speech.MaxQueueSize)
	}
	if got.Speech.QueueEnabled {
		t.Error("queue enabled should round trip as false")
	}
	if got.Anim.Smoothing != 20.0 {
		t.Errorf("smoothing = %v, want 20", got.Anim.Smoothing)
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, testLogger(), func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	cfg.TTS.Voice = "echo"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.TTS.Voice != "echo" {
			t.Errorf("reloaded voice = %q, want echo", got.TTS.Voice)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired")
	}
}
