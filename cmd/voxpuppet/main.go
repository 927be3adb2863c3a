// VoxPuppet speaks typed text aloud and animates a puppet from the audio.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/voxpuppet/voxpuppet/internal/anim"
	"github.com/voxpuppet/voxpuppet/internal/audio"
	"github.com/voxpuppet/voxpuppet/internal/bus"
	"github.com/voxpuppet/voxpuppet/internal/config"
	"github.com/voxpuppet/voxpuppet/internal/logging"
	"github.com/voxpuppet/voxpuppet/internal/speech"
	"github.com/voxpuppet/voxpuppet/internal/stt"
	"github.com/voxpuppet/voxpuppet/internal/tts"
)

const tickRate = 60

// loadEnvFile loads API keys from ~/.voxpuppet/.env into the process
// environment without overriding variables that are already set.
func loadEnvFile() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	file, err := os.Open(filepath.Join(home, ".voxpuppet", ".env"))
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// newProvider builds the synthesis provider the config names.
func newProvider(cfg *config.Config, logger *logging.Logger) tts.Provider {
	switch cfg.TTS.Provider {
	case "stream":
		return tts.NewStreamProvider(logger.Component("tts"), &tts.StreamConfig{
			Endpoint: cfg.TTS.Endpoint,
			APIKey:   cfg.TTS.APIKey,
			Model:    cfg.TTS.Model,
			Voice:    cfg.TTS.Voice,
		})
	default:
		return tts.NewClient(logger.Component("tts"), &tts.ClientConfig{
			BaseURL:      cfg.TTS.BaseURL,
			APIKey:       cfg.TTS.APIKey,
			Model:        cfg.TTS.Model,
			DefaultVoice: cfg.TTS.Voice,
			Speed:        cfg.TTS.Speed,
			MaxInputLen:  4096,
			Timeout:      cfg.TTS.Timeout,
		})
	}
}

// speechConfig maps the file config onto queue settings, capping chunk
// length at what the provider accepts.
func speechConfig(cfg *config.Config, provider tts.Provider) *speech.Config {
	maxChunk := cfg.Speech.MaxChunkLen
	if limit := provider.MaxTextLength(); limit > 0 && maxChunk > limit {
		maxChunk = limit
	}
	return &speech.Config{
		Voice:        cfg.TTS.Voice,
		Model:        cfg.TTS.Model,
		MaxChunkLen:  maxChunk,
		MaxQueueSize: cfg.Speech.MaxQueueSize,
		QueueEnabled: cfg.Speech.QueueEnabled,
	}
}

// animConfig maps the file config onto animation tuning.
func animConfig(cfg *config.Config) anim.Config {
	return anim.Config{
		Jaw: anim.JawConfig{
			MaxOpen:   float32(cfg.Anim.MaxMouthOpen),
			Smoothing: float32(cfg.Anim.Smoothing),
		},
		Idle: anim.IdleSwayConfig{
			Amplitude: float32(cfg.Anim.SwayAmplitude),
			Speed:     float32(cfg.Anim.SwaySpeed),
		},
		Gesture: anim.GestureConfig{
			Scale:     float32(cfg.Anim.GestureScale),
			Smoothing: 6.0,
		},
		Sensitivity: float32(cfg.Audio.Sensitivity),
	}
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ~/.voxpuppet/config.yaml)")
	flag.Parse()

	loadEnvFile()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	mainLog := logger.Component("main")
	mainLog.Info().Msg("voxpuppet starting")

	events := bus.NewEventBus()

	player, err := audio.NewDevice(logger.Component("audio"))
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to open playback device")
	}
	defer player.Close()

	provider := newProvider(cfg, logger)

	queue := speech.NewQueue(logger.Component("speech"), speechConfig(cfg, provider), provider, player, events)
	defer queue.Close()

	transcriber := stt.NewClient(logger.Component("stt"), &stt.ClientConfig{
		BaseURL:  cfg.STT.BaseURL,
		APIKey:   cfg.STT.APIKey,
		Model:    cfg.STT.Model,
		Language: cfg.STT.Language,
		Timeout:  cfg.STT.Timeout,
	})

	driver := anim.NewDriver(animConfig(cfg), player, queue)

	// Hot-reload the config file for tuning sessions. The watcher hands
	// fresh configs to the tick loop, which applies them between frames.
	reloads := make(chan *config.Config, 1)
	watchPath := *configPath
	if watchPath == "" {
		if dir, err := config.GetConfigDir(); err == nil {
			watchPath = filepath.Join(dir, "config.yaml")
		}
	}
	if watchPath != "" {
		watcher, err := config.NewWatcher(watchPath, logger.Zerolog(), func(fresh *config.Config) {
			// Keep only the newest config if the loop is behind.
			select {
			case <-reloads:
			default:
			}
			reloads <- fresh
		})
		if err != nil {
			mainLog.Warn().Err(err).Msg("config watcher unavailable")
		} else {
			defer watcher.Close()
		}
	}

	events.Subscribe(bus.EventTypeSpeechError, func(e bus.Event) {
		mainLog.Warn().Interface("data", e.Data).Msg("speech error")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Println("type text to speak it, /listen [seconds], /stop, /quit")

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-sig:
			mainLog.Info().Msg("interrupted, shutting down")
			return

		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			queue.Update()
			driver.Update(dt)

		case fresh := <-reloads:
			queue.SetConfig(speechConfig(fresh, provider))
			driver.SetConfig(animConfig(fresh))
			mainLog.Info().Msg("applied reloaded config")
			events.Publish(bus.Event{Type: bus.EventTypeConfigReloaded})

		case line, ok := <-lines:
			if !ok {
				mainLog.Info().Msg("stdin closed, shutting down")
				return
			}
			if quit := handleLine(ctx, line, queue, transcriber, logger); quit {
				return
			}
		}
	}
}

// handleLine dispatches one console line. Returns true on /quit.
func handleLine(ctx context.Context, line string, queue *speech.Queue, transcriber *stt.Client, logger *logging.Logger) bool {
	mainLog := logger.Component("main")
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return false

	case line == "/quit":
		return true

	case line == "/stop":
		queue.Stop()
		return false

	case strings.HasPrefix(line, "/listen"):
		seconds := 3
		if arg := strings.TrimSpace(strings.TrimPrefix(line, "/listen")); arg != "" {
			if n, err := strconv.Atoi(arg); err == nil && n > 0 {
				seconds = n
			}
		}
		go listenAndEcho(ctx, time.Duration(seconds)*time.Second, queue, transcriber, logger)
		return false

	default:
		if err := queue.Speak(line); err != nil {
			mainLog.Warn().Err(err).Msg("utterance rejected")
		}
		return false
	}
}

// listenAndEcho captures a microphone clip, transcribes it, and speaks the
// transcription back.
func listenAndEcho(ctx context.Context, d time.Duration, queue *speech.Queue, transcriber *stt.Client, logger *logging.Logger) {
	mainLog := logger.Component("main")

	recorder, err := audio.NewRecorder(logger.Component("audio"))
	if err != nil {
		mainLog.Error().Err(err).Msg("failed to open capture device")
		return
	}
	defer recorder.Close()

	if err := recorder.Start(); err != nil {
		mainLog.Error().Err(err).Msg("failed to start capture")
		return
	}

	fmt.Printf("listening for %s...\n", d)
	samples, err := recorder.CaptureClip(ctx, d)
	if err != nil {
		mainLog.Error().Err(err).Msg("capture failed")
		return
	}

	resp, err := transcriber.Transcribe(ctx, &stt.TranscribeRequest{
		Samples:    samples,
		SampleRate: audio.CaptureSampleRate,
	})
	if err != nil {
		mainLog.Error().Err(err).Msg("transcription failed")
		return
	}

	fmt.Printf("heard: %s\n", resp.Text)
	if err := queue.Speak(resp.Text); err != nil {
		mainLog.Warn().Err(err).Msg("utterance rejected")
	}
}
