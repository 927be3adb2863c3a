package audio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"

	"github.com/voxpuppet/voxpuppet/internal/wav"
)

// Player renders one decoded container at a time and exposes a live sample
// window around the playhead for the animation driver. Implementations never
// block the caller; completion is observed by polling IsPlaying.
type Player interface {
	// Play starts playback of the container. Fails with ErrPlaybackActive
	// if a previous container is still playing.
	Play(c *wav.Container) error

	// Stop halts playback immediately. Safe to call in any state.
	Stop()

	// IsPlaying reports whether audio is still being rendered.
	IsPlaying() bool

	// Window copies the most recent samples behind the playhead into dst
	// and returns the number copied. Read-only; never mutates playback.
	Window(dst []float32) int

	// Close releases the underlying device.
	Close() error
}

// Device plays audio through the default output device via malgo.
type Device struct {
	ctx    *malgo.AllocatedContext
	logger zerolog.Logger

	mu      sync.Mutex
	dev     *malgo.Device
	samples []float32
	pcm     []byte
	pos     int // bytes consumed by the output callback
	playing bool
	closed  bool
}

// NewDevice initializes a playback device on the system default output.
func NewDevice(logger zerolog.Logger) (*Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &Device{
		ctx:    ctx,
		logger: logger.With().Str("component", "player").Logger(),
	}, nil
}

// Play starts rendering the container on the default output device.
func (d *Device) Play(c *wav.Container) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrPlayerClosed
	}
	if d.playing {
		return ErrPlaybackActive
	}
	d.teardownLocked()

	d.samples = c.Samples
	d.pcm = Float32ToBytes(c.Samples)
	d.pos = 0

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(c.Channels)
	cfg.SampleRate = c.SampleRate
	cfg.PeriodSizeInFrames = 512
	cfg.Periods = 2

	channels := int(c.Channels)
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			d.mu.Lock()
			defer d.mu.Unlock()

			need := int(frameCount) * channels * 2
			if d.pos >= len(d.pcm) {
				for i := 0; i < need && i < len(out); i++ {
					out[i] = 0
				}
				d.playing = false
				return
			}
			end := d.pos + need
			if end > len(d.pcm) {
				end = len(d.pcm)
			}
			n := copy(out, d.pcm[d.pos:end])
			for i := n; i < need && i < len(out); i++ {
				out[i] = 0
			}
			d.pos = end
		},
	}

	dev, err := malgo.InitDevice(d.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("init playback device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return fmt.Errorf("start playback device: %w", err)
	}

	d.dev = dev
	d.playing = true
	d.logger.Debug().
		Int("samples", len(c.Samples)).
		Uint32("rate", c.SampleRate).
		Dur("duration", c.Duration()).
		Msg("playback started")
	return nil
}

// Stop halts playback and releases the device.
func (d *Device) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.teardownLocked()
	d.pcm = nil
	d.samples = nil
	d.pos = 0
}

// teardownLocked uninitializes any previous device. Callers hold d.mu.
func (d *Device) teardownLocked() {
	if d.dev != nil {
		dev := d.dev
		d.dev = nil
		// Uninit joins the audio thread; release the lock so the data
		// callback can drain.
		d.mu.Unlock()
		dev.Uninit()
		d.mu.Lock()
	}
}

// IsPlaying reports whether samples remain to be rendered.
func (d *Device) IsPlaying() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

// Window copies the most recent samples behind the playhead into dst.
func (d *Device) Window(dst []float32) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.samples) == 0 {
		return 0
	}
	playhead := d.pos / 2
	if playhead > len(d.samples) {
		playhead = len(d.samples)
	}
	start := playhead - len(dst)
	if start < 0 {
		start = 0
	}
	return copy(dst, d.samples[start:playhead])
}

// Close stops playback and frees the audio context.
func (d *Device) Close() error {
	d.Stop()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.ctx.Uninit()
}
