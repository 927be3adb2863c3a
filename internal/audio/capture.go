package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// Recorder captures microphone audio from the system default input device
// as normalized float frames. Frames are dropped rather than buffered when
// the consumer falls behind, so capture never stalls the audio thread.
type Recorder struct {
	ctx    *malgo.AllocatedContext
	logger zerolog.Logger

	mu      sync.Mutex
	dev     *malgo.Device
	out     chan []float32
	running bool
}

// NewRecorder initializes a capture context. The device itself is opened by
// Start.
func NewRecorder(logger zerolog.Logger) (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init capture context: %w", err)
	}
	return &Recorder{
		ctx:    ctx,
		logger: logger.With().Str("component", "recorder").Logger(),
		out:    make(chan []float32, 64),
	}, nil
}

// Frames returns the channel of captured sample frames.
func (r *Recorder) Frames() <-chan []float32 {
	return r.out
}

// Start opens the default microphone at the fixed capture format.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = CaptureChannels
	cfg.SampleRate = CaptureSampleRate
	cfg.PeriodSizeInFrames = CaptureFrameSize
	cfg.Periods = 2

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, in []byte, frameCount uint32) {
			if len(in) == 0 {
				return
			}
			select {
			case r.out <- BytesToFloat32(in):
			default:
				// Consumer behind; drop the frame.
			}
		},
	}

	dev, err := malgo.InitDevice(r.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("init capture device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return fmt.Errorf("start capture device: %w", err)
	}

	r.dev = dev
	r.running = true
	r.logger.Info().Int("rate", CaptureSampleRate).Msg("microphone capture started")
	return nil
}

// Stop halts capture. Idempotent.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.dev.Uninit()
	r.dev = nil
	r.running = false
	r.logger.Info().Msg("microphone capture stopped")
}

// CaptureClip gathers up to d of microphone audio into a single buffer,
// for handing to the transcription service. Returns early if ctx is done.
func (r *Recorder) CaptureClip(ctx context.Context, d time.Duration) ([]float32, error) {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return nil, ErrCaptureNotStarted
	}

	want := int(float64(CaptureSampleRate) * d.Seconds())
	clip := make([]float32, 0, want)
	deadline := time.After(d)

	for len(clip) < want {
		select {
		case <-ctx.Done():
			return clip, ctx.Err()
		case <-deadline:
			return clip, nil
		case frame := <-r.out:
			clip = append(clip, frame...)
		}
	}
	return clip[:want], nil
}

// Close stops capture and frees the audio context.
func (r *Recorder) Close() error {
	r.Stop()
	return r.ctx.Uninit()
}
