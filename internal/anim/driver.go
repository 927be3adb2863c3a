package anim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxpuppet/voxpuppet/internal/audio"
)

// SpeechState reports whether a synthesized chunk is currently playing.
type SpeechState interface {
	Speaking() bool
}

// Pose is one frame of animation output. Renderers read it, nothing else
// writes it.
type Pose struct {
	JawOpen    float32
	BodyOffset mgl32.Vec3
	HeadOffset mgl32.Vec3
	ArmOffset  mgl32.Vec3
}

// Config holds driver tuning.
type Config struct {
	Jaw         JawConfig
	Idle        IdleSwayConfig
	Gesture     GestureConfig
	Sensitivity float32
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Jaw:         DefaultJawConfig(),
		Idle:        DefaultIdleSwayConfig(),
		Gesture:     DefaultGestureConfig(),
		Sensitivity: 8.0,
	}
}

// Driver composes jaw, idle, and gesture animation into one pose per tick.
// Loudness is measured over the most recent playback window.
type Driver struct {
	config Config

	jaw      *Jaw
	idle     *IdleSway
	gestures *Gestures

	player audio.Player
	speech SpeechState

	window []float32
	pose   Pose
}

// NewDriver creates an animation driver over the given playback device and
// speech state.
func NewDriver(config Config, player audio.Player, speech SpeechState) *Driver {
	return &Driver{
		config:   config,
		jaw:      NewJaw(config.Jaw),
		idle:     NewIdleSway(config.Idle),
		gestures: NewGestures(config.Gesture, mgl32.Vec3{}, mgl32.Vec3{}),
		player:   player,
		speech:   speech,
		window:   make([]float32, audio.WindowSize),
	}
}

// SetConfig propagates new tuning to every animator. Animation state is
// preserved, so a reload mid-motion does not pop. Call it from the same
// goroutine as Update.
func (d *Driver) SetConfig(config Config) {
	d.config = config
	d.jaw.SetConfig(config.Jaw)
	d.idle.SetConfig(config.Idle)
	d.gestures.SetConfig(config.Gesture)
}

// Update advances all animators by dt seconds and returns the new pose.
func (d *Driver) Update(dt float32) Pose {
	speaking := d.speech.Speaking()

	var drive float32
	if speaking {
		n := d.player.Window(d.window)
		drive = audio.Loudness(d.window[:n], d.config.Sensitivity)
	}

	d.pose.JawOpen = d.jaw.Update(dt, drive)
	d.pose.BodyOffset = d.idle.Update(dt)
	d.pose.HeadOffset, d.pose.ArmOffset = d.gestures.Update(dt, speaking)
	return d.pose
}

// Pose returns the most recently computed pose.
func (d *Driver) Pose() Pose {
	return d.pose
}
