package anim

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// IdleSwayConfig holds idle motion tuning.
type IdleSwayConfig struct {
	Amplitude float32
	Speed     float32
}

// DefaultIdleSwayConfig returns sensible defaults.
func DefaultIdleSwayConfig() IdleSwayConfig {
	return IdleSwayConfig{
		Amplitude: 0.02,
		Speed:     0.6,
	}
}

// IdleSway produces a slow ambient body drift. It runs every frame no
// matter what the speech pipeline is doing.
type IdleSway struct {
	config  IdleSwayConfig
	time    float32
	offsets [4]float32
}

// NewIdleSway creates an idle animator with randomized phase offsets so
// multiple instances never move in lockstep.
func NewIdleSway(config IdleSwayConfig) *IdleSway {
	is := &IdleSway{config: config}
	for i := range is.offsets {
		is.offsets[i] = rand.Float32() * 100
	}
	return is
}

// Update advances the sway clock and returns the current body offset.
func (is *IdleSway) Update(dt float32) mgl32.Vec3 {
	is.time += dt

	amp := is.config.Amplitude
	x := layeredNoise(is.time*is.config.Speed, is.offsets[0]) * amp
	y := layeredNoise(is.time*is.config.Speed*0.8, is.offsets[1]) * amp * 0.5
	z := layeredNoise(is.time*is.config.Speed*0.5, is.offsets[2]) * amp * 0.3

	return mgl32.Vec3{x, y, z}
}

// SetConfig replaces the tuning. Phase offsets and the sway clock carry
// over, so the motion stays continuous.
func (is *IdleSway) SetConfig(config IdleSwayConfig) {
	is.config = config
}

// Reset rewinds the sway clock.
func (is *IdleSway) Reset() {
	is.time = 0
}

// layeredNoise sums three detuned sines into a smooth pseudo-random
// wobble in [-1, 1].
func layeredNoise(t, offset float32) float32 {
	t += offset

	n1 := float32(math.Sin(float64(t * 1.0)))
	n2 := float32(math.Sin(float64(t*2.3+1.7))) * 0.5
	n3 := float32(math.Sin(float64(t*4.1+3.2))) * 0.25

	return (n1 + n2 + n3) / 1.75
}
