// Package anim turns live playback loudness into smoothed, bounded
// animation values for the puppet's jaw and body.
package anim

import "math"

// HardOpenLimit is the unconditional upper bound on jaw openness. It holds
// no matter how high MaxOpen is tuned; past it the mesh visibly deforms.
const HardOpenLimit float32 = 0.85

// JawConfig holds jaw animation tuning.
type JawConfig struct {
	MaxOpen   float32
	Smoothing float32
}

// DefaultJawConfig returns sensible defaults.
func DefaultJawConfig() JawConfig {
	return JawConfig{
		MaxOpen:   0.7,
		Smoothing: 12.0,
	}
}

// Jaw smooths a loudness drive signal into a jaw-open value.
type Jaw struct {
	config JawConfig
	open   float32
}

// NewJaw creates a jaw controller.
func NewJaw(config JawConfig) *Jaw {
	return &Jaw{config: config}
}

// Update moves the jaw toward drive*MaxOpen and returns the new openness.
// The target is bounded by MaxOpen and the result by HardOpenLimit, both
// clamps always apply.
func (j *Jaw) Update(dt, drive float32) float32 {
	target := clamp(drive, 0, 1) * j.config.MaxOpen
	if target > j.config.MaxOpen {
		target = j.config.MaxOpen
	}

	lerpFactor := 1.0 - exp32(-j.config.Smoothing*dt)
	j.open += (target - j.open) * lerpFactor

	j.open = clamp(j.open, 0, HardOpenLimit)
	return j.open
}

// SetConfig replaces the tuning without snapping the jaw.
func (j *Jaw) SetConfig(config JawConfig) {
	j.config = config
}

// Open returns the current jaw openness.
func (j *Jaw) Open() float32 {
	return j.open
}

// Reset snaps the jaw shut.
func (j *Jaw) Reset() {
	j.open = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func exp32(x float32) float32 {
	return float32(math.Exp(float64(x)))
}
