package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GestureConfig holds speaking-gesture tuning.
type GestureConfig struct {
	Scale     float32
	Smoothing float32
}

// DefaultGestureConfig returns sensible defaults.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		Scale:     1.0,
		Smoothing: 6.0,
	}
}

// Gestures animates head and arm sway while speaking. When speech stops
// the pose eases back to the rest pose captured at construction.
type Gestures struct {
	config GestureConfig
	time   float32

	restHead mgl32.Vec3
	restArm  mgl32.Vec3
	head     mgl32.Vec3
	arm      mgl32.Vec3
}

// NewGestures creates a gesture animator anchored to the given rest pose.
func NewGestures(config GestureConfig, restHead, restArm mgl32.Vec3) *Gestures {
	return &Gestures{
		config:   config,
		restHead: restHead,
		restArm:  restArm,
		head:     restHead,
		arm:      restArm,
	}
}

// Update advances the gesture clock. While speaking the head and arms sway
// around the rest pose; otherwise both ease home.
func (g *Gestures) Update(dt float32, speaking bool) (head, arm mgl32.Vec3) {
	lerpFactor := 1.0 - exp32(-g.config.Smoothing*dt)

	if speaking {
		g.time += dt
		s := g.config.Scale

		targetHead := g.restHead.Add(mgl32.Vec3{
			float32(math.Sin(float64(g.time*1.9))) * 0.03 * s,
			float32(math.Sin(float64(g.time*2.7+0.9))) * 0.02 * s,
			0,
		})
		targetArm := g.restArm.Add(mgl32.Vec3{
			float32(math.Sin(float64(g.time*1.3+2.1))) * 0.05 * s,
			float32(math.Sin(float64(g.time*1.7))) * 0.04 * s,
			0,
		})

		g.head = lerpVec3(g.head, targetHead, lerpFactor)
		g.arm = lerpVec3(g.arm, targetArm, lerpFactor)
		return g.head, g.arm
	}

	g.head = lerpVec3(g.head, g.restHead, lerpFactor)
	g.arm = lerpVec3(g.arm, g.restArm, lerpFactor)
	return g.head, g.arm
}

// SetConfig replaces the tuning without moving the current pose.
func (g *Gestures) SetConfig(config GestureConfig) {
	g.config = config
}

// Head returns the current head pose.
func (g *Gestures) Head() mgl32.Vec3 {
	return g.head
}

// Arm returns the current arm pose.
func (g *Gestures) Arm() mgl32.Vec3 {
	return g.arm
}

func lerpVec3(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}
