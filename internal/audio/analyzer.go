package audio

import "math"

// WindowSize is the number of live playback samples handed to Loudness each
// animation tick. The analyzer never resamples; callers supply a window at
// the playback rate.
const WindowSize = 1024

// Loudness estimates the normalized energy of a sample window.
//
// It is the mean absolute value of the window scaled by sensitivity and
// clamped to [0, 1]. Pure and stateless; an empty window is silent.
func Loudness(window []float32, sensitivity float32) float32 {
	if len(window) == 0 || sensitivity <= 0 {
		return 0
	}

	var sum float64
	for _, s := range window {
		sum += math.Abs(float64(s))
	}

	v := float32(sum/float64(len(window))) * sensitivity
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
