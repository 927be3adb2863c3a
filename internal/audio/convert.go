package audio

import "math"

// Float32ToBytes converts normalized samples to interleaved little-endian
// 16-bit PCM bytes, clamping to [-1, 1]. Quantization is round(s * 32767),
// the same mapping wav.Encode uses.
func Float32ToBytes(in []float32) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(math.Round(float64(s) * 32767))
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}

// BytesToFloat32 converts interleaved little-endian 16-bit PCM bytes to
// normalized float samples.
func BytesToFloat32(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(b[2*i]) | int16(b[2*i+1])<<8
		out[i] = float32(v) / 32768.0
	}
	return out
}
