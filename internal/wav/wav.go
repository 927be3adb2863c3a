// Package wav implements the canonical RIFF/WAVE PCM container used as the
// on-wire audio contract with the synthesis and transcription services.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// HeaderSize is the size of the canonical 44-byte RIFF/WAVE/PCM header.
const HeaderSize = 44

// Common errors
var (
	ErrMalformedContainer = errors.New("malformed wav container")
	ErrUnsupportedFormat  = errors.New("unsupported wav format")
)

// Container holds decoded PCM audio with its format metadata.
// Samples are normalized float32 in [-1, 1], interleaved when stereo.
type Container struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	Samples       []float32
}

// Duration returns the playback duration of the contained audio.
func (c *Container) Duration() time.Duration {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	frames := len(c.Samples) / int(c.Channels)
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

// Encode builds a WAV byte stream from normalized float samples.
// Each sample is clamped to [-1, 1] and quantized to a little-endian
// signed 16-bit integer via round(s * 32767). The result is always
// HeaderSize + 2*len(samples) bytes.
func Encode(samples []float32, sampleRate uint32, channels uint16) []byte {
	if channels == 0 {
		channels = 1
	}

	dataSize := len(samples) * 2
	byteRate := sampleRate * uint32(channels) * 2
	blockAlign := channels * 2

	buf := make([]byte, HeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM format tag
	binary.LittleEndian.PutUint16(buf[22:24], channels)
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], byteRate)
	binary.LittleEndian.PutUint16(buf[32:34], blockAlign)
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(math.Round(float64(s) * 32767))
		binary.LittleEndian.PutUint16(buf[HeaderSize+2*i:], uint16(v))
	}

	return buf
}

// EncodePCM16 wraps already-quantized little-endian 16-bit PCM bytes in the
// canonical header without touching the sample data.
func EncodePCM16(pcm []byte, sampleRate uint32, channels uint16) []byte {
	if channels == 0 {
		channels = 1
	}
	header := Encode(nil, sampleRate, channels)
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))
	return append(header, pcm...)
}

// Decode parses a WAV byte stream into a Container.
//
// It returns ErrMalformedContainer when the input is shorter than the fixed
// header or the "data" tag cannot be located, and ErrUnsupportedFormat for
// anything other than mono/stereo 16-bit PCM. Samples are normalized via
// int16 / 32768.0.
func Decode(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedContainer, len(data), HeaderSize)
	}

	channels := binary.LittleEndian.Uint16(data[22:24])
	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	bits := binary.LittleEndian.Uint16(data[34:36])

	// Synthesizers pad extra chunks (LIST, fact) between "fmt " and "data",
	// so locate the data tag by linear scan rather than a fixed offset.
	dataPos := -1
	for i := 12; i+8 <= len(data); i++ {
		if data[i] == 'd' && data[i+1] == 'a' && data[i+2] == 't' && data[i+3] == 'a' {
			dataPos = i
			break
		}
	}
	if dataPos < 0 {
		return nil, fmt.Errorf("%w: data chunk not found", ErrMalformedContainer)
	}

	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	if bits != 16 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bits)
	}

	pcm := data[dataPos+8:]
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		samples[i] = float32(v) / 32768.0
	}

	return &Container{
		Channels:      channels,
		SampleRate:    sampleRate,
		BitsPerSample: bits,
		Samples:       samples,
	}, nil
}
