package wav

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_HeaderLayout(t *testing.T) {
	data := Encode([]float32{0, 0, 0, 0}, 16000, 1)

	require.Len(t, data, HeaderSize+8)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, "data", string(data[36:40]))

	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]), "PCM format tag")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]), "channels")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(data[24:28]), "sample rate")
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(data[28:32]), "byte rate")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]), "bit depth")
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(data[40:44]), "data size")
}

func TestEncode_StereoBlockAlign(t *testing.T) {
	data := Encode([]float32{0.1, -0.1}, 44100, 2)

	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(44100*2*2), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(data[32:34]))
}

func TestDecode_RoundTripQuantization(t *testing.T) {
	in := []float32{0.5, -0.5, 1.0, -1.0}
	c, err := Decode(Encode(in, 16000, 1))
	require.NoError(t, err)

	require.Len(t, c.Samples, 4)
	assert.Equal(t, uint16(1), c.Channels)
	assert.Equal(t, uint32(16000), c.SampleRate)
	assert.Equal(t, uint16(16), c.BitsPerSample)

	// Nearest 16-bit steps of the inputs.
	want := []float32{0.5, -0.5, 32767.0 / 32768.0, -32767.0 / 32768.0}
	for i := range want {
		assert.InDelta(t, want[i], c.Samples[i], 1e-7, "sample %d", i)
	}
}

// Decode(Encode(x)) must equal the quantization round(clamp(x)*32767)/32768
// exactly, for any input including values outside [-1, 1].
func TestRoundTrip_MatchesQuantizationExactly(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.001, -0.001, 0.999, 2.5, -3.0, 1.0 / 32768.0}
	c, err := Decode(Encode(in, 22050, 1))
	require.NoError(t, err)

	for i, s := range in {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		want := float32(math.Round(float64(s)*32767)) / 32768.0
		assert.Equal(t, want, c.Samples[i], "sample %d", i)
	}
}

func TestDecode_TooShort(t *testing.T) {
	_, err := Decode(make([]byte, HeaderSize-1))
	assert.ErrorIs(t, err, ErrMalformedContainer)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrMalformedContainer)
}

func TestDecode_MissingDataTag(t *testing.T) {
	data := Encode([]float32{0.1}, 16000, 1)
	copy(data[36:40], "junk")

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrMalformedContainer)
}

func TestDecode_UnsupportedChannels(t *testing.T) {
	data := Encode([]float32{0.1, 0.2}, 16000, 1)
	binary.LittleEndian.PutUint16(data[22:24], 6)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_UnsupportedBitDepth(t *testing.T) {
	data := Encode([]float32{0.1}, 16000, 1)
	binary.LittleEndian.PutUint16(data[34:36], 24)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_SkipsExtraChunksBeforeData(t *testing.T) {
	// Insert a LIST chunk between "fmt " and "data"; the linear scan
	// must still find the payload.
	encoded := Encode([]float32{0.5}, 16000, 1)
	list := []byte("LIST\x04\x00\x00\x00INFO")
	data := append([]byte{}, encoded[:36]...)
	data = append(data, list...)
	data = append(data, encoded[36:]...)

	c, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, c.Samples, 1)
	assert.InDelta(t, 0.5, c.Samples[0], 1e-7)
}

func TestContainer_Duration(t *testing.T) {
	c := &Container{Channels: 1, SampleRate: 16000, Samples: make([]float32, 16000)}
	assert.Equal(t, "1s", c.Duration().String())

	stereo := &Container{Channels: 2, SampleRate: 16000, Samples: make([]float32, 16000)}
	assert.Equal(t, "500ms", stereo.Duration().String())

	var zero Container
	assert.Zero(t, zero.Duration())
}
