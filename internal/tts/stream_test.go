package tts

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxpuppet/voxpuppet/internal/wav"
)

var upgrader = websocket.Upgrader{}

// newStreamServer runs handler for every websocket request and returns a
// ws:// URL for it.
func newStreamServer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestStreamSynthesizeAssemblesChunks(t *testing.T) {
	pcmA := []byte{0x00, 0x10, 0x00, 0x20}
	pcmB := []byte{0x00, 0x30}

	endpoint := newStreamServer(t, func(conn *websocket.Conn) {
		var req streamRequest
		require.NoError(t, conn.ReadJSON(&req))
		assert.Equal(t, "stream-1", req.Model)
		assert.Equal(t, "Hello.", req.Input)
		assert.Equal(t, "pcm_s16le", req.Format)

		conn.WriteJSON(streamMessage{Type: "chunk", Data: base64.StdEncoding.EncodeToString(pcmA)})
		conn.WriteJSON(streamMessage{Type: "chunk", Data: base64.StdEncoding.EncodeToString(pcmB)})
		conn.WriteJSON(streamMessage{Type: "done"})
	})

	p := NewStreamProvider(zerolog.Nop(), &StreamConfig{Endpoint: endpoint, APIKey: "k"})

	resp, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "Hello."})
	require.NoError(t, err)
	defer p.Close()

	container, err := wav.Decode(resp.Audio)
	require.NoError(t, err)
	assert.Equal(t, uint32(22050), container.SampleRate)
	assert.Len(t, container.Samples, 3)
}

func TestStreamSynthesizeErrorFrame(t *testing.T) {
	endpoint := newStreamServer(t, func(conn *websocket.Conn) {
		var req streamRequest
		require.NoError(t, conn.ReadJSON(&req))
		conn.WriteJSON(streamMessage{Type: "error", Error: "voice not found", Code: "bad_voice"})
	})

	p := NewStreamProvider(zerolog.Nop(), &StreamConfig{Endpoint: endpoint, APIKey: "k"})
	defer p.Close()

	_, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "Hello."})
	require.Error(t, err)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "bad_voice", svcErr.Code)
	assert.Equal(t, "voice not found", svcErr.Message)
}

func TestStreamSynthesizeTextTooLong(t *testing.T) {
	p := NewStreamProvider(zerolog.Nop(), &StreamConfig{Endpoint: "ws://unused", MaxInputLen: 10})

	_, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: strings.Repeat("a", 11)})
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestStreamConnectionReuse(t *testing.T) {
	var dials int32
	endpoint := newStreamServer(t, func(conn *websocket.Conn) {
		atomic.AddInt32(&dials, 1)
		for {
			var req streamRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			conn.WriteJSON(streamMessage{Type: "done"})
		}
	})

	p := NewStreamProvider(zerolog.Nop(), &StreamConfig{Endpoint: endpoint, APIKey: "k"})
	defer p.Close()

	for i := 0; i < 3; i++ {
		_, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "Hi."})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials), "connection should be reused across requests")
}

func TestStreamHealthUnreachable(t *testing.T) {
	p := NewStreamProvider(zerolog.Nop(), &StreamConfig{Endpoint: "ws://127.0.0.1:1"})
	assert.ErrorIs(t, p.Health(context.Background()), ErrServiceUnavailable)
}
