// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	assert.NoError(t, lt.Send(Frame{RMS: 0.5, Bands: []float64{1, 0.5}}))
	assert.NoError(t, lt.Close())
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := &WebSocketTransport{
		upgrader:  websocket.Upgrader{},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}
	go wst.pumpBroadcasts()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration races the dial; wait until the server sees the client.
	require.Eventually(t, func() bool {
		wst.clientsMu.Lock()
		defer wst.clientsMu.Unlock()
		return len(wst.clients) == 1
	}, time.Second, 10*time.Millisecond)

	sent := Frame{RMS: 0.25, Bands: []float64{1, 0.75, 0.5}}
	require.NoError(t, wst.Send(sent))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.InDelta(t, sent.RMS, got.RMS, 1e-12)
	assert.Equal(t, sent.Bands, got.Bands)

	close(wst.broadcast)
	<-wst.done
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	wst := &WebSocketTransport{
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan any, 2),
		done:      make(chan struct{}),
	}
	// No pump running: the queue fills and further sends must drop, not block.
	for i := 0; i < 10; i++ {
		assert.NoError(t, wst.Send(Frame{RMS: float64(i)}))
	}
}
