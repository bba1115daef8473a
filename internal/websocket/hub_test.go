package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlag/internal/config"
	"leadlag/internal/diagnostics"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      30 * time.Second,
		PongWait:        60 * time.Second,
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func dialTestServer(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, testWSConfig(), []string{"*"}, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func TestHubSendsConnectionMessage(t *testing.T) {
	hub := newTestHub(t)
	conn := dialTestServer(t, hub)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeConnection, msg.Type)
	assert.Equal(t, "websocket", msg.Data.Component)
}

func TestHubBroadcastsDiagnosticEvents(t *testing.T) {
	hub := newTestHub(t)
	conn := dialTestServer(t, hub)

	// Consume the connection handshake first.
	readMessage(t, conn)

	hub.Emit(context.Background(), diagnostics.New(
		diagnostics.SeverityWarn,
		"exclusion_filter",
		"interval skipped",
		map[string]any{"interval": "2020-04:2020-03"},
	))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeDiagnostic, msg.Type)
	assert.Equal(t, diagnostics.SeverityWarn, msg.Data.Severity)
	assert.Equal(t, "exclusion_filter", msg.Data.Component)
	assert.Equal(t, "2020-04:2020-03", msg.Data.Fields["interval"])
}

func TestHubClientCount(t *testing.T) {
	hub := newTestHub(t)

	assert.Equal(t, 0, hub.ClientCount())

	conn := dialTestServer(t, hub)
	readMessage(t, conn)

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubEmitAfterStopIsNoop(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	hub.Stop()

	// Must not panic or block.
	hub.Emit(context.Background(), diagnostics.New(diagnostics.SeverityInfo, "engine", "done", nil))
}

func TestUpgraderRejectsUnknownOrigin(t *testing.T) {
	upgrader := Upgrader(testWSConfig(), []string{"http://localhost:8080"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "http://localhost:8080")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Del("Origin")
	assert.True(t, upgrader.CheckOrigin(req))
}
