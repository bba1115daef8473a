package websocket

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"leadlag/internal/config"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Clients only send pings and
	// the occasional close frame.
	maxMessageSize = 512
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	remoteAddr string
	pingPeriod time.Duration
	pongWait   time.Duration
	logger     *slog.Logger
}

// Upgrader builds a websocket upgrader that enforces the configured origins.
func Upgrader(cfg config.WebSocketConfig, allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ServeWS upgrades the HTTP connection and registers the client with the hub.
func ServeWS(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, w http.ResponseWriter, r *http.Request) {
	upgrader := Upgrader(cfg, allowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	id := uuid.New().String()
	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		id:         id,
		remoteAddr: r.RemoteAddr,
		pingPeriod: cfg.PingPeriod,
		pongWait:   cfg.PongWait,
		logger:     hub.logger.With(slog.String("client_id", id)),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound messages and watches for disconnects. The stream
// is one-way; clients only consume.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump pushes hub messages to the peer and keeps the connection alive
// with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
