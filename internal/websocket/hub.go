// Package websocket streams diagnostic events to connected browser clients.
//
// The Hub implements diagnostics.Emitter, so it can be attached to the
// engine's broadcaster alongside the slog sink. Every event emitted during an
// analysis run is pushed to all connected clients as JSON.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"leadlag/internal/diagnostics"
	"leadlag/internal/infrastructure"
)

// Message is the envelope pushed to clients.
type Message struct {
	Type string            `json:"type"`
	Data diagnostics.Event `json:"data"`
}

// Message types pushed over the wire.
const (
	TypeConnection = "connection"
	TypeDiagnostic = "diagnostic"
)

// Hub maintains the set of active clients and broadcasts diagnostic events
// to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop in a goroutine. Safe to call once.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts down the hub and closes every client connection.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendTo(client, Message{
				Type: TypeConnection,
				Data: diagnostics.New(diagnostics.SeverityInfo, "websocket", "connected", nil),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id))

		case payload := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer: drop the message rather than block
					// the broadcast loop.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Emit implements diagnostics.Emitter. Events are serialized once and fanned
// out to every client.
func (h *Hub) Emit(ctx context.Context, ev diagnostics.Event) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}

	payload, err := json.Marshal(Message{Type: TypeDiagnostic, Data: ev})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal diagnostic event",
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-time.After(time.Second):
		h.logger.WarnContext(ctx, "broadcast queue full, event dropped",
			slog.String("component", ev.Component))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendTo(client *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}
