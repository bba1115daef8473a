package http

import (
	"log/slog"
	"net/http"

	"leadlag/internal/config"
	"leadlag/internal/websocket"
)

// WSHandler upgrades clients onto the diagnostics stream.
type WSHandler struct {
	hub    *websocket.Hub
	cfg    *config.Config
	logger *slog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *websocket.Hub, cfg *config.Config, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		cfg:    cfg,
		logger: logger.With(slog.String("handler", "websocket")),
	}
}

// Serve handles GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(h.hub, h.cfg.WebSocket, h.cfg.Security.AllowedOrigins, w, r)
}
