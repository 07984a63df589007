package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/protocol"
)

// Router answers inbound frames
type Router interface {
	Handle(ctx context.Context, conn model.ConnID, data []byte) *protocol.Frame
}

// Disconnector is told when a connection has closed
type Disconnector interface {
	Disconnected(conn model.ConnID)
}

// Handler upgrades HTTP requests to event channel connections
type Handler struct {
	hub          *Hub
	router       Router
	disconnector Disconnector
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewHandler creates a Handler. Connections are accepted from any origin.
func NewHandler(hub *Hub, router Router, disconnector Disconnector, logger *slog.Logger) *Handler {
	return &Handler{
		hub:          hub,
		router:       router,
		disconnector: disconnector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(h.hub, model.ConnID(uuid.NewString()), conn)
	if !h.hub.register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go client.writePump()
	defer func() {
		h.hub.unregister(client)
		h.disconnector.Disconnected(client.id)
	}()

	client.readPump(r.Context(), h.router)
}
