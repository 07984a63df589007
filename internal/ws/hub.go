// Package ws carries the event channel over WebSocket connections.
package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/protocol"
)

// Hub tracks every open connection and delivers frames to them.
// It implements the dispatcher's transport.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	closed  bool
	logger  *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client registered",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", clientCount))
	return true
}

// unregister removes the client and closes its outbound queue.
// It reports whether the client was still registered.
func (h *Hub) unregister(client *Client) bool {
	h.mu.Lock()
	if current, ok := h.clients[client.id]; !ok || current != client {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, client.id)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client unregistered",
		slog.String("conn_id", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
	return true
}

// Send delivers an event to one connection. It returns false if the
// connection is gone or its buffer is full.
func (h *Hub) Send(conn model.ConnID, event model.Event) bool {
	frame, err := protocol.EventFrame(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return false
	}
	return h.deliver(conn, frame)
}

func (h *Hub) deliver(conn model.ConnID, frame *protocol.Frame) bool {
	data, err := protocol.Encode(frame)
	if err != nil {
		h.logger.Error("failed to encode frame", slog.String("error", err.Error()))
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[conn]
	if !ok {
		return false
	}
	select {
	case client.send <- data:
		return true
	default:
		h.logger.Warn("ws frame dropped - client buffer full",
			slog.String("conn_id", string(conn)),
			slog.String("type", frame.Type))
		return false
	}
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	clientCount := len(h.clients)
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
}
