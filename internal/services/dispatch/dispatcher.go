// Package dispatch fans events out to the connections bound to session members.
package dispatch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/spyword/internal/model"
)

// Transport delivers a single event to a single connection.
// Send returns false if the connection could not accept it.
type Transport interface {
	Send(conn model.ConnID, event model.Event) bool
}

// Bindings looks up the connection bound to a player
type Bindings interface {
	ConnFor(player model.PlayerID) (model.ConnID, bool)
}

// FallbackMode decides what happens to a private message for an unbound player
type FallbackMode string

const (
	// FallbackQueue holds private messages until the player is bound again
	FallbackQueue FallbackMode = "queue"
	// FallbackBroadcast sends role data to the whole session as roleUpdate,
	// tagged with the addressee so other clients can ignore it
	FallbackBroadcast FallbackMode = "broadcast"
)

// ParseFallbackMode validates a configured fallback mode
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch FallbackMode(s) {
	case FallbackQueue, FallbackBroadcast:
		return FallbackMode(s), nil
	case "":
		return FallbackQueue, nil
	default:
		return "", fmt.Errorf("unknown fallback mode %q", s)
	}
}

// Config tunes the dispatcher
type Config struct {
	Fallback FallbackMode
	// QueueLimit caps pending messages per player; the oldest are dropped first
	QueueLimit int
}

// DefaultConfig returns the default dispatcher settings
func DefaultConfig() Config {
	return Config{
		Fallback:   FallbackQueue,
		QueueLimit: 16,
	}
}

// Dispatcher sends session-wide and private events
type Dispatcher struct {
	transport Transport
	bindings  Bindings
	cfg       Config
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[model.PlayerID][]model.Event
}

// New creates a Dispatcher
func New(transport Transport, bindings Bindings, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = DefaultConfig().QueueLimit
	}
	if cfg.Fallback == "" {
		cfg.Fallback = FallbackQueue
	}
	return &Dispatcher{
		transport: transport,
		bindings:  bindings,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "dispatcher")),
		pending:   make(map[model.PlayerID][]model.Event),
	}
}

// BroadcastToSession sends the event to every member that currently has a binding
func (d *Dispatcher) BroadcastToSession(session *model.Session, typ model.EventType, payload any) {
	event := model.Event{Type: typ, Session: session.Code, Payload: payload}
	sent := 0
	for _, member := range session.Members {
		conn, ok := d.bindings.ConnFor(member)
		if !ok {
			continue
		}
		if d.transport.Send(conn, event) {
			sent++
		}
	}
	d.logger.Debug("broadcast",
		slog.String("session_code", string(session.Code)),
		slog.String("event", string(typ)),
		slog.Int("delivered", sent),
		slog.Int("members", len(session.Members)),
	)
}

// SendToPlayer delivers a private event, falling back per the configured mode
// when the player has no usable binding
func (d *Dispatcher) SendToPlayer(session *model.Session, player model.PlayerID, typ model.EventType, payload any) {
	event := model.Event{Type: typ, Session: session.Code, Payload: payload}
	if conn, ok := d.bindings.ConnFor(player); ok && d.transport.Send(conn, event) {
		return
	}

	switch d.cfg.Fallback {
	case FallbackBroadcast:
		info, ok := payload.(model.RoleInfo)
		if !ok {
			d.logger.Warn("dropping private event for unbound player",
				slog.String("player_id", string(player)),
				slog.String("event", string(typ)),
			)
			return
		}
		d.BroadcastToSession(session, model.EventRoleUpdate, model.RoleUpdatePayload{
			PlayerID: player,
			RoleInfo: info,
		})
	default:
		d.enqueue(player, event)
	}
}

func (d *Dispatcher) enqueue(player model.PlayerID, event model.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue := append(d.pending[player], event)
	if over := len(queue) - d.cfg.QueueLimit; over > 0 {
		queue = queue[over:]
	}
	d.pending[player] = queue

	d.logger.Debug("queued private event",
		slog.String("player_id", string(player)),
		slog.String("event", string(event.Type)),
		slog.Int("pending", len(queue)),
	)
}

// Flush delivers queued private events to the player's current binding, in order.
// Events that cannot be delivered stay queued.
func (d *Dispatcher) Flush(player model.PlayerID) int {
	conn, ok := d.bindings.ConnFor(player)
	if !ok {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	queue := d.pending[player]
	delivered := 0
	for delivered < len(queue) && d.transport.Send(conn, queue[delivered]) {
		delivered++
	}
	if delivered == len(queue) {
		delete(d.pending, player)
	} else {
		d.pending[player] = queue[delivered:]
	}
	return delivered
}

// Discard drops any queued events for the given players
func (d *Dispatcher) Discard(players ...model.PlayerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range players {
		delete(d.pending, p)
	}
}

// Pending returns the number of queued events for a player
func (d *Dispatcher) Pending(player model.PlayerID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending[player])
}
