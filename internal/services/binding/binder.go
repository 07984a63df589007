// Package binding tracks which live connection speaks for which player.
package binding

import (
	"sync"

	"github.com/mcoot/spyword/internal/model"
)

// Binder is a one-to-one map between connections and player identities
type Binder struct {
	mu       sync.RWMutex
	byConn   map[model.ConnID]model.PlayerID
	byPlayer map[model.PlayerID]model.ConnID
}

// New creates an empty Binder
func New() *Binder {
	return &Binder{
		byConn:   make(map[model.ConnID]model.PlayerID),
		byPlayer: make(map[model.PlayerID]model.ConnID),
	}
}

// Rebind describes the bindings displaced by Bind
type Rebind struct {
	// PreviousPlayer was bound to the connection before, if different
	PreviousPlayer model.PlayerID
	// PreviousConn was bound to the player before, if different
	PreviousConn model.ConnID
}

// Bind associates conn with player, discarding any earlier binding of either side
func (b *Binder) Bind(conn model.ConnID, player model.PlayerID) Rebind {
	b.mu.Lock()
	defer b.mu.Unlock()

	var r Rebind
	if prev, ok := b.byConn[conn]; ok && prev != player {
		delete(b.byPlayer, prev)
		r.PreviousPlayer = prev
	}
	if prev, ok := b.byPlayer[player]; ok && prev != conn {
		delete(b.byConn, prev)
		r.PreviousConn = prev
	}
	b.byConn[conn] = player
	b.byPlayer[player] = conn
	return r
}

// Unbind removes the binding held by conn and returns the player it spoke for
func (b *Binder) Unbind(conn model.ConnID) (model.PlayerID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	player, ok := b.byConn[conn]
	if !ok {
		return "", false
	}
	delete(b.byConn, conn)
	if b.byPlayer[player] == conn {
		delete(b.byPlayer, player)
	}
	return player, true
}

// PlayerFor returns the player bound to conn
func (b *Binder) PlayerFor(conn model.ConnID) (model.PlayerID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	player, ok := b.byConn[conn]
	return player, ok
}

// ConnFor returns the connection currently bound to the player
func (b *Binder) ConnFor(player model.PlayerID) (model.ConnID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	conn, ok := b.byPlayer[player]
	return conn, ok
}

// Count returns the number of bound connections
func (b *Binder) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byConn)
}
