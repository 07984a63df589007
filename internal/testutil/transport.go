package testutil

import (
	"sync"

	"github.com/mcoot/spyword/internal/model"
)

// RecordingTransport captures every event sent to each connection
type RecordingTransport struct {
	mu       sync.Mutex
	events   map[model.ConnID][]model.Event
	rejected map[model.ConnID]bool
}

// NewRecordingTransport creates an empty RecordingTransport
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{
		events:   make(map[model.ConnID][]model.Event),
		rejected: make(map[model.ConnID]bool),
	}
}

// Send records the event unless the connection has been marked as rejecting
func (t *RecordingTransport) Send(conn model.ConnID, event model.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rejected[conn] {
		return false
	}
	t.events[conn] = append(t.events[conn], event)
	return true
}

// Reject makes every later Send to conn fail
func (t *RecordingTransport) Reject(conn model.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rejected[conn] = true
}

// EventsFor returns the events sent to conn, in order
func (t *RecordingTransport) EventsFor(conn model.ConnID) []model.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Event(nil), t.events[conn]...)
}

// OfType returns the events of one type sent to conn
func (t *RecordingTransport) OfType(conn model.ConnID, typ model.EventType) []model.Event {
	var out []model.Event
	for _, e := range t.EventsFor(conn) {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Total returns the number of events sent to any connection
func (t *RecordingTransport) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, events := range t.events {
		n += len(events)
	}
	return n
}

// Reset forgets every recorded event
func (t *RecordingTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = make(map[model.ConnID][]model.Event)
}
