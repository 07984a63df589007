package testutil

import (
	"sync"

	"github.com/mcoot/spyword/internal/model"
)

// RecordingMirror captures mirror writes so tests can assert on them
type RecordingMirror struct {
	mu              sync.Mutex
	savedPlayers    []model.PlayerID
	deletedPlayers  []model.PlayerID
	savedSessions   []*model.Session
	deletedSessions []model.SessionCode
}

// NewRecordingMirror creates an empty RecordingMirror
func NewRecordingMirror() *RecordingMirror {
	return &RecordingMirror{}
}

func (m *RecordingMirror) SavePlayer(player *model.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedPlayers = append(m.savedPlayers, player.ID)
}

func (m *RecordingMirror) DeletePlayer(id model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedPlayers = append(m.deletedPlayers, id)
}

func (m *RecordingMirror) SaveSession(session *model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedSessions = append(m.savedSessions, session.Clone())
}

func (m *RecordingMirror) DeleteSession(code model.SessionCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedSessions = append(m.deletedSessions, code)
}

// SavedPlayers returns the IDs of every player write, in order
func (m *RecordingMirror) SavedPlayers() []model.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PlayerID(nil), m.savedPlayers...)
}

// DeletedPlayers returns the IDs of every player delete, in order
func (m *RecordingMirror) DeletedPlayers() []model.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PlayerID(nil), m.deletedPlayers...)
}

// LastSession returns the most recent snapshot written for the code, or nil
func (m *RecordingMirror) LastSession(code model.SessionCode) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.savedSessions) - 1; i >= 0; i-- {
		if m.savedSessions[i].Code == code {
			return m.savedSessions[i]
		}
	}
	return nil
}

// DeletedSessions returns the codes of every session delete, in order
func (m *RecordingMirror) DeletedSessions() []model.SessionCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.SessionCode(nil), m.deletedSessions...)
}
