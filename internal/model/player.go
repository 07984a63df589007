package model

import "time"

// MaxDisplayNameLength is the longest display name kept after trimming
const MaxDisplayNameLength = 50

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a registered identity
type Player struct {
	ID             PlayerID
	DisplayName    string
	CurrentSession SessionCode // empty when not seated in a session
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InSession reports whether the player is seated in a session
func (p *Player) InSession() bool {
	return p.CurrentSession != ""
}
