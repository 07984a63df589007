package model

import (
	"slices"
	"time"
)

// SessionCode is the human-readable identifier used to join a session
type SessionCode string

// SessionStatus represents where a session is in its lifecycle
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// Role is the secret role a member holds during a round
type Role string

const (
	RoleSpy     Role = "spy"
	RoleRegular Role = "regular"
)

const (
	MinSpyCount     = 1
	MaxSpyCount     = 5
	DefaultSpyCount = 1
)

// Session is a single game room
type Session struct {
	Code    SessionCode
	HostID  PlayerID   // empty once the host has left
	Members []PlayerID // join order

	Status            SessionStatus
	SpyCount          int // as configured by the host
	EffectiveSpyCount int // computed at start; zero while waiting

	// Set on start, retained while finished, cleared on restart
	SecretWord     string
	SecretHint     string
	HintToRegulars bool // hint visibility fixed for the round at start
	Roles          map[PlayerID]Role

	CreatedAt time.Time
	UpdatedAt time.Time
	StartedAt time.Time
}

// ClampSpyCount forces a requested spy count into the allowed range.
// Out-of-range values fall back to the default.
func ClampSpyCount(requested int) int {
	if requested < MinSpyCount || requested > MaxSpyCount {
		return DefaultSpyCount
	}
	return requested
}

// HasMember reports whether the player is seated in the session
func (s *Session) HasMember(id PlayerID) bool {
	return slices.Contains(s.Members, id)
}

// IsHost reports whether the player is the session host
func (s *Session) IsHost(id PlayerID) bool {
	return s.HostID != "" && s.HostID == id
}

// RemoveMember drops the player from the member list and role map.
// It returns false if the player was not a member.
func (s *Session) RemoveMember(id PlayerID) bool {
	idx := slices.Index(s.Members, id)
	if idx < 0 {
		return false
	}
	s.Members = slices.Delete(s.Members, idx, idx+1)
	delete(s.Roles, id)
	return true
}

// ResetRound clears everything assigned at start
func (s *Session) ResetRound() {
	s.SecretWord = ""
	s.SecretHint = ""
	s.HintToRegulars = false
	s.Roles = nil
	s.EffectiveSpyCount = 0
	s.StartedAt = time.Time{}
}

// Clone returns a deep copy safe to hand to another goroutine
func (s *Session) Clone() *Session {
	c := *s
	c.Members = slices.Clone(s.Members)
	if s.Roles != nil {
		c.Roles = make(map[PlayerID]Role, len(s.Roles))
		for id, r := range s.Roles {
			c.Roles[id] = r
		}
	}
	return &c
}

// RoleInfo is the private view of a member's role.
// Word is nil for spies; Hint is nil for regulars unless hints are shown to them.
type RoleInfo struct {
	Role Role    `json:"role"`
	Word *string `json:"word"`
	Hint *string `json:"hint"`
}
