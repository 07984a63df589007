package model

// EventType identifies the type of event pushed to clients
type EventType string

const (
	// Session-wide events
	EventMemberJoined     EventType = "memberJoined"
	EventMemberLeft       EventType = "memberLeft"
	EventSessionStarted   EventType = "sessionStarted"
	EventSessionEnded     EventType = "sessionEnded"
	EventSessionRestarted EventType = "sessionRestarted"
	EventHostLeft         EventType = "hostLeft"
	EventSpyCountChanged  EventType = "spyCountChanged"

	// Private events
	EventRoleAssigned EventType = "roleAssigned"

	// Session-wide fallback for private role data
	EventRoleUpdate EventType = "roleUpdate"
)

// Event is a single message destined for one or more connections
type Event struct {
	Type    EventType
	Session SessionCode
	Payload any
}

// MemberView is how a member is presented to clients
type MemberView struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	IsHost bool     `json:"isHost"`
	Role   Role     `json:"role,omitempty"`
}

// MemberJoinedPayload contains data for memberJoined events
type MemberJoinedPayload struct {
	Members []MemberView `json:"members"`
}

// MemberLeftPayload contains data for memberLeft events
type MemberLeftPayload struct {
	PlayerID PlayerID     `json:"playerId"`
	Members  []MemberView `json:"members"`
}

// SessionStartedPayload is intentionally empty; roles follow privately
type SessionStartedPayload struct{}

// SessionEndedPayload reveals the round once it is over
type SessionEndedPayload struct {
	Status  SessionStatus `json:"status"`
	Word    string        `json:"word"`
	Hint    string        `json:"hint"`
	Members []MemberView  `json:"members"`
}

// SessionRestartedPayload contains data for sessionRestarted events
type SessionRestartedPayload struct {
	Status  SessionStatus `json:"status"`
	Members []MemberView  `json:"members"`
}

// HostLeftPayload contains data for hostLeft events
type HostLeftPayload struct {
	Status  SessionStatus `json:"status"`
	Message string        `json:"message"`
}

// SpyCountChangedPayload contains data for spyCountChanged events
type SpyCountChangedPayload struct {
	SpyCount          int `json:"spyCount"`
	EffectiveSpyCount int `json:"effectiveSpyCount"`
}

// RoleUpdatePayload carries private role data over the session-wide channel.
// Clients discard updates whose PlayerID is not their own.
type RoleUpdatePayload struct {
	PlayerID PlayerID `json:"playerId"`
	RoleInfo
}
