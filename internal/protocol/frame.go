// Package protocol defines the JSON frames exchanged over the event channel
// and routes request frames to the engine.
package protocol

import (
	"encoding/json"

	"github.com/mcoot/spyword/internal/model"
)

// Kind distinguishes requests, their responses and server-pushed events
type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
	KindEvent    Kind = "event"
)

// Request types
const (
	TypeRegister        = "register"
	TypeCreateSession   = "createSession"
	TypeJoinSession     = "joinSession"
	TypeStartSession    = "startSession"
	TypeRequestRoleInfo = "requestRoleInfo"
	TypeEndSession      = "endSession"
	TypeRestartSession  = "restartSession"
	TypeSetSpyCount     = "setSpyCount"
	TypeLeaveSession    = "leaveSession"
	TypePing            = "ping"
)

// Frame is one message on the event channel.
// Requests that carry an ID get exactly one response with the same ID.
type Frame struct {
	Kind    Kind            `json:"kind"`
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request payloads

type RegisterRequest struct {
	Name       string         `json:"name"`
	ExistingID model.PlayerID `json:"existingId,omitempty"`
}

type CreateSessionRequest struct {
	SpyCount *int `json:"spyCount,omitempty"`
}

// SessionRequest is the payload of every request that only names a session
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type SetSpyCountRequest struct {
	SessionID string `json:"sessionId"`
	SpyCount  int    `json:"spyCount"`
}

type LeaveSessionRequest struct {
	SessionID string         `json:"sessionId"`
	PlayerID  model.PlayerID `json:"playerId"`
}

// Response payloads

type RegisterResponse struct {
	ID model.PlayerID `json:"id"`
}

type CreateSessionResponse struct {
	SessionID         model.SessionCode `json:"sessionId"`
	SpyCount          int               `json:"spyCount"`
	MinPlayersToStart int               `json:"minPlayersToStart"`
}

type JoinSessionResponse struct {
	SessionID         model.SessionCode   `json:"sessionId"`
	Members           []model.MemberView  `json:"members"`
	HostID            model.PlayerID      `json:"hostId"`
	Status            model.SessionStatus `json:"status"`
	SpyCount          int                 `json:"spyCount"`
	EffectiveSpyCount int                 `json:"effectiveSpyCount"`
	MinPlayersToStart int                 `json:"minPlayersToStart"`
	Reconnected       bool                `json:"reconnected,omitempty"`
}

type SetSpyCountResponse struct {
	SpyCount          int `json:"spyCount"`
	EffectiveSpyCount int `json:"effectiveSpyCount"`
}

// Empty is the payload of responses that carry no data
type Empty struct{}

// EventFrame wraps a server event for the wire
func EventFrame(event model.Event) (*Frame, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, err
	}
	return &Frame{
		Kind:    KindEvent,
		Type:    string(event.Type),
		Payload: payload,
	}, nil
}

// Encode marshals a frame for sending
func Encode(frame *Frame) ([]byte, error) {
	return json.Marshal(frame)
}
