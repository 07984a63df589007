package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/protocol"
)

// EventLine is one event as printed in JSON output
type EventLine struct {
	Time    time.Time       `json:"time"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PrintEvent renders a pushed event for the player identified by self.
// Role updates addressed to other players are skipped.
func (o *Output) PrintEvent(frame protocol.Frame, self model.PlayerID) {
	if model.EventType(frame.Type) == model.EventRoleUpdate {
		var update model.RoleUpdatePayload
		if err := json.Unmarshal(frame.Payload, &update); err != nil || update.PlayerID != self {
			return
		}
	}

	now := time.Now()
	if o.format == "json" {
		data, _ := json.Marshal(EventLine{Time: now, Event: frame.Type, Payload: frame.Payload})
		_, _ = fmt.Fprintln(o.w, string(data))
		return
	}

	o.printf("[%s] %s\n", now.Format("2006-01-02 15:04:05"), frame.Type)
	switch model.EventType(frame.Type) {
	case model.EventMemberJoined:
		var p model.MemberJoinedPayload
		if json.Unmarshal(frame.Payload, &p) == nil {
			o.printMembers(p.Members)
		}
	case model.EventMemberLeft:
		var p model.MemberLeftPayload
		if json.Unmarshal(frame.Payload, &p) == nil {
			o.printf("Left: %s\n", p.PlayerID)
			o.printMembers(p.Members)
		}
	case model.EventRoleAssigned, model.EventRoleUpdate:
		var info model.RoleInfo
		if json.Unmarshal(frame.Payload, &info) == nil {
			o.printRole(info)
		}
	case model.EventSessionEnded:
		var p model.SessionEndedPayload
		if json.Unmarshal(frame.Payload, &p) == nil {
			o.printf("Word: %s\n", p.Word)
			o.printf("Hint: %s\n", p.Hint)
			o.printMembers(p.Members)
		}
	case model.EventSessionRestarted:
		var p model.SessionRestartedPayload
		if json.Unmarshal(frame.Payload, &p) == nil {
			o.printMembers(p.Members)
		}
	case model.EventHostLeft:
		var p model.HostLeftPayload
		if json.Unmarshal(frame.Payload, &p) == nil {
			o.printf("%s\n", p.Message)
		}
	case model.EventSpyCountChanged:
		var p model.SpyCountChangedPayload
		if json.Unmarshal(frame.Payload, &p) == nil {
			o.printf("Spies: %d (effective %d)\n", p.SpyCount, p.EffectiveSpyCount)
		}
	}
}
