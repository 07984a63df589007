package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/spyword/internal/api/response"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printf("Status: %s\n", v.Status)
		o.printf("Sessions: %d\n", v.Sessions)
		o.printf("Connections: %d\n", v.Connections)
	case response.SessionSummary:
		o.printSummary(v)
	case response.Settings:
		o.printf("Min players to start: %d\n", v.MinPlayersToStart)
		o.printf("Show hint to regulars: %t\n", v.ShowHintToRegulars)
	case response.Words:
		o.printf("Words (%d):\n", v.Count)
		for _, entry := range v.Words {
			o.printf("  - %s: %s\n", entry.Word, strings.Join(entry.Hints, ", "))
		}
	case protocol.JoinSessionResponse:
		o.printSession(v)
	case model.RoleInfo:
		o.printRole(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printSummary(s response.SessionSummary) {
	o.printf("Session: %s\n", s.SessionID)
	o.printf("Status: %s\n", s.Status)
	o.printf("Spies: %d (effective %d)\n", s.SpyCount, s.EffectiveSpyCount)
	o.printf("Min players: %d\n", s.MinPlayersToStart)
	if s.JoinURL != "" {
		o.printf("Join: %s\n", s.JoinURL)
	}
	o.printf("Members (%d):\n", len(s.Members))
	for _, m := range s.Members {
		hostStr := ""
		if m.IsHost {
			hostStr = " [host]"
		}
		o.printf("  - %s%s\n", m.Name, hostStr)
	}
}

func (o *Output) printSession(s protocol.JoinSessionResponse) {
	o.printf("Session: %s\n", s.SessionID)
	o.printf("Status: %s\n", s.Status)
	o.printf("Spies: %d (effective %d)\n", s.SpyCount, s.EffectiveSpyCount)
	if s.Reconnected {
		o.printf("Reconnected\n")
	}
	o.printMembers(s.Members)
}

func (o *Output) printMembers(members []model.MemberView) {
	o.printf("Members (%d):\n", len(members))
	for _, m := range members {
		extra := ""
		if m.IsHost {
			extra += " [host]"
		}
		if m.Role != "" {
			extra += " - " + string(m.Role)
		}
		o.printf("  - %s (%s)%s\n", m.Name, m.ID, extra)
	}
}

func (o *Output) printRole(r model.RoleInfo) {
	o.printf("Role: %s\n", r.Role)
	if r.Word != nil {
		o.printf("Word: %s\n", *r.Word)
	}
	if r.Hint != nil {
		o.printf("Hint: %s\n", *r.Hint)
	}
}
