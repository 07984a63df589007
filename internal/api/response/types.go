package response

import (
	"github.com/mcoot/spyword/internal/engine"
	"github.com/mcoot/spyword/internal/model"
)

// Health is the response for the health check
type Health struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

// SummaryMember is a member as shown to the public
type SummaryMember struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// SessionSummary is the public view of a session. It never carries the
// word, the hint or anyone's role.
type SessionSummary struct {
	SessionID         string          `json:"sessionId"`
	Status            string          `json:"status"`
	Members           []SummaryMember `json:"members"`
	SpyCount          int             `json:"spyCount"`
	EffectiveSpyCount int             `json:"effectiveSpyCount"`
	MinPlayersToStart int             `json:"minPlayersToStart"`
	JoinURL           string          `json:"joinUrl,omitempty"`
}

// SessionSummaryFromView converts an engine session view
func SessionSummaryFromView(v *engine.SessionView, joinURL string) SessionSummary {
	members := make([]SummaryMember, len(v.Members))
	for i, m := range v.Members {
		members[i] = SummaryMember{Name: m.Name, IsHost: m.IsHost}
	}
	return SessionSummary{
		SessionID:         string(v.Code),
		Status:            string(v.Status),
		Members:           members,
		SpyCount:          v.SpyCount,
		EffectiveSpyCount: v.EffectiveSpyCount,
		MinPlayersToStart: v.MinPlayersToStart,
		JoinURL:           joinURL,
	}
}

// Settings is the admin view of the game settings
type Settings struct {
	MinPlayersToStart  int  `json:"minPlayersToStart"`
	ShowHintToRegulars bool `json:"showHintToRegulars"`
}

// SettingsFromModel converts model.Settings
func SettingsFromModel(s model.Settings) Settings {
	return Settings{
		MinPlayersToStart:  s.MinPlayersToStart,
		ShowHintToRegulars: s.ShowHintToRegulars,
	}
}

// Words is the admin view of the word list
type Words struct {
	Count int               `json:"count"`
	Words []model.WordEntry `json:"words"`
}
