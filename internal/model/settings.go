package model

// Settings are the server-wide gameplay settings
type Settings struct {
	MinPlayersToStart  int
	ShowHintToRegulars bool
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		MinPlayersToStart:  3,
		ShowHintToRegulars: false,
	}
}

// WordEntry is a secret word together with the hints that may be given for it
type WordEntry struct {
	Word  string   `json:"word"`
	Hints []string `json:"hints"`
}
