package request

import "github.com/mcoot/spyword/internal/model"

// UpdateSettingsRequest is the request body for replacing the game settings
type UpdateSettingsRequest struct {
	MinPlayersToStart  *int  `json:"minPlayersToStart"`
	ShowHintToRegulars *bool `json:"showHintToRegulars"`
}

// ReplaceWordsRequest is the request body for replacing the word list
type ReplaceWordsRequest struct {
	Words []model.WordEntry `json:"words"`
}
