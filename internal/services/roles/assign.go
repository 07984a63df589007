// Package roles decides who is a spy and what the secret word is.
package roles

import (
	"github.com/mcoot/spyword/internal/dependencies/random"
	"github.com/mcoot/spyword/internal/model"
)

// Assignment is the outcome of a single role draw
type Assignment struct {
	Roles             map[model.PlayerID]model.Role
	Spies             []model.PlayerID // in shuffled order
	EffectiveSpyCount int
	Word              string
	Hint              string
}

// EffectiveSpyCount returns how many spies a round actually gets:
// at least one, at most the configured count, and never more than half the table.
func EffectiveSpyCount(configured, members int) int {
	return max(1, min(configured, members/2))
}

// Assign shuffles the members with a Fisher-Yates pass driven by rnd, makes the
// first EffectiveSpyCount of them spies, then draws a word and one of its hints.
// Every entry in words must carry at least one hint.
func Assign(rnd random.Random, members []model.PlayerID, configured int, words []model.WordEntry) (*Assignment, error) {
	if len(members) == 0 {
		return nil, model.ErrNoMembers
	}
	if len(words) == 0 {
		return nil, model.ErrNoWords
	}

	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	spyCount := EffectiveSpyCount(configured, len(members))
	a := &Assignment{
		Roles:             make(map[model.PlayerID]model.Role, len(members)),
		Spies:             make([]model.PlayerID, 0, spyCount),
		EffectiveSpyCount: spyCount,
	}
	for rank, idx := range order {
		id := members[idx]
		if rank < spyCount {
			a.Roles[id] = model.RoleSpy
			a.Spies = append(a.Spies, id)
		} else {
			a.Roles[id] = model.RoleRegular
		}
	}

	entry := words[rnd.Intn(len(words))]
	a.Word = entry.Word
	a.Hint = PickHint(rnd, entry)
	return a, nil
}

// PickHint draws one hint uniformly from the entry; empty if it has none
func PickHint(rnd random.Random, entry model.WordEntry) string {
	if len(entry.Hints) == 0 {
		return ""
	}
	return entry.Hints[rnd.Intn(len(entry.Hints))]
}

// InfoFor builds the private view a member is entitled to see.
// Spies never see the word but always get the hint; regulars always see the
// word and get the hint only when showHint is set.
func InfoFor(role model.Role, word, hint string, showHint bool) model.RoleInfo {
	info := model.RoleInfo{Role: role}
	if role == model.RoleSpy {
		info.Hint = &hint
		return info
	}
	info.Word = &word
	if showHint {
		info.Hint = &hint
	}
	return info
}
