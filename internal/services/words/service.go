// Package words supplies secret words and the hints that go with them.
package words

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/spyword/internal/dependencies/random"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
	"github.com/mcoot/spyword/internal/services/roles"
)

//go:embed default.json
var defaultWords []byte

// Service holds the active word list.
// A non-empty list saved by an administrator takes precedence over the built-in list.
type Service struct {
	store  persistence.Store
	random random.Random
	logger *slog.Logger

	mu       sync.RWMutex
	builtin  []model.WordEntry
	override []model.WordEntry
}

// New creates a Service seeded with the embedded default list
func New(store persistence.Store, rnd random.Random, logger *slog.Logger) (*Service, error) {
	var entries []model.WordEntry
	if err := json.Unmarshal(defaultWords, &entries); err != nil {
		return nil, fmt.Errorf("parse embedded words: %w", err)
	}
	entries, err := Validate(entries)
	if err != nil {
		return nil, fmt.Errorf("embedded words: %w", err)
	}
	return &Service{
		store:   store,
		random:  rnd,
		logger:  logger.With(slog.String("component", "words")),
		builtin: entries,
	}, nil
}

// LoadFromFile replaces the built-in list with a JSON array of entries read from path
func (s *Service) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []model.WordEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrInvalidWords, path, err)
	}
	entries, err = Validate(entries)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.builtin = entries
	s.mu.Unlock()

	s.logger.Info("word list loaded from file", slog.String("path", path), slog.Int("count", len(entries)))
	return nil
}

// LoadFromStore picks up an administrator-saved list, if any
func (s *Service) LoadFromStore(ctx context.Context) error {
	entries, err := s.store.ListWords(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	entries, err = Validate(entries)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.override = entries
	s.mu.Unlock()

	s.logger.Info("word list loaded from store", slog.Int("count", len(entries)))
	return nil
}

// Entries returns the active list
func (s *Service) Entries() []model.WordEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.override) > 0 {
		return s.override
	}
	return s.builtin
}

// Replace validates and saves a new administrator list
func (s *Service) Replace(ctx context.Context, entries []model.WordEntry) ([]model.WordEntry, error) {
	entries, err := Validate(entries)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceWords(ctx, entries); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.override = entries
	s.mu.Unlock()

	s.logger.Info("word list replaced", slog.Int("count", len(entries)))
	return entries, nil
}

// HintFor draws a fresh hint for a word in the active list
func (s *Service) HintFor(word string) (string, bool) {
	for _, entry := range s.Entries() {
		if strings.EqualFold(entry.Word, word) {
			return roles.PickHint(s.random, entry), true
		}
	}
	return "", false
}

// Validate trims entries, drops blank hints, rejects duplicates and
// entries without hints, and requires at least one entry.
func Validate(entries []model.WordEntry) ([]model.WordEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: list is empty", model.ErrInvalidWords)
	}

	seen := make(map[string]struct{}, len(entries))
	out := make([]model.WordEntry, 0, len(entries))
	for i, entry := range entries {
		word := strings.TrimSpace(entry.Word)
		if word == "" {
			return nil, fmt.Errorf("%w: entry %d has no word", model.ErrInvalidWords, i)
		}
		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate word %q", model.ErrInvalidWords, word)
		}
		seen[key] = struct{}{}

		var hints []string
		for _, h := range entry.Hints {
			if h = strings.TrimSpace(h); h != "" {
				hints = append(hints, h)
			}
		}
		if len(hints) == 0 {
			return nil, fmt.Errorf("%w: word %q has no hints", model.ErrInvalidWords, word)
		}
		out = append(out, model.WordEntry{Word: word, Hints: hints})
	}
	return out, nil
}
