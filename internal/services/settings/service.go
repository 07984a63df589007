// Package settings serves the gameplay settings read at session start.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
)

// MinPlayersFloor is the smallest allowed MinPlayersToStart
const MinPlayersFloor = 2

// Service caches the current settings; reads never touch the store
type Service struct {
	store  persistence.Store
	logger *slog.Logger

	mu      sync.RWMutex
	current model.Settings
}

// New creates a Service starting from the given defaults
func New(store persistence.Store, defaults model.Settings, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		logger:  logger.With(slog.String("component", "settings")),
		current: defaults,
	}
}

// LoadFromStore replaces the defaults with stored settings, if any were saved
func (s *Service) LoadFromStore(ctx context.Context) error {
	stored, err := s.store.GetSettings(ctx)
	if errors.Is(err, model.ErrSettingsNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := Validate(*stored); err != nil {
		s.logger.Warn("ignoring invalid stored settings", slog.String("error", err.Error()))
		return nil
	}

	s.mu.Lock()
	s.current = *stored
	s.mu.Unlock()
	return nil
}

// Get returns the current settings
func (s *Service) Get() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// MinPlayersToStart is the member count required before a host may start
func (s *Service) MinPlayersToStart() int {
	return s.Get().MinPlayersToStart
}

// ShowHintToRegulars reports whether regulars see the hint alongside the word
func (s *Service) ShowHintToRegulars() bool {
	return s.Get().ShowHintToRegulars
}

// Update validates, saves and applies new settings.
// They take effect from the next session start.
func (s *Service) Update(ctx context.Context, settings model.Settings) error {
	if err := Validate(settings); err != nil {
		return err
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()

	s.logger.Info("settings updated",
		slog.Int("min_players_to_start", settings.MinPlayersToStart),
		slog.Bool("show_hint_to_regulars", settings.ShowHintToRegulars),
	)
	return nil
}

// Validate checks settings bounds
func Validate(settings model.Settings) error {
	if settings.MinPlayersToStart < MinPlayersFloor {
		return fmt.Errorf("%w: minPlayersToStart must be at least %d", model.ErrInvalidSettings, MinPlayersFloor)
	}
	return nil
}
