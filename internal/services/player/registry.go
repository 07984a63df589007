package player

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcoot/spyword/internal/dependencies/clock"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/storage"
)

// Mirror receives best-effort copies of player changes
type Mirror interface {
	SavePlayer(player *model.Player)
	DeletePlayer(id model.PlayerID)
}

// Registry owns player identities
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	mirror  Mirror
	logger  *slog.Logger
}

// NewRegistry creates a new player Registry
func NewRegistry(storage storage.Storage, clock clock.Clock, mirror Mirror, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		mirror:  mirror,
		logger:  logger.With(slog.String("component", "player_registry")),
	}
}

// NormalizeName trims a display name and caps it at MaxDisplayNameLength runes
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrEmptyName
	}
	if utf8.RuneCountInString(name) > model.MaxDisplayNameLength {
		name = strings.TrimSpace(string([]rune(name)[:model.MaxDisplayNameLength]))
	}
	return name, nil
}

// Register creates an identity, or renames an existing one when existingID is known.
// An unknown existingID is ignored and a fresh identity is issued.
func (r *Registry) Register(ctx context.Context, name string, existingID model.PlayerID) (*model.Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()

	if existingID != "" {
		existing, err := r.storage.GetPlayer(ctx, existingID)
		switch {
		case err == nil:
			existing.DisplayName = name
			existing.UpdatedAt = now
			if err := r.storage.SavePlayer(ctx, existing); err != nil {
				return nil, err
			}
			r.mirror.SavePlayer(existing)
			r.logger.Debug("player re-registered", slog.String("player_id", string(existing.ID)))
			return existing, nil
		case !errors.Is(err, model.ErrPlayerNotFound):
			return nil, err
		}
	}

	player := &model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	r.mirror.SavePlayer(player)

	r.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.Bool("replaced_unknown_id", existingID != ""),
	)
	return player, nil
}

// Get retrieves a player by ID
func (r *Registry) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return r.storage.GetPlayer(ctx, id)
}

// SetCurrentSession records which session the player is seated in; empty clears it
func (r *Registry) SetCurrentSession(ctx context.Context, id model.PlayerID, code model.SessionCode) error {
	player, err := r.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	player.CurrentSession = code
	player.UpdatedAt = r.clock.Now()
	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return err
	}
	r.mirror.SavePlayer(player)
	return nil
}

// Remove deletes the identity if it is not seated in any session.
// It reports whether the identity was removed.
func (r *Registry) Remove(ctx context.Context, id model.PlayerID) (bool, error) {
	player, err := r.storage.GetPlayer(ctx, id)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if player.InSession() {
		return false, nil
	}
	if err := r.storage.DeletePlayer(ctx, id); err != nil {
		return false, err
	}
	r.mirror.DeletePlayer(id)
	r.logger.Info("player removed", slog.String("player_id", string(id)))
	return true, nil
}

// RegistryInterface is the player registry contract used by the engine
type RegistryInterface interface {
	Register(ctx context.Context, name string, existingID model.PlayerID) (*model.Player, error)
	Get(ctx context.Context, id model.PlayerID) (*model.Player, error)
	SetCurrentSession(ctx context.Context, id model.PlayerID, code model.SessionCode) error
	Remove(ctx context.Context, id model.PlayerID) (bool, error)
}

var _ RegistryInterface = (*Registry)(nil)
