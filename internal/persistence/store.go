// Package persistence mirrors session state to durable storage and keeps
// the administrator-managed settings and word list.
package persistence

import (
	"context"

	"github.com/mcoot/spyword/internal/model"
)

// Store is a durable backend. Implementations wrap driver failures with
// model.PersistenceError so callers can match model.ErrPersistence.
type Store interface {
	// Mirror of live state
	SaveSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, code model.SessionCode) error
	SavePlayer(ctx context.Context, player *model.Player) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Administrator data. GetSettings returns model.ErrSettingsNotFound
	// when nothing has been saved yet.
	GetSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
	ListWords(ctx context.Context) ([]model.WordEntry, error)
	ReplaceWords(ctx context.Context, words []model.WordEntry) error

	Close() error
}

// Nop is a Store that keeps nothing
type Nop struct{}

var _ Store = Nop{}

func (Nop) SaveSession(context.Context, *model.Session) error      { return nil }
func (Nop) DeleteSession(context.Context, model.SessionCode) error { return nil }
func (Nop) SavePlayer(context.Context, *model.Player) error        { return nil }
func (Nop) DeletePlayer(context.Context, model.PlayerID) error     { return nil }

func (Nop) GetSettings(context.Context) (*model.Settings, error) {
	return nil, model.ErrSettingsNotFound
}

func (Nop) SaveSettings(context.Context, model.Settings) error    { return nil }
func (Nop) ListWords(context.Context) ([]model.WordEntry, error)  { return nil, nil }
func (Nop) ReplaceWords(context.Context, []model.WordEntry) error { return nil }
func (Nop) Close() error                                          { return nil }
