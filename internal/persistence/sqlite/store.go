// Package sqlite provides a SQLite-backed persistence store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
	"github.com/mcoot/spyword/internal/persistence/sqlite/migrations"
)

// Store persists mirrored state and admin data in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ persistence.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serialises writers and avoids SQLITE_BUSY between them.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	members, err := json.Marshal(session.Members)
	if err != nil {
		return err
	}
	roles, err := json.Marshal(session.Roles)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (
		   code, host_id, status, spy_count, effective_spy_count,
		   secret_word, secret_hint, members_json, roles_json, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   host_id = excluded.host_id,
		   status = excluded.status,
		   spy_count = excluded.spy_count,
		   effective_spy_count = excluded.effective_spy_count,
		   secret_word = excluded.secret_word,
		   secret_hint = excluded.secret_hint,
		   members_json = excluded.members_json,
		   roles_json = excluded.roles_json,
		   updated_at = excluded.updated_at`,
		string(session.Code),
		string(session.HostID),
		string(session.Status),
		session.SpyCount,
		session.EffectiveSpyCount,
		session.SecretWord,
		session.SecretHint,
		string(members),
		string(roles),
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return model.PersistenceError("save session", err)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, code model.SessionCode) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE code = ?`, string(code)); err != nil {
		return model.PersistenceError("delete session", err)
	}
	return nil
}

// GetSession reads a mirrored session back. Only used for inspection and tests.
func (s *Store) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	var (
		session          model.Session
		hostID, status   string
		members, roles   string
		created, updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT code, host_id, status, spy_count, effective_spy_count, secret_word, secret_hint,
		        members_json, roles_json, created_at, updated_at
		   FROM sessions WHERE code = ?`, string(code),
	).Scan(&session.Code, &hostID, &status, &session.SpyCount, &session.EffectiveSpyCount,
		&session.SecretWord, &session.SecretHint, &members, &roles, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, model.PersistenceError("get session", err)
	}
	session.HostID = model.PlayerID(hostID)
	session.Status = model.SessionStatus(status)
	session.CreatedAt = time.UnixMilli(created).UTC()
	session.UpdatedAt = time.UnixMilli(updated).UTC()
	if err := json.Unmarshal([]byte(members), &session.Members); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(roles), &session.Roles); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (id, display_name, current_session, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   display_name = excluded.display_name,
		   current_session = excluded.current_session,
		   updated_at = excluded.updated_at`,
		string(player.ID),
		player.DisplayName,
		string(player.CurrentSession),
		toMillis(player.CreatedAt),
		toMillis(player.UpdatedAt),
	)
	if err != nil {
		return model.PersistenceError("save player", err)
	}
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, string(id)); err != nil {
		return model.PersistenceError("delete player", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT min_players_to_start, show_hint_to_regulars FROM settings WHERE id = 1`,
	).Scan(&settings.MinPlayersToStart, &settings.ShowHintToRegulars)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSettingsNotFound
	}
	if err != nil {
		return nil, model.PersistenceError("get settings", err)
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO settings (id, min_players_to_start, show_hint_to_regulars, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   min_players_to_start = excluded.min_players_to_start,
		   show_hint_to_regulars = excluded.show_hint_to_regulars,
		   updated_at = excluded.updated_at`,
		settings.MinPlayersToStart,
		settings.ShowHintToRegulars,
		toMillis(time.Now()),
	)
	if err != nil {
		return model.PersistenceError("save settings", err)
	}
	return nil
}

func (s *Store) ListWords(ctx context.Context) ([]model.WordEntry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT word, hints_json FROM words ORDER BY position`)
	if err != nil {
		return nil, model.PersistenceError("list words", err)
	}
	defer rows.Close()

	var words []model.WordEntry
	for rows.Next() {
		var (
			entry model.WordEntry
			hints string
		)
		if err := rows.Scan(&entry.Word, &hints); err != nil {
			return nil, model.PersistenceError("scan word", err)
		}
		if err := json.Unmarshal([]byte(hints), &entry.Hints); err != nil {
			return nil, err
		}
		words = append(words, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PersistenceError("list words", err)
	}
	return words, nil
}

func (s *Store) ReplaceWords(ctx context.Context, words []model.WordEntry) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return model.PersistenceError("begin replace words", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return model.PersistenceError("clear words", err)
	}
	for i, entry := range words {
		hints, err := json.Marshal(entry.Hints)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO words (position, word, hints_json) VALUES (?, ?, ?)`,
			i, entry.Word, string(hints),
		); err != nil {
			return model.PersistenceError("insert word", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.PersistenceError("commit words", err)
	}
	return nil
}
