// Package postgres provides a PostgreSQL-backed persistence store built on gorm.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
)

// Store persists mirrored state and admin data in PostgreSQL
type Store struct {
	db *gorm.DB
}

var _ persistence.Store = (*Store)(nil)

// Open connects to PostgreSQL and migrates the schema
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm handle and migrates the schema
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&sessionRow{}, &playerRow{}, &settingsRow{}, &wordRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
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
	row := sessionRow{
		Code:              string(session.Code),
		HostID:            string(session.HostID),
		Status:            string(session.Status),
		SpyCount:          session.SpyCount,
		EffectiveSpyCount: session.EffectiveSpyCount,
		SecretWord:        session.SecretWord,
		SecretHint:        session.SecretHint,
		MembersJSON:       string(members),
		RolesJSON:         string(roles),
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return model.PersistenceError("save session", err)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, code model.SessionCode) error {
	if err := s.db.WithContext(ctx).Unscoped().Delete(&sessionRow{}, "code = ?", string(code)).Error; err != nil {
		return model.PersistenceError("delete session", err)
	}
	return nil
}

func (s *Store) SavePlayer(ctx context.Context, player *model.Player) error {
	row := playerRow{
		ID:             string(player.ID),
		DisplayName:    player.DisplayName,
		CurrentSession: string(player.CurrentSession),
		CreatedAt:      player.CreatedAt,
		UpdatedAt:      player.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return model.PersistenceError("save player", err)
	}
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if err := s.db.WithContext(ctx).Unscoped().Delete(&playerRow{}, "id = ?", string(id)).Error; err != nil {
		return model.PersistenceError("delete player", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	var row settingsRow
	err := s.db.WithContext(ctx).First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSettingsNotFound
	}
	if err != nil {
		return nil, model.PersistenceError("get settings", err)
	}
	return &model.Settings{
		MinPlayersToStart:  row.MinPlayersToStart,
		ShowHintToRegulars: row.ShowHintToRegulars,
	}, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	row := settingsRow{
		ID:                 1,
		MinPlayersToStart:  settings.MinPlayersToStart,
		ShowHintToRegulars: settings.ShowHintToRegulars,
		UpdatedAt:          time.Now(),
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return model.PersistenceError("save settings", err)
	}
	return nil
}

func (s *Store) ListWords(ctx context.Context) ([]model.WordEntry, error) {
	var rows []wordRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, model.PersistenceError("list words", err)
	}
	words := make([]model.WordEntry, 0, len(rows))
	for _, row := range rows {
		entry := model.WordEntry{Word: row.Word}
		if err := json.Unmarshal([]byte(row.HintsJSON), &entry.Hints); err != nil {
			return nil, err
		}
		words = append(words, entry)
	}
	return words, nil
}

func (s *Store) ReplaceWords(ctx context.Context, words []model.WordEntry) error {
	rows := make([]wordRow, 0, len(words))
	for i, entry := range words {
		hints, err := json.Marshal(entry.Hints)
		if err != nil {
			return err
		}
		rows = append(rows, wordRow{Position: i, Word: entry.Word, HintsJSON: string(hints)})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&wordRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return model.PersistenceError("replace words", err)
	}
	return nil
}
