package postgres

import (
	"time"

	"gorm.io/gorm"
)

type sessionRow struct {
	Code              string `gorm:"primaryKey;size:6"`
	HostID            string `gorm:"not null"`
	Status            string `gorm:"not null;index"`
	SpyCount          int    `gorm:"not null"`
	EffectiveSpyCount int    `gorm:"not null;default:0"`
	SecretWord        string
	SecretHint        string
	MembersJSON       string `gorm:"type:jsonb;not null"`
	RolesJSON         string `gorm:"type:jsonb;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (sessionRow) TableName() string { return "sessions" }

type playerRow struct {
	ID             string `gorm:"primaryKey"`
	DisplayName    string `gorm:"not null"`
	CurrentSession string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (playerRow) TableName() string { return "players" }

type settingsRow struct {
	ID                 uint `gorm:"primaryKey"`
	MinPlayersToStart  int  `gorm:"not null"`
	ShowHintToRegulars bool `gorm:"not null"`
	UpdatedAt          time.Time
}

func (settingsRow) TableName() string { return "settings" }

type wordRow struct {
	Position  int    `gorm:"primaryKey;autoIncrement:false"`
	Word      string `gorm:"not null;uniqueIndex"`
	HintsJSON string `gorm:"type:jsonb;not null"`
}

func (wordRow) TableName() string { return "words" }
