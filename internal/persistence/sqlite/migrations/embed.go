package migrations

import "embed"

// FS contains embedded SQLite migrations for the persistence mirror.
//
//go:embed *.sql
var FS embed.FS
