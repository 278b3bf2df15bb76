package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS training_runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	profiles   INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS training_profiles (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES training_runs(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	country_id INTEGER NOT NULL,
	surname    TEXT NOT NULL,
	known_as   TEXT NOT NULL DEFAULT '',
	fullname   TEXT NOT NULL DEFAULT '',
	firstnames TEXT NOT NULL DEFAULT '',
	biography  TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_training_profiles_run ON training_profiles(run_id, seq);
`

// NewSQLiteStore opens or creates a SQLite database at dbPath.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite training store opened", zap.String("path", dbPath))
	}

	return newSQLStore(db, "sqlite", false, logger), nil
}
