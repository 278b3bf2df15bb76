package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kapu/player-generator-go/internal/constants"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

const postgresSchema = `
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
	biography  JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_training_profiles_run ON training_profiles(run_id, seq);
`

func (cfg PostgresConfig) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
}

// NewPostgresStore connects, verifies the connection and ensures the schema.
func NewPostgresStore(cfg PostgresConfig, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(constants.DatabaseConfig.MaxOpenConns)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return newSQLStore(db, "postgres", true, logger), nil
}
