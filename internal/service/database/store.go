package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Run is one batch of training profiles, typically one crawl.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Profiles  int       `json:"profiles"`
	CreatedAt time.Time `json:"created_at"`
}

// TrainingStore persists crawled training profiles grouped in runs.
type TrainingStore interface {
	// SaveRun stores profiles as a new run and returns it.
	SaveRun(ctx context.Context, source string, profiles []domain.TrainingProfile) (*Run, error)

	// LoadProfiles returns the profiles of runID, or of the newest run when
	// runID is empty.
	LoadProfiles(ctx context.Context, runID string) ([]domain.TrainingProfile, error)

	// Runs lists runs newest first.
	Runs(ctx context.Context) ([]Run, error)

	Close() error
}

// SQLStore implements TrainingStore on database/sql. Queries are written with
// "?" placeholders and rebound for drivers that number them.
type SQLStore struct {
	db       *sql.DB
	driver   string
	numbered bool
	logger   *zap.Logger
}

func newSQLStore(db *sql.DB, driver string, numbered bool, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, driver: driver, numbered: numbered, logger: logger}
}

func (s *SQLStore) GetDB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) bind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) SaveRun(ctx context.Context, source string, profiles []domain.TrainingProfile) (*Run, error) {
	run := &Run{
		ID:        ulid.Make().String(),
		Source:    source,
		Profiles:  len(profiles),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.bind(`
		INSERT INTO training_runs (id, source, profiles, created_at)
		VALUES (?, ?, ?, ?)
	`), run.ID, run.Source, run.Profiles, run.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.bind(`
		INSERT INTO training_profiles (id, run_id, seq, country_id, surname, known_as, fullname, firstnames, biography)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return nil, fmt.Errorf("prepare profile insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range profiles {
		biography, err := json.Marshal(p.Biography)
		if err != nil {
			return nil, fmt.Errorf("marshal biography %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, ulid.Make().String(), run.ID, i, p.NationalityID,
			p.Surname, p.KnownAs, p.FullName, p.GivenNames, string(biography)); err != nil {
			return nil, fmt.Errorf("insert profile %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("Training run stored",
		zap.String("driver", s.driver),
		zap.String("run_id", run.ID),
		zap.String("source", source),
		zap.Int("profiles", run.Profiles))

	return run, nil
}

func (s *SQLStore) LoadProfiles(ctx context.Context, runID string) ([]domain.TrainingProfile, error) {
	if runID == "" {
		err := s.db.QueryRowContext(ctx, `SELECT id FROM training_runs ORDER BY id DESC LIMIT 1`).Scan(&runID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no training runs stored")
		}
		if err != nil {
			return nil, fmt.Errorf("find latest run: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT country_id, surname, known_as, fullname, firstnames, biography
		FROM training_profiles
		WHERE run_id = ?
		ORDER BY seq
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]domain.TrainingProfile, 0, 256)
	for rows.Next() {
		var (
			p         domain.TrainingProfile
			biography []byte
		)
		if err := rows.Scan(&p.NationalityID, &p.Surname, &p.KnownAs, &p.FullName, &p.GivenNames, &biography); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal(biography, &p.Biography); err != nil {
			return nil, fmt.Errorf("decode biography: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("Training profiles loaded",
		zap.String("run_id", runID),
		zap.Int("profiles", len(profiles)))

	return profiles, nil
}

func (s *SQLStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, profiles, created_at FROM training_runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.Profiles, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
