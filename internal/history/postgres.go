package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id UUID PRIMARY KEY,
	repo_root TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	file_count INTEGER NOT NULL,
	boundary_count INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	overall_risk TEXT NOT NULL,
	plan JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// PostgresStore shares run history across a team.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects with the given DSN and ensures the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres backend requires a DSN (set DIFFSCOPE_POSTGRES_DSN)")
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// SaveRun inserts one run.
func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, repo_root, created_at, file_count, boundary_count, strategy, overall_risk, plan)
		VALUES (:id, :repo_root, :created_at, :file_count, :boundary_count, :strategy, :overall_risk, :plan)`,
		run)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		`SELECT * FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches one run by id.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `SELECT * FROM runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
