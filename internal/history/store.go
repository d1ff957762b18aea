// Package history persists analysis runs so `dscope history` can show
// what the tool recommended and when.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/models"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one persisted analysis.
type Run struct {
	ID            string    `db:"id" json:"id"`
	RepoRoot      string    `db:"repo_root" json:"repo_root"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	FileCount     int       `db:"file_count" json:"file_count"`
	BoundaryCount int       `db:"boundary_count" json:"boundary_count"`
	Strategy      string    `db:"strategy" json:"strategy"`
	OverallRisk   string    `db:"overall_risk" json:"overall_risk"`
	Plan          []byte    `db:"plan" json:"plan"` // StagingStrategy JSON
}

// Store persists and lists runs.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	Close() error
}

// NewRun packages a strategy into a Run ready for SaveRun.
func NewRun(repoRoot string, fileCount int, strategy models.StagingStrategy) (*Run, error) {
	plan, err := json.Marshal(strategy)
	if err != nil {
		return nil, fmt.Errorf("marshal strategy: %w", err)
	}
	return &Run{
		ID:            uuid.NewString(),
		RepoRoot:      repoRoot,
		CreatedAt:     time.Now().UTC(),
		FileCount:     fileCount,
		BoundaryCount: len(strategy.Commits),
		Strategy:      string(strategy.Strategy),
		OverallRisk:   string(strategy.OverallRisk),
		Plan:          plan,
	}, nil
}

// Open creates the configured backend: sqlite for solo use, postgres for
// a shared team store.
func Open(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN)
	case "", "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
