package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

func testStrategy() models.StagingStrategy {
	b := models.CommitBoundary{
		ID:    "b1",
		Files: []models.ChangeRecord{{Path: "a.go", Kind: models.ChangeModified, Insertions: 3}},
		Theme: "feature development",
	}
	return models.StagingStrategy{
		Strategy:    models.StrategyParallel,
		Commits:     []models.CommitPlan{{Boundary: &b, Message: models.CommitMessage{Title: "feat: x", Type: "feat"}, Risk: models.RiskLow, EstimatedTime: "2 minutes"}},
		Warnings:    []string{},
		OverallRisk: models.RiskLow,
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, err := NewRun("/repo", 1, testStrategy())
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, run))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "/repo", runs[0].RepoRoot)
	assert.Equal(t, "parallel", runs[0].Strategy)

	var decoded models.StagingStrategy
	require.NoError(t, json.Unmarshal(runs[0].Plan, &decoded))
	assert.Len(t, decoded.Commits, 1)
}

func TestGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, err := NewRun("/repo", 2, testStrategy())
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.FileCount, got.FileCount)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsDefaultLimit(t *testing.T) {
	store := newTestStore(t)
	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
