package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

func testRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gitRun(t, dir, "init", "-b", "main")
	gitRun(t, dir, "config", "user.name", "test")
	gitRun(t, dir, "config", "user.email", "test@test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	gitRun(t, dir, "add", ".")
	gitRun(t, dir, "commit", "-m", "initial")
	return dir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestFindRoot(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	sub := filepath.Join(dir, "pkg", "inner")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := FindRoot(ctx, sub)
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(dir)
	assert.Equal(t, resolved, root)

	_, err = FindRoot(ctx, t.TempDir())
	assert.Error(t, err)
}

func TestCurrentBranch(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	branch, err := CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	gitRun(t, dir, "checkout", "-b", "feature/split")
	branch, err = CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "feature/split", branch)
}

func TestRecentCommits(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	gitRun(t, dir, "checkout", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.go"), []byte("package main\n"), 0o644))
	gitRun(t, dir, "add", ".")
	gitRun(t, dir, "commit", "-m", "add extra")

	commits, err := RecentCommits(ctx, dir, "main", 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Contains(t, commits[0], "add extra")
}

func TestHasStagedChanges(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	staged, err := HasStagedChanges(ctx, dir)
	require.NoError(t, err)
	assert.False(t, staged)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	gitRun(t, dir, "add", "main.go")

	staged, err = HasStagedChanges(ctx, dir)
	require.NoError(t, err)
	assert.True(t, staged)
}

func TestCollectorWorkingTree(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes\n"), 0o644))

	changes, err := NewCollector(dir).WorkingTreeChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	byPath := map[string]models.ChangeRecord{}
	for _, c := range changes {
		byPath[c.Path] = c
	}
	assert.Equal(t, models.ChangeModified, byPath["main.go"].Kind)
	assert.Equal(t, models.ChangeAdded, byPath["notes.md"].Kind, "untracked files count as added")
	assert.Positive(t, byPath["notes.md"].Insertions)
}

func TestExecutorApply(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package main\n"), 0o644))

	strategy := models.StagingStrategy{
		Commits: []models.CommitPlan{
			{
				Boundary: &models.CommitBoundary{Files: []models.ChangeRecord{{Path: "a.go"}}},
				Message:  models.CommitMessage{Title: "feat: add a"},
			},
			{
				Boundary: &models.CommitBoundary{Files: []models.ChangeRecord{{Path: "b.go"}}},
				Message:  models.CommitMessage{Title: "feat: add b", Body: "second file"},
			},
		},
	}

	committed, err := NewExecutor(dir).Apply(ctx, strategy, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, committed)

	out, err := runGit(ctx, dir, "log", "--format=%s", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "feat: add b")
	assert.Contains(t, out, "feat: add a")

	staged, err := HasStagedChanges(ctx, dir)
	require.NoError(t, err)
	assert.False(t, staged)
}

func TestExecutorConfirmSkips(t *testing.T) {
	ctx := context.Background()
	dir := testRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n"), 0o644))

	strategy := models.StagingStrategy{
		Commits: []models.CommitPlan{
			{
				Boundary: &models.CommitBoundary{Files: []models.ChangeRecord{{Path: "a.go"}}},
				Message:  models.CommitMessage{Title: "feat: add a"},
			},
		},
	}

	committed, err := NewExecutor(dir).Apply(ctx, strategy,
		func(models.CommitPlan) bool { return false })
	require.NoError(t, err)
	assert.Zero(t, committed)
}
