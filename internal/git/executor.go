package git

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diffscope/diffscope/internal/models"
)

// ConfirmFunc is asked before each commit. Returning false skips the
// commit and leaves its files unstaged.
type ConfirmFunc func(plan models.CommitPlan) bool

// Executor applies a staging strategy: stage each boundary's files then
// commit with the suggested message, in plan order.
type Executor struct {
	root   string
	logger *slog.Logger
}

// NewExecutor creates an executor rooted at the repository root.
func NewExecutor(root string) *Executor {
	return &Executor{
		root:   root,
		logger: slog.Default().With("component", "git_executor"),
	}
}

// Apply stages and commits each plan. confirm may be nil to commit
// everything without asking. Returns the number of commits created.
func (e *Executor) Apply(ctx context.Context, strategy models.StagingStrategy, confirm ConfirmFunc) (int, error) {
	committed := 0
	for _, plan := range strategy.Commits {
		if confirm != nil && !confirm(plan) {
			e.logger.Info("commit skipped", "title", plan.Message.Title)
			continue
		}
		if err := e.commitPlan(ctx, plan); err != nil {
			return committed, fmt.Errorf("commit %q: %w", plan.Message.Title, err)
		}
		committed++
	}
	return committed, nil
}

func (e *Executor) commitPlan(ctx context.Context, plan models.CommitPlan) error {
	args := []string{"add", "--"}
	for _, f := range plan.Boundary.Files {
		args = append(args, f.Path)
	}
	if _, err := runGit(ctx, e.root, args...); err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	commitArgs := []string{"commit", "-m", plan.Message.Title}
	if plan.Message.Body != "" {
		commitArgs = append(commitArgs, "-m", plan.Message.Body)
	}
	if _, err := runGit(ctx, e.root, commitArgs...); err != nil {
		return err
	}

	e.logger.Info("commit created", "title", plan.Message.Title, "files", len(plan.Boundary.Files))
	return nil
}

// Commit creates a single commit from whatever is currently staged.
func Commit(ctx context.Context, root string, msg models.CommitMessage) error {
	args := []string{"commit", "-m", msg.Title}
	if msg.Body != "" {
		args = append(args, "-m", msg.Body)
	}
	_, err := runGit(ctx, root, args...)
	return err
}
