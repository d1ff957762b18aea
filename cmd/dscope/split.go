package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/history"
	"github.com/diffscope/diffscope/internal/models"
	"github.com/diffscope/diffscope/internal/output"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Group uncommitted changes into logical commit boundaries",
	Long: `Analyzes the working tree (or the index with --staged), groups related
changes into commit boundaries, and prints a staging strategy with a
suggested conventional commit message per boundary.

With --apply, stages and commits each boundary in plan order, asking
for confirmation before each commit.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().Bool("apply", false, "Stage and commit each boundary in plan order")
	splitCmd.Flags().Bool("staged", false, "Analyze only staged changes")
	splitCmd.Flags().Bool("json", false, "Output the strategy as JSON")
	splitCmd.Flags().Bool("no-ai", false, "Skip AI-assisted grouping, heuristics only")
	splitCmd.Flags().BoolP("yes", "y", false, "With --apply, commit without asking")
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	apply, _ := cmd.Flags().GetBool("apply")
	staged, _ := cmd.Flags().GetBool("staged")
	jsonOut, _ := cmd.Flags().GetBool("json")
	noAI, _ := cmd.Flags().GetBool("no-ai")
	yes, _ := cmd.Flags().GetBool("yes")

	root, changes, err := collectChanges(ctx, staged)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Println("Working tree is clean, nothing to split")
		return nil
	}

	engine, closeEngine, err := newEngine(ctx, noAI)
	if err != nil {
		return err
	}
	defer closeEngine()

	strategy := engine.Analyze(ctx, changes)

	renderer := output.NewRenderer(cmd.OutOrStdout(), jsonOut)
	if err := renderer.Strategy(&strategy); err != nil {
		return fmt.Errorf("render strategy: %w", err)
	}

	saveRun(ctx, root, len(changes), strategy)

	if !apply {
		return nil
	}

	var confirm git.ConfirmFunc
	if !yes {
		confirm = func(plan models.CommitPlan) bool {
			return askYesNo(fmt.Sprintf("Commit %q (%d files)?", plan.Message.Title, len(plan.Boundary.Files)))
		}
	}

	committed, err := git.NewExecutor(root).Apply(ctx, strategy, confirm)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d commit(s)\n", committed)
	return nil
}

// saveRun persists the analysis for dscope history. Failures are logged
// but never fail the command.
func saveRun(ctx context.Context, root string, fileCount int, strategy models.StagingStrategy) {
	run, err := history.NewRun(root, fileCount, strategy)
	if err != nil {
		logger.WithError(err).Debug("Failed to build history record")
		return
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		logger.WithError(err).Debug("Failed to open history store")
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		logger.WithError(err).Debug("Failed to save history record")
	}
}
