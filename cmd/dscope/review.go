package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/output"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review the uncommitted changes before committing",
	Long: `Asks the configured AI provider for a code review of the working tree
(or the index with --staged): likely bugs, missing tests, and anything
a reviewer would flag. Without a provider, shows the heuristic findings
from the boundary analysis instead.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Bool("staged", false, "Review only staged changes")
	reviewCmd.Flags().Bool("json", false, "Output as JSON")
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	staged, _ := cmd.Flags().GetBool("staged")
	jsonOut, _ := cmd.Flags().GetBool("json")

	root, err := git.FindRoot(ctx, ".")
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	diffText, err := git.NewCollector(root).DiffText(ctx, staged)
	if err != nil {
		return err
	}
	if diffText == "" {
		fmt.Println("Working tree is clean, nothing to review")
		return nil
	}

	renderer := output.NewRenderer(cmd.OutOrStdout(), jsonOut)

	client, err := newCompleter(ctx, false)
	if err != nil {
		return err
	}
	if client != nil && client.Enabled() {
		defer client.Close()
		review, err := client.Complete(ctx, llm.ReviewSystemPrompt, llm.BuildReviewPrompt(diffText))
		if err == nil {
			return renderer.Text(review)
		}
		logger.WithError(err).Warn("AI review failed, showing heuristic findings")
	}

	return heuristicReview(ctx, staged, renderer)
}

// heuristicReview surfaces what the boundary analysis can say without a
// provider: the composed warnings and the risk of each change group.
func heuristicReview(ctx context.Context, staged bool, renderer *output.Renderer) error {
	_, changes, err := collectChanges(ctx, staged)
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, true)
	if err != nil {
		return err
	}
	defer closeEngine()

	strategy := engine.Analyze(ctx, changes)
	return renderer.Strategy(&strategy)
}
