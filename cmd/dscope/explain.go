package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
	"github.com/diffscope/diffscope/internal/output"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain the uncommitted changes in plain language",
	Long: `Summarizes what the working tree changes do, grouped by commit boundary.
With an AI provider configured the summary is written by the model;
otherwise the heuristic boundary breakdown is shown.`,
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().Bool("staged", false, "Explain only staged changes")
	explainCmd.Flags().Bool("json", false, "Output as JSON")
	explainCmd.Flags().Bool("no-ai", false, "Skip the AI summary, show boundaries only")
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	staged, _ := cmd.Flags().GetBool("staged")
	jsonOut, _ := cmd.Flags().GetBool("json")
	noAI, _ := cmd.Flags().GetBool("no-ai")

	root, changes, err := collectChanges(ctx, staged)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Println("Working tree is clean, nothing to explain")
		return nil
	}

	engine, closeEngine, err := newEngine(ctx, noAI)
	if err != nil {
		return err
	}
	defer closeEngine()

	boundaries := engine.Boundaries(ctx, changes)
	renderer := output.NewRenderer(cmd.OutOrStdout(), jsonOut)

	if !noAI {
		if summary := aiExplain(ctx, root, staged); summary != "" {
			if err := renderer.Text(summary); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}

	refs := make([]*models.CommitBoundary, len(boundaries))
	for i := range boundaries {
		refs[i] = &boundaries[i]
	}
	return renderer.Boundaries(refs)
}

// aiExplain returns the model's summary of the diff, or "" when no
// provider is available or the call fails.
func aiExplain(ctx context.Context, root string, staged bool) string {
	client, err := newCompleter(ctx, false)
	if err != nil || client == nil || !client.Enabled() {
		return ""
	}
	defer client.Close()

	diffText, err := git.NewCollector(root).DiffText(ctx, staged)
	if err != nil || diffText == "" {
		return ""
	}

	summary, err := client.Complete(ctx, llm.ExplainSystemPrompt, llm.BuildExplainPrompt(diffText))
	if err != nil {
		logger.WithError(err).Debug("AI explanation failed")
		return ""
	}
	return summary
}
