package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit staged changes with a suggested message",
	Long: `Builds a conventional commit message for the staged changes, optionally
refined by the configured AI provider, and commits after confirmation.`,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().Bool("no-ai", false, "Skip AI refinement, use the heuristic message")
	commitCmd.Flags().BoolP("yes", "y", false, "Commit without asking")
	commitCmd.Flags().Bool("dry-run", false, "Print the message without committing")
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	noAI, _ := cmd.Flags().GetBool("no-ai")
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	root, changes, err := collectChanges(ctx, true)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("nothing staged; run git add first")
	}

	engine, closeEngine, err := newEngine(ctx, noAI)
	if err != nil {
		return err
	}
	defer closeEngine()

	strategy := engine.Analyze(ctx, changes)
	if len(strategy.Commits) == 0 {
		return fmt.Errorf("no commit plan produced")
	}
	if len(strategy.Commits) > 1 {
		fmt.Printf("Note: staged changes look like %d separate commits; consider dscope split\n", len(strategy.Commits))
	}

	msg := strategy.Commits[0].Message
	if !noAI {
		msg = refineCommitMessage(ctx, root, msg)
	}

	fmt.Printf("%s\n", msg.Title)
	if msg.Body != "" {
		fmt.Printf("\n%s\n", msg.Body)
	}

	if dryRun {
		return nil
	}
	if !yes && !askYesNo("Commit with this message?") {
		fmt.Println("Aborted")
		return nil
	}
	if err := git.Commit(ctx, root, msg); err != nil {
		return err
	}
	fmt.Println("Committed")
	return nil
}

// refineCommitMessage asks the provider to improve the heuristic
// skeleton. Any failure keeps the skeleton.
func refineCommitMessage(ctx context.Context, root string, skeleton models.CommitMessage) models.CommitMessage {
	client, err := newCompleter(ctx, false)
	if err != nil || client == nil || !client.Enabled() {
		return skeleton
	}
	defer client.Close()

	diffText, err := git.NewCollector(root).DiffText(ctx, true)
	if err != nil {
		return skeleton
	}

	raw, err := client.Complete(ctx, llm.CommitMessageSystemPrompt,
		llm.BuildCommitMessagePrompt(skeleton, diffText))
	if err != nil {
		logger.WithError(err).Debug("Message refinement failed")
		return skeleton
	}

	refined, err := llm.ParseCommitMessage(raw)
	if err != nil {
		return skeleton
	}
	if refined.Type == "" {
		refined.Type = skeleton.Type
	}
	return refined
}
