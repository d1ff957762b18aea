package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/github"
	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Draft a pull request description for the current branch",
	Long: `Compares the current branch against the base branch, drafts a pull
request description from the commits and the boundary analysis, and
optionally opens the GitHub compare page in the browser.`,
	RunE: runPR,
}

func init() {
	prCmd.Flags().String("base", "main", "Base branch to compare against")
	prCmd.Flags().Bool("open", false, "Open the GitHub compare page in the browser")
	prCmd.Flags().Bool("no-ai", false, "Skip the AI draft, print commits and files only")
}

func runPR(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	base, _ := cmd.Flags().GetString("base")
	openBrowser, _ := cmd.Flags().GetBool("open")
	noAI, _ := cmd.Flags().GetBool("no-ai")

	root, err := git.FindRoot(ctx, ".")
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}
	branch, err := git.CurrentBranch(ctx, root)
	if err != nil {
		return err
	}
	if branch == base {
		return fmt.Errorf("already on %s; switch to a feature branch first", base)
	}

	commits, err := git.RecentCommits(ctx, root, base, 50)
	if err != nil {
		return fmt.Errorf("list commits since %s: %w", base, err)
	}
	if len(commits) == 0 {
		return fmt.Errorf("no commits on %s that are not on %s", branch, base)
	}

	remote := git.RemoteURL(ctx, root)
	var repo github.Repo
	haveRepo := false
	if remote != "" {
		if parsed, err := github.ParseRemote(remote); err == nil {
			repo = parsed
			haveRepo = true
		}
	}

	// An existing open PR means we only print its URL.
	if haveRepo && cfg.GitHub.Token != "" {
		gh := github.NewClient(cfg.GitHub.Token, cfg.GitHub.RateLimit)
		if existing, err := gh.FindOpenPR(ctx, repo, branch); err == nil && existing != nil {
			fmt.Printf("Open PR already exists: #%d %s\n%s\n", existing.Number, existing.Title, existing.URL)
			return nil
		}
	}

	// Boundary analysis of uncommitted work adds context to the draft.
	var strategy models.StagingStrategy
	if changes, err := git.NewCollector(root).WorkingTreeChanges(ctx); err == nil && len(changes) > 0 {
		fmt.Printf("Note: %d uncommitted file(s); the PR covers committed work only\n\n", len(changes))
		if engine, closeEngine, err := newEngine(ctx, true); err == nil {
			strategy = engine.Analyze(ctx, changes)
			closeEngine()
		}
	}

	fmt.Printf("## %s -> %s (%d commits)\n\n", branch, base, len(commits))
	if !noAI {
		if draft := aiPRDraft(ctx, branch, base, commits, strategy); draft != "" {
			fmt.Println(strings.TrimSpace(draft))
		} else {
			printCommitList(commits)
		}
	} else {
		printCommitList(commits)
	}

	if haveRepo {
		url := github.CompareURL(repo, base, branch)
		fmt.Printf("\n%s\n", url)
		if openBrowser {
			if err := browser.OpenURL(url); err != nil {
				logger.WithError(err).Warn("Failed to open browser")
			}
		}
	}
	return nil
}

func printCommitList(commits []string) {
	for _, c := range commits {
		fmt.Printf("- %s\n", c)
	}
}

func aiPRDraft(ctx context.Context, branch, base string, commits []string, strategy models.StagingStrategy) string {
	client, err := newCompleter(ctx, false)
	if err != nil || client == nil || !client.Enabled() {
		return ""
	}
	defer client.Close()

	draft, err := client.Complete(ctx, llm.PRSystemPrompt,
		llm.BuildPRPrompt(branch, base, commits, strategy))
	if err != nil {
		logger.WithError(err).Debug("PR draft failed")
		return ""
	}
	return draft
}
