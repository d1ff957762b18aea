package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/git"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and working tree summary",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("Diffscope status")
	fmt.Println()

	provider := cfg.AI.Provider
	if !cfg.AI.Enabled {
		provider = "none"
	}
	fmt.Printf("  AI provider:    %s\n", provider)
	switch provider {
	case "openai":
		fmt.Printf("  Model:          %s\n", cfg.AI.OpenAIModel)
		fmt.Printf("  API key:        %s\n", keyStatus(cfg.AI.OpenAIKey))
	case "gemini":
		fmt.Printf("  Model:          %s\n", cfg.AI.GeminiModel)
		fmt.Printf("  API key:        %s\n", keyStatus(cfg.AI.GeminiKey))
	}
	fmt.Printf("  History:        %s\n", cfg.History.Backend)
	fmt.Printf("  GitHub token:   %s\n", keyStatus(cfg.GitHub.Token))
	fmt.Printf("  Config dir:     %s\n", config.Dir())
	fmt.Println()

	root, err := git.FindRoot(ctx, ".")
	if err != nil {
		fmt.Println("  Not inside a git repository")
		return nil
	}

	branch, _ := git.CurrentBranch(ctx, root)
	fmt.Printf("  Repository:     %s\n", root)
	fmt.Printf("  Branch:         %s\n", branch)

	collector := git.NewCollector(root)
	working, err := collector.WorkingTreeChanges(ctx)
	if err != nil {
		return err
	}
	staged, err := collector.StagedChanges(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("  Changed files:  %d (%d staged)\n", len(working), len(staged))
	if len(working) > 0 {
		fmt.Println()
		fmt.Println("  Run dscope split to group them into commits")
	}
	return nil
}

func keyStatus(key string) string {
	if key == "" {
		return "not set"
	}
	return config.MaskAPIKey(key)
}
