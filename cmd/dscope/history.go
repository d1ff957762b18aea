package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/history"
	"github.com/diffscope/diffscope/internal/models"
	"github.com/diffscope/diffscope/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past boundary analysis runs",
	Long: `Lists stored analysis runs, newest first. With a run ID, shows the full
staging strategy that run produced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOut, _ := cmd.Flags().GetBool("json")

	store, err := history.Open(cfg.History)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	renderer := output.NewRenderer(cmd.OutOrStdout(), jsonOut)

	if len(args) == 1 {
		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load run %s: %w", args[0], err)
		}
		var strategy models.StagingStrategy
		if err := json.Unmarshal(run.Plan, &strategy); err != nil {
			return fmt.Errorf("decode stored plan: %w", err)
		}
		return renderer.Strategy(&strategy)
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No analysis runs recorded yet")
		return nil
	}
	return renderer.History(runs)
}
