package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Serves boundary analysis over the Model Context Protocol so coding
agents can call detect_boundaries and suggest_commit_message. All
logging is suppressed to keep stdio clean for the protocol.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var completer llm.Completer
	if client, err := llm.NewClient(ctx, cfg); err == nil {
		completer = client
		defer client.Close()
	}

	return mcp.Serve(ctx, cfg, completer)
}
