// Package mcp exposes boundary analysis over the Model Context Protocol
// so coding agents can ask for commit groupings and message suggestions.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/llm"
)

// NewServer initializes and configures the MCP server without starting
// it. Exposed for unit testing.
func NewServer(cfg *config.Config, completer llm.Completer) *server.MCPServer {
	s := server.NewMCPServer(
		"Diffscope Boundary Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		cfg:       cfg,
		completer: completer,
	}

	s.AddTool(mcp.NewTool("detect_boundaries",
		mcp.WithDescription("Group the uncommitted changes of a git repository into logical commit boundaries with a suggested staging strategy."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the current directory).")),
		mcp.WithBoolean("staged", mcp.Description("Analyze only staged changes instead of the full working tree.")),
		mcp.WithBoolean("no_ai", mcp.Description("Skip AI-assisted grouping and use heuristics only.")),
	), h.handleDetectBoundaries)

	s.AddTool(mcp.NewTool("suggest_commit_message",
		mcp.WithDescription("Suggest a conventional commit message for the staged changes of a git repository."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the current directory).")),
		mcp.WithBoolean("no_ai", mcp.Description("Skip AI refinement and return the heuristic message.")),
	), h.handleSuggestCommitMessage)

	return s
}

// Serve starts the MCP server on stdio and blocks until the client
// disconnects.
func Serve(_ context.Context, cfg *config.Config, completer llm.Completer) error {
	return server.ServeStdio(NewServer(cfg, completer))
}
