package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/diffscope/diffscope/internal/analyzer"
	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	cfg       *config.Config
	completer llm.Completer
}

func (h *toolHandler) gate() analyzer.GateConfig {
	return analyzer.GateConfig{
		MinProposedBoundaries: h.cfg.Analysis.AIGateBoundaries,
		LargeChangesetFiles:   h.cfg.Analysis.AIGateFiles,
	}
}

func (h *toolHandler) collect(ctx context.Context, repoPath string, staged bool) (string, []models.ChangeRecord, error) {
	if repoPath == "" {
		repoPath = "."
	}
	root, err := git.FindRoot(ctx, repoPath)
	if err != nil {
		return "", nil, fmt.Errorf("locate repository: %w", err)
	}

	collector := git.NewCollector(root)
	var changes []models.ChangeRecord
	if staged {
		changes, err = collector.StagedChanges(ctx)
	} else {
		changes, err = collector.WorkingTreeChanges(ctx)
	}
	if err != nil {
		return "", nil, fmt.Errorf("collect changes: %w", err)
	}
	return root, changes, nil
}

func (h *toolHandler) handleDetectBoundaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoPath := request.GetString("repo_path", "")
	staged := request.GetBool("staged", false)
	noAI := request.GetBool("no_ai", false)

	_, changes, err := h.collect(ctx, repoPath, staged)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(changes) == 0 {
		return mcp.NewToolResultText(`{"strategy":"parallel","commits":[],"warnings":[],"overall_risk":"low"}`), nil
	}

	completer := h.completer
	if noAI {
		completer = nil
	}
	strategy := analyzer.NewEngine(completer, h.gate()).Analyze(ctx, changes)

	jsonData, _ := json.MarshalIndent(strategy, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSuggestCommitMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoPath := request.GetString("repo_path", "")
	noAI := request.GetBool("no_ai", false)

	root, changes, err := h.collect(ctx, repoPath, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(changes) == 0 {
		return mcp.NewToolResultError("no staged changes to describe"), nil
	}

	completer := h.completer
	if noAI {
		completer = nil
	}
	strategy := analyzer.NewEngine(completer, h.gate()).Analyze(ctx, changes)
	if len(strategy.Commits) == 0 {
		return mcp.NewToolResultError("no commit plan produced"), nil
	}
	msg := strategy.Commits[0].Message

	if completer != nil && completer.Enabled() {
		if refined, err := refineMessage(ctx, completer, root, msg); err == nil {
			msg = refined
		}
	}

	jsonData, _ := json.MarshalIndent(msg, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// refineMessage asks the provider to improve the heuristic skeleton
// using the staged diff for context.
func refineMessage(ctx context.Context, completer llm.Completer, root string, skeleton models.CommitMessage) (models.CommitMessage, error) {
	diffText, err := git.NewCollector(root).DiffText(ctx, true)
	if err != nil {
		return skeleton, err
	}

	raw, err := completer.Complete(ctx, llm.CommitMessageSystemPrompt,
		llm.BuildCommitMessagePrompt(skeleton, diffText))
	if err != nil {
		return skeleton, err
	}

	refined, err := llm.ParseCommitMessage(raw)
	if err != nil {
		return skeleton, err
	}
	if refined.Type == "" {
		refined.Type = skeleton.Type
	}
	return refined, nil
}
