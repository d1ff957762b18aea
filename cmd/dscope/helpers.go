package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/diffscope/diffscope/internal/analyzer"
	"github.com/diffscope/diffscope/internal/git"
	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

// gateFromConfig maps the analysis knobs onto the engine gate.
func gateFromConfig() analyzer.GateConfig {
	return analyzer.GateConfig{
		MinProposedBoundaries: cfg.Analysis.AIGateBoundaries,
		LargeChangesetFiles:   cfg.Analysis.AIGateFiles,
	}
}

// newCompleter builds the provider client, or returns nil when AI is
// disabled for this invocation. Callers own Close on the returned client.
func newCompleter(ctx context.Context, noAI bool) (*llm.Client, error) {
	if noAI {
		return nil, nil
	}
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("AI provider unavailable, falling back to heuristics")
		return nil, nil
	}
	return client, nil
}

// newEngine wires the completer into the boundary engine. The returned
// close func is always safe to defer.
func newEngine(ctx context.Context, noAI bool) (*analyzer.Engine, func(), error) {
	client, err := newCompleter(ctx, noAI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {}
	var completer llm.Completer
	if client != nil {
		completer = client
		closeFn = func() { _ = client.Close() }
	}
	return analyzer.NewEngine(completer, gateFromConfig()), closeFn, nil
}

// collectChanges resolves the repository root and gathers change records.
func collectChanges(ctx context.Context, staged bool) (string, []models.ChangeRecord, error) {
	root, err := git.FindRoot(ctx, ".")
	if err != nil {
		return "", nil, fmt.Errorf("not inside a git repository: %w", err)
	}

	collector := git.NewCollector(root)
	var changes []models.ChangeRecord
	if staged {
		changes, err = collector.StagedChanges(ctx)
	} else {
		changes, err = collector.WorkingTreeChanges(ctx)
	}
	if err != nil {
		return "", nil, err
	}
	return root, changes, nil
}

// askYesNo prompts on stderr and reads a y/N answer from stdin.
func askYesNo(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
