// Package analyzer implements the commit-boundary detection and
// staging-strategy engine: pairwise relationship scoring, impact
// categorization, dependency extraction, boundary clustering with an
// optional provider-assisted path, boundary optimization, and staging
// strategy composition. The whole engine operates on an immutable
// snapshot of changes and produces a new value; it never touches the
// working tree.
package analyzer

import (
	"context"

	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

// Engine ties detection and composition together behind one call.
type Engine struct {
	detector *Detector
}

// NewEngine builds an engine. completer may be nil for a fully
// deterministic heuristic-only run.
func NewEngine(completer llm.Completer, gate GateConfig) *Engine {
	return &Engine{detector: NewDetector(completer, gate)}
}

// Analyze detects and optimizes commit boundaries for the changes and
// composes the staging strategy. It cannot fail: provider errors degrade
// to heuristics and empty input yields an empty parallel strategy.
func (e *Engine) Analyze(ctx context.Context, changes []models.ChangeRecord) models.StagingStrategy {
	return Compose(e.detector.Detect(ctx, changes))
}

// Boundaries exposes the optimized boundaries without composing, for
// callers that only need the grouping (for example message suggestion
// for a subset of paths).
func (e *Engine) Boundaries(ctx context.Context, changes []models.ChangeRecord) []models.CommitBoundary {
	return e.detector.Detect(ctx, changes)
}
