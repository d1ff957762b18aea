package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

// BoundarySource proposes commit boundaries for a set of changes.
// A source may return an empty slice to signal "no usable proposal";
// errors are advisory and never abort detection.
type BoundarySource interface {
	Propose(ctx context.Context, changes []models.ChangeRecord) ([]models.CommitBoundary, error)
}

// GateConfig controls when a provider proposal is preferred over the
// heuristic one. The defaults preserve long-observed behavior: trust the
// provider when it split the work into multiple boundaries, or when the
// changeset is too large for the simple impact grouping to shine.
type GateConfig struct {
	// MinProposedBoundaries is the boundary count above which a provider
	// proposal is always used.
	MinProposedBoundaries int
	// LargeChangesetFiles is the file count above which even a
	// single-boundary provider proposal is used.
	LargeChangesetFiles int
}

// DefaultGate returns the stock gate thresholds.
func DefaultGate() GateConfig {
	return GateConfig{MinProposedBoundaries: 1, LargeChangesetFiles: 8}
}

// Detector clusters changes into optimized commit boundaries. It composes
// an optional provider-backed source with the deterministic heuristic
// source; the heuristic path is always the fallback.
type Detector struct {
	ai        BoundarySource // may be nil
	heuristic BoundarySource
	gate      GateConfig
	logger    *slog.Logger
}

// NewDetector builds a Detector. completer may be nil to disable the
// provider path entirely.
func NewDetector(completer llm.Completer, gate GateConfig) *Detector {
	var ai BoundarySource
	if completer != nil && completer.Enabled() {
		ai = NewAIBoundarySource(completer)
	}
	return &Detector{
		ai:        ai,
		heuristic: NewHeuristicBoundarySource(completer),
		gate:      gate,
		logger:    slog.Default().With("component", "boundaries"),
	}
}

// Detect partitions changes into optimized boundaries. Empty input
// returns an empty result without touching the provider. Provider
// failures degrade silently to the heuristic path.
func (d *Detector) Detect(ctx context.Context, changes []models.ChangeRecord) []models.CommitBoundary {
	if len(changes) == 0 {
		return nil
	}

	if d.ai != nil {
		proposed, err := d.ai.Propose(ctx, changes)
		if err != nil {
			d.logger.Debug("provider boundary proposal failed, using heuristics", "error", err)
		} else if len(proposed) > 0 &&
			(len(proposed) > d.gate.MinProposedBoundaries || len(changes) > d.gate.LargeChangesetFiles) {
			return Optimize(proposed)
		}
	}

	boundaries, err := d.heuristic.Propose(ctx, changes)
	if err != nil {
		// The heuristic source never errors; keep the contract explicit.
		d.logger.Warn("heuristic boundary detection failed", "error", err)
		return nil
	}
	return Optimize(boundaries)
}

// AIBoundarySource asks the completion provider for a boundary grouping
// as strict JSON and resolves it against the input change set.
type AIBoundarySource struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewAIBoundarySource wraps a completer as a BoundarySource.
func NewAIBoundarySource(completer llm.Completer) *AIBoundarySource {
	return &AIBoundarySource{
		completer: completer,
		logger:    slog.Default().With("component", "ai_boundaries"),
	}
}

// aiBoundary mirrors the JSON shape the provider is asked to answer with.
type aiBoundary struct {
	ID                  string   `json:"id"`
	Files               []string `json:"files"`
	Theme               string   `json:"theme"`
	Reasoning           string   `json:"reasoning"`
	Priority            string   `json:"priority"`
	EstimatedComplexity float64  `json:"estimatedComplexity"`
}

// Propose requests a grouping from the provider. Malformed responses and
// transport failures surface as errors for the caller to swallow;
// boundaries that resolve to zero known files are dropped.
func (s *AIBoundarySource) Propose(ctx context.Context, changes []models.ChangeRecord) ([]models.CommitBoundary, error) {
	raw, err := s.completer.CompleteJSON(ctx, llm.BoundarySystemPrompt, llm.BuildBoundaryPrompt(changes))
	if err != nil {
		return nil, fmt.Errorf("boundary completion: %w", err)
	}

	var parsed struct {
		Boundaries []aiBoundary `json:"boundaries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("boundary response not valid JSON: %w", err)
	}

	byPath := make(map[string]models.ChangeRecord, len(changes))
	for _, c := range changes {
		byPath[c.Path] = c
	}

	var boundaries []models.CommitBoundary
	for i, ab := range parsed.Boundaries {
		var files []models.ChangeRecord
		for _, path := range ab.Files {
			if c, ok := byPath[path]; ok {
				files = append(files, c)
			}
		}
		if len(files) == 0 {
			s.logger.Debug("dropping provider boundary with no resolvable files", "id", ab.ID)
			continue
		}

		id := ab.ID
		if id == "" {
			id = fmt.Sprintf("ai-boundary-%d", i+1)
		}
		priority := models.Priority(ab.Priority)
		if !priority.IsValid() {
			priority = models.PriorityMedium
		}
		theme := ab.Theme
		if theme == "" {
			theme = DetectTheme(files)
		}
		complexity := ab.EstimatedComplexity
		if complexity <= 0 {
			complexity = estimateComplexity(files)
		}

		boundaries = append(boundaries, models.CommitBoundary{
			ID:                  id,
			Files:               files,
			Reasoning:           ab.Reasoning,
			Priority:            priority,
			EstimatedComplexity: complexity,
			Theme:               theme,
		})
	}
	return boundaries, nil
}

// HeuristicBoundarySource clusters changes from impact-type groups, the
// relationship edges and the dependency graph. Fully deterministic.
type HeuristicBoundarySource struct {
	categorizer *Categorizer
}

// NewHeuristicBoundarySource builds the deterministic source. The
// completer only enriches per-file categories and may be nil.
func NewHeuristicBoundarySource(completer llm.Completer) *HeuristicBoundarySource {
	return &HeuristicBoundarySource{categorizer: NewCategorizer(completer)}
}

// impactPriority maps an impact label to a boundary priority.
func impactPriority(impact ImpactType) models.Priority {
	switch impact {
	case ImpactBusinessLogic, ImpactAPI, ImpactDatabase:
		return models.PriorityHigh
	case ImpactUI, ImpactConfiguration:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// estimateComplexity sums changed lines plus a half-point penalty per hunk.
func estimateComplexity(files []models.ChangeRecord) float64 {
	total := 0.0
	for _, f := range files {
		total += float64(f.TotalLines()) + 0.5*float64(len(f.Hunks))
	}
	return total
}

// Propose builds one boundary per impact group in first-occurrence order.
// A file claimed by an earlier boundary is skipped in later groups; files
// only ever categorized as mixed collect into a final catch-all boundary.
func (s *HeuristicBoundarySource) Propose(ctx context.Context, changes []models.ChangeRecord) ([]models.CommitBoundary, error) {
	groups := s.categorizer.Group(ctx, changes)
	// Scored for downstream inspection; clustering itself is gated on the
	// impact groups and the dependency graph.
	_ = ScoreAll(changes)
	graph := BuildDependencyGraph(changes)

	processed := make(map[string]bool, len(changes))
	var boundaries []models.CommitBoundary

	for _, group := range groups {
		if group.Type == ImpactMixed {
			continue
		}
		var files []models.ChangeRecord
		for _, f := range group.Files {
			if !processed[f.Path] {
				processed[f.Path] = true
				files = append(files, f)
			}
		}
		if len(files) == 0 {
			continue
		}

		boundaries = append(boundaries, models.CommitBoundary{
			ID:                  fmt.Sprintf("boundary-%d", len(boundaries)+1),
			Files:               files,
			Reasoning:           fmt.Sprintf("Related %s changes that should be committed together", group.Type),
			Priority:            impactPriority(group.Type),
			EstimatedComplexity: estimateComplexity(files),
			Dependencies:        graph.externalDependencies(files),
			Theme:               DetectTheme(files),
		})
	}

	var leftover []models.ChangeRecord
	for _, c := range changes {
		if !processed[c.Path] {
			leftover = append(leftover, c)
		}
	}
	if len(leftover) > 0 {
		boundaries = append(boundaries, models.CommitBoundary{
			ID:                  fmt.Sprintf("boundary-%d", len(boundaries)+1),
			Files:               leftover,
			Reasoning:           "Mixed changes that don't clearly fit other categories",
			Priority:            models.PriorityLow,
			EstimatedComplexity: estimateComplexity(leftover),
			Theme:               "miscellaneous",
		})
	}
	return boundaries, nil
}
