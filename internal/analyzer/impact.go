package analyzer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diffscope/diffscope/internal/llm"
	"github.com/diffscope/diffscope/internal/models"
)

// ImpactType labels the area of the codebase a change touches.
type ImpactType string

const (
	ImpactTests         ImpactType = "tests"
	ImpactDocumentation ImpactType = "documentation"
	ImpactConfiguration ImpactType = "configuration"
	ImpactUI            ImpactType = "ui"
	ImpactBusinessLogic ImpactType = "business_logic"
	ImpactDatabase      ImpactType = "database"
	ImpactAPI           ImpactType = "api"
	ImpactMixed         ImpactType = "mixed"
)

// allowedAICategories is the vocabulary the provider may answer with.
// Anything outside it is dropped.
var allowedAICategories = map[string]ImpactType{
	"api":            ImpactAPI,
	"ui":             ImpactUI,
	"business_logic": ImpactBusinessLogic,
	"database":       ImpactDatabase,
	"tests":          ImpactTests,
	"configuration":  ImpactConfiguration,
	"documentation":  ImpactDocumentation,
	"build":          "build",
	"utilities":      "utilities",
	"security":       "security",
	"performance":    "performance",
}

// Categorize assigns the primary impact label for one change using
// path heuristics. First match wins; every file gets exactly one label.
func Categorize(change models.ChangeRecord) ImpactType {
	lower := strings.ToLower(change.Path)

	switch {
	case isTestPath(lower):
		return ImpactTests
	case strings.HasSuffix(lower, ".md"), strings.Contains(lower, "readme"), strings.Contains(lower, "docs/"):
		return ImpactDocumentation
	case strings.Contains(lower, "config"), strings.Contains(lower, ".json"), strings.Contains(lower, ".yml"):
		return ImpactConfiguration
	case strings.Contains(lower, ".css"), strings.Contains(lower, ".scss"), strings.Contains(lower, "style"), strings.Contains(lower, "component"):
		return ImpactUI
	case strings.Contains(lower, "service"), strings.Contains(lower, "controller"), strings.Contains(lower, "model"):
		return ImpactBusinessLogic
	case strings.Contains(lower, "migration"), strings.Contains(lower, "schema"), strings.Contains(lower, "database"):
		return ImpactDatabase
	case strings.Contains(lower, "route"), strings.Contains(lower, "api"), strings.Contains(lower, "endpoint"):
		return ImpactAPI
	default:
		return ImpactMixed
	}
}

// ImpactGroup is one impact label with the changes assigned to it, in
// input order.
type ImpactGroup struct {
	Type  ImpactType
	Files []models.ChangeRecord
}

// Categorizer groups changes by impact label, optionally enriched by
// provider-suggested categories. A nil or disabled completer means the
// heuristic path only.
type Categorizer struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewCategorizer builds a Categorizer. completer may be nil.
func NewCategorizer(completer llm.Completer) *Categorizer {
	return &Categorizer{
		completer: completer,
		logger:    slog.Default().With("component", "impact"),
	}
}

// Group partitions changes into impact groups. Group order follows the
// first occurrence of each label in the input; files keep input order
// within a group. With a working completer each file may join extra
// groups beyond its heuristic one; provider failure silently yields the
// heuristic grouping.
func (c *Categorizer) Group(ctx context.Context, changes []models.ChangeRecord) []ImpactGroup {
	perFile := make([][]ImpactType, len(changes))
	for i, change := range changes {
		perFile[i] = []ImpactType{Categorize(change)}
	}

	if c.completer != nil && c.completer.Enabled() {
		c.enrichWithProvider(ctx, changes, perFile)
	}

	index := make(map[ImpactType]int)
	var groups []ImpactGroup
	for i, change := range changes {
		for _, label := range perFile[i] {
			at, ok := index[label]
			if !ok {
				at = len(groups)
				index[label] = at
				groups = append(groups, ImpactGroup{Type: label})
			}
			groups[at].Files = append(groups[at].Files, change)
		}
	}
	return groups
}

// enrichWithProvider asks the provider for extra categories per file.
// Results land in index-stable slots so output order matches sequential
// processing no matter how the requests interleave.
func (c *Categorizer) enrichWithProvider(ctx context.Context, changes []models.ChangeRecord, perFile [][]ImpactType) {
	extra := make([][]ImpactType, len(changes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range changes {
		g.Go(func() error {
			extra[i] = c.suggestCategories(gctx, changes[i])
			return nil
		})
	}
	g.Wait() // workers never return errors, failures degrade to no categories

	for i := range changes {
		for _, label := range extra[i] {
			if !containsImpact(perFile[i], label) {
				perFile[i] = append(perFile[i], label)
			}
		}
	}
}

// suggestCategories runs one provider round-trip for a single file. Any
// failure, including unparseable JSON, is logged and swallowed.
func (c *Categorizer) suggestCategories(ctx context.Context, change models.ChangeRecord) []ImpactType {
	raw, err := c.completer.CompleteJSON(ctx, llm.CategorySystemPrompt, llm.BuildCategoryPrompt(change.Path, change.Insertions, change.Deletions))
	if err != nil {
		c.logger.Debug("category suggestion failed", "path", change.Path, "error", err)
		return nil
	}

	var parsed struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.logger.Debug("category response not valid JSON", "path", change.Path, "error", err)
		return nil
	}

	var labels []ImpactType
	for _, cat := range parsed.Categories {
		if label, ok := allowedAICategories[strings.ToLower(strings.TrimSpace(cat))]; ok {
			labels = append(labels, label)
		}
	}
	return labels
}

func containsImpact(labels []ImpactType, label ImpactType) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
