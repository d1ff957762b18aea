package analyzer

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/diffscope/diffscope/internal/models"
)

// Risk tier thresholds on estimated complexity.
const (
	mediumRiskComplexity = 200
	highRiskComplexity   = 500
)

// themeDescriptions maps known themes to commit message descriptions.
// Unknown themes fall back to the theme text with underscores spaced.
var themeDescriptions = map[string]string{
	"authentication":  "implement authentication system",
	"user interface":  "update UI components",
	"api development": "add API endpoints",
	"testing":         "add test coverage",
	"configuration":   "update configuration",
}

// Compose turns optimized boundaries into a staging strategy. Boundary
// order is preserved; an empty input yields an empty parallel plan.
func Compose(boundaries []models.CommitBoundary) models.StagingStrategy {
	strategy := models.StagingStrategy{
		Strategy:    models.StrategyParallel,
		Commits:     []models.CommitPlan{},
		Warnings:    []string{},
		OverallRisk: models.RiskLow,
	}
	if len(boundaries) == 0 {
		return strategy
	}

	hasDependencies := false
	highRisk := 0
	mediumRisk := 0
	for i := range boundaries {
		b := &boundaries[i]
		plan := buildPlan(b)
		strategy.Commits = append(strategy.Commits, plan)

		if len(b.Dependencies) > 0 {
			hasDependencies = true
		}
		switch plan.Risk {
		case models.RiskHigh:
			highRisk++
		case models.RiskMedium:
			mediumRisk++
		}
	}

	if len(strategy.Commits) > 5 {
		strategy.Warnings = append(strategy.Warnings,
			fmt.Sprintf("Large number of commits (%d) - consider if some can be combined", len(strategy.Commits)))
	}
	if highRisk > 0 {
		strategy.Warnings = append(strategy.Warnings,
			fmt.Sprintf("%d high-risk commits detected - extra review recommended", highRisk))
	}
	if hasDependencies {
		strategy.Warnings = append(strategy.Warnings,
			"Some commits depend on files outside their boundary - commit in the listed order")
	}

	switch {
	case hasDependencies:
		strategy.Strategy = models.StrategySequential
	case highRisk > 0:
		strategy.Strategy = models.StrategyProgressive
	default:
		strategy.Strategy = models.StrategyParallel
	}

	switch {
	case highRisk > 0:
		strategy.OverallRisk = models.RiskHigh
	case mediumRisk*2 > len(strategy.Commits):
		strategy.OverallRisk = models.RiskMedium
	default:
		strategy.OverallRisk = models.RiskLow
	}
	return strategy
}

func buildPlan(b *models.CommitBoundary) models.CommitPlan {
	msg := suggestMessage(b)
	minutes := int(math.Ceil(float64(len(b.Files)) / 2))
	if minutes < 2 {
		minutes = 2
	}
	return models.CommitPlan{
		Boundary:      b,
		Message:       msg,
		Rationale:     fmt.Sprintf("This commit groups %d files related to %s. %s", len(b.Files), b.Theme, b.Reasoning),
		Risk:          riskFor(b.EstimatedComplexity),
		EstimatedTime: fmt.Sprintf("%d minutes", minutes),
	}
}

func riskFor(complexity float64) models.RiskLevel {
	switch {
	case complexity > highRiskComplexity:
		return models.RiskHigh
	case complexity > mediumRiskComplexity:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// commitType infers the conventional-commit type from the theme, falling
// back to a fix check on file paths before defaulting to feat.
func commitType(b *models.CommitBoundary) string {
	theme := strings.ToLower(b.Theme)
	switch {
	case strings.Contains(theme, "test"):
		return "test"
	case strings.Contains(theme, "doc"):
		return "docs"
	case strings.Contains(theme, "config"):
		return "chore"
	case strings.Contains(theme, "ui"), strings.Contains(theme, "style"):
		return "feat"
	}
	for _, f := range b.Files {
		lower := strings.ToLower(f.Path)
		if strings.Contains(lower, "fix") || strings.Contains(lower, "bug") {
			return "fix"
		}
	}
	return "feat"
}

func suggestMessage(b *models.CommitBoundary) models.CommitMessage {
	ctype := commitType(b)

	description, ok := themeDescriptions[b.Theme]
	if !ok {
		description = strings.ReplaceAll(b.Theme, "_", " ")
	}

	title := fmt.Sprintf("%s: %s", ctype, description)
	if scope := commonScope(b.Files); scope != "" {
		title = fmt.Sprintf("%s(%s): %s", ctype, scope, description)
	}

	msg := models.CommitMessage{Title: title, Type: ctype}
	if len(b.Files) > 3 {
		var sb strings.Builder
		for _, f := range b.Files {
			sb.WriteString("- ")
			sb.WriteString(f.Path)
			sb.WriteString("\n")
		}
		msg.Body = strings.TrimRight(sb.String(), "\n")
	}
	return msg
}

// commonScope returns the last segment of the longest common directory
// prefix across the boundary's files, or "" when the files share no
// directory.
func commonScope(files []models.ChangeRecord) string {
	if len(files) == 0 {
		return ""
	}

	common := splitDir(files[0].Path)
	for _, f := range files[1:] {
		segs := splitDir(f.Path)
		if len(segs) < len(common) {
			common = common[:len(segs)]
		}
		for i := range common {
			if common[i] != segs[i] {
				common = common[:i]
				break
			}
		}
		if len(common) == 0 {
			return ""
		}
	}
	if len(common) == 0 {
		return ""
	}
	return common[len(common)-1]
}

func splitDir(p string) []string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}
