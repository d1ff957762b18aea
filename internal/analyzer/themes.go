package analyzer

import (
	"strings"

	"github.com/diffscope/diffscope/internal/models"
)

// Theme labels used for boundary naming. The candidate list is ordered:
// when scores tie, the earlier entry wins, which keeps theme detection
// deterministic without depending on map iteration order.
const (
	ThemeAuthentication = "authentication"
	ThemeUserInterface  = "user interface"
	ThemeBackend        = "backend development"
	ThemeDatabase       = "database"
	ThemeSecurity       = "security"
	ThemePerformance    = "performance"
	ThemeBugFixes       = "bug fixes"
	ThemeFeatureWork    = "feature development"

	ThemeDocumentation = "documentation updates"
	ThemeTesting       = "testing improvements"
	ThemeConfiguration = "configuration changes"
	ThemeGeneric       = "code improvements"
)

// themeCandidate pairs a theme with the path substrings that vote for it.
type themeCandidate struct {
	name     string
	keywords []string
	weight   float64
}

// Ordered candidate table for source files. Doc, test and config files
// are bucketed separately and contribute fixed bonuses below.
var sourceThemes = []themeCandidate{
	{ThemeAuthentication, []string{"auth", "login", "session", "token", "password"}, 2.0},
	{ThemeUserInterface, []string{"component", "view", "style", "css", "button", "modal", "page"}, 2.0},
	{ThemeBackend, []string{"service", "controller", "handler", "server", "middleware"}, 2.0},
	{ThemeDatabase, []string{"migration", "schema", "database", "query", "sql"}, 2.0},
	{ThemeSecurity, []string{"security", "crypto", "sanitize", "permission"}, 2.0},
	{ThemePerformance, []string{"cache", "optimiz", "perf", "lazy"}, 2.0},
}

// Fixed bonuses contributed per non-source file.
const (
	docBonus    = 1.0
	testBonus   = 1.0
	configBonus = 0.8
	bugWeight   = 1.5
	genericHit  = 0.5
)

// themeOrder is the full deterministic scan order when picking the max.
var themeOrder = []string{
	ThemeAuthentication, ThemeUserInterface, ThemeBackend, ThemeDatabase,
	ThemeSecurity, ThemePerformance, ThemeBugFixes, ThemeFeatureWork,
	ThemeDocumentation, ThemeTesting, ThemeConfiguration,
}

// IsLikelyBugFix flags small changes whose path hints at a fix. Used only
// as a theme-scoring signal, not as an impact label.
func IsLikelyBugFix(change models.ChangeRecord) bool {
	if change.TotalLines() >= 50 {
		return false
	}
	lower := strings.ToLower(change.Path)
	for _, marker := range []string{"fix", "bug", "patch", "hotfix"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DetectTheme picks the dominant theme for a set of files. Source files
// vote for candidate themes through path substrings; documentation, test
// and configuration files add fixed bonuses to their own buckets. Ties
// resolve to the earlier candidate in the fixed scan order.
func DetectTheme(files []models.ChangeRecord) string {
	scores := make(map[string]float64)

	var docs, tests, configs, sources int
	for _, f := range files {
		lower := strings.ToLower(f.Path)
		switch {
		case isTestPath(lower):
			tests++
			scores[ThemeTesting] += testBonus
		case strings.HasSuffix(lower, ".md") || strings.Contains(lower, "readme") || strings.Contains(lower, "docs/"):
			docs++
			scores[ThemeDocumentation] += docBonus
		case isConfigPath(lower):
			configs++
			scores[ThemeConfiguration] += configBonus
		default:
			sources++
			matched := false
			for _, cand := range sourceThemes {
				for _, kw := range cand.keywords {
					if strings.Contains(lower, kw) {
						scores[cand.name] += cand.weight
						matched = true
						break
					}
				}
			}
			if IsLikelyBugFix(f) {
				scores[ThemeBugFixes] += bugWeight
				matched = true
			}
			if !matched {
				scores[ThemeFeatureWork] += genericHit
			}
		}
	}

	if len(scores) == 0 {
		// Nothing scored at all: fall back to a type-uniform label.
		switch {
		case docs > 0 && tests == 0 && configs == 0:
			return ThemeDocumentation
		case tests > 0 && docs == 0 && configs == 0:
			return ThemeTesting
		case configs > 0 && docs == 0 && tests == 0:
			return ThemeConfiguration
		default:
			return ThemeGeneric
		}
	}

	best := ""
	bestScore := 0.0
	for _, name := range themeOrder {
		if s, ok := scores[name]; ok && s > bestScore {
			best = name
			bestScore = s
		}
	}
	if best == "" {
		return ThemeGeneric
	}
	return best
}
