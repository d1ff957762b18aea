package analyzer

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/diffscope/diffscope/internal/models"
)

// Emission thresholds per edge kind. Pairs scoring at or below the
// threshold produce no edge at all.
const (
	importThreshold   = 0.3
	testPairThreshold = 0.7
	similarThreshold  = 0.4
	configThreshold   = 0.5
)

var (
	funcDeclPattern   = regexp.MustCompile(`function\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	funcAssignPattern = regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s+)?(?:function\b|\()`)
)

var configMarkers = []string{"config", "env", "settings", "constants", ".json", ".yml", ".yaml", ".toml"}

// ScorePair computes every relationship edge between two changed files.
// Pure function of its inputs: no I/O, no provider calls.
func ScorePair(a, b models.ChangeRecord) []models.RelationshipEdge {
	var edges []models.RelationshipEdge

	contentA := a.DiffContent()
	contentB := b.DiffContent()

	if s := importStrength(a.Path, contentA, b.Path, contentB); s > importThreshold {
		edges = append(edges, edge(a, b, models.EdgeImport, s))
	}
	if s := testPairStrength(a.Path, b.Path); s > testPairThreshold {
		edges = append(edges, edge(a, b, models.EdgeTestPair, s))
	}
	if s := similarChangeStrength(contentA, contentB); s > similarThreshold {
		edges = append(edges, edge(a, b, models.EdgeSimilarChanges, s))
	}
	if s := configStrength(a.Path, b.Path); s > configThreshold {
		edges = append(edges, edge(a, b, models.EdgeConfigRelated, s))
	}
	return edges
}

// ScoreAll scores every unordered pair of changes and returns the surviving
// edges sorted by descending strength. The sort is stable so ties keep
// pair input order.
func ScoreAll(changes []models.ChangeRecord) []models.RelationshipEdge {
	var edges []models.RelationshipEdge
	for i := 0; i < len(changes); i++ {
		for j := i + 1; j < len(changes); j++ {
			edges = append(edges, ScorePair(changes[i], changes[j])...)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Strength > edges[j].Strength
	})
	return edges
}

func edge(a, b models.ChangeRecord, kind models.EdgeKind, strength float64) models.RelationshipEdge {
	return models.RelationshipEdge{FileA: a.Path, FileB: b.Path, Kind: kind, Strength: strength}
}

// baseName strips directory and extension: "src/auth/login.ts" -> "login".
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// importStrength detects one file's diff referencing the other by name.
// Plain name containment scores 0.6; a relative-import style reference
// ("from './name") adds 0.8, capped at 1.0.
func importStrength(pathA, contentA, pathB, contentB string) float64 {
	baseA, baseB := baseName(pathA), baseName(pathB)
	if baseA == "" || baseB == "" {
		return 0
	}

	strength := 0.0
	if strings.Contains(contentA, baseB) || strings.Contains(contentB, baseA) {
		strength += 0.6
	}
	if strings.Contains(contentA, "from './"+baseB) || strings.Contains(contentB, "from './"+baseA) {
		strength += 0.8
	}
	if strength > 1.0 {
		strength = 1.0
	}
	return strength
}

// isTestPath reports whether a path looks like a test file.
func isTestPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "test") ||
		strings.Contains(lower, "spec") ||
		strings.Contains(lower, "__tests__")
}

// testPairStrength fires only when exactly one side is a test file and the
// test's path names the other file's basename.
func testPairStrength(pathA, pathB string) float64 {
	testA, testB := isTestPath(pathA), isTestPath(pathB)
	if testA == testB {
		return 0
	}

	testPath, srcPath := pathA, pathB
	if testB {
		testPath, srcPath = pathB, pathA
	}
	if base := baseName(srcPath); base != "" && strings.Contains(testPath, base) {
		return 0.9
	}
	return 0
}

// extractFunctionNames pulls a best-effort set of declared or assigned
// function names out of diff content. Misses plenty of real declarations
// (destructured bindings, methods); callers must treat matches as hints.
func extractFunctionNames(content string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, m := range funcDeclPattern.FindAllStringSubmatch(content, -1) {
		names[m[1]] = struct{}{}
	}
	for _, m := range funcAssignPattern.FindAllStringSubmatch(content, -1) {
		names[m[1]] = struct{}{}
	}
	return names
}

// similarChangeStrength measures overlap between the function names each
// diff touches: |intersection| / max(|A|, |B|, 1) scaled by 0.7.
func similarChangeStrength(contentA, contentB string) float64 {
	namesA := extractFunctionNames(contentA)
	namesB := extractFunctionNames(contentB)

	shared := 0
	for name := range namesA {
		if _, ok := namesB[name]; ok {
			shared++
		}
	}

	denom := len(namesA)
	if len(namesB) > denom {
		denom = len(namesB)
	}
	if denom < 1 {
		denom = 1
	}
	return float64(shared) / float64(denom) * 0.7
}

// isConfigPath reports whether the lowercased path carries any
// configuration marker.
func isConfigPath(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range configMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func configStrength(pathA, pathB string) float64 {
	if isConfigPath(pathA) && isConfigPath(pathB) {
		return 0.8
	}
	return 0
}
