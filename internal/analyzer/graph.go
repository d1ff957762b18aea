package analyzer

import (
	"github.com/diffscope/diffscope/internal/models"

	"strings"
)

// DependencyGraph maps each changed path to the other changed paths its
// diff content textually references. Directed and possibly cyclic; it is
// only consumed to compute boundary-external dependencies, so no cycle
// detection or ordering is needed.
type DependencyGraph map[string][]string

// BuildDependencyGraph scans every file's diff for the extension-stripped
// basenames of the other changed files. Self references are excluded.
// Adjacency lists follow input order, keeping the graph deterministic.
func BuildDependencyGraph(changes []models.ChangeRecord) DependencyGraph {
	graph := make(DependencyGraph, len(changes))
	for i, change := range changes {
		content := change.DiffContent()
		var deps []string
		for j, other := range changes {
			if i == j {
				continue
			}
			base := baseName(other.Path)
			if base != "" && strings.Contains(content, base) {
				deps = append(deps, other.Path)
			}
		}
		graph[change.Path] = deps
	}
	return graph
}

// externalDependencies returns the graph entries for the given files that
// point outside the file set, deduplicated, in file-then-reference order.
func (g DependencyGraph) externalDependencies(files []models.ChangeRecord) []string {
	inSet := make(map[string]bool, len(files))
	for _, f := range files {
		inSet[f.Path] = true
	}

	seen := make(map[string]bool)
	var deps []string
	for _, f := range files {
		for _, dep := range g[f.Path] {
			if inSet[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
	}
	return deps
}
