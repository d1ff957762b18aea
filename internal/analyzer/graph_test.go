package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

func TestBuildDependencyGraph(t *testing.T) {
	changes := []models.ChangeRecord{
		changeWithLines("src/app.ts", "import { helper } from './util'"),
		changeWithLines("src/util.ts", "export const helper = 1"),
		changeWithLines("src/lonely.ts", "nothing shared here"),
	}

	graph := BuildDependencyGraph(changes)

	assert.Equal(t, []string{"src/util.ts"}, graph["src/app.ts"])
	assert.Empty(t, graph["src/util.ts"])
	assert.Empty(t, graph["src/lonely.ts"])
}

func TestBuildDependencyGraphExcludesSelf(t *testing.T) {
	changes := []models.ChangeRecord{
		changeWithLines("src/util.ts", "util calls util again"),
	}
	graph := BuildDependencyGraph(changes)
	assert.Empty(t, graph["src/util.ts"])
}

func TestExternalDependencies(t *testing.T) {
	changes := []models.ChangeRecord{
		changeWithLines("src/a.ts", "uses b and c"),
		changeWithLines("src/b.ts", "plain"),
		changeWithLines("src/c.ts", "plain"),
	}
	graph := BuildDependencyGraph(changes)
	require.Equal(t, []string{"src/b.ts", "src/c.ts"}, graph["src/a.ts"])

	t.Run("in-boundary references filtered out", func(t *testing.T) {
		deps := graph.externalDependencies(changes[:2]) // a and b together
		assert.Equal(t, []string{"src/c.ts"}, deps)
	})

	t.Run("no references means no dependencies", func(t *testing.T) {
		deps := graph.externalDependencies(changes[1:2])
		assert.Empty(t, deps)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		all := DependencyGraph{
			"x": {"z"},
			"y": {"z"},
		}
		deps := all.externalDependencies([]models.ChangeRecord{{Path: "x"}, {Path: "y"}})
		assert.Equal(t, []string{"z"}, deps)
	})
}
