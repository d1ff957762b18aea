package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

func boundaryWithFiles(id, theme string, n int) models.CommitBoundary {
	files := make([]models.ChangeRecord, n)
	for i := range files {
		files[i] = models.ChangeRecord{
			Path:       fmt.Sprintf("src/%s/file%d.go", id, i),
			Kind:       models.ChangeModified,
			Insertions: 10,
			Deletions:  2,
		}
	}
	return models.CommitBoundary{
		ID:                  id,
		Files:               files,
		Reasoning:           "grouped changes",
		Priority:            models.PriorityMedium,
		EstimatedComplexity: estimateComplexity(files),
		Theme:               theme,
	}
}

// collectPaths flattens the optimized boundaries into a path multiset.
func collectPaths(boundaries []models.CommitBoundary) map[string]int {
	seen := make(map[string]int)
	for _, b := range boundaries {
		for _, f := range b.Files {
			seen[f.Path]++
		}
	}
	return seen
}

func TestOptimizeSplit(t *testing.T) {
	t.Run("nine files split into 4/4/1", func(t *testing.T) {
		in := []models.CommitBoundary{boundaryWithFiles("big", "feature development", 9)}

		out := Optimize(in)

		require.Len(t, out, 3)
		assert.Len(t, out[0].Files, 4)
		assert.Len(t, out[1].Files, 4)
		assert.Len(t, out[2].Files, 1)
		assert.Equal(t, "big-part1", out[0].ID)
		assert.Equal(t, "big-part2", out[1].ID)
		assert.Equal(t, "big-part3", out[2].ID)
		assert.Contains(t, out[0].Reasoning, "(part 1 of 3)")
		assert.Contains(t, out[2].Reasoning, "(part 3 of 3)")

		for _, part := range out {
			assert.Equal(t, in[0].Priority, part.Priority)
			assert.Equal(t, in[0].Theme, part.Theme)
			assert.Equal(t, estimateComplexity(part.Files), part.EstimatedComplexity,
				"complexity recomputed per chunk")
		}
	})

	t.Run("eight files never split", func(t *testing.T) {
		in := []models.CommitBoundary{boundaryWithFiles("ok", "feature development", 8)}
		out := Optimize(in)
		require.Len(t, out, 1)
		assert.Len(t, out[0].Files, 8)
		assert.Equal(t, "ok", out[0].ID)
	})

	t.Run("chunks preserve file order", func(t *testing.T) {
		in := []models.CommitBoundary{boundaryWithFiles("big", "x", 9)}
		out := Optimize(in)
		i := 0
		for _, part := range out {
			for _, f := range part.Files {
				assert.Equal(t, in[0].Files[i].Path, f.Path)
				i++
			}
		}
	})
}

func TestOptimizeMerge(t *testing.T) {
	t.Run("singletons with matching theme merge", func(t *testing.T) {
		a := boundaryWithFiles("a", "testing improvements", 1)
		b := boundaryWithFiles("b", "testing improvements", 1)

		out := Optimize([]models.CommitBoundary{a, b})

		require.Len(t, out, 1)
		assert.Len(t, out[0].Files, 2)
		assert.Equal(t, "a", out[0].ID, "merge target keeps its identity")
		assert.Equal(t, "grouped changes + grouped changes", out[0].Reasoning)
		assert.InDelta(t, a.EstimatedComplexity+b.EstimatedComplexity, out[0].EstimatedComplexity, 1e-9)
	})

	t.Run("different themes never merge", func(t *testing.T) {
		a := boundaryWithFiles("a", "testing improvements", 1)
		b := boundaryWithFiles("b", "documentation updates", 1)
		out := Optimize([]models.CommitBoundary{a, b})
		assert.Len(t, out, 2)
	})

	t.Run("full merge target is skipped", func(t *testing.T) {
		full := boundaryWithFiles("full", "same", 4)
		single := boundaryWithFiles("single", "same", 1)
		out := Optimize([]models.CommitBoundary{full, single})
		assert.Len(t, out, 2, "target with four files has no room")
	})

	t.Run("merge does not mutate inputs", func(t *testing.T) {
		a := boundaryWithFiles("a", "same", 1)
		b := boundaryWithFiles("b", "same", 1)
		in := []models.CommitBoundary{a, b}

		Optimize(in)

		assert.Len(t, in[0].Files, 1)
		assert.Equal(t, "grouped changes", in[0].Reasoning)
	})
}

func TestOptimizePartitionInvariant(t *testing.T) {
	in := []models.CommitBoundary{
		boundaryWithFiles("big", "feature development", 11),
		boundaryWithFiles("solo1", "feature development", 1),
		boundaryWithFiles("mid", "database", 3),
		boundaryWithFiles("solo2", "database", 1),
	}

	want := collectPaths(in)
	out := Optimize(in)
	got := collectPaths(out)

	assert.Equal(t, want, got, "every input file appears exactly once in the output")
}

func TestOptimizeDeterministic(t *testing.T) {
	in := []models.CommitBoundary{
		boundaryWithFiles("big", "a", 9),
		boundaryWithFiles("s1", "a", 1),
		boundaryWithFiles("s2", "b", 1),
	}
	first := Optimize(in)
	second := Optimize(in)
	assert.Equal(t, first, second)
}
