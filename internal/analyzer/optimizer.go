package analyzer

import (
	"fmt"

	"github.com/diffscope/diffscope/internal/models"
)

const (
	// splitFileLimit is the boundary size above which a split happens.
	splitFileLimit = 8
	// splitChunkSize is the maximum files per chunk after a split.
	splitChunkSize = 4
	// mergeTargetLimit caps how large a merge target may already be.
	mergeTargetLimit = 4
)

// Optimize post-processes boundaries in input order: oversized boundaries
// split into consecutive chunks, singletons fold into an earlier boundary
// with the same theme, everything else passes through. The file partition
// is preserved exactly and the result is deterministic for a given input.
// Inputs are never mutated; merges produce fresh boundary values.
func Optimize(boundaries []models.CommitBoundary) []models.CommitBoundary {
	var out []models.CommitBoundary
	for _, b := range boundaries {
		switch {
		case len(b.Files) > splitFileLimit:
			out = append(out, splitBoundary(b)...)
		case len(b.Files) == 1:
			if at := findMergeTarget(out, b.Theme); at >= 0 {
				out[at] = mergeBoundaries(out[at], b)
			} else {
				out = append(out, b)
			}
		default:
			out = append(out, b)
		}
	}
	return out
}

// splitBoundary cuts an oversized boundary into chunks of at most
// splitChunkSize files, preserving file order. Each chunk inherits the
// parent's priority, theme and dependencies; complexity is recomputed
// for just the chunk.
func splitBoundary(b models.CommitBoundary) []models.CommitBoundary {
	total := (len(b.Files) + splitChunkSize - 1) / splitChunkSize
	parts := make([]models.CommitBoundary, 0, total)
	for i := 0; i < len(b.Files); i += splitChunkSize {
		end := i + splitChunkSize
		if end > len(b.Files) {
			end = len(b.Files)
		}
		chunk := b.Files[i:end:end]
		n := len(parts) + 1
		parts = append(parts, models.CommitBoundary{
			ID:                  fmt.Sprintf("%s-part%d", b.ID, n),
			Files:               chunk,
			Reasoning:           fmt.Sprintf("%s (part %d of %d)", b.Reasoning, n, total),
			Priority:            b.Priority,
			EstimatedComplexity: estimateComplexity(chunk),
			Dependencies:        b.Dependencies,
			Theme:               b.Theme,
		})
	}
	return parts
}

// findMergeTarget scans already-optimized boundaries in order for the
// first one with an identical theme and room to grow. Returns -1 when
// none qualifies.
func findMergeTarget(out []models.CommitBoundary, theme string) int {
	for i, b := range out {
		if b.Theme == theme && len(b.Files) < mergeTargetLimit {
			return i
		}
	}
	return -1
}

// mergeBoundaries folds src into dst as a new value, leaving both inputs
// untouched.
func mergeBoundaries(dst, src models.CommitBoundary) models.CommitBoundary {
	merged := dst
	merged.Files = append(append([]models.ChangeRecord{}, dst.Files...), src.Files...)
	merged.Reasoning = dst.Reasoning + " + " + src.Reasoning
	merged.EstimatedComplexity = dst.EstimatedComplexity + src.EstimatedComplexity
	return merged
}
