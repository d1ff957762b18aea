package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/history"
	"github.com/diffscope/diffscope/internal/models"
)

func sampleStrategy() *models.StagingStrategy {
	return &models.StagingStrategy{
		Strategy:    models.StrategyParallel,
		OverallRisk: models.RiskLow,
		Commits: []models.CommitPlan{
			{
				Boundary: &models.CommitBoundary{
					ID:       "boundary-1",
					Theme:    "testing",
					Priority: models.PriorityMedium,
					Files: []models.ChangeRecord{
						{Path: "pkg/auth/login_test.go", Kind: models.ChangeModified, Insertions: 12, Deletions: 3},
					},
				},
				Message:       models.CommitMessage{Title: "test(auth): add test coverage", Type: "test"},
				Rationale:     "Groups 1 testing file(s)",
				Risk:          models.RiskLow,
				EstimatedTime: "2 minutes",
			},
		},
		Warnings: []string{"uncommitted migration detected"},
	}
}

func TestRendererStrategyTable(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	require.NoError(t, r.Strategy(sampleStrategy()))

	out := buf.String()
	assert.Contains(t, out, "Staging plan:")
	assert.Contains(t, out, "parallel strategy")
	assert.Contains(t, out, "test(auth): add test coverage")
	assert.Contains(t, out, "M pkg/auth/login_test.go (+12/-3)")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "uncommitted migration detected")
}

func TestRendererStrategyJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	require.NoError(t, r.Strategy(sampleStrategy()))

	var decoded models.StagingStrategy
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, models.StrategyParallel, decoded.Strategy)
	require.Len(t, decoded.Commits, 1)
	assert.Equal(t, "test(auth): add test coverage", decoded.Commits[0].Message.Title)
}

func TestRendererHistory(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	runs := []history.Run{
		{
			ID:            "0f5a2b91-3c44-4f7e-9a1d-8e6c2d9b0a11",
			RepoRoot:      "/home/dev/widgets",
			CreatedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			FileCount:     6,
			BoundaryCount: 2,
			Strategy:      "parallel",
			OverallRisk:   "low",
		},
	}
	require.NoError(t, r.History(runs))

	out := buf.String()
	assert.Contains(t, out, "0f5a2b91")
	assert.NotContains(t, out, "0f5a2b91-3c44")
	assert.Contains(t, out, "/home/dev/widgets")
	assert.Contains(t, out, "2026-03-14 09:30")
}

func TestRendererBoundaries(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	boundaries := []*models.CommitBoundary{
		{
			ID:                  "boundary-1",
			Theme:               "configuration changes",
			Reasoning:           "Related configuration changes that should be committed together",
			Priority:            models.PriorityLow,
			EstimatedComplexity: 2.5,
			Dependencies:        []string{"boundary-2"},
			Files: []models.ChangeRecord{
				{Path: "package.json", Kind: models.ChangeModified},
			},
		},
	}
	require.NoError(t, r.Boundaries(boundaries))

	out := buf.String()
	assert.Contains(t, out, "configuration changes")
	assert.Contains(t, out, "complexity 2.5")
	assert.Contains(t, out, "depends on: boundary-2")
}
