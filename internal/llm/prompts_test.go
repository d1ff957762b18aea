package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

func TestBuildBoundaryPrompt(t *testing.T) {
	changes := []models.ChangeRecord{
		{Path: "src/auth/login.ts", Kind: models.ChangeModified, Insertions: 10, Deletions: 2},
		{Path: "src/auth/login.test.ts", Kind: models.ChangeAdded, Insertions: 40},
	}

	prompt := BuildBoundaryPrompt(changes)
	assert.Contains(t, prompt, "2 files, +50/-2 lines")
	assert.Contains(t, prompt, "src/auth/login.ts (modified, +10/-2, 0 hunks)")
	assert.Contains(t, prompt, "src/auth/login.test.ts (added, +40/-0, 0 hunks)")
}

func TestParseCommitMessage(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		title string
		typ   string
		body  string
	}{
		{
			name:  "title only",
			raw:   "fix(auth): handle expired tokens\n",
			title: "fix(auth): handle expired tokens",
			typ:   "fix",
		},
		{
			name:  "title and body",
			raw:   "feat: add pagination\n\nSplits list queries into pages of 50.",
			title: "feat: add pagination",
			typ:   "feat",
			body:  "Splits list queries into pages of 50.",
		},
		{
			name:  "unknown prefix keeps type empty",
			raw:   "update stuff",
			title: "update stuff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseCommitMessage(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.title, msg.Title)
			assert.Equal(t, tt.typ, msg.Type)
			assert.Equal(t, tt.body, msg.Body)
		})
	}
}

func TestParseCommitMessageEmpty(t *testing.T) {
	_, err := ParseCommitMessage("   \n")
	assert.Error(t, err)
}

func TestBuildPRPromptIncludesStrategy(t *testing.T) {
	strategy := models.StagingStrategy{
		Commits: []models.CommitPlan{
			{
				Boundary: &models.CommitBoundary{Theme: "testing", Files: make([]models.ChangeRecord, 3)},
				Risk:     models.RiskLow,
			},
		},
	}

	prompt := BuildPRPrompt("feature/auth", "main", []string{"abc fix login"}, strategy)
	assert.True(t, strings.HasPrefix(prompt, "Branch feature/auth targets main."))
	assert.Contains(t, prompt, "- abc fix login")
	assert.Contains(t, prompt, "testing (3 files, low risk)")
}
