package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

func TestComposeEmpty(t *testing.T) {
	s := Compose(nil)

	assert.Equal(t, models.StrategyParallel, s.Strategy)
	assert.Equal(t, models.RiskLow, s.OverallRisk)
	assert.Empty(t, s.Commits)
	assert.Empty(t, s.Warnings)
	assert.NotNil(t, s.Commits)
	assert.NotNil(t, s.Warnings)
}

func TestRiskMonotonicity(t *testing.T) {
	for _, tc := range []struct {
		complexity float64
		want       models.RiskLevel
	}{
		{150, models.RiskLow},
		{200, models.RiskLow},
		{250, models.RiskMedium},
		{500, models.RiskMedium},
		{550, models.RiskHigh},
	} {
		b := boundaryWithFiles("b", "feature development", 2)
		b.EstimatedComplexity = tc.complexity
		s := Compose([]models.CommitBoundary{b})
		require.Len(t, s.Commits, 1)
		assert.Equal(t, tc.want, s.Commits[0].Risk, "complexity %.0f", tc.complexity)
	}
}

func TestStrategySelection(t *testing.T) {
	t.Run("dependencies force sequential even without high risk", func(t *testing.T) {
		a := boundaryWithFiles("a", "x", 2)
		a.Dependencies = []string{"src/elsewhere.go"}
		b := boundaryWithFiles("b", "y", 2)

		s := Compose([]models.CommitBoundary{a, b})

		assert.Equal(t, models.StrategySequential, s.Strategy)
	})

	t.Run("high risk without dependencies is progressive", func(t *testing.T) {
		a := boundaryWithFiles("a", "x", 2)
		a.EstimatedComplexity = 700
		b := boundaryWithFiles("b", "y", 2)

		s := Compose([]models.CommitBoundary{a, b})

		assert.Equal(t, models.StrategyProgressive, s.Strategy)
		assert.Equal(t, models.RiskHigh, s.OverallRisk)
	})

	t.Run("independent low risk is parallel", func(t *testing.T) {
		s := Compose([]models.CommitBoundary{
			boundaryWithFiles("a", "x", 2),
			boundaryWithFiles("b", "y", 2),
		})
		assert.Equal(t, models.StrategyParallel, s.Strategy)
		assert.Equal(t, models.RiskLow, s.OverallRisk)
	})
}

func TestOverallRiskMajority(t *testing.T) {
	medium := boundaryWithFiles("m", "x", 2)
	medium.EstimatedComplexity = 300
	low := boundaryWithFiles("l", "y", 2)

	t.Run("more than half medium", func(t *testing.T) {
		m2 := medium
		m2.ID = "m2"
		s := Compose([]models.CommitBoundary{medium, m2, low})
		assert.Equal(t, models.RiskMedium, s.OverallRisk)
	})

	t.Run("exactly half medium stays low", func(t *testing.T) {
		s := Compose([]models.CommitBoundary{medium, low})
		assert.Equal(t, models.RiskLow, s.OverallRisk)
	})
}

func TestWarnings(t *testing.T) {
	t.Run("many commits", func(t *testing.T) {
		var in []models.CommitBoundary
		for i := 0; i < 6; i++ {
			in = append(in, boundaryWithFiles(string(rune('a'+i)), "x", 2))
		}
		s := Compose(in)
		require.NotEmpty(t, s.Warnings)
		assert.Contains(t, s.Warnings[0], "Large number of commits (6)")
	})

	t.Run("high risk count", func(t *testing.T) {
		a := boundaryWithFiles("a", "x", 2)
		a.EstimatedComplexity = 600
		s := Compose([]models.CommitBoundary{a})
		require.NotEmpty(t, s.Warnings)
		assert.Contains(t, s.Warnings[0], "1 high-risk commits detected")
	})

	t.Run("dependency ordering", func(t *testing.T) {
		a := boundaryWithFiles("a", "x", 2)
		a.Dependencies = []string{"other.go"}
		s := Compose([]models.CommitBoundary{a})
		require.NotEmpty(t, s.Warnings)
		assert.Contains(t, s.Warnings[0], "commit in the listed order")
	})
}

func TestSuggestedMessage(t *testing.T) {
	t.Run("commit type from theme", func(t *testing.T) {
		for _, tc := range []struct {
			theme string
			want  string
		}{
			{"testing improvements", "test"},
			{"documentation updates", "docs"},
			{"configuration changes", "chore"},
			{"ui polish", "feat"},
			{"style cleanup", "feat"},
			{"feature development", "feat"},
		} {
			b := boundaryWithFiles("b", tc.theme, 2)
			s := Compose([]models.CommitBoundary{b})
			assert.Equal(t, tc.want, s.Commits[0].Message.Type, "theme %q", tc.theme)
		}
	})

	t.Run("fix type from file paths", func(t *testing.T) {
		b := boundaryWithFiles("b", "feature development", 1)
		b.Files[0].Path = "src/bugfix/rounding.go"
		s := Compose([]models.CommitBoundary{b})
		assert.Equal(t, "fix", s.Commits[0].Message.Type)
	})

	t.Run("scope from common directory", func(t *testing.T) {
		b := models.CommitBoundary{
			ID:    "b",
			Theme: "user interface",
			Files: []models.ChangeRecord{
				{Path: "src/components/Button.tsx"},
				{Path: "src/components/Modal.tsx"},
			},
		}
		s := Compose([]models.CommitBoundary{b})
		assert.Equal(t, "feat(components): update UI components", s.Commits[0].Message.Title)
	})

	t.Run("no scope for disjoint paths", func(t *testing.T) {
		b := models.CommitBoundary{
			ID:    "b",
			Theme: "authentication",
			Files: []models.ChangeRecord{
				{Path: "src/login.go"},
				{Path: "lib/token.go"},
			},
		}
		s := Compose([]models.CommitBoundary{b})
		assert.Equal(t, "feat: implement authentication system", s.Commits[0].Message.Title)
	})

	t.Run("unknown theme description replaces underscores", func(t *testing.T) {
		b := boundaryWithFiles("b", "dead_code_removal", 2)
		s := Compose([]models.CommitBoundary{b})
		assert.Contains(t, s.Commits[0].Message.Title, "dead code removal")
	})

	t.Run("body only above three files", func(t *testing.T) {
		small := boundaryWithFiles("small", "x", 3)
		large := boundaryWithFiles("large", "x", 4)
		s := Compose([]models.CommitBoundary{small, large})
		assert.Empty(t, s.Commits[0].Message.Body)
		require.NotEmpty(t, s.Commits[1].Message.Body)
		for _, f := range large.Files {
			assert.Contains(t, s.Commits[1].Message.Body, "- "+f.Path)
		}
	})
}

func TestEstimatedTime(t *testing.T) {
	for _, tc := range []struct {
		files int
		want  string
	}{
		{1, "2 minutes"},
		{4, "2 minutes"},
		{5, "3 minutes"},
		{10, "5 minutes"},
	} {
		b := boundaryWithFiles("b", "x", tc.files)
		s := Compose([]models.CommitBoundary{b})
		assert.Equal(t, tc.want, s.Commits[0].EstimatedTime, "%d files", tc.files)
	}
}

func TestRationale(t *testing.T) {
	b := boundaryWithFiles("b", "database", 2)
	s := Compose([]models.CommitBoundary{b})
	assert.Equal(t,
		"This commit groups 2 files related to database. grouped changes",
		s.Commits[0].Rationale)
}
