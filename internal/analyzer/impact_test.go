package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

// fakeCompleter implements llm.Completer for tests.
type fakeCompleter struct {
	response string
	err      error
	enabled  bool
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeCompleter) Enabled() bool { return f.enabled }

func TestCategorize(t *testing.T) {
	cases := []struct {
		path string
		want ImpactType
	}{
		{"src/auth/login.test.ts", ImpactTests},
		{"docs/setup.md", ImpactDocumentation},
		{"README", ImpactDocumentation},
		{"package.json", ImpactConfiguration},
		{"src/components/Button.tsx", ImpactUI},
		{"styles/main.css", ImpactUI},
		{"src/user/service.go", ImpactBusinessLogic},
		{"db/migration_001.sql", ImpactDatabase},
		{"server/routes.go", ImpactAPI},
		{"src/auth/login.ts", ImpactMixed},
		{"", ImpactMixed},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s->%s", tc.path, tc.want), func(t *testing.T) {
			got := Categorize(models.ChangeRecord{Path: tc.path})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGroupOrdering(t *testing.T) {
	changes := []models.ChangeRecord{
		{Path: "src/widgets/component.tsx"},
		{Path: "docs/readme.md"},
		{Path: "src/other/component2.tsx"},
	}

	groups := NewCategorizer(nil).Group(context.Background(), changes)

	require.Len(t, groups, 2)
	assert.Equal(t, ImpactUI, groups[0].Type, "first-occurring label comes first")
	assert.Equal(t, ImpactDocumentation, groups[1].Type)
	require.Len(t, groups[0].Files, 2)
	assert.Equal(t, "src/widgets/component.tsx", groups[0].Files[0].Path)
	assert.Equal(t, "src/other/component2.tsx", groups[0].Files[1].Path)
}

func TestGroupWithProviderCategories(t *testing.T) {
	t.Run("valid extra categories union with heuristic label", func(t *testing.T) {
		fake := &fakeCompleter{enabled: true, response: `{"categories":["security","api"]}`}
		changes := []models.ChangeRecord{{Path: "src/auth/login.ts"}}

		groups := NewCategorizer(fake).Group(context.Background(), changes)

		var labels []ImpactType
		for _, g := range groups {
			labels = append(labels, g.Type)
		}
		assert.Contains(t, labels, ImpactMixed, "heuristic label kept")
		assert.Contains(t, labels, ImpactType("security"))
		assert.Contains(t, labels, ImpactAPI)
	})

	t.Run("provider failure degrades to heuristic grouping", func(t *testing.T) {
		fake := &fakeCompleter{enabled: true, err: fmt.Errorf("network down")}
		changes := []models.ChangeRecord{{Path: "src/auth/login.ts"}}

		groups := NewCategorizer(fake).Group(context.Background(), changes)

		require.Len(t, groups, 1)
		assert.Equal(t, ImpactMixed, groups[0].Type)
	})

	t.Run("malformed JSON is swallowed", func(t *testing.T) {
		fake := &fakeCompleter{enabled: true, response: "not json"}
		changes := []models.ChangeRecord{{Path: "docs/guide.md"}}

		groups := NewCategorizer(fake).Group(context.Background(), changes)

		require.Len(t, groups, 1)
		assert.Equal(t, ImpactDocumentation, groups[0].Type)
	})

	t.Run("unknown categories are dropped", func(t *testing.T) {
		fake := &fakeCompleter{enabled: true, response: `{"categories":["nonsense","ui"]}`}
		changes := []models.ChangeRecord{{Path: "src/main.ts"}}

		groups := NewCategorizer(fake).Group(context.Background(), changes)

		var labels []ImpactType
		for _, g := range groups {
			labels = append(labels, g.Type)
		}
		assert.Contains(t, labels, ImpactUI)
		assert.NotContains(t, labels, ImpactType("nonsense"))
	})

	t.Run("disabled completer is never called", func(t *testing.T) {
		fake := &fakeCompleter{enabled: false}
		NewCategorizer(fake).Group(context.Background(), []models.ChangeRecord{{Path: "a.ts"}})
		assert.Zero(t, fake.calls)
	})
}
