package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/models"
)

const sampleDiff = `diff --git a/src/auth/login.ts b/src/auth/login.ts
index 1111111..2222222 100644
--- a/src/auth/login.ts
+++ b/src/auth/login.ts
@@ -10,4 +10,6 @@ export function login() {
 const session = createSession()
-const token = oldToken()
+const token = issueToken()
+audit(token)
 return session
`

const addedFileDiff = `diff --git a/notes.md b/notes.md
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/notes.md
@@ -0,0 +1,2 @@
+# Notes
+first entry
`

func TestParseUnifiedDiff(t *testing.T) {
	t.Run("modified file", func(t *testing.T) {
		records, err := ParseUnifiedDiff(sampleDiff)
		require.NoError(t, err)
		require.Len(t, records, 1)

		rec := records[0]
		assert.Equal(t, "src/auth/login.ts", rec.Path)
		assert.Equal(t, models.ChangeModified, rec.Kind)
		assert.Equal(t, 2, rec.Insertions)
		assert.Equal(t, 1, rec.Deletions)
		require.Len(t, rec.Hunks, 1)

		hunk := rec.Hunks[0]
		assert.Contains(t, hunk.Header, "@@ -10,4 +10,6 @@")
		require.Len(t, hunk.Lines, 5)
		assert.Equal(t, models.LineContext, hunk.Lines[0].Kind)
		assert.Equal(t, models.LineRemoved, hunk.Lines[1].Kind)
		assert.Zero(t, hunk.Lines[1].Number, "removed lines carry no new-file number")
		assert.Equal(t, models.LineAdded, hunk.Lines[2].Kind)
		assert.Equal(t, 11, hunk.Lines[2].Number)
		assert.Equal(t, models.LineAdded, hunk.Lines[3].Kind)
		assert.Equal(t, 12, hunk.Lines[3].Number)
	})

	t.Run("added file", func(t *testing.T) {
		records, err := ParseUnifiedDiff(addedFileDiff)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "notes.md", records[0].Path)
		assert.Equal(t, models.ChangeAdded, records[0].Kind)
		assert.Equal(t, 2, records[0].Insertions)
		assert.Zero(t, records[0].Deletions)
	})

	t.Run("multi-file diff", func(t *testing.T) {
		records, err := ParseUnifiedDiff(sampleDiff + addedFileDiff)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("empty diff", func(t *testing.T) {
		records, err := ParseUnifiedDiff("")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("insertion counts match hunk lines", func(t *testing.T) {
		records, err := ParseUnifiedDiff(sampleDiff)
		require.NoError(t, err)
		rec := records[0]

		added, removed := 0, 0
		for _, h := range rec.Hunks {
			for _, l := range h.Lines {
				switch l.Kind {
				case models.LineAdded:
					added++
				case models.LineRemoved:
					removed++
				}
			}
		}
		assert.Equal(t, rec.Insertions, added)
		assert.Equal(t, rec.Deletions, removed)
	})
}

func TestKindForStatus(t *testing.T) {
	for code, want := range map[string]models.ChangeKind{
		"M ": models.ChangeModified,
		" M": models.ChangeModified,
		"A ": models.ChangeAdded,
		"D ": models.ChangeDeleted,
		"R ": models.ChangeRenamed,
	} {
		assert.Equal(t, want, kindForStatus(code), "status %q", code)
	}
}
