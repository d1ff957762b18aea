package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/diffscope/diffscope/internal/models"
)

// Collector builds ChangeRecords from a repository's working tree or
// index.
type Collector struct {
	root   string
	logger *slog.Logger
}

// NewCollector creates a collector rooted at the repository root.
func NewCollector(root string) *Collector {
	return &Collector{
		root:   root,
		logger: slog.Default().With("component", "git"),
	}
}

// WorkingTreeChanges returns one ChangeRecord per changed file in the
// working tree, including untracked files.
func (c *Collector) WorkingTreeChanges(ctx context.Context) ([]models.ChangeRecord, error) {
	return c.collect(ctx, false)
}

// StagedChanges returns one ChangeRecord per file in the index.
func (c *Collector) StagedChanges(ctx context.Context) ([]models.ChangeRecord, error) {
	return c.collect(ctx, true)
}

// DiffText returns the raw unified diff, for prompt building.
func (c *Collector) DiffText(ctx context.Context, staged bool) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	return runGit(ctx, c.root, args...)
}

func (c *Collector) collect(ctx context.Context, staged bool) ([]models.ChangeRecord, error) {
	kinds, untracked, err := c.statusKinds(ctx)
	if err != nil {
		return nil, err
	}

	diffText, err := c.DiffText(ctx, staged)
	if err != nil {
		return nil, err
	}
	records, err := ParseUnifiedDiff(diffText)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	counts, err := c.numstat(ctx, staged)
	if err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		if kind, ok := kinds[r.Path]; ok {
			r.Kind = kind
		}
		// Prefer numstat counts when available; they agree with the hunks
		// for text files and cover binary files the parser skips.
		if nc, ok := counts[r.Path]; ok {
			r.Insertions = nc.insertions
			r.Deletions = nc.deletions
		}
	}

	if !staged {
		for _, path := range untracked {
			rec, err := c.untrackedRecord(path)
			if err != nil {
				c.logger.Debug("skipping unreadable untracked file", "path", path, "error", err)
				continue
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// statusKinds parses `git status --porcelain` into change kinds plus the
// list of untracked paths.
func (c *Collector) statusKinds(ctx context.Context) (map[string]models.ChangeKind, []string, error) {
	out, err := runGit(ctx, c.root, "status", "--porcelain")
	if err != nil {
		return nil, nil, err
	}

	kinds := make(map[string]models.ChangeKind)
	var untracked []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code, path := line[:2], strings.TrimSpace(line[3:])
		if code == "??" {
			untracked = append(untracked, path)
			continue
		}
		// Renames come through as "old -> new"; record the new path.
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		kinds[path] = kindForStatus(code)
	}
	return kinds, untracked, nil
}

func kindForStatus(code string) models.ChangeKind {
	switch {
	case strings.ContainsAny(code, "R"):
		return models.ChangeRenamed
	case strings.ContainsAny(code, "A"):
		return models.ChangeAdded
	case strings.ContainsAny(code, "D"):
		return models.ChangeDeleted
	default:
		return models.ChangeModified
	}
}

type lineCounts struct {
	insertions int
	deletions  int
}

// numstat parses `git diff --numstat`. Binary files report "-" and count
// as zero.
func (c *Collector) numstat(ctx context.Context, staged bool) (map[string]lineCounts, error) {
	args := []string{"diff", "--numstat"}
	if staged {
		args = append(args, "--cached")
	}
	out, err := runGit(ctx, c.root, args...)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]lineCounts)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		ins, _ := strconv.Atoi(fields[0])
		del, _ := strconv.Atoi(fields[1])
		counts[fields[2]] = lineCounts{insertions: ins, deletions: del}
	}
	return counts, nil
}

// untrackedRecord synthesizes a ChangeRecord for a file git has never
// seen: every line is an addition.
func (c *Collector) untrackedRecord(path string) (models.ChangeRecord, error) {
	raw, err := os.ReadFile(filepath.Join(c.root, path))
	if err != nil {
		return models.ChangeRecord{}, err
	}

	text := strings.TrimRight(string(raw), "\n")
	var lines []models.Line
	if text != "" {
		for i, content := range strings.Split(text, "\n") {
			lines = append(lines, models.Line{Content: content, Kind: models.LineAdded, Number: i + 1})
		}
	}

	rec := models.ChangeRecord{
		Path:       path,
		Kind:       models.ChangeAdded,
		Insertions: len(lines),
	}
	if len(lines) > 0 {
		rec.Hunks = []models.Hunk{{
			Header: fmt.Sprintf("@@ -0,0 +1,%d @@", len(lines)),
			Lines:  lines,
		}}
	}
	return rec, nil
}

// ParseUnifiedDiff converts a multi-file unified diff into ChangeRecords.
// Insertion and deletion counts are derived from the hunks; callers may
// overwrite them from numstat.
func ParseUnifiedDiff(diffText string) ([]models.ChangeRecord, error) {
	if strings.TrimSpace(diffText) == "" {
		return nil, nil
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(diffText)).ReadAllFiles()
	if err != nil {
		return nil, err
	}

	var records []models.ChangeRecord
	for _, fd := range fileDiffs {
		records = append(records, recordFromFileDiff(fd))
	}
	return records, nil
}

func recordFromFileDiff(fd *diff.FileDiff) models.ChangeRecord {
	rec := models.ChangeRecord{
		Path: diffPath(fd),
		Kind: models.ChangeModified,
	}
	switch {
	case strings.HasSuffix(fd.OrigName, "/dev/null") || fd.OrigName == "/dev/null":
		rec.Kind = models.ChangeAdded
	case strings.HasSuffix(fd.NewName, "/dev/null") || fd.NewName == "/dev/null":
		rec.Kind = models.ChangeDeleted
	}

	for _, h := range fd.Hunks {
		hunk := models.Hunk{
			Header: fmt.Sprintf("@@ -%d,%d +%d,%d @@ %s",
				h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines,
				strings.TrimSpace(h.Section)),
		}
		newLine := int(h.NewStartLine)
		for _, raw := range strings.Split(strings.TrimRight(string(h.Body), "\n"), "\n") {
			if raw == "" {
				continue
			}
			content := raw[1:]
			switch raw[0] {
			case '+':
				hunk.Lines = append(hunk.Lines, models.Line{Content: content, Kind: models.LineAdded, Number: newLine})
				rec.Insertions++
				newLine++
			case '-':
				hunk.Lines = append(hunk.Lines, models.Line{Content: content, Kind: models.LineRemoved})
				rec.Deletions++
			default:
				hunk.Lines = append(hunk.Lines, models.Line{Content: content, Kind: models.LineContext})
				newLine++
			}
		}
		rec.Hunks = append(rec.Hunks, hunk)
	}
	return rec
}

// diffPath strips the a/ b/ prefixes, preferring the new name so renames
// and additions resolve to the live path.
func diffPath(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimPrefix(name, "a/")
	name = strings.TrimPrefix(name, "b/")
	return name
}
