// Package models defines the shared data types that flow between the
// change collector, the boundary analysis engine, and the renderers.
package models

// ChangeKind describes how a file changed in the working tree.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// IsValid reports whether k is one of the known change kinds.
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeAdded, ChangeModified, ChangeDeleted, ChangeRenamed:
		return true
	}
	return false
}

// LineKind classifies one line inside a diff hunk.
type LineKind string

const (
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
	LineContext LineKind = "context"
)

// Line is a single line of a diff hunk. Number is the 1-based line number
// in the new file for added lines, 0 otherwise.
type Line struct {
	Content string   `json:"content"`
	Kind    LineKind `json:"kind"`
	Number  int      `json:"number,omitempty"`
}

// Hunk is one contiguous block of a unified diff.
type Hunk struct {
	Header string `json:"header"`
	Lines  []Line `json:"lines"`
}

// ChangeRecord is the normalized diff of one file. Records are built once
// per analysis pass from a git snapshot and never mutated afterwards.
type ChangeRecord struct {
	Path       string     `json:"path"`
	Kind       ChangeKind `json:"kind"`
	Insertions int        `json:"insertions"`
	Deletions  int        `json:"deletions"`
	Hunks      []Hunk     `json:"hunks,omitempty"`
}

// DiffContent returns the concatenated content of every hunk line
// (added, removed and context) separated by newlines.
func (c ChangeRecord) DiffContent() string {
	n := 0
	for _, h := range c.Hunks {
		for _, l := range h.Lines {
			n += len(l.Content) + 1
		}
	}
	buf := make([]byte, 0, n)
	for _, h := range c.Hunks {
		for _, l := range h.Lines {
			buf = append(buf, l.Content...)
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}

// TotalLines returns insertions plus deletions.
func (c ChangeRecord) TotalLines() int {
	return c.Insertions + c.Deletions
}

// EdgeKind is the type of a scored relationship between two changed files.
type EdgeKind string

const (
	EdgeImport         EdgeKind = "import"
	EdgeTestPair       EdgeKind = "test_pair"
	EdgeSimilarChanges EdgeKind = "similar_changes"
	EdgeConfigRelated  EdgeKind = "config_related"
)

// RelationshipEdge is a scored, typed relation between an unordered pair of
// changed files. Strength is always in [0,1]; edges below the per-kind
// emission threshold are never stored.
type RelationshipEdge struct {
	FileA    string   `json:"file_a"`
	FileB    string   `json:"file_b"`
	Kind     EdgeKind `json:"kind"`
	Strength float64  `json:"strength"`
}

// Priority ranks how urgently a boundary should land.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is a known priority. Used when parsing
// provider-suggested boundaries.
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// CommitBoundary is a cluster of changes intended for a single commit.
type CommitBoundary struct {
	ID                  string         `json:"id"`
	Files               []ChangeRecord `json:"files"`
	Reasoning           string         `json:"reasoning"`
	Priority            Priority       `json:"priority"`
	EstimatedComplexity float64        `json:"estimated_complexity"`
	Dependencies        []string       `json:"dependencies,omitempty"`
	Theme               string         `json:"theme"`
}

// ContainsPath reports whether the boundary already holds the given path.
func (b CommitBoundary) ContainsPath(path string) bool {
	for _, f := range b.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// RiskLevel grades a commit plan or a whole strategy.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// StrategyKind is the recommended way to land a sequence of commits.
type StrategyKind string

const (
	// StrategySequential: boundaries reference each other, land in order.
	StrategySequential StrategyKind = "sequential"
	// StrategyProgressive: no ordering constraints but at least one
	// high-risk commit, land one at a time with review between.
	StrategyProgressive StrategyKind = "progressive"
	// StrategyParallel: independent low/medium-risk commits.
	StrategyParallel StrategyKind = "parallel"
)

// CommitMessage is the generated conventional-commit skeleton.
type CommitMessage struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Body  string `json:"body,omitempty"`
}

// CommitPlan pairs one boundary with its suggested message and risk tier.
type CommitPlan struct {
	Boundary      *CommitBoundary `json:"boundary"`
	Message       CommitMessage   `json:"message"`
	Rationale     string          `json:"rationale"`
	Risk          RiskLevel       `json:"risk"`
	EstimatedTime string          `json:"estimated_time"`
}

// StagingStrategy is the final output of a boundary analysis run.
type StagingStrategy struct {
	Strategy    StrategyKind `json:"strategy"`
	Commits     []CommitPlan `json:"commits"`
	Warnings    []string     `json:"warnings"`
	OverallRisk RiskLevel    `json:"overall_risk"`
}
