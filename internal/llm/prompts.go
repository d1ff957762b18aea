package llm

import (
	"fmt"
	"strings"

	"github.com/diffscope/diffscope/internal/models"
)

// System prompts for the two structured call sites consumed by the
// analysis engine. Both demand strict JSON so parse failures stay rare
// and recoverable.
const (
	BoundarySystemPrompt = "You are a senior engineer reviewing uncommitted changes. " +
		"Group the files into logically coherent, independently committable boundaries. " +
		"Respond with a single JSON object of the form " +
		`{"boundaries":[{"id":"...","files":["path"],"theme":"...","reasoning":"...","priority":"high|medium|low","estimatedComplexity":0}]}` +
		" and nothing else."

	CategorySystemPrompt = "You classify one changed file into impact categories. " +
		"Allowed categories: api, ui, business_logic, database, tests, configuration, " +
		"documentation, build, utilities, security, performance. " +
		`Respond with a single JSON object {"categories":["..."]} and nothing else.`
)

// BuildBoundaryPrompt renders the file list with summary stats for the
// boundary suggestion call.
func BuildBoundaryPrompt(changes []models.ChangeRecord) string {
	var sb strings.Builder
	totalIns, totalDel := 0, 0
	for _, c := range changes {
		totalIns += c.Insertions
		totalDel += c.Deletions
	}

	fmt.Fprintf(&sb, "Uncommitted changes: %d files, +%d/-%d lines.\n\n", len(changes), totalIns, totalDel)
	sb.WriteString("Files:\n")
	for _, c := range changes {
		fmt.Fprintf(&sb, "- %s (%s, +%d/-%d, %d hunks)\n", c.Path, c.Kind, c.Insertions, c.Deletions, len(c.Hunks))
	}
	sb.WriteString("\nPropose commit boundaries for these changes.")
	return sb.String()
}

// BuildCategoryPrompt renders the per-file categorization request.
func BuildCategoryPrompt(path string, insertions, deletions int) string {
	return fmt.Sprintf("File: %s (+%d/-%d lines changed). Which impact categories apply?", path, insertions, deletions)
}

// BuildCommitMessagePrompt asks the provider to polish a generated commit
// message skeleton against the actual diff.
func BuildCommitMessagePrompt(skeleton models.CommitMessage, diff string) string {
	var sb strings.Builder
	sb.WriteString("Improve this commit message so it precisely describes the diff.\n")
	sb.WriteString("Keep the conventional-commit format and keep the title under 72 characters.\n\n")
	fmt.Fprintf(&sb, "Current title: %s\n", skeleton.Title)
	if skeleton.Body != "" {
		fmt.Fprintf(&sb, "Current body:\n%s\n", skeleton.Body)
	}
	sb.WriteString("\nDiff:\n")
	sb.WriteString(diff)
	return sb.String()
}

// CommitMessageSystemPrompt frames the message polish call.
const CommitMessageSystemPrompt = "You write precise conventional-commit messages. " +
	"Answer with the commit message only: first line title, blank line, optional body."

// ParseCommitMessage parses a provider response in commit-message form:
// title line, blank line, optional body. The conventional-commit type is
// taken from the title prefix when present.
func ParseCommitMessage(raw string) (models.CommitMessage, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return models.CommitMessage{}, fmt.Errorf("empty commit message response")
	}

	msg := models.CommitMessage{Title: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		msg.Body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}

	if idx := strings.IndexAny(msg.Title, "(:"); idx > 0 {
		candidate := msg.Title[:idx]
		switch candidate {
		case "feat", "fix", "docs", "test", "chore", "refactor", "perf", "build", "ci", "style":
			msg.Type = candidate
		}
	}
	return msg, nil
}

// BuildExplainPrompt asks for a plain-language walkthrough of a diff.
func BuildExplainPrompt(diff string) string {
	return "Explain what the following diff changes and why it might have been made. " +
		"Be concise and concrete.\n\n" + diff
}

// ExplainSystemPrompt frames diff explanation.
const ExplainSystemPrompt = "You are a code reviewer explaining a diff to a teammate. " +
	"Summarize behavior changes first, then notable implementation details."

// BuildPRPrompt asks for a pull request title and description from branch
// context and the staged plan.
func BuildPRPrompt(branch, baseBranch string, commits []string, strategy models.StagingStrategy) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Branch %s targets %s.\n\nCommits:\n", branch, baseBranch)
	for _, c := range commits {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	if len(strategy.Commits) > 0 {
		sb.WriteString("\nChange groups detected in the working tree:\n")
		for _, plan := range strategy.Commits {
			fmt.Fprintf(&sb, "- %s (%d files, %s risk)\n", plan.Boundary.Theme, len(plan.Boundary.Files), plan.Risk)
		}
	}
	sb.WriteString("\nWrite a pull request title on the first line, then a markdown description.")
	return sb.String()
}

// PRSystemPrompt frames pull request description generation.
const PRSystemPrompt = "You write clear pull request descriptions: what changed, why, " +
	"and what reviewers should check. No filler."

// BuildReviewPrompt asks for review findings over a diff.
func BuildReviewPrompt(diff string) string {
	return "Review the following diff. Point out bugs, risky patterns and missing tests. " +
		"Skip style nits.\n\n" + diff
}

// ReviewSystemPrompt frames review comment generation.
const ReviewSystemPrompt = "You are a thorough but pragmatic code reviewer. " +
	"List findings as short bullets ordered by severity; say 'no findings' when clean."
