// Package output renders staging strategies and history for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/diffscope/diffscope/internal/history"
	"github.com/diffscope/diffscope/internal/models"
)

var (
	highRiskColor   = color.New(color.FgRed, color.Bold)
	mediumRiskColor = color.New(color.FgYellow)
	lowRiskColor    = color.New(color.FgGreen)
	headlineColor   = color.New(color.Bold)
	dimColor        = color.New(color.FgHiBlack)
)

// Renderer writes human-readable or JSON output to a single writer.
type Renderer struct {
	w    io.Writer
	json bool
}

// NewRenderer returns a renderer. When jsonOut is set every render call
// emits indented JSON instead of tables.
func NewRenderer(w io.Writer, jsonOut bool) *Renderer {
	return &Renderer{w: w, json: jsonOut}
}

// Strategy renders a complete staging strategy: a summary line, one
// table of planned commits, the per-commit file lists, and any warnings.
func (r *Renderer) Strategy(s *models.StagingStrategy) error {
	if r.json {
		return r.JSON(s)
	}

	fmt.Fprintf(r.w, "%s %d commit(s), %s strategy, overall risk %s\n\n",
		headlineColor.Sprint("Staging plan:"),
		len(s.Commits), s.Strategy, riskLabel(s.OverallRisk))

	table := tablewriter.NewWriter(r.w)
	table.Header([]string{"#", "Title", "Files", "Risk", "Priority", "Est. Time"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for i, plan := range s.Commits {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			plan.Message.Title,
			strconv.Itoa(len(plan.Boundary.Files)),
			riskLabel(plan.Risk),
			priorityLabel(plan.Boundary.Priority),
			plan.EstimatedTime,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for i, plan := range s.Commits {
		fmt.Fprintf(r.w, "\n%s %s\n", headlineColor.Sprintf("Commit %d:", i+1), plan.Message.Title)
		fmt.Fprintf(r.w, "  %s\n", dimColor.Sprint(plan.Rationale))
		for _, f := range plan.Boundary.Files {
			fmt.Fprintf(r.w, "  %s %s (+%d/-%d)\n", changeMarker(f.Kind), f.Path, f.Insertions, f.Deletions)
		}
	}

	if len(s.Warnings) > 0 {
		fmt.Fprintf(r.w, "\n%s\n", mediumRiskColor.Sprint("Warnings:"))
		for _, w := range s.Warnings {
			fmt.Fprintf(r.w, "  - %s\n", w)
		}
	}
	return nil
}

// Boundaries renders detected boundaries without the commit plans, for
// the explain command.
func (r *Renderer) Boundaries(boundaries []*models.CommitBoundary) error {
	if r.json {
		return r.JSON(boundaries)
	}

	for i, b := range boundaries {
		fmt.Fprintf(r.w, "%s %s (%s priority, complexity %.1f)\n",
			headlineColor.Sprintf("Boundary %d:", i+1), b.Theme,
			priorityLabel(b.Priority), b.EstimatedComplexity)
		fmt.Fprintf(r.w, "  %s\n", dimColor.Sprint(b.Reasoning))
		for _, f := range b.Files {
			fmt.Fprintf(r.w, "  %s %s\n", changeMarker(f.Kind), f.Path)
		}
		if len(b.Dependencies) > 0 {
			fmt.Fprintf(r.w, "  depends on: %s\n", strings.Join(b.Dependencies, ", "))
		}
		fmt.Fprintln(r.w)
	}
	return nil
}

// History renders stored analysis runs, newest first.
func (r *Renderer) History(runs []history.Run) error {
	if r.json {
		return r.JSON(runs)
	}

	table := tablewriter.NewWriter(r.w)
	table.Header([]string{"ID", "When", "Repo", "Files", "Commits", "Strategy", "Risk"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, run := range runs {
		data = append(data, []string{
			shortID(run.ID),
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.RepoRoot,
			strconv.Itoa(run.FileCount),
			strconv.Itoa(run.BoundaryCount),
			run.Strategy,
			riskLabel(models.RiskLevel(run.OverallRisk)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// Text writes a plain paragraph, used for AI-generated prose such as
// explanations and review summaries.
func (r *Renderer) Text(s string) error {
	if r.json {
		return r.JSON(map[string]string{"text": s})
	}
	_, err := fmt.Fprintln(r.w, strings.TrimSpace(s))
	return err
}

// JSON writes v as indented JSON regardless of the configured mode.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func riskLabel(risk models.RiskLevel) string {
	switch risk {
	case models.RiskHigh:
		return highRiskColor.Sprint("high")
	case models.RiskMedium:
		return mediumRiskColor.Sprint("medium")
	default:
		return lowRiskColor.Sprint("low")
	}
}

func priorityLabel(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return highRiskColor.Sprint("high")
	case models.PriorityMedium:
		return mediumRiskColor.Sprint("medium")
	default:
		return dimColor.Sprint("low")
	}
}

func changeMarker(kind models.ChangeKind) string {
	switch kind {
	case models.ChangeAdded:
		return lowRiskColor.Sprint("A")
	case models.ChangeDeleted:
		return highRiskColor.Sprint("D")
	case models.ChangeRenamed:
		return mediumRiskColor.Sprint("R")
	default:
		return "M"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
