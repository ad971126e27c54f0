package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/slotguard/core"
)

type fileResult struct {
	Path   string
	Source string
	Diags  []core.Diagnostic
}

func renderText(w io.Writer, results []fileResult) {
	for _, r := range results {
		for _, d := range r.Diags {
			line, col := core.Position(r.Source, d.Range.Start)
			fmt.Fprintf(w, "%s:%d:%d: %s [%s] %s\n", r.Path, line, col, d.Severity, d.Code, d.Message)
		}
	}
}

type jsonFinding struct {
	File        string         `json:"file"`
	Start       int            `json:"start"`
	End         int            `json:"end"`
	Line        int            `json:"line"`
	Column      int            `json:"column"`
	Severity    string         `json:"severity"`
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Explanation string         `json:"explanation,omitempty"`
	Fix         *core.QuickFix `json:"fix,omitempty"`
}

func renderJSON(w io.Writer, results []fileResult) error {
	findings := make([]jsonFinding, 0)
	for _, r := range results {
		for _, d := range r.Diags {
			line, col := core.Position(r.Source, d.Range.Start)
			findings = append(findings, jsonFinding{
				File:        r.Path,
				Start:       d.Range.Start,
				End:         d.Range.End,
				Line:        line,
				Column:      col,
				Severity:    d.Severity.String(),
				Code:        string(d.Code),
				Message:     d.Message,
				Explanation: d.Explanation,
				Fix:         d.Fix,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// applyEdits applies non-overlapping edits to src, last edit first so
// earlier offsets stay valid.
func applyEdits(src string, edits []core.TextEdit) string {
	sorted := make([]core.TextEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start > sorted[j].Range.Start
	})
	for _, e := range sorted {
		src = src[:e.Range.Start] + e.NewText + src[e.Range.End:]
	}
	return src
}

// collectEdits gathers the mechanical edits of a file's quick fixes.
// Several diagnostics can propose an edit for the same range (the two
// hash checks both target the initializer); only the first proposal per
// range is kept so the preview stays coherent.
func collectEdits(diags []core.Diagnostic) []core.TextEdit {
	var edits []core.TextEdit
	seen := make(map[core.Range]bool)
	for _, d := range diags {
		if d.Fix == nil {
			continue
		}
		for _, e := range d.Fix.Edits {
			if seen[e.Range] {
				continue
			}
			seen[e.Range] = true
			edits = append(edits, e)
		}
	}
	return edits
}

func renderDiffs(w io.Writer, results []fileResult, context int) error {
	for _, r := range results {
		edits := collectEdits(r.Diags)
		if len(edits) == 0 {
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(r.Source),
			B:        difflib.SplitLines(applyEdits(r.Source, edits)),
			FromFile: r.Path,
			ToFile:   r.Path + " (fixed)",
			Context:  context,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(w, diff)
	}
	return nil
}
