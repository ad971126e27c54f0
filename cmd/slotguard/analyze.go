package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/oxhq/slotguard/analyzer"
	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/db"
	"github.com/oxhq/slotguard/models"
	"github.com/oxhq/slotguard/workspace"
)

type analyzeOptions struct {
	prefix      string
	jsonOut     bool
	showDiff    bool
	diffContext int
	database    string
	debug       bool
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Scan a workspace for storage layout hazards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runAnalyze(cmd, root, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.prefix, "prefix", "p", "", "Namespace prefix, overrides the workspace settings.")
	fs.BoolVarP(&opts.jsonOut, "json", "j", false, "Output findings in JSON format.")
	fs.BoolVarP(&opts.showDiff, "diff", "D", false, "Show a unified diff of the mechanical fixes.")
	fs.IntVarP(&opts.diffContext, "diff-context", "C", 3, "Lines of context for the diff.")
	fs.StringVar(&opts.database, "db", "", "Persist the run to this database (file path or libsql URL).")
	fs.BoolVarP(&opts.debug, "verbose", "v", false, "Enable verbose logging.")
	return cmd
}

func runAnalyze(cmd *cobra.Command, root string, opts *analyzeOptions) error {
	settings, err := workspace.Load(root)
	if err != nil {
		return err
	}
	if opts.prefix != "" {
		settings.Prefix = opts.prefix
	}
	database := opts.database
	if database == "" {
		database = settings.Database
	}
	debug := opts.debug || settings.Debug

	files, err := workspace.Discover(root)
	if err != nil {
		return err
	}

	eng := analyzer.New(settings, analyzer.PragmaVersionOracle{})
	if debug {
		eng.SetLogger(log.New(cmd.ErrOrStderr(), "slotguard: ", 0))
	}

	ctx := cmd.Context()
	results := make([]fileResult, 0, len(files))
	for _, rel := range files {
		src, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		doc := &analyzer.Document{Path: rel, Source: string(src)}
		var list core.List
		if err := eng.Analyze(ctx, doc, &list); err != nil {
			return fmt.Errorf("analyze %s: %w", rel, err)
		}
		results = append(results, fileResult{Path: rel, Source: string(src), Diags: list.Items()})
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		if err := renderJSON(out, results); err != nil {
			return err
		}
	} else {
		renderText(out, results)
	}
	if opts.showDiff {
		if err := renderDiffs(out, results, opts.diffContext); err != nil {
			return err
		}
	}

	if database != "" {
		if err := persistRun(database, debug, root, settings.Prefix, len(files), results); err != nil {
			return err
		}
	}

	if n := countErrors(results); n > 0 {
		return fmt.Errorf("%d error-level finding(s)", n)
	}
	return nil
}

func countErrors(results []fileResult) int {
	n := 0
	for _, r := range results {
		for _, d := range r.Diags {
			if d.Severity == core.SeverityError {
				n++
			}
		}
	}
	return n
}

func persistRun(dsn string, debug bool, root, prefix string, fileCount int, results []fileResult) error {
	conn, err := db.Connect(dsn, debug)
	if err != nil {
		return err
	}

	run := &models.Run{
		RootPath:  root,
		Prefix:    prefix,
		FileCount: fileCount,
	}
	for _, r := range results {
		for _, d := range r.Diags {
			line, col := core.Position(r.Source, d.Range.Start)
			finding := models.Finding{
				File:        r.Path,
				StartByte:   d.Range.Start,
				EndByte:     d.Range.End,
				Line:        line,
				Column:      col,
				Code:        string(d.Code),
				Severity:    d.Severity.String(),
				Message:     d.Message,
				Explanation: d.Explanation,
			}
			if d.Fix != nil {
				raw, err := json.Marshal(d.Fix)
				if err != nil {
					return fmt.Errorf("encode quick fix: %w", err)
				}
				finding.QuickFix = datatypes.JSON(raw)
			}
			run.Findings = append(run.Findings, finding)
		}
	}
	return db.SaveRun(conn, run)
}
