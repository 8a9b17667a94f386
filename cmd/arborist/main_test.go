package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/ingestion"
	"github.com/poiesic/arborist/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findFlag[T cli.Flag](flags []cli.Flag, name string) T {
	var zero T
	for _, flag := range flags {
		if f, ok := flag.(T); ok {
			for _, n := range f.Names() {
				if n == name {
					return f
				}
			}
		}
	}
	return zero
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("log-level defaults to warn", func(t *testing.T) {
		f := findFlag[*cli.StringFlag](app.Flags, "log-level")
		require.NotNil(t, f)
		assert.Equal(t, "warn", f.Value)
	})

	t.Run("config has no default", func(t *testing.T) {
		f := findFlag[*cli.StringFlag](app.Flags, "config")
		require.NotNil(t, f)
		assert.Empty(t, f.Value)
	})

	t.Run("scan flags", func(t *testing.T) {
		cmd := findCommand(t, app, "scan")
		force := findFlag[*cli.BoolFlag](cmd.Flags, "force")
		require.NotNil(t, force)
		assert.False(t, force.Value)
		assert.NotNil(t, findFlag[*cli.BoolFlag](cmd.Flags, "folders"))
	})

	t.Run("query flags", func(t *testing.T) {
		cmd := findCommand(t, app, "query")
		assert.NotNil(t, findFlag[*cli.IntFlag](cmd.Flags, "limit"))
		assert.NotNil(t, findFlag[*cli.StringFlag](cmd.Flags, "mode"))
	})
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	app := newApp()
	app.Commands = nil
	app.Action = func(*cli.Context) error { return nil }

	err := app.Run([]string{"arborist", "--log-level", "verbose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestScanCommand_RequiresPath(t *testing.T) {
	err := newApp().Run([]string{"arborist", "scan"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one path")
}

func TestQueryCommand_RequiresText(t *testing.T) {
	err := newApp().Run([]string{"arborist", "query", "  "})
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
}

func TestRenderReport(t *testing.T) {
	t.Run("nothing indexed", func(t *testing.T) {
		out := renderReport(&ingestion.Report{})
		assert.Contains(t, out, "Nothing indexed.")
	})

	t.Run("skipped files listed", func(t *testing.T) {
		out := renderReport(&ingestion.Report{
			Skipped: []ingestion.FileIssue{{Name: "report.md", Path: "/docs/report.md", Reason: "already indexed"}},
		})
		assert.Contains(t, out, "Skipped 1 file(s)")
		assert.Contains(t, out, "report.md: already indexed")
	})

	t.Run("failures listed", func(t *testing.T) {
		out := renderReport(&ingestion.Report{
			Indexed: []string{"/docs/report.md"},
			Failed:  []ingestion.FileIssue{{Name: "broken.pdf", Path: "/docs/broken.pdf", Reason: "extraction failed"}},
			Elapsed: 1500 * time.Millisecond,
		})
		assert.Contains(t, out, "Indexed 1 file(s)")
		assert.Contains(t, out, "broken.pdf: extraction failed")
	})
}

func TestRenderResults(t *testing.T) {
	out := renderResults("quarterly report", []*core.SearchResult{
		{Score: 0.91, Payload: core.Payload{FilePath: "/docs/report.md", Summary: "Q3 revenue."}},
	})
	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "/docs/report.md")
	assert.Contains(t, out, "[0.910]")

	assert.Contains(t, renderResults("nothing", nil), "No matching files.")
}

func TestExplainMonitor(t *testing.T) {
	var buf bytes.Buffer
	results := []*core.SearchResult{{Score: 0.5, Payload: core.Payload{FilePath: "/a.md"}}}

	quiet := &explainMonitor{w: &buf}
	quiet.Start("q", search.ModeHybrid)
	quiet.Finish(results)
	assert.Empty(t, buf.String())

	loud := &explainMonitor{w: &buf, enabled: true}
	loud.Start("q", search.ModeHybrid)
	loud.AfterDenseSearch(results)
	loud.Finish(results)
	assert.Contains(t, buf.String(), "dense: 1 hit(s)")
	assert.Contains(t, buf.String(), "/a.md")
}
