package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/ingestion"
	"github.com/poiesic/arborist/scan"
	"github.com/poiesic/arborist/search"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	summaryStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Width(100)
)

func renderScanResult(result *scan.Result) string {
	return titleStyle.Render("Scan") + "\n" + result.String()
}

func renderReport(report *ingestion.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Index"))
	b.WriteString("\n")

	if report.NothingIndexed() {
		b.WriteString(warnStyle.Render("Nothing indexed."))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "Indexed %d file(s)\n", len(report.Indexed))
	}

	if n := len(report.Skipped); n > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Skipped %d file(s)", n)))
		b.WriteString("\n")
	}
	for _, f := range report.Skipped {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  skipped %s: %s", f.Name, f.Reason)))
		b.WriteString("\n")
	}
	for _, f := range report.Failed {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  failed %s: %s", f.Name, f.Reason)))
		b.WriteString("\n")
	}

	for _, folder := range report.Folders {
		b.WriteString(pathStyle.Render(folder.Path))
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(folder.Summary))
		b.WriteString("\n")
	}
	for _, f := range report.FolderFailures {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  folder %s: %s", f.Path, f.Reason)))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("Elapsed %s", report.Elapsed.Round(time.Millisecond))))
	return b.String()
}

func renderResults(query string, results []*core.SearchResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Results for %q", query)))
	b.WriteString("\n")

	if len(results) == 0 {
		b.WriteString(dimStyle.Render("No matching files."))
		return b.String()
	}

	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, pathStyle.Render(r.Payload.FilePath), scoreStyle.Render(fmt.Sprintf("[%0.3f]", r.Score)))
		b.WriteString(summaryStyle.Render(r.Payload.Summary))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// explainMonitor prints each ranking stage when enabled.
type explainMonitor struct {
	w       io.Writer
	enabled bool
}

var _ search.QueryMonitor = (*explainMonitor)(nil)

func (m *explainMonitor) Start(query string, mode search.Mode) {
	if m.enabled {
		fmt.Fprintln(m.w, dimStyle.Render(fmt.Sprintf("query %q, mode %s", query, mode)))
	}
}

func (m *explainMonitor) AfterDenseSearch(results []*core.SearchResult) {
	m.stage("dense", results)
}

func (m *explainMonitor) AfterSparseSearch(results []*core.SearchResult) {
	m.stage("sparse", results)
}

func (m *explainMonitor) Finish(results []*core.SearchResult) {
	m.stage("final", results)
}

func (m *explainMonitor) stage(name string, results []*core.SearchResult) {
	if !m.enabled {
		return
	}
	fmt.Fprintln(m.w, dimStyle.Render(fmt.Sprintf("%s: %d hit(s)", name, len(results))))
	for i, r := range results {
		fmt.Fprintln(m.w, dimStyle.Render(fmt.Sprintf("  %d %0.4f %s", i+1, r.Score, r.Payload.FilePath)))
	}
}
