package ingestion

import (
	"fmt"
	"strings"
	"time"
)

// FileIssue names a file that was not indexed and why.
type FileIssue struct {
	Name   string
	Path   string
	Reason string
}

// FolderSummary is a generated summary for one folder.
type FolderSummary struct {
	Path    string
	Summary string
}

// Report describes the outcome of one pipeline run.
type Report struct {
	Indexed []string
	Skipped []FileIssue
	Failed  []FileIssue
	Folders []FolderSummary
	// FolderFailures lists folders whose summary could not be produced.
	FolderFailures []FileIssue
	Elapsed        time.Duration
}

// NothingIndexed reports whether the run wrote no points.
func (r *Report) NothingIndexed() bool {
	return len(r.Indexed) == 0
}

func (r *Report) String() string {
	var b strings.Builder
	if r.NothingIndexed() {
		b.WriteString("Nothing indexed.\n")
	} else {
		fmt.Fprintf(&b, "Indexed %d file(s):\n", len(r.Indexed))
		for _, path := range r.Indexed {
			fmt.Fprintf(&b, "  %s\n", path)
		}
	}
	writeIssues(&b, "Skipped", r.Skipped)
	writeIssues(&b, "Failed", r.Failed)
	if len(r.Folders) > 0 {
		fmt.Fprintf(&b, "Folder summaries (%d):\n", len(r.Folders))
		for _, f := range r.Folders {
			fmt.Fprintf(&b, "  %s: %s\n", f.Path, f.Summary)
		}
	}
	writeIssues(&b, "Folders not summarized", r.FolderFailures)
	fmt.Fprintf(&b, "Elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	return b.String()
}

func writeIssues(b *strings.Builder, title string, issues []FileIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "%s %d:\n", title, len(issues))
	for _, issue := range issues {
		fmt.Fprintf(b, "  %s: %s\n", issue.Name, issue.Reason)
	}
}
