package scan

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/arborist/core"
)

// ExtensionCount is one row of the extension histogram.
type ExtensionCount struct {
	Extension string
	Count     int
}

// Result holds everything a scan discovered.
type Result struct {
	Root       string
	Files      []*core.FileRecord
	Folders    []*core.FolderRecord
	Extensions []ExtensionCount // Sorted by count, descending
	Elapsed    time.Duration
}

// FileCount returns the number of files found.
func (r *Result) FileCount() int {
	return len(r.Files)
}

// FolderCount returns the number of folders found, including the root.
func (r *Result) FolderCount() int {
	return len(r.Folders)
}

// TotalSize returns the summed size of all files found.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// String renders the scan statistics report.
func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scanned %s\n", r.Root)
	fmt.Fprintf(&b, "Files: %d  Folders: %d  Size: %s\n",
		r.FileCount(), r.FolderCount(), humanize.Bytes(uint64(r.TotalSize())))
	if len(r.Extensions) > 0 {
		b.WriteString("Extensions:\n")
		for _, ext := range r.Extensions {
			fmt.Fprintf(&b, "  .%-12s %d\n", ext.Extension, ext.Count)
		}
	}
	fmt.Fprintf(&b, "Elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	return b.String()
}

func sortedExtensions(counts map[string]int) []ExtensionCount {
	out := make([]ExtensionCount, 0, len(counts))
	for ext, n := range counts {
		out = append(out, ExtensionCount{Extension: ext, Count: n})
	}
	slices.SortFunc(out, func(a, b ExtensionCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Extension, b.Extension)
	})
	return out
}
