// Package scan walks a directory tree and records file and folder metadata.
//
// The walk is bounded by a maximum depth, prunes hidden entries and a fixed
// set of build and dependency directories, and never follows symlinks.
// Per-entry failures are logged and skipped so one unreadable directory does
// not abort the scan.
//
// Folder records are finalized after the walk: each folder carries the
// recursive size of its descendant files, direct file and subfolder counts,
// and copies of its descendant file records.
package scan
