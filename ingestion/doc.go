// Package ingestion provides pipeline orchestration for indexing scanned files.
//
// The Pipeline type manages the indexing workflow for a scan result:
//   - Skipping files the store already holds (unless forced)
//   - Summarizing each file, with retry and exponential backoff
//   - Chunking the summary and generating dense and sparse embeddings
//   - Writing every new point in one batch upsert
//
// Files are processed on a worker pool of size one, so model calls happen one
// at a time. Per-file failures are logged and reported but do not fail the run.
package ingestion
