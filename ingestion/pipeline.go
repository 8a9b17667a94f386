// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/scan"
	"github.com/poiesic/arborist/storage"
	"github.com/poiesic/arborist/summary"
	"github.com/sethvargo/go-retry"
)

const (
	reasonAlreadyIndexed = "already indexed"

	defaultMaxRetries  = 3
	defaultRetryDelay  = time.Second
	defaultFileTimeout = 5 * time.Minute
)

// Summarizer produces summaries for files and folders.
type Summarizer interface {
	SummarizeFile(ctx context.Context, file *core.FileRecord, force bool) (string, error)
	SummarizeFolder(ctx context.Context, folder *core.FolderRecord, force bool) (string, error)
}

// Chunker splits a summary into embedding-sized pieces.
type Chunker interface {
	Split(text string) []string
}

// Pipeline indexes scanned files: summarize, chunk, embed, then one batch
// upsert. Files are processed one at a time on a single-worker pool so the
// language-model service sees one request at a time.
type Pipeline struct {
	store       storage.IndexStore
	summarizer  Summarizer
	chunker     Chunker
	embedder    ai.Embedder
	sparse      ai.SparseEmbedder
	pool        *ants.Pool
	force       bool
	folders     bool
	progress    io.Writer
	maxRetries  int
	retryDelay  time.Duration
	fileTimeout time.Duration
	logger      *slog.Logger
}

type Option func(*Pipeline) error

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithForce re-summarizes and re-indexes files even when already indexed.
func WithForce(force bool) Option {
	return func(p *Pipeline) error {
		p.force = force
		return nil
	}
}

// WithFolderSummaries enables folder summaries after the files are indexed.
func WithFolderSummaries(enabled bool) Option {
	return func(p *Pipeline) error {
		p.folders = enabled
		return nil
	}
}

// WithProgress writes a progress line to w while files are processed.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

func WithMaxRetries(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = n
		return nil
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.retryDelay = d
		return nil
	}
}

// WithFileTimeout bounds the work for a single file. Zero disables the bound.
func WithFileTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.fileTimeout = d
		return nil
	}
}

func NewPipeline(
	store storage.IndexStore,
	summarizer Summarizer,
	chunker Chunker,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrIndexStoreRequired
	}
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:       store,
		summarizer:  summarizer,
		chunker:     chunker,
		embedder:    provider.Embedder(),
		sparse:      provider.SparseEmbedder(),
		pool:        pool,
		maxRetries:  defaultMaxRetries,
		retryDelay:  defaultRetryDelay,
		fileTimeout: defaultFileTimeout,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// fileOutcome is the result of processing one file.
type fileOutcome struct {
	file    *core.FileRecord
	point   *core.IndexPoint
	skipped bool
	err     error
}

// Run indexes every file in result. Per-file failures are recorded in the
// report and do not stop the run. A failed batch upsert or a cancelled
// context aborts with an error.
func (p *Pipeline) Run(ctx context.Context, result *scan.Result) (*Report, error) {
	start := time.Now()
	report := &Report{}

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(result.Files))
		tracker.Start()
	}

	var wg sync.WaitGroup
	outcomes := make([]fileOutcome, len(result.Files))
	for i, file := range result.Files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = p.processFile(ctx, file)
			if tracker != nil {
				tracker.Advance(file.Name)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("queueing %s: %w", file.Path, err)
		}
	}
	wg.Wait()
	if tracker != nil {
		tracker.Finish()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var points []*core.IndexPoint
	for _, o := range outcomes {
		switch {
		case o.skipped:
			report.Skipped = append(report.Skipped, issue(o.file, reasonAlreadyIndexed))
		case o.err != nil:
			report.Failed = append(report.Failed, issue(o.file, o.err.Error()))
		case o.point != nil:
			points = append(points, o.point)
		}
	}

	if len(points) == 0 {
		p.logger.Info("nothing indexed", "files", len(result.Files), "skipped", len(report.Skipped), "failed", len(report.Failed))
	} else {
		if err := p.store.Upsert(ctx, points...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpsertFailed, err)
		}
		for _, point := range points {
			report.Indexed = append(report.Indexed, point.Payload.FilePath)
		}
		p.logger.Info("indexed files", "count", len(points))
	}

	if p.folders {
		if err := p.summarizeFolders(ctx, result, report); err != nil {
			return nil, err
		}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// Release stops the worker pool. The pipeline cannot be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) processFile(ctx context.Context, file *core.FileRecord) fileOutcome {
	logger := p.logger.With("path", file.Path)

	if !p.force {
		indexed, err := p.store.IsIndexed(ctx, file.Path)
		if err != nil {
			logger.Warn("dedup check failed, treating as not indexed", "err", err)
		} else if indexed {
			logger.Info("skipping already indexed file")
			return fileOutcome{file: file, skipped: true}
		}
	}

	fctx, cancel := ai.WithTimeout(ctx, p.fileTimeout)
	defer cancel()

	point, err := p.indexPoint(fctx, file)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", p.fileTimeout, err)
		}
		logger.Warn("skipping file", "err", err)
		return fileOutcome{file: file, err: err}
	}
	return fileOutcome{file: file, point: point}
}

func (p *Pipeline) indexPoint(ctx context.Context, file *core.FileRecord) (*core.IndexPoint, error) {
	var text string
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		text, err = p.summarizer.SummarizeFile(ctx, file, p.force)
		if isModelError(err) {
			return retry.RetryableError(err)
		}
		return err
	}, p.maxRetries, p.retryDelay)
	if err != nil {
		return nil, err
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		chunks = []string{text}
	}

	var dense [][]float32
	err = RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		dense, err = p.embedder.EmbedTexts(ctx, chunks)
		return retry.RetryableError(err)
	}, p.maxRetries, p.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding summary: %w", err)
	}
	if len(dense) == 0 {
		return nil, ErrNoEmbedding
	}
	if err := core.ValidateDense(dense[0]); err != nil {
		return nil, err
	}

	sparse, err := p.sparse.EmbedSparse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("sparse embedding: %w", err)
	}

	return core.NewIndexPoint(file, dense[0], sparse), nil
}

func (p *Pipeline) summarizeFolders(ctx context.Context, result *scan.Result, report *Report) error {
	summaries := make(map[string]string, len(result.Files))
	for _, f := range result.Files {
		if f.Summary != "" {
			summaries[f.Path] = f.Summary
		}
	}

	for _, folder := range result.Folders {
		for i := range folder.Files {
			if s, ok := summaries[folder.Files[i].Path]; ok {
				folder.Files[i].Summary = s
			}
		}

		text, err := p.summarizer.SummarizeFolder(ctx, folder, p.force)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.logger.Warn("folder summary failed", "path", folder.Path, "err", err)
			report.FolderFailures = append(report.FolderFailures, FileIssue{Name: folder.Name, Path: folder.Path, Reason: err.Error()})
			continue
		}
		report.Folders = append(report.Folders, FolderSummary{Path: folder.Path, Summary: text})
	}
	return nil
}

// isModelError reports whether a summarization error came from the
// language-model service. Errors from the file itself are not retried.
func isModelError(err error) bool {
	return errors.Is(err, summary.ErrGeneration) || errors.Is(err, summary.ErrEmptySummary)
}

func issue(file *core.FileRecord, reason string) FileIssue {
	return FileIssue{Name: file.Name, Path: file.Path, Reason: reason}
}
