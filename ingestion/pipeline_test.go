package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/arborist/ai/mock"
	"github.com/poiesic/arborist/chunk"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/extract"
	"github.com/poiesic/arborist/scan"
	storagemock "github.com/poiesic/arborist/storage/mock"
	"github.com/poiesic/arborist/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSummarizer returns "summary of <name>" unless the path is listed in
// errs. It records concurrent calls to check single-worker execution.
type testSummarizer struct {
	mu        sync.Mutex
	errs      map[string]error
	calls     map[string]int
	active    int
	maxActive int
}

func newTestSummarizer() *testSummarizer {
	return &testSummarizer{errs: map[string]error{}, calls: map[string]int{}}
}

func (s *testSummarizer) SummarizeFile(ctx context.Context, file *core.FileRecord, force bool) (string, error) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.calls[file.Path]++
	err := s.errs[file.Path]
	s.mu.Unlock()

	time.Sleep(time.Millisecond)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	file.Summary = "summary of " + file.Name
	return file.Summary, nil
}

func (s *testSummarizer) SummarizeFolder(ctx context.Context, folder *core.FolderRecord, force bool) (string, error) {
	var parts []string
	for _, f := range folder.Files {
		if f.Summary != "" {
			parts = append(parts, f.Summary)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no file summaries")
	}
	return "folder with " + strings.Join(parts, ", "), nil
}

func testResult(names ...string) *scan.Result {
	result := &scan.Result{Root: "/root"}
	folder := &core.FolderRecord{Name: "root", Path: "/root"}
	for _, name := range names {
		f := &core.FileRecord{Name: name, Path: "/root/" + name, Size: 10, Category: core.CategoryFromPath(name)}
		result.Files = append(result.Files, f)
		folder.Files = append(folder.Files, *f)
	}
	result.Folders = append(result.Folders, folder)
	return result
}

func newTestPipeline(t *testing.T, store *storagemock.IndexStore, s Summarizer, opts ...Option) *Pipeline {
	t.Helper()
	chunker, err := chunk.New(chunk.WhitespaceTokenizer{}, 2, 4)
	require.NoError(t, err)

	opts = append([]Option{WithRetryDelay(time.Millisecond)}, opts...)
	p, err := NewPipeline(store, s, chunker, mock.NewMockProvider(), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	chunker, err := chunk.New(chunk.WhitespaceTokenizer{}, 1, 2)
	require.NoError(t, err)
	store := storagemock.NewIndexStore()
	s := newTestSummarizer()
	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, s, chunker, provider)
	assert.ErrorIs(t, err, ErrIndexStoreRequired)
	_, err = NewPipeline(store, nil, chunker, provider)
	assert.ErrorIs(t, err, ErrSummarizerRequired)
	_, err = NewPipeline(store, s, nil, provider)
	assert.ErrorIs(t, err, ErrChunkerRequired)
	_, err = NewPipeline(store, s, chunker, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
	_, err = NewPipeline(store, s, chunker, provider, WithMaxRetries(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestPipeline_IndexesAllFiles(t *testing.T) {
	store := storagemock.NewIndexStore()
	summarizer := newTestSummarizer()
	p := newTestPipeline(t, store, summarizer)

	report, err := p.Run(context.Background(), testResult("a.md", "b.txt", "c.pdf"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/root/a.md", "/root/b.txt", "/root/c.pdf"}, report.Indexed)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 1, store.UpsertCalls(), "one batch per run")
	assert.Equal(t, 1, summarizer.maxActive, "files are processed one at a time")

	points := store.Points()
	require.Len(t, points, 3)
	for _, point := range points {
		assert.Equal(t, core.PointIDFromPath(point.Payload.FilePath), point.ID)
		assert.Len(t, point.Dense, core.DenseDimension)
		assert.Positive(t, point.Sparse.Len())
		assert.Equal(t, "summary of "+point.Payload.FileName, point.Payload.Summary)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	store := storagemock.NewIndexStore()
	summarizer := newTestSummarizer()
	p := newTestPipeline(t, store, summarizer)
	ctx := context.Background()

	_, err := p.Run(ctx, testResult("a.md", "b.md"))
	require.NoError(t, err)

	report, err := p.Run(ctx, testResult("a.md", "b.md"))
	require.NoError(t, err)

	assert.True(t, report.NothingIndexed())
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, reasonAlreadyIndexed, report.Skipped[0].Reason)
	assert.Len(t, store.Points(), 2)
	assert.Equal(t, 1, store.UpsertCalls())
	assert.Equal(t, 1, summarizer.calls["/root/a.md"])
}

func TestPipeline_ForceReindexesWithoutDuplicates(t *testing.T) {
	store := storagemock.NewIndexStore()
	summarizer := newTestSummarizer()
	ctx := context.Background()

	_, err := newTestPipeline(t, store, summarizer).Run(ctx, testResult("a.md"))
	require.NoError(t, err)

	report, err := newTestPipeline(t, store, summarizer, WithForce(true)).Run(ctx, testResult("a.md"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/root/a.md"}, report.Indexed)
	assert.Len(t, store.Points(), 1)
	assert.Equal(t, 2, summarizer.calls["/root/a.md"])
}

func TestPipeline_PerFileFailureContinues(t *testing.T) {
	store := storagemock.NewIndexStore()
	summarizer := newTestSummarizer()
	summarizer.errs["/root/broken.pdf"] = fmt.Errorf("extracting /root/broken.pdf: %w", extract.ErrExtractionFailed)
	p := newTestPipeline(t, store, summarizer)

	report, err := p.Run(context.Background(), testResult("a.md", "broken.pdf", "c.md"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/root/a.md", "/root/c.md"}, report.Indexed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "broken.pdf", report.Failed[0].Name)
	assert.Contains(t, report.Failed[0].Reason, "extraction failed")
	assert.Equal(t, 1, summarizer.calls["/root/broken.pdf"], "extraction errors are not retried")
}

func TestPipeline_RetriesTransientSummaryErrors(t *testing.T) {
	store := storagemock.NewIndexStore()
	summarizer := newTestSummarizer()
	summarizer.errs["/root/a.md"] = fmt.Errorf("summarizing /root/a.md: %w: model busy", summary.ErrGeneration)
	p := newTestPipeline(t, store, summarizer, WithMaxRetries(3))

	report, err := p.Run(context.Background(), testResult("a.md"))
	require.NoError(t, err)

	assert.True(t, report.NothingIndexed())
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 3, summarizer.calls["/root/a.md"])
	assert.Zero(t, store.UpsertCalls())
}

func TestPipeline_FileErrorsNotRetried(t *testing.T) {
	store := storagemock.NewIndexStore()
	summarizer := newTestSummarizer()
	summarizer.errs["/root/a.md"] = fmt.Errorf("extracting /root/a.md: %w", os.ErrPermission)
	p := newTestPipeline(t, store, summarizer, WithMaxRetries(3))

	report, err := p.Run(context.Background(), testResult("a.md"))
	require.NoError(t, err)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, 1, summarizer.calls["/root/a.md"])
}

// countingExtractor counts extraction attempts per path.
type countingExtractor struct {
	mu    sync.Mutex
	inner summary.Extractor
	calls map[string]int
}

func (c *countingExtractor) Extract(ctx context.Context, file *core.FileRecord) (extract.Content, error) {
	c.mu.Lock()
	c.calls[file.Path]++
	c.mu.Unlock()
	return c.inner.Extract(ctx, file)
}

func TestPipeline_VanishedFilesSkippedWithoutRetry(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"gone.txt", "gone.png", "kept.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("quarterly numbers"), 0o644))
	}
	result, err := scan.NewScanner().Scan(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.txt")))
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.png")))

	extractor := &countingExtractor{inner: extract.New(), calls: map[string]int{}}
	s := summary.New(mock.NewMockGenerator(), extractor)
	store := storagemock.NewIndexStore()
	p := newTestPipeline(t, store, s, WithMaxRetries(3), WithRetryDelay(100*time.Millisecond))

	start := time.Now()
	report, err := p.Run(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "kept.txt")}, report.Indexed)
	require.Len(t, report.Failed, 2)
	for _, f := range report.Failed {
		assert.Contains(t, f.Reason, "extraction failed")
		assert.Equal(t, 1, extractor.calls[f.Path], "vanished files are extracted once")
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "no backoff for vanished files")
}

func TestPipeline_SubmitFailure(t *testing.T) {
	p := newTestPipeline(t, storagemock.NewIndexStore(), newTestSummarizer())
	p.Release()

	_, err := p.Run(context.Background(), testResult("a.md", "b.md"))
	assert.ErrorIs(t, err, ants.ErrPoolClosed)
}

func TestPipeline_DedupCheckFailureTreatedAsNotIndexed(t *testing.T) {
	store := storagemock.NewIndexStore()
	store.IsIndexedErr = errors.New("store timeout")
	p := newTestPipeline(t, store, newTestSummarizer())

	report, err := p.Run(context.Background(), testResult("a.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/root/a.md"}, report.Indexed)
}

func TestPipeline_UpsertFailureAborts(t *testing.T) {
	store := storagemock.NewIndexStore()
	store.UpsertErr = errors.New("connection reset")
	p := newTestPipeline(t, store, newTestSummarizer())

	_, err := p.Run(context.Background(), testResult("a.md"))
	assert.ErrorIs(t, err, ErrUpsertFailed)
}

func TestPipeline_EmptyResult(t *testing.T) {
	store := storagemock.NewIndexStore()
	p := newTestPipeline(t, store, newTestSummarizer())

	report, err := p.Run(context.Background(), &scan.Result{Root: "/empty"})
	require.NoError(t, err)
	assert.True(t, report.NothingIndexed())
	assert.Zero(t, store.UpsertCalls())
	assert.Contains(t, report.String(), "Nothing indexed.")
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, storagemock.NewIndexStore(), newTestSummarizer())
	_, err := p.Run(ctx, testResult("a.md"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_FolderSummaries(t *testing.T) {
	store := storagemock.NewIndexStore()
	p := newTestPipeline(t, store, newTestSummarizer(), WithFolderSummaries(true))

	report, err := p.Run(context.Background(), testResult("a.md", "b.md"))
	require.NoError(t, err)

	require.Len(t, report.Folders, 1)
	assert.Equal(t, "/root", report.Folders[0].Path)
	assert.Equal(t, "folder with summary of a.md, summary of b.md", report.Folders[0].Summary)
}

func TestPipeline_Progress(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPipeline(t, storagemock.NewIndexStore(), newTestSummarizer(), WithProgress(&buf))

	_, err := p.Run(context.Background(), testResult("a.md", "b.md"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "2/2")
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Indexed: []string{"/root/a.md"},
		Skipped: []FileIssue{{Name: "b.md", Reason: reasonAlreadyIndexed}},
		Failed:  []FileIssue{{Name: "c.pdf", Reason: "extraction failed"}},
		Elapsed: 1500 * time.Millisecond,
	}

	out := report.String()
	assert.Contains(t, out, "Indexed 1 file(s):")
	assert.Contains(t, out, "b.md: already indexed")
	assert.Contains(t, out, "c.pdf: extraction failed")
	assert.Contains(t, out, "Elapsed: 1.5s")
}
