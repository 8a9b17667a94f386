package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.SummaryRepository {
	t.Helper()
	repo, err := NewMemorySummaryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSummaryRepository_PutGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	modified := time.Now().Add(-time.Hour)

	entry := &core.SummaryEntry{
		Path:       "/docs/report.md",
		Size:       120,
		ModifiedAt: modified,
		Model:      "gemma2:2b",
		Summary:    "A quarterly report.",
	}
	require.NoError(t, repo.PutSummary(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := repo.GetSummary(ctx, "/docs/report.md")
	require.NoError(t, err)
	assert.Equal(t, "A quarterly report.", got.Summary)
	assert.True(t, got.ModifiedAt.Equal(modified))
}

func TestSummaryRepository_Overwrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutSummary(ctx, &core.SummaryEntry{Path: "/a", Summary: "old"}))
	require.NoError(t, repo.PutSummary(ctx, &core.SummaryEntry{Path: "/a", Summary: "new"}))

	got, err := repo.GetSummary(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Summary)
}

func TestSummaryRepository_Missing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSummary(context.Background(), "/nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetMeta(context.Background(), storage.MetaEmbeddingModel)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSummaryRepository_EmptyPath(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.PutSummary(context.Background(), &core.SummaryEntry{Summary: "x"})
	assert.ErrorIs(t, err, core.ErrEmptyPath)
}

func TestSummaryRepository_Meta(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMeta(ctx, storage.MetaEmbeddingModel, "nomic-embed-text"))
	value, err := repo.GetMeta(ctx, storage.MetaEmbeddingModel)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", value)
}

func TestOpenSummaryRepository_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := OpenSummaryRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.SetMeta(ctx, "k", "v"))
	require.NoError(t, repo.Close())

	repo, err = OpenSummaryRepository(dir)
	require.NoError(t, err)
	defer repo.Close()

	value, err := repo.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
