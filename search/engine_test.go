package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/arborist/ai/mock"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
	storagemock "github.com/poiesic/arborist/storage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexSummaries stores one point per path whose dense vector is the mock
// embedding of its summary.
func indexSummaries(t *testing.T, store storage.IndexStore, provider *mock.MockProvider, summaries map[string]string) {
	t.Helper()
	ctx := context.Background()
	for path, summary := range summaries {
		dense, err := provider.Embedder().EmbedText(ctx, summary)
		require.NoError(t, err)
		sparse, err := provider.SparseEmbedder().EmbedSparse(ctx, summary)
		require.NoError(t, err)
		file := &core.FileRecord{Name: path, Path: path, Summary: summary}
		require.NoError(t, store.Upsert(ctx, core.NewIndexPoint(file, dense, sparse)))
	}
}

var corpus = map[string]string{
	"/docs/report.md":  "quarterly report",
	"/docs/recipe.txt": "lemon tart recipe with butter",
	"/docs/notes.md":   "meeting notes about the quarterly budget",
	"/img/cat.png":     "a cat asleep on a sofa",
}

func TestNewEngine(t *testing.T) {
	store := storagemock.NewIndexStore()
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := NewEngine(store, provider, WithLimit(3), WithMode(ModeHybrid), WithSearchEffort(64))
		require.NoError(t, err)
		assert.Equal(t, 3, engine.limit)
	})

	t.Run("missing collaborators", func(t *testing.T) {
		_, err := NewEngine(nil, provider)
		assert.ErrorIs(t, err, ErrIndexStoreRequired)
		_, err = NewEngine(store, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewEngine(store, provider, WithLimit(0))
		assert.ErrorIs(t, err, ErrInvalidLimit)
		_, err = NewEngine(store, provider, WithMode(Mode(9)))
		assert.ErrorIs(t, err, ErrUnknownMode)
	})
}

func TestQuery_EmptyText(t *testing.T) {
	engine, err := NewEngine(storagemock.NewIndexStore(), mock.NewMockProvider())
	require.NoError(t, err)

	_, err = engine.Query(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestQuery_DenseFindsExactSummary(t *testing.T) {
	store := storagemock.NewIndexStore()
	provider := mock.NewMockProvider()
	indexSummaries(t, store, provider, corpus)

	engine, err := NewEngine(store, provider, WithLimit(2))
	require.NoError(t, err)

	results, err := engine.Query(context.Background(), "quarterly report")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "/docs/report.md", results[0].Payload.FilePath)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestQuery_Sparse(t *testing.T) {
	store := storagemock.NewIndexStore()
	provider := mock.NewMockProvider()
	indexSummaries(t, store, provider, corpus)

	engine, err := NewEngine(store, provider, WithMode(ModeSparse), WithLimit(5))
	require.NoError(t, err)

	results, err := engine.Query(context.Background(), "quarterly")
	require.NoError(t, err)

	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Payload.FilePath)
	}
	assert.ElementsMatch(t, []string{"/docs/report.md", "/docs/notes.md"}, paths)

	// Stop words only: nothing to match
	results, err = engine.Query(context.Background(), "the of and")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_HybridOrderingAndLimit(t *testing.T) {
	store := storagemock.NewIndexStore()
	provider := mock.NewMockProvider()
	indexSummaries(t, store, provider, corpus)

	engine, err := NewEngine(store, provider, WithMode(ModeHybrid), WithLimit(3))
	require.NoError(t, err)

	results, err := engine.Query(context.Background(), "quarterly report")
	require.NoError(t, err)

	require.LessOrEqual(t, len(results), 3)
	require.NotEmpty(t, results)
	assert.Equal(t, "/docs/report.md", results[0].Payload.FilePath, "first in both rankings")
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestQuery_DoesNotMutateStore(t *testing.T) {
	store := storagemock.NewIndexStore()
	provider := mock.NewMockProvider()
	indexSummaries(t, store, provider, corpus)
	before := store.UpsertCalls()

	engine, err := NewEngine(store, provider, WithMode(ModeHybrid))
	require.NoError(t, err)
	_, err = engine.Query(context.Background(), "cat")
	require.NoError(t, err)

	assert.Equal(t, before, store.UpsertCalls())
	assert.Len(t, store.Points(), len(corpus))
}

func TestQuery_Errors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		provider := mock.NewMockProvider()
		provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model offline")
		}
		engine, err := NewEngine(storagemock.NewIndexStore(), provider)
		require.NoError(t, err)

		_, err = engine.Query(context.Background(), "report")
		assert.Error(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		store := storagemock.NewIndexStore()
		store.QueryErr = errors.New("unavailable")
		engine, err := NewEngine(store, mock.NewMockProvider())
		require.NoError(t, err)

		_, err = engine.Query(context.Background(), "report")
		assert.Error(t, err)
	})
}

// recordingMonitor captures the stages reported during a query.
type recordingMonitor struct {
	stages []string
}

func (m *recordingMonitor) Start(query string, mode Mode) {
	m.stages = append(m.stages, "start:"+mode.String())
}

func (m *recordingMonitor) AfterDenseSearch(results []*core.SearchResult) {
	m.stages = append(m.stages, "dense")
}

func (m *recordingMonitor) AfterSparseSearch(results []*core.SearchResult) {
	m.stages = append(m.stages, "sparse")
}

func (m *recordingMonitor) Finish(results []*core.SearchResult) {
	m.stages = append(m.stages, "finish")
}

func TestQueryWithMonitor(t *testing.T) {
	engine, err := NewEngine(storagemock.NewIndexStore(), mock.NewMockProvider(), WithMode(ModeHybrid))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = engine.QueryWithMonitor(context.Background(), "report", monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start:hybrid", "dense", "sparse", "finish"}, monitor.stages)
}

func TestFuse(t *testing.T) {
	a := &core.SearchResult{ID: "a", Payload: core.Payload{FilePath: "/a"}}
	b := &core.SearchResult{ID: "b", Payload: core.Payload{FilePath: "/b"}}
	c := &core.SearchResult{ID: "c", Payload: core.Payload{FilePath: "/c"}}

	fused := fuse(10, []*core.SearchResult{a, b}, []*core.SearchResult{b, c})

	require.Len(t, fused, 3)
	assert.Equal(t, "b", fused[0].ID, "present in both lists")
	assert.Equal(t, "a", fused[1].ID)
	assert.Equal(t, "c", fused[2].ID)
	assert.InDelta(t, 1.0/62+1.0/61, fused[0].Score, 1e-6)

	assert.Len(t, fuse(1, []*core.SearchResult{a, b}), 1)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"dense", ModeDense, false},
		{"Sparse", ModeSparse, false},
		{"HYBRID", ModeHybrid, false},
		{"", ModeDense, false},
		{"colbert", ModeDense, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
