package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
)

const (
	defaultLimit = 5

	// rrfK damps the contribution of top ranks in reciprocal rank fusion.
	rrfK = 60
)

// Engine answers natural-language queries against the index. It never
// modifies the store.
type Engine struct {
	store        storage.IndexStore
	embedder     ai.Embedder
	sparse       ai.SparseEmbedder
	limit        int
	mode         Mode
	searchEffort uint64
	logger       *slog.Logger
}

type Option func(*Engine) error

func WithLimit(limit int) Option {
	return func(e *Engine) error {
		if limit < 1 {
			return ErrInvalidLimit
		}
		e.limit = limit
		return nil
	}
}

func WithMode(mode Mode) Option {
	return func(e *Engine) error {
		if mode < ModeDense || mode > ModeHybrid {
			return fmt.Errorf("%w: %s", ErrUnknownMode, mode)
		}
		e.mode = mode
		return nil
	}
}

// WithSearchEffort sets the HNSW ef parameter. Zero keeps the store default.
func WithSearchEffort(ef uint64) Option {
	return func(e *Engine) error {
		e.searchEffort = ef
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

func NewEngine(store storage.IndexStore, provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrIndexStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		store:    store,
		embedder: provider.Embedder(),
		sparse:   provider.SparseEmbedder(),
		limit:    defaultLimit,
		mode:     ModeDense,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "query-engine")

	return e, nil
}

// Query returns up to the configured limit of results for text, best first.
func (e *Engine) Query(ctx context.Context, text string) ([]*core.SearchResult, error) {
	return e.QueryWithMonitor(ctx, text, nil)
}

func (e *Engine) QueryWithMonitor(ctx context.Context, text string, monitor QueryMonitor) ([]*core.SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(text, e.mode)

	var dense, sparse []*core.SearchResult
	var err error

	if e.mode == ModeDense || e.mode == ModeHybrid {
		if dense, err = e.denseSearch(ctx, text); err != nil {
			return nil, err
		}
		monitor.AfterDenseSearch(dense)
	}
	if e.mode == ModeSparse || e.mode == ModeHybrid {
		if sparse, err = e.sparseSearch(ctx, text); err != nil {
			return nil, err
		}
		monitor.AfterSparseSearch(sparse)
	}

	var results []*core.SearchResult
	switch e.mode {
	case ModeDense:
		results = dense
	case ModeSparse:
		results = sparse
	case ModeHybrid:
		results = fuse(e.limit, dense, sparse)
	}
	if len(results) > e.limit {
		results = results[:e.limit]
	}

	e.logger.Debug("query complete", "mode", e.mode, "results", len(results))
	monitor.Finish(results)
	return results, nil
}

func (e *Engine) denseSearch(ctx context.Context, text string) ([]*core.SearchResult, error) {
	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return e.store.Query(ctx, storage.VectorQuery{
		Space:        storage.SpaceDense,
		Dense:        vector,
		Limit:        e.limit,
		SearchEffort: e.searchEffort,
	})
}

func (e *Engine) sparseSearch(ctx context.Context, text string) ([]*core.SearchResult, error) {
	vector, err := e.sparse.EmbedSparse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("sparse embedding query: %w", err)
	}
	if vector.Len() == 0 {
		e.logger.Debug("query has no lexical terms")
		return nil, nil
	}
	return e.store.Query(ctx, storage.VectorQuery{
		Space:        storage.SpaceLexical,
		Sparse:       vector,
		Limit:        e.limit,
		SearchEffort: e.searchEffort,
	})
}

// fuse merges ranked lists with reciprocal rank fusion. The fused score of a
// point is the sum of 1/(rrfK+rank) over the lists it appears in.
func fuse(limit int, lists ...[]*core.SearchResult) []*core.SearchResult {
	scores := make(map[string]float32)
	byID := make(map[string]*core.SearchResult)
	for _, list := range lists {
		for rank, r := range list {
			scores[r.ID] += 1 / float32(rrfK+rank+1)
			if _, ok := byID[r.ID]; !ok {
				byID[r.ID] = r
			}
		}
	}

	fused := make([]*core.SearchResult, 0, len(byID))
	for id, r := range byID {
		fused = append(fused, &core.SearchResult{ID: id, Score: scores[id], Payload: r.Payload})
	}
	slices.SortFunc(fused, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Payload.FilePath, b.Payload.FilePath)
	})
	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
