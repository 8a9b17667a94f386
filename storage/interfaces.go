package storage

import (
	"context"

	"github.com/poiesic/arborist/core"
)

// VectorSpace names one of the two vector spaces of the collection.
type VectorSpace string

const (
	// SpaceDense is the named dense (cosine) vector space.
	SpaceDense VectorSpace = "dense"
	// SpaceLexical is the named sparse (IDF-weighted) vector space.
	SpaceLexical VectorSpace = "lexical"
)

// VectorQuery describes a single similarity query against one vector space.
// Exactly one of Dense or Sparse is used, selected by Space.
type VectorQuery struct {
	Space  VectorSpace
	Dense  []float32
	Sparse core.SparseVector
	Limit  int
	// SearchEffort is the HNSW ef parameter. Zero uses the store default.
	SearchEffort uint64
}

// Validate checks that the query matches its space and has a positive limit.
func (q VectorQuery) Validate() error {
	if q.Limit <= 0 {
		return ErrInvalidQuery
	}
	switch q.Space {
	case SpaceDense:
		if err := core.ValidateDense(q.Dense); err != nil {
			return err
		}
	case SpaceLexical:
		if err := core.ValidateSparse(q.Sparse); err != nil {
			return err
		}
	default:
		return ErrInvalidQuery
	}
	return nil
}

type IndexStore interface {
	// EnsureCollection creates the collection with its dense and sparse
	// vector spaces if it does not exist. Calling it again is a no-op.
	EnsureCollection(ctx context.Context) error

	// IsIndexed reports whether at least one point with payload file_path
	// equal to path exists.
	IsIndexed(ctx context.Context, path string) (bool, error)

	// Upsert inserts or replaces points by ID in one batch.
	// Zero points is a no-op. Every point is validated before any is written.
	Upsert(ctx context.Context, points ...*core.IndexPoint) error

	// Query returns up to q.Limit results ordered by descending score.
	Query(ctx context.Context, q VectorQuery) ([]*core.SearchResult, error)

	// Close releases the connection to the store.
	Close() error
}

type SummaryRepository interface {
	// GetSummary returns the cached entry for path.
	// Returns ErrNotFound if no entry exists.
	GetSummary(ctx context.Context, path string) (*core.SummaryEntry, error)

	// PutSummary stores or replaces the entry for entry.Path.
	// Sets CreatedAt if not already set.
	PutSummary(ctx context.Context, entry *core.SummaryEntry) error

	// GetMeta returns the metadata value for key.
	// Returns ErrNotFound if the key is unset.
	GetMeta(ctx context.Context, key string) (string, error)

	// SetMeta stores a metadata value.
	SetMeta(ctx context.Context, key, value string) error

	// Close releases resources held by the repository.
	Close() error
}

// MetaEmbeddingModel records the embedding model the collection was built with.
const MetaEmbeddingModel = "embedding_model"
