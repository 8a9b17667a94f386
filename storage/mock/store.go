// Package mock provides an in-memory storage.IndexStore for tests.
//
// Dense queries score by cosine similarity; sparse queries score by the dot
// product over shared indices. Results follow the same ordering and limit
// contracts as the real store.
package mock

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
)

// IndexStore is an in-memory test double for storage.IndexStore.
type IndexStore struct {
	// IsIndexedErr, UpsertErr and QueryErr are returned by the matching
	// method when set.
	IsIndexedErr error
	UpsertErr    error
	QueryErr     error

	mu          sync.Mutex
	points      map[string]*core.IndexPoint
	collection  bool
	upsertCalls int
	closed      bool
}

var _ storage.IndexStore = (*IndexStore)(nil)

func NewIndexStore() *IndexStore {
	return &IndexStore{points: make(map[string]*core.IndexPoint)}
}

func (s *IndexStore) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	s.collection = true
	return nil
}

func (s *IndexStore) IsIndexed(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsIndexedErr != nil {
		return false, s.IsIndexedErr
	}
	for _, p := range s.points {
		if p.Payload.FilePath == path {
			return true, nil
		}
	}
	return false, nil
}

func (s *IndexStore) Upsert(ctx context.Context, points ...*core.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if err := core.ValidateIndexPoint(p); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	s.upsertCalls++
	for _, p := range points {
		cp := *p
		s.points[p.ID] = &cp
	}
	return nil
}

func (s *IndexStore) Query(ctx context.Context, q storage.VectorQuery) ([]*core.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}

	var results []*core.SearchResult
	for _, p := range s.points {
		var score float32
		if q.Space == storage.SpaceDense {
			score = cosine(q.Dense, p.Dense)
		} else {
			if p.Sparse.Len() == 0 {
				continue
			}
			score = sparseDot(q.Sparse, p.Sparse)
			if score == 0 {
				continue
			}
		}
		results = append(results, &core.SearchResult{ID: p.ID, Score: score, Payload: p.Payload})
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		// Stable order for equal scores
		if a.Payload.FilePath < b.Payload.FilePath {
			return -1
		}
		if a.Payload.FilePath > b.Payload.FilePath {
			return 1
		}
		return 0
	})
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Points returns a snapshot of every stored point.
func (s *IndexStore) Points() []*core.IndexPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.IndexPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *core.IndexPoint) int {
		if a.Payload.FilePath < b.Payload.FilePath {
			return -1
		}
		if a.Payload.FilePath > b.Payload.FilePath {
			return 1
		}
		return 0
	})
	return out
}

// UpsertCalls returns the number of non-empty batches written.
func (s *IndexStore) UpsertCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCalls
}

// HasCollection reports whether EnsureCollection succeeded.
func (s *IndexStore) HasCollection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection
}

// Closed reports whether Close was called.
func (s *IndexStore) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func sparseDot(a, b core.SparseVector) float32 {
	weights := make(map[uint32]float32, len(b.Indices))
	for i, idx := range b.Indices {
		weights[idx] = b.Values[i]
	}
	var sum float32
	for i, idx := range a.Indices {
		sum += a.Values[i] * weights[idx]
	}
	return sum
}
