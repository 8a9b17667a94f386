package mock

import (
	"context"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/ai/lexical"
	"github.com/poiesic/arborist/core"
)

// MockSparseEmbedder wraps the lexical embedder with injectable behavior.
type MockSparseEmbedder struct {
	// EmbedSparseFunc is called by EmbedSparse if set.
	EmbedSparseFunc func(ctx context.Context, text string) (core.SparseVector, error)

	inner ai.SparseEmbedder
}

// NewMockSparseEmbedder creates a sparse embedder backed by lexical term weights.
func NewMockSparseEmbedder() *MockSparseEmbedder {
	return &MockSparseEmbedder{inner: lexical.NewEmbedder()}
}

func (m *MockSparseEmbedder) EmbedSparse(ctx context.Context, text string) (core.SparseVector, error) {
	if m.EmbedSparseFunc != nil {
		return m.EmbedSparseFunc(ctx, text)
	}
	return m.inner.EmbedSparse(ctx, text)
}
