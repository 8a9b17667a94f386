package ai

import (
	"context"

	"github.com/poiesic/arborist/core"
)

type Embedder interface {
	// EmbedText generates a dense vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates dense vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type SparseEmbedder interface {
	// EmbedSparse generates a sparse term-weight vector for text.
	// Indices in the result are unique and sorted ascending.
	EmbedSparse(ctx context.Context, text string) (core.SparseVector, error)
}

type Generator interface {
	// Generate sends a system instruction and a prompt to the language model
	// and returns its reply.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// Describe sends a prompt together with an inline image and returns the
	// model's reply. mimeType describes the image encoding (e.g. "image/png").
	Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

type AIProvider interface {
	// Embedder returns the dense embedding service.
	Embedder() Embedder

	// SparseEmbedder returns the sparse embedding service.
	SparseEmbedder() SparseEmbedder

	// Generator returns the text and image generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
