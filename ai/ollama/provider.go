package ollama

import (
	"log/slog"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/ai/lexical"
)

// Provider implements ai.AIProvider using an Ollama server.
// Sparse vectors are computed locally by the lexical embedder.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	sparse    ai.SparseEmbedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a provider whose dense embeddings and generations come
// from an Ollama server and whose sparse embeddings are computed locally.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		sparse:    lexical.NewEmbedder(),
		generator: generator,
		logger:    slog.Default().With("component", "ollama-provider"),
	}, nil
}

// Embedder returns the dense embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// SparseEmbedder returns the sparse embedding service.
func (p *Provider) SparseEmbedder() ai.SparseEmbedder {
	return p.sparse
}

// Generator returns the summary and caption generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing Ollama provider")
	return nil
}
