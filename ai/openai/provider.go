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


package openai

import (
	"log/slog"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/ai/lexical"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Sparse vectors are computed locally by the lexical embedder.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	sparse    ai.SparseEmbedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a provider for the given configuration.
// The config is validated before use.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create embedder (using internal constructor for concrete type)
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	// Create generator (using internal constructor for concrete type)
	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		sparse:    lexical.NewEmbedder(),
		generator: generator,
		logger:    slog.Default().With("component", "openai-provider"),
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
	p.logger.Debug("closing OpenAI provider")
	return nil
}
