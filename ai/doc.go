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


// Package ai provides abstractions for the model services arborist depends on.
//
// The package defines three service interfaces and one aggregate:
//
//   - Embedder: dense vector embeddings for text
//   - SparseEmbedder: sparse term-weight vectors for lexical matching
//   - Generator: summaries of text and captions of images
//   - AIProvider: aggregates the services for convenient initialization
//
// # Implementation Packages
//
//   - ai/ollama: native Ollama API via langchaingo
//   - ai/openai: OpenAI-compatible servers via langchaingo
//   - ai/lexical: CPU-only sparse embedder shared by both providers
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in the implementation packages return interface types.
// Mock constructors return concrete types so tests can inject behavior and
// inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithGenerationModel("gemma2:2b"))
//	provider, err := ollama.NewProvider(cfg)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	summary, err := provider.Generator().Generate(ctx, system, prompt)
package ai
