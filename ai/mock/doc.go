// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.SparseEmbedder,
// ai.Generator and ai.AIProvider for use in unit tests. The mocks allow tests to
// run without external AI services and behave deterministically.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	gen := mock.NewMockGenerator()
//	gen.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
//	    return "", errors.New("model offline")
//	}
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: deterministic unit vectors of core.DenseDimension based on text hash
//   - MockSparseEmbedder: lexical sparse vectors
//   - MockGenerator: echoes a short summary derived from the prompt
//   - MockProvider: aggregates the three
package mock
