package ai

import "errors"

var (
	// ErrNoChoices is returned when the model returns no completion.
	ErrNoChoices = errors.New("model returned no choices")

	// ErrEmptyEmbedding is returned when the embedding service returns no vector.
	ErrEmptyEmbedding = errors.New("embedding service returned no vector")
)
