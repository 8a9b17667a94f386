package chunk

import "errors"

var (
	// ErrInvalidWindow is returned when the token window is not 0 < min <= max.
	ErrInvalidWindow = errors.New("invalid token window")

	// ErrTokenizerRequired is returned when no tokenizer is provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrUnknownTokenizer is returned when a tokenizer name cannot be resolved.
	ErrUnknownTokenizer = errors.New("unknown tokenizer")
)
