package lexical

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/core"
)

// Stop words carry no lexical signal and are dropped before weighting.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "its": true, "were": true, "been": true,
	"has": true, "had": true, "which": true, "these": true, "those": true, "into": true,
}

// Embedder produces sparse vectors from term frequencies. Each term is hashed
// to a 32-bit index and weighted by 1 + ln(tf); the store applies IDF at query time.
type Embedder struct {
	logger *slog.Logger
}

var _ ai.SparseEmbedder = (*Embedder)(nil)

func newEmbedder() *Embedder {
	return &Embedder{
		logger: slog.Default().With("component", "lexical-embedder"),
	}
}

// NewEmbedder creates a sparse embedder.
//
// Returns ai.SparseEmbedder interface to enforce abstraction.
func NewEmbedder() ai.SparseEmbedder {
	return newEmbedder()
}

// EmbedSparse returns the sparse vector for text. Empty or stop-word-only text
// yields an empty vector.
func (e *Embedder) EmbedSparse(ctx context.Context, text string) (core.SparseVector, error) {
	if err := ctx.Err(); err != nil {
		return core.SparseVector{}, err
	}

	counts := make(map[uint32]int)
	for _, term := range Tokenize(text) {
		counts[TermIndex(term)]++
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = float32(1 + math.Log(float64(counts[idx])))
	}

	e.logger.Debug("generated sparse vector", "terms", len(indices), "length", len(text))
	return core.SparseVector{Indices: indices, Values: values}, nil
}

// Tokenize splits text on anything that is not a letter or digit, lowercases
// the pieces, and drops stop words and single characters.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < 2 || stopWords[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// TermIndex returns the sparse index for a term.
func TermIndex(term string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(term))
	return h.Sum32()
}
