package search

import (
	"fmt"
	"strings"
)

// Mode selects which vector spaces a query uses.
type Mode int

const (
	// ModeDense ranks by cosine similarity of the summary embedding.
	ModeDense Mode = iota
	// ModeSparse ranks by IDF-weighted term overlap.
	ModeSparse
	// ModeHybrid fuses dense and sparse rankings.
	ModeHybrid
)

func (m Mode) String() string {
	switch m {
	case ModeDense:
		return "dense"
	case ModeSparse:
		return "sparse"
	case ModeHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "dense", "sparse" or "hybrid", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dense", "":
		return ModeDense, nil
	case "sparse", "lexical":
		return ModeSparse, nil
	case "hybrid":
		return ModeHybrid, nil
	default:
		return ModeDense, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
