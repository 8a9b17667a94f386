package chunk

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunker splits text into pieces whose token counts fall inside a [min, max] window.
type Chunker struct {
	tokenizer Tokenizer
	min       int
	max       int
}

// New creates a Chunker. The window must satisfy 0 < min <= max.
func New(tokenizer Tokenizer, min, max int) (*Chunker, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}
	if min < 1 || max < min {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow, min, max)
	}
	return &Chunker{tokenizer: tokenizer, min: min, max: max}, nil
}

// Window returns the configured (min, max) token window.
func (c *Chunker) Window() (int, int) {
	return c.min, c.max
}

// Split returns the chunks of text in order. Every chunk except possibly the
// last has between min and max tokens. Chunks are filled greedily and end on a
// sentence or line boundary when one is available past min; a single word
// longer than max is split between runes.
//
// Chunks are trimmed; joining them reproduces text up to whitespace.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segs := splitSegments(text)
	var chunks []string
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			chunks = append(chunks, s)
		}
	}

	for start := 0; start < len(segs); {
		var (
			current      string
			currentCount int
			end          = start
			boundary     = -1
			boundaryText string
		)
		for end < len(segs) {
			candidate := current + segs[end].text
			n := c.count(candidate)
			if n > c.max {
				break
			}
			current, currentCount = candidate, n
			end++
			if segs[end-1].sentenceEnd && n >= c.min {
				boundary, boundaryText = end, current
			}
		}

		switch {
		case end == len(segs):
			emit(current)
			start = end
		case boundary > start:
			emit(boundaryText)
			start = boundary
		case currentCount >= c.min:
			emit(current)
			start = end
		default:
			// The next segment does not fit; top the chunk up with part of it.
			head, tail := c.fill(current, segs[end].text)
			emit(current + head)
			if tail == "" {
				start = end + 1
			} else {
				segs[end].text = tail
				start = end
			}
		}
	}
	return chunks
}

func (c *Chunker) count(s string) int {
	return c.tokenizer.CountTokens(strings.TrimSpace(s))
}

// fill returns the longest rune prefix of seg that keeps prefix+head within max,
// and the remainder. At least one rune is taken when prefix holds no text.
func (c *Chunker) fill(prefix, seg string) (head, tail string) {
	runes := []rune(seg)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.count(prefix+string(runes[:mid])) <= c.max {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == 0 && strings.TrimSpace(prefix) == "" {
		lo = 1
	}
	return string(runes[:lo]), string(runes[lo:])
}

type segment struct {
	text        string // a word plus its trailing whitespace
	sentenceEnd bool
}

func splitSegments(text string) []segment {
	var segs []segment
	for i := 0; i < len(text); {
		start := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		wordEnd := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		segs = append(segs, segment{
			text:        text[start:i],
			sentenceEnd: endsSentence(text[start:wordEnd], text[wordEnd:i]),
		})
	}
	return segs
}

func endsSentence(word, space string) bool {
	if strings.ContainsRune(space, '\n') {
		return true
	}
	word = strings.TrimRight(word, `"')]}»”’`)
	if word == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(word)
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}
