package chunk

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Vocabularies are embedded so tokenizers load without network access.
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Tokenizer counts tokens the way the embedding model's window is measured.
type Tokenizer interface {
	CountTokens(text string) int
}

// TiktokenTokenizer counts BPE tokens with a tiktoken encoding.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
	name     string
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTokenizer resolves name as a tiktoken encoding (e.g. "cl100k_base"),
// falling back to treating it as a model name (e.g. "gpt-4").
func NewTokenizer(name string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		var modelErr error
		enc, modelErr = tiktoken.EncodingForModel(name)
		if modelErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnknownTokenizer, name, err)
		}
	}
	return &TiktokenTokenizer{encoding: enc, name: name}, nil
}

// CountTokens returns the number of BPE tokens in text.
func (t *TiktokenTokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Name returns the encoding or model name the tokenizer was built from.
func (t *TiktokenTokenizer) Name() string {
	return t.name
}

// WhitespaceTokenizerName selects WhitespaceTokenizer in configuration.
const WhitespaceTokenizerName = "whitespace"

// WhitespaceTokenizer counts whitespace-separated words. It needs no vocabulary files.
type WhitespaceTokenizer struct{}

var _ Tokenizer = WhitespaceTokenizer{}

// CountTokens returns the number of whitespace-separated words in text.
func (WhitespaceTokenizer) CountTokens(text string) int {
	return len(strings.Fields(text))
}
