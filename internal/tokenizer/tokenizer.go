// Package tokenizer counts tokens the way the embedding and
// generation models do, via tiktoken BPE encodings.
package tokenizer

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// FallbackEncoding is used when the model has no registered encoding.
const FallbackEncoding = "cl100k_base"

// Counter counts tokens for a fixed model. Counting is pure: the
// encoding is resolved once at construction and every call is
// in-memory after that.
type Counter struct {
	model    string
	encoding *tiktoken.Tiktoken
}

// NewCounter resolves the encoding for model, falling back to the
// generic byte-pair encoding when the model is unknown.
func NewCounter(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(FallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: load encoding for %q: %w", model, err)
		}
	}
	return &Counter{model: model, encoding: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (c *Counter) CountTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Model returns the model the counter tokenizes for.
func (c *Counter) Model() string {
	return c.model
}
