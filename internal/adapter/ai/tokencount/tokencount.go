// Package tokencount provides token counting for LM prompts.
//
// It uses tiktoken-go, a Go port of OpenAI's tiktoken library, so prompt size
// metrics reflect what the provider actually bills and truncates on.
package tokencount

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting with per-model encoding cache.
type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is a process-wide token counter instance.
var DefaultCounter = NewCounter()

// Count returns the token count of text for the given model. When no encoding
// is available for the model it falls back to a character-based estimate so
// metrics never block a request.
func (c *Counter) Count(model, text string) int {
	enc, err := c.encodingFor(model)
	if err != nil {
		// Rough heuristic: ~4 characters per token for English text.
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	key := normalizeModel(model)
	c.mu.RLock()
	if enc, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[key]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(key)
	if err != nil {
		// Unknown models (provider-prefixed ids, fine-tunes) fall back to the
		// encoding shared by recent OpenAI chat models.
		enc, err = tiktoken.GetEncoding("o200k_base")
		if err != nil {
			return nil, err
		}
	}
	c.cache[key] = enc
	return enc, nil
}

func normalizeModel(model string) string {
	// Strip provider prefixes like "openai/gpt-4o-mini".
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return model
}
