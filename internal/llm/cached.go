package llm

import (
	"context"
	"time"

	"github.com/ppiankov/lexguard/internal/cache"
)

// Cached serves repeated prompts from a cache. Only successful answers are stored.
type Cached struct {
	next  Completer
	cache cache.Cache
	model string
	ttl   time.Duration
}

// NewCached wraps next with c; model is part of the cache key
func NewCached(next Completer, c cache.Cache, model string, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, model: model, ttl: ttl}
}

// Name returns the wrapped provider name
func (c *Cached) Name() string {
	return c.next.Name()
}

// Complete returns a cached answer or delegates and stores the result
func (c *Cached) Complete(ctx context.Context, prompt, input string) (string, error) {
	key := cache.Key("completion", c.next.Name(), c.model, prompt, input)
	if val, found := c.cache.Get(key); found {
		return string(val), nil
	}

	answer, err := c.next.Complete(ctx, prompt, input)
	if err != nil {
		return "", err
	}
	if answer != "" {
		_ = c.cache.Set(key, []byte(answer), c.ttl)
	}
	return answer, nil
}
