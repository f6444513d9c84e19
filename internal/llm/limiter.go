package llm

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-provider rate limiting
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until the provider may be called or ctx is done
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	return l.getLimiter(provider).Wait(ctx)
}

// getLimiter returns the rate limiter for a provider
func (l *Limiter) getLimiter(provider string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[provider]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[provider] = limiter

	return limiter
}

// RateLimited waits for the limiter before every call to the wrapped completer
type RateLimited struct {
	next    Completer
	limiter *Limiter
}

// NewRateLimited wraps next with limiter
func NewRateLimited(next Completer, limiter *Limiter) *RateLimited {
	return &RateLimited{next: next, limiter: limiter}
}

// Name returns the wrapped provider name
func (r *RateLimited) Name() string {
	return r.next.Name()
}

// Complete waits for a token, then delegates
func (r *RateLimited) Complete(ctx context.Context, prompt, input string) (string, error) {
	if err := r.limiter.Wait(ctx, r.next.Name()); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Complete(ctx, prompt, input)
}
