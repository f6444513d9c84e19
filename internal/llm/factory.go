package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/lexguard/internal/cache"
)

// NewCompleter creates the provider named by config. "none" and "" return
// the NullCompleter.
func NewCompleter(config Config) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "openai":
		return NewOpenAICompleter(config)

	case "anthropic", "claude":
		return NewAnthropicCompleter(config)

	case "ollama":
		return NewOllamaCompleter(config)

	case "", NoneName:
		return NullCompleter{}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: none, openai, anthropic, ollama)", config.Provider)
	}
}

// Build creates the configured completer wrapped with rate limiting and,
// when c is non-nil, response caching
func Build(config Config, c cache.Cache, cacheTTL time.Duration) (Completer, error) {
	base, err := NewCompleter(config)
	if err != nil {
		return nil, err
	}
	if !Enabled(base) {
		return base, nil
	}

	limiter := NewLimiter(config.RequestsPerSecond, config.Burst)
	var completer Completer = NewRateLimited(base, limiter)

	if c != nil {
		completer = NewCached(completer, c, config.Model, cacheTTL)
	}
	return completer, nil
}
