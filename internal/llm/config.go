package llm

import (
	"time"

	"github.com/ppiankov/lexguard/internal/model"
)

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "none" or ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	Temperature float32

	// Rate limiting per provider
	RequestsPerSecond float64
	Burst             int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          NoneName, // Disabled by default
		Timeout:           30,
		MaxTokens:         1000,
		Temperature:       0.2,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// TimeoutDuration returns the per-call timeout
func (c Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:          modelConfig.Provider,
		Model:             modelConfig.Model,
		APIKey:            modelConfig.APIKey,
		BaseURL:           modelConfig.BaseURL,
		Timeout:           modelConfig.Timeout,
		MaxTokens:         modelConfig.MaxTokens,
		Temperature:       modelConfig.Temperature,
		RequestsPerSecond: modelConfig.RequestsPerSecond,
		Burst:             modelConfig.Burst,
		HTTPProxy:         modelConfig.HTTPProxy,
		HTTPSProxy:        modelConfig.HTTPSProxy,
		NoProxy:           modelConfig.NoProxy,
	}
}
