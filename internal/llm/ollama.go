package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// OllamaCompleter implements Completer for Ollama local models
type OllamaCompleter struct {
	client *ollama.LLM
	config Config
}

// NewOllamaCompleter creates a new Ollama completer
func NewOllamaCompleter(config Config) (*OllamaCompleter, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second // Ollama can be slower for local models
	}

	client, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(strings.TrimSuffix(baseURL, "/")),
		ollama.WithHTTPClient(newHTTPClient(config, timeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaCompleter{client: client, config: config}, nil
}

// Name returns the provider name
func (p *OllamaCompleter) Name() string {
	return "ollama"
}

// Complete answers prompt through Ollama's chat endpoint
func (p *OllamaCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: SystemPrompt}},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: joinPrompt(prompt, input)}},
		},
	}

	resp, err := p.client.GenerateContent(ctx, messages,
		llms.WithTemperature(float64(p.config.Temperature)),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	answer := strings.TrimSpace(resp.Choices[0].Content)
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}
