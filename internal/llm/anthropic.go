package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const defaultAnthropicModel = "claude-3-5-haiku-20241022"

// AnthropicCompleter implements Completer for Anthropic Claude models
type AnthropicCompleter struct {
	client *anthropic.Client
	config Config
}

// NewAnthropicCompleter creates a new Anthropic completer
func NewAnthropicCompleter(config Config) (*AnthropicCompleter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(newHTTPClient(config, config.TimeoutDuration())),
	}
	if config.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(config.BaseURL, "/")))
	}

	return &AnthropicCompleter{
		client: anthropic.NewClient(config.APIKey, opts...),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicCompleter) Name() string {
	return "anthropic"
}

// Complete answers prompt with Anthropic's Messages API
func (p *AnthropicCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	model := p.config.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	content := joinPrompt(prompt, input)
	temperature := p.config.Temperature

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		System:      SystemPrompt,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &content},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			b.WriteString(*block.Text)
		}
	}

	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", fmt.Errorf("no content in Anthropic response: %w", ErrEmptyResponse)
	}
	return answer, nil
}
