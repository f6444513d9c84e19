package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter implements Completer for OpenAI chat models
type OpenAICompleter struct {
	client *openai.Client
	config Config
}

// NewOpenAICompleter creates a new OpenAI completer
func NewOpenAICompleter(config Config) (*OpenAICompleter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(config, config.TimeoutDuration())

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAICompleter) Name() string {
	return "openai"
}

// Complete answers prompt with OpenAI's Chat Completions API
func (p *OpenAICompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini // Default to gpt-4o-mini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: joinPrompt(prompt, input),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: p.config.Temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI: %w", ErrEmptyResponse)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}
