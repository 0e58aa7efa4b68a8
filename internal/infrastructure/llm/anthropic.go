package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"MoodScanner/internal/ports"
)

const defaultAnthropicMaxTokens = 2048

// AnthropicClient writes reports through the Anthropic Messages API.
type AnthropicClient struct {
	client       *anthropic.Client
	model        anthropic.Model
	maxTokens    int64
	systemPrompt string
}

var _ ports.ReportWriter = (*AnthropicClient)(nil)

// NewAnthropicClient builds an SDK client. SDK retries are disabled; Retrying owns retries.
func NewAnthropicClient(apiKey, model, baseURL, systemPrompt string, maxTokens int) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(anthropic.ModelClaudeHaiku4_5)
	}
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client:       &client,
		model:        anthropic.Model(model),
		maxTokens:    int64(maxTokens),
		systemPrompt: systemPrompt,
	}
}

// Generate sends the prompt and concatenates the text blocks of the reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: safePrompt(c.systemPrompt)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(b.String()), nil
}
