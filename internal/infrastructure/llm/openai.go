package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"MoodScanner/internal/ports"
)

// OpenAIClient writes reports through the official OpenAI SDK.
type OpenAIClient struct {
	client       *openai.Client
	model        openai.ChatModel
	systemPrompt string
}

var _ ports.ReportWriter = (*OpenAIClient)(nil)

// NewOpenAIClient builds an SDK client. A non-empty baseURL points it at an
// OpenAI-compatible gateway. SDK retries are disabled; Retrying owns retries.
func NewOpenAIClient(apiKey, model, baseURL, systemPrompt string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client:       &client,
		model:        openai.ChatModel(model),
		systemPrompt: systemPrompt,
	}
}

// Generate sends the prompt as a single user turn.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(safePrompt(c.systemPrompt)),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
