package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"MoodScanner/internal/config"
	"MoodScanner/internal/ports"
)

const (
	ProviderChatGPT   = "chatgpt"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultChatGPTEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOllamaEndpoint  = "http://localhost:11434/v1/chat/completions"
	defaultSystemPrompt    = "Ты — аналитик СМИ. Пиши отчеты только на русском языке."
)

// NewWriter builds the configured provider wrapped in Retrying.
func NewWriter(cfg config.LLMConfig, logger *slog.Logger) (ports.ReportWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var writer ports.ReportWriter
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case ProviderChatGPT:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm provider %s requires an api key", provider)
		}
		writer = NewChatGPTClient(orDefault(cfg.Endpoint, defaultChatGPTEndpoint), cfg.Model, cfg.APIKey, cfg.SystemPrompt)
	case ProviderOllama, "":
		writer = NewChatGPTClient(orDefault(cfg.Endpoint, defaultOllamaEndpoint), cfg.Model, cfg.APIKey, cfg.SystemPrompt)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm provider %s requires an api key", provider)
		}
		writer = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.Endpoint, cfg.SystemPrompt)
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm provider %s requires an api key", provider)
		}
		writer = NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.Endpoint, cfg.SystemPrompt, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return NewRetrying(writer, RetryOptions{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger.With("component", "llm", "provider", cfg.Provider),
	}), nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
