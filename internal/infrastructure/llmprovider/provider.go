package llmprovider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
	ProviderArk       = "ark"
)

const (
	DeepSeekBaseURL  = "https://api.deepseek.com"
	AnthropicBaseURL = "https://api.anthropic.com/v1/"
	ArkBaseURL       = "https://ark.cn-beijing.volces.com/api/v3"
)

// Config selects and tunes the chat model backing the agent.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// NewChatModel builds a tool-calling chat model for the configured provider.
// Anthropic is reached through its OpenAI-compatible endpoint.
func NewChatModel(ctx context.Context, cfg Config) (model.ToolCallingChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("LLM API key is required for provider %q", cfg.Provider)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM model is required")
	}
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			Timeout:     cfg.Timeout,
		})
	case ProviderAnthropic:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     orDefault(cfg.BaseURL, AnthropicBaseURL),
			Model:       cfg.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			Timeout:     cfg.Timeout,
		})
	case ProviderDeepSeek:
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     orDefault(cfg.BaseURL, DeepSeekBaseURL),
			Model:       cfg.Model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     cfg.Timeout,
		})
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     orDefault(cfg.BaseURL, ArkBaseURL),
			Model:       cfg.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
