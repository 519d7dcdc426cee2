package llm

import (
	"context"
	"fmt"

	"github.com/opentender/backend/config"
)

// NewProvider 按配置选择后端，并包装重试逻辑
func NewProvider(ctx context.Context, cfg *config.Config) (*RetryingProvider, error) {
	var (
		backend Provider
		err     error
	)

	switch cfg.LLM.Provider {
	case "", "http":
		backend = NewClient(cfg)
	case "eino":
		backend, err = NewEinoProvider(ctx, EinoOptions{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.APIURL,
			Model:       cfg.LLM.Model,
			System:      cfg.LLM.SystemPrompt,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
	case "gemini":
		backend, err = NewGeminiProvider(ctx, GeminiOptions{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			System:      cfg.LLM.SystemPrompt,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}

	name := cfg.LLM.Provider
	if name == "" {
		name = "http"
	}
	return NewRetryingProvider(backend, RetryOptions{
		Name:         name,
		DefaultModel: cfg.LLM.Model,
		MaxTokens:    cfg.LLM.MaxTokens,
		MaxAttempts:  cfg.LLM.MaxAttempts,
		Backoff:      cfg.LLM.RetryBackoff,
		Timeout:      cfg.LLM.Timeout,
	}), nil
}
