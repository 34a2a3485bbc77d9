// Package llm builds chat models and embedders for the configured provider.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
)

// provider describes how to reach one model backend. All providers share a
// single construction path; adding one means adding a table row.
type provider struct {
	apiKeyEnv  string
	baseURL    string
	buildModel func(ctx context.Context, apiKey, baseURL, modelName string) (model.ChatModel, error)
}

var providers = map[string]provider{
	"openai": {
		apiKeyEnv: "OPENAI_API_KEY",
		baseURL:   "https://api.openai.com/v1",
		buildModel: func(ctx context.Context, apiKey, baseURL, modelName string) (model.ChatModel, error) {
			maxTokens := 8192
			return openai.NewChatModel(ctx, &openai.ChatModelConfig{
				BaseURL:   baseURL,
				APIKey:    apiKey,
				Model:     modelName,
				MaxTokens: &maxTokens,
			})
		},
	},
	"deepseek": {
		apiKeyEnv: "DEEPSEEK_API_KEY",
		baseURL:   "https://api.deepseek.com/v1",
		buildModel: func(ctx context.Context, apiKey, baseURL, modelName string) (model.ChatModel, error) {
			return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
				APIKey:    apiKey,
				BaseURL:   baseURL,
				Model:     modelName,
				MaxTokens: 8192,
			})
		},
	},
}

// NewChatModel constructs a chat model for the configured provider. modelName
// is either cfg.DeepThinkLLM or cfg.QuickThinkLLM depending on the caller.
func NewChatModel(ctx context.Context, cfg *config.Config, modelName string) (model.ChatModel, error) {
	p, ok := providers[cfg.LLMProvider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}

	apiKey := apiKeyFor(cfg, p)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is required for provider %q", p.apiKeyEnv, cfg.LLMProvider)
	}

	baseURL := p.baseURL
	if cfg.BackendURL != "" {
		baseURL = cfg.BackendURL
	}
	return p.buildModel(ctx, apiKey, baseURL, modelName)
}

func apiKeyFor(cfg *config.Config, p provider) string {
	switch p.apiKeyEnv {
	case "OPENAI_API_KEY":
		if cfg.OpenAIAPIKey != "" {
			return cfg.OpenAIAPIKey
		}
	case "DEEPSEEK_API_KEY":
		if cfg.DeepSeekAPIKey != "" {
			return cfg.DeepSeekAPIKey
		}
	}
	return os.Getenv(p.apiKeyEnv)
}
