package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	anthropicProvider "github.com/harunnryd/newsdesk/internal/model/providers/anthropic"
	geminiProvider "github.com/harunnryd/newsdesk/internal/model/providers/gemini"
	openaiProvider "github.com/harunnryd/newsdesk/internal/model/providers/openai"
)

// NewProvider creates the configured remote model client. It is called once
// at process start; the result is shared by all requests.
func NewProvider(ctx context.Context, cfg config.ModelConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.Vertex {
			if cfg.Project == "" {
				return nil, newsErrors.InvalidInput("model.project required for Vertex AI backend")
			}
		} else if cfg.APIKey == "" {
			return nil, newsErrors.InvalidInput("API key required for Gemini provider")
		}

		provider, err := geminiProvider.New(ctx, geminiProvider.Options{
			APIKey:   cfg.APIKey,
			Vertex:   cfg.Vertex,
			Project:  cfg.Project,
			Location: cfg.Location,
			BaseURL:  cfg.BaseURL,
		})
		if err != nil {
			return nil, newsErrors.WrapWithCategory(err, "failed to create Gemini provider", newsErrors.ErrInternal)
		}
		slog.Info("Provider initialized", "type", "gemini", "model", cfg.Name, "vertex", cfg.Vertex)
		return provider, nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, newsErrors.InvalidInput("API key required for OpenAI provider")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
		}
		slog.Info("Provider initialized", "type", "openai", "model", cfg.Name)
		return openaiProvider.New(cfg.APIKey, baseURL), nil

	case "anthropic":
		if cfg.APIKey == "" {
			return nil, newsErrors.InvalidInput("API key required for Anthropic provider")
		}
		slog.Info("Provider initialized", "type", "anthropic", "model", cfg.Name)
		return anthropicProvider.New(cfg.APIKey, cfg.BaseURL), nil

	default:
		return nil, newsErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", cfg.Provider))
	}
}
