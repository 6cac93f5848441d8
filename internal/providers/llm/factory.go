package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

// Provider is a language model that can also enumerate its backend's models.
type Provider interface {
	core.LanguageModel
	core.ModelLister
}

var Providers = []string{"openai", "anthropic", "openrouter", "ollama", "custom"}

// NewProvider creates the language model selected by configuration.
func NewProvider(ctx context.Context, cfg core.ProviderConfig) (Provider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.GetProvider()).
		Str("model", cfg.GetModel()).
		Msg("starting llm provider")

	switch cfg.GetProvider() {
	case "openai":
		return NewOpenAI(cfg.GetOpenAIAPIKey(), cfg.GetModel()), nil
	case "anthropic":
		return NewAnthropic(cfg.GetAnthropicAPIKey(), cfg.GetModel()), nil
	case "openrouter":
		return NewOpenRouter(cfg.GetOpenRouterAPIKey(), cfg.GetModel()), nil
	case "ollama":
		return NewOllama(cfg.GetOllamaBaseURL(), cfg.GetOllamaAPIKey(), cfg.GetModel()), nil
	case "custom":
		if cfg.GetCustomOpenAIBaseURL() == "" {
			return nil, fmt.Errorf("%w: custom provider needs a base URL", core.ErrInvalidConfig)
		}
		return NewCustomOpenAI(cfg.GetCustomOpenAIBaseURL(), cfg.GetCustomOpenAIAPIKey(), cfg.GetModel()), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownProvider, cfg.GetProvider())
	}
}
