package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/docchat/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"DOCCHAT_RUNTIME_PATH" envDefault:".docchat"`
	LogJSON     bool   `env:"DOCCHAT_LOG_JSON" envDefault:"false"`

	Provider string `env:"DOCCHAT_LLM_PROVIDER" envDefault:"openai"`
	Model    string `env:"DOCCHAT_LLM_MODEL" envDefault:"gpt-3.5-turbo"`

	OpenAIAPIKey        string `env:"DOCCHAT_OPENAI_API_KEY" secret:"true"`
	AnthropicAPIKey     string `env:"DOCCHAT_ANTHROPIC_API_KEY" secret:"true"`
	OpenRouterAPIKey    string `env:"DOCCHAT_OPENROUTER_API_KEY" secret:"true"`
	OllamaAPIKey        string `env:"DOCCHAT_OLLAMA_API_KEY" secret:"true"`
	OllamaBaseURL       string `env:"DOCCHAT_OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	CustomOpenAIBaseURL string `env:"DOCCHAT_CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"DOCCHAT_CUSTOM_OPENAI_API_KEY" secret:"true"`

	// HistoryLimit caps how many archived exchanges seed a resumed session.
	HistoryLimit int `env:"DOCCHAT_HISTORY_LIMIT" envDefault:"20"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	return mustParse[AppConfig](ctx, "app")
}

func (c AppConfig) GetRuntimePath() string {
	return resolveRuntimePath(c.RuntimePath)
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.GetRuntimePath(), "docchat.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.GetRuntimePath(), ".env")
}

func (c AppConfig) GetModel() string               { return c.Model }
func (c AppConfig) GetProvider() string            { return c.Provider }
func (c AppConfig) GetAnthropicAPIKey() string     { return c.AnthropicAPIKey }
func (c AppConfig) GetOpenAIAPIKey() string        { return c.OpenAIAPIKey }
func (c AppConfig) GetOpenRouterAPIKey() string    { return c.OpenRouterAPIKey }
func (c AppConfig) GetOllamaAPIKey() string        { return c.OllamaAPIKey }
func (c AppConfig) GetOllamaBaseURL() string       { return c.OllamaBaseURL }
func (c AppConfig) GetCustomOpenAIBaseURL() string { return c.CustomOpenAIBaseURL }
func (c AppConfig) GetCustomOpenAIAPIKey() string  { return c.CustomOpenAIAPIKey }

// mustParse follows the process-wide policy: a malformed environment is fatal at startup.
func mustParse[T any](ctx context.Context, name string) *T {
	c, err := Parse[T]()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msgf("failed to parse %s config", name)
	}
	return c
}

func Parse[T any]() (*T, error) {
	c := new(T)
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}
