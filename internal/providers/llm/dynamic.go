package llm

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/docchat/internal/core"
)

// DynamicProvider routes calls to a provider that can be swapped at runtime.
// In-flight calls keep the provider they started with.
type DynamicProvider struct {
	config  core.ProviderConfig
	current atomic.Value
	mu      sync.Mutex
}

func NewDynamicProvider(ctx context.Context, config core.ProviderConfig) (*DynamicProvider, error) {
	d := &DynamicProvider{config: config}

	provider, err := NewProvider(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial provider: %w", err)
	}

	d.current.Store(provider)
	return d, nil
}

func (d *DynamicProvider) load() Provider {
	return d.current.Load().(Provider)
}

func (d *DynamicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return d.load().Complete(ctx, prompt)
}

func (d *DynamicProvider) Stream(ctx context.Context, prompt string, sink core.TokenSink) (string, error) {
	return d.load().Stream(ctx, prompt, sink)
}

func (d *DynamicProvider) Models(ctx context.Context) ([]core.Model, error) {
	return d.load().Models(ctx)
}

func (d *DynamicProvider) GetProvider() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config.GetProvider()
}

func (d *DynamicProvider) GetModel() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config.GetModel()
}

// ChangeModel switches to "provider/model", or to "model" on the current provider.
func (d *DynamicProvider) ChangeModel(ctx context.Context, target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	provider, model := d.config.GetProvider(), target
	if name, rest, ok := strings.Cut(target, "/"); ok && slices.Contains(Providers, name) {
		provider, model = name, rest
	}
	if model == "" {
		return fmt.Errorf("%w: empty model name", core.ErrInvalidConfig)
	}

	cfg := overrideConfig{ProviderConfig: d.config, provider: provider, model: model}
	next, err := NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	d.config = cfg
	d.current.Store(next)
	return nil
}

type overrideConfig struct {
	core.ProviderConfig
	provider string
	model    string
}

func (c overrideConfig) GetProvider() string { return c.provider }
func (c overrideConfig) GetModel() string    { return c.model }
