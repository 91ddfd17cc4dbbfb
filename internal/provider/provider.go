// Package provider turns configuration into language models and image
// generators.
package provider

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"github.com/charmbracelet/catwalk/pkg/catwalk"

	"github.com/guilhermegouw/aurora/internal/config"
)

// ErrNotConfigured is returned when a task has no usable model or the
// provider has no credentials.
var ErrNotConfigured = errors.New("AI provider is not configured")

// Builder creates fantasy providers from configuration. Providers are built
// on first use and cached, so a missing key only fails the request that
// needs it.
type Builder struct {
	cfg   *config.Config
	cache map[string]fantasy.Provider
	mu    sync.Mutex
}

// NewBuilder creates a new provider Builder.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:   cfg,
		cache: make(map[string]fantasy.Provider),
	}
}

// Selection returns the model and provider configured for task.
func (b *Builder) Selection(task config.ModelTask) (config.SelectedModel, *config.ProviderConfig, error) {
	model, ok := b.cfg.Model(task)
	if !ok {
		return config.SelectedModel{}, nil, fmt.Errorf("%w: no %s model selected", ErrNotConfigured, task)
	}
	providerCfg, ok := b.cfg.Provider(model.Provider)
	if !ok {
		return config.SelectedModel{}, nil, fmt.Errorf("%w: provider %q", ErrNotConfigured, model.Provider)
	}
	if providerCfg.APIKey == "" {
		return config.SelectedModel{}, nil, fmt.Errorf("%w: provider %q has no API key", ErrNotConfigured, model.Provider)
	}
	return model, providerCfg, nil
}

// LanguageModel returns the language model configured for task.
func (b *Builder) LanguageModel(ctx context.Context, task config.ModelTask) (fantasy.LanguageModel, config.SelectedModel, error) {
	model, providerCfg, err := b.Selection(task)
	if err != nil {
		return nil, config.SelectedModel{}, err
	}

	p, err := b.getOrBuildProvider(providerCfg)
	if err != nil {
		return nil, config.SelectedModel{}, err
	}

	lm, err := p.LanguageModel(ctx, model.Model)
	if err != nil {
		return nil, config.SelectedModel{}, fmt.Errorf("getting language model %q: %w", model.Model, err)
	}
	return lm, model, nil
}

func (b *Builder) getOrBuildProvider(providerCfg *config.ProviderConfig) (fantasy.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.cache[providerCfg.ID]; ok {
		return p, nil
	}

	p, err := buildProvider(providerCfg)
	if err != nil {
		return nil, err
	}

	b.cache[providerCfg.ID] = p
	return p, nil
}

func buildProvider(providerCfg *config.ProviderConfig) (fantasy.Provider, error) {
	headers := maps.Clone(providerCfg.ExtraHeaders)

	//nolint:exhaustive // Only openai-compatible and anthropic providers are supported.
	switch providerCfg.Type {
	case catwalk.TypeOpenAI, catwalk.TypeOpenAICompat:
		var opts []openai.Option
		opts = append(opts, openai.WithAPIKey(providerCfg.APIKey))
		if len(headers) > 0 {
			opts = append(opts, openai.WithHeaders(headers))
		}
		if providerCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(providerCfg.BaseURL))
		}
		return openai.New(opts...)
	case catwalk.TypeAnthropic:
		var opts []anthropic.Option
		opts = append(opts, anthropic.WithAPIKey(providerCfg.APIKey))
		if len(headers) > 0 {
			opts = append(opts, anthropic.WithHeaders(headers))
		}
		if providerCfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(providerCfg.BaseURL))
		}
		return anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider type: %q", providerCfg.Type)
	}
}
