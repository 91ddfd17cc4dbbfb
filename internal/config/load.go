package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/joho/godotenv"
)

const (
	configFileName = "aurora.json"

	defaultAnthropicEndpoint = "https://api.anthropic.com"
	defaultOpenAIEndpoint    = "https://api.openai.com/v1"

	// DefaultAppName is shown in the header when no app name is configured.
	DefaultAppName = "Aurora"

	// DefaultWelcomeSubtitle is shown under the welcome title.
	DefaultWelcomeSubtitle = "What can I help with?"
)

// envProvider describes a provider that can be configured from the environment.
type envProvider struct {
	id     string
	typ    catwalk.Type
	envs   []string
	models map[ModelTask]string
}

var envProviders = []envProvider{
	{
		id:   "openai",
		typ:  catwalk.TypeOpenAI,
		envs: []string{"OPENAI_API_KEY", "API_KEY"},
		models: map[ModelTask]string{
			TaskChat:       "gpt-4o-mini",
			TaskVision:     "gpt-4o-mini",
			TaskStructured: "gpt-4o-mini",
			TaskImage:      "dall-e-3",
		},
	},
	{
		id:   "anthropic",
		typ:  catwalk.TypeAnthropic,
		envs: []string{"ANTHROPIC_API_KEY"},
		models: map[ModelTask]string{
			TaskChat:       "claude-sonnet-4-20250514",
			TaskVision:     "claude-sonnet-4-20250514",
			TaskStructured: "claude-sonnet-4-20250514",
		},
	},
}

// Load finds and loads configuration from standard locations.
// It merges global config with project config (project takes precedence),
// then fills providers and models from the environment.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := NewConfig()
	globalPath := GlobalConfigPath()
	if err := loadFile(globalPath, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	cfg.path = globalPath

	if projectPath := findProjectConfig(); projectPath != "" {
		projectCfg := NewConfig()
		if err := loadFile(projectPath, projectCfg); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
		mergeConfig(cfg, projectCfg)
	}

	finish(cfg, NewResolver())
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.path = path

	finish(cfg, NewResolver())
	return cfg, nil
}

func finish(cfg *Config, resolver *Resolver) {
	applyDefaults(cfg)
	providersFromEnv(cfg, resolver)
	configureProviders(cfg, resolver)
	configureDefaultModels(cfg)
}

// loadDotEnv reads .env from the working directory. A missing file is fine
// and variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config locations, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Models == nil {
		cfg.Models = make(map[ModelTask]SelectedModel)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}
	return nil
}

func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		for _, name := range []string{configFileName, "." + configFileName} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func mergeConfig(dst, src *Config) {
	for task, m := range src.Models {
		dst.Models[task] = m
	}
	for id, p := range src.Providers {
		dst.Providers[id] = p
	}

	if src.Options == nil {
		return
	}
	if dst.Options == nil {
		dst.Options = &Options{}
	}
	o, s := dst.Options, src.Options
	for _, f := range []struct{ dst, src *string }{
		{&o.AppName, &s.AppName},
		{&o.WelcomeTitle, &s.WelcomeTitle},
		{&o.WelcomeSubtitle, &s.WelcomeSubtitle},
		{&o.SystemPrompt, &s.SystemPrompt},
		{&o.DataDir, &s.DataDir},
		{&o.Storage, &s.Storage},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	if s.Debug {
		o.Debug = true
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	o := cfg.Options
	if o.AppName == "" {
		o.AppName = DefaultAppName
	}
	if o.WelcomeTitle == "" {
		o.WelcomeTitle = "Hello, I'm " + o.AppName
	}
	if o.WelcomeSubtitle == "" {
		o.WelcomeSubtitle = DefaultWelcomeSubtitle
	}
	if o.DataDir == "" {
		o.DataDir = defaultDataDir()
	}
	if o.Storage == "" {
		o.Storage = StorageSQLite
	}
}

// providersFromEnv adds known providers whose API key is in the environment
// and that the config files did not mention.
func providersFromEnv(cfg *Config, resolver *Resolver) {
	for _, ep := range envProviders {
		if _, ok := cfg.Providers[ep.id]; ok {
			continue
		}
		for _, env := range ep.envs {
			if _, err := resolver.Resolve("$" + env); err != nil {
				continue
			}
			cfg.Providers[ep.id] = &ProviderConfig{
				ID:     ep.id,
				Type:   ep.typ,
				APIKey: "$" + env,
			}
			break
		}
	}
}

// configureProviders resolves secrets and fills in provider metadata.
// A provider whose key cannot be resolved keeps an empty key, so requests
// through it fail as unconfigured instead of the whole config failing.
func configureProviders(cfg *Config, resolver *Resolver) {
	for id, p := range cfg.Providers {
		if p.ID == "" {
			p.ID = id
		}
		if p.Name == "" {
			p.Name = id
		}
		if p.Type == "" {
			p.Type = guessType(id)
		}
		if p.APIKey != "" {
			resolved, err := resolver.Resolve(p.APIKey)
			if err != nil {
				resolved = ""
			}
			p.APIKey = resolved
		}
		if p.BaseURL != "" {
			if resolved, err := resolver.Resolve(p.BaseURL); err == nil {
				p.BaseURL = resolved
			}
		} else {
			p.BaseURL = getDefaultAPIEndpoint(p.Type)
		}
		for k, v := range p.ExtraHeaders {
			if resolved, err := resolver.Resolve(v); err == nil {
				p.ExtraHeaders[k] = resolved
			}
		}
	}
}

// configureDefaultModels selects models for tasks the config left empty,
// using the first known provider that is configured.
func configureDefaultModels(cfg *Config) {
	for _, ep := range envProviders {
		p, ok := cfg.Provider(ep.id)
		if !ok || p.APIKey == "" {
			continue
		}
		for task, model := range ep.models {
			if _, set := cfg.Models[task]; !set {
				cfg.Models[task] = SelectedModel{Model: model, Provider: ep.id}
			}
		}
	}
}

// KeyTemplates returns the "$ENV" API key reference written for each known
// provider when a config file is created.
func KeyTemplates() map[string]string {
	templates := make(map[string]string, len(envProviders))
	for _, ep := range envProviders {
		templates[ep.id] = "$" + ep.envs[0]
	}
	return templates
}

func guessType(id string) catwalk.Type {
	if id == "anthropic" {
		return catwalk.TypeAnthropic
	}
	if id == "openai" {
		return catwalk.TypeOpenAI
	}
	return catwalk.TypeOpenAICompat
}

func getDefaultAPIEndpoint(providerType catwalk.Type) string {
	//nolint:exhaustive // Other provider types require user-configured endpoints.
	switch providerType {
	case catwalk.TypeAnthropic:
		return defaultAnthropicEndpoint
	case catwalk.TypeOpenAI, catwalk.TypeOpenAICompat:
		return defaultOpenAIEndpoint
	default:
		return ""
	}
}

func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}
