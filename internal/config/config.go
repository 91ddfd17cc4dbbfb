// Package config provides configuration management for Aurora.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/tidwall/sjson"
)

const appName = "aurora"

// ModelTask names the job a model is selected for.
type ModelTask string

// Model task constants.
const (
	TaskChat       ModelTask = "chat"
	TaskVision     ModelTask = "vision"
	TaskStructured ModelTask = "structured"
	TaskImage      ModelTask = "image"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// SelectedModel is the model chosen for a task.
type SelectedModel struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Model       string   `json:"model"`
	Provider    string   `json:"provider"`
	MaxTokens   int64    `json:"max_tokens,omitempty"`
}

// ProviderConfig holds provider authentication and settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type ProviderConfig struct {
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name,omitempty"`
	Type         catwalk.Type      `json:"type,omitempty"`
	BaseURL      string            `json:"base_url,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	Disable      bool              `json:"disable,omitempty"`
}

// Config is the top-level configuration structure.
type Config struct {
	Models    map[ModelTask]SelectedModel `json:"models"`
	Providers map[string]*ProviderConfig  `json:"providers"`
	Options   *Options                    `json:"options,omitempty"`

	path string
}

// Options holds application settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type Options struct {
	AppName         string `json:"app_name,omitempty"`
	WelcomeTitle    string `json:"welcome_title,omitempty"`
	WelcomeSubtitle string `json:"welcome_subtitle,omitempty"`
	SystemPrompt    string `json:"system_prompt,omitempty"`
	DataDir         string `json:"data_directory,omitempty"`
	Storage         string `json:"storage,omitempty"`
	Debug           bool   `json:"debug,omitempty"`
}

// NewConfig creates a new Config with initialized maps.
func NewConfig() *Config {
	return &Config{
		Models:    make(map[ModelTask]SelectedModel),
		Providers: make(map[string]*ProviderConfig),
		Options:   &Options{},
	}
}

// Model returns the model selected for task. Tasks without their own
// selection fall back to the chat model; image generation does not.
func (c *Config) Model(task ModelTask) (SelectedModel, bool) {
	if m, ok := c.Models[task]; ok && m.Model != "" {
		return m, true
	}
	if task == TaskImage {
		return SelectedModel{}, false
	}
	m, ok := c.Models[TaskChat]
	return m, ok && m.Model != ""
}

// Provider returns the enabled provider with the given ID.
func (c *Config) Provider(id string) (*ProviderConfig, bool) {
	p, ok := c.Providers[id]
	if !ok || p.Disable {
		return nil, false
	}
	return p, true
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return defaultDataDir()
}

// DebugLogPath returns where debug logs are written.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.DataDir(), "debug.log")
}

// Path returns the file SetConfigField writes to.
func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	return GlobalConfigPath()
}

// SetConfigField updates a single field in the config file using JSON path notation.
// This uses sjson for surgical updates - only the specified field is modified.
func (c *Config) SetConfigField(key string, value any) error {
	configPath := c.Path()

	//nolint:gosec // G304: configPath is from trusted config locations, not user input.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading config file: %w", err)
		}
		data = []byte("{}")
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	//nolint:gosec // 0o600 is intentionally restrictive for security.
	if err := os.WriteFile(configPath, []byte(newData), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
