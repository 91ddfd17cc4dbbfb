package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveConfig contains only the fields we want to save to disk.
// Provider keys are saved as written by the user, never resolved.
type SaveConfig struct {
	Models    map[ModelTask]SelectedModel    `json:"models,omitempty"`
	Providers map[string]*SaveProviderConfig `json:"providers,omitempty"`
	Options   *Options                       `json:"options,omitempty"`
}

// SaveProviderConfig is a minimal provider config for saving.
type SaveProviderConfig struct {
	Type    string `json:"type,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// SaveToFile writes a provider key template (e.g. "$OPENAI_API_KEY") and the
// model selections to path.
func SaveToFile(cfg *Config, path string, apiKeyTemplates map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	saveCfg := &SaveConfig{
		Models:    cfg.Models,
		Providers: make(map[string]*SaveProviderConfig),
		Options:   cfg.Options,
	}
	for id, p := range cfg.Providers {
		saveCfg.Providers[id] = &SaveProviderConfig{
			Type:    string(p.Type),
			BaseURL: p.BaseURL,
			APIKey:  apiKeyTemplates[id],
		}
	}

	data, err := json.MarshalIndent(saveCfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // Restrictive permissions for security.
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
