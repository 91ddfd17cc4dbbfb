package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/guilhermegouw/aurora/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit configuration",
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigSetCmd(),
		newConfigInitCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			masked := *cfg
			masked.Providers = make(map[string]*config.ProviderConfig, len(cfg.Providers))
			for id, p := range cfg.Providers {
				cp := *p
				cp.APIKey = maskSecret(p.APIKey)
				masked.Providers[id] = &cp
			}

			data, err := json.MarshalIndent(&masked, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where configuration and data are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config File: %s\n", cfg.Path())
			fmt.Fprintf(out, "Data Directory: %s\n", cfg.DataDir())
			fmt.Fprintf(out, "Debug Log: %s\n", cfg.DebugLogPath())
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one configuration field",
		Long: `Set one field of the config file, leaving the rest untouched.

Keys use dot notation. Values that parse as JSON (numbers, booleans,
objects) are stored as such; anything else is stored as a string.`,
		Example: `  aurora config set options.app_name "Nova"
  aurora config set options.storage file
  aurora config set models.chat.model gpt-4o
  aurora config set providers.openai.api_key '$OPENAI_API_KEY'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.SetConfigField(args[0], parseValue(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], cfg.Path())
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file referencing API keys from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GlobalConfigPath()
			force, _ := cmd.Flags().GetBool("force") //nolint:errcheck // flag is registered below
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking config file: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := config.SaveToFile(cfg, path, config.KeyTemplates()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			if len(cfg.Providers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No provider keys found. Set OPENAI_API_KEY or ANTHROPIC_API_KEY, or use --offline.")
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

// parseValue turns a command-line value into the JSON value to store.
func parseValue(raw string) any {
	if gjson.Valid(raw) {
		return gjson.Parse(raw).Value()
	}
	return raw
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-4:]
	}
}
