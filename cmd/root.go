// Package cmd provides the CLI commands for Aurora.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/aurora/internal/tui"
	"github.com/guilhermegouw/aurora/internal/tui/page/chat"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aurora",
		Short: "Terminal chat client for generative AI",
		Long: `Aurora is a terminal chat client for a hosted generative-AI API.

Besides streaming chat it can:
  - Describe or transcribe an attached image
  - Generate images from a prompt
  - Generate a self-contained web page with a live preview
  - Outline a slide presentation

Conversations are saved locally and can be pinned, searched and resumed.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	flags := cmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug logging to the data directory")
	flags.Bool("offline", false, "Use the built-in echo gateway instead of a provider")
	flags.String("storage", "", "Storage backend: sqlite, file, memory or a redis:// URL")

	cmd.AddCommand(
		newAskCmd(),
		newSessionsCmd(),
		newNameCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.debugPath != "" {
		fmt.Fprintf(os.Stderr, "Debug: %s\n", a.debugPath)
	}

	opts := a.cfg.Options
	return tui.Run(contextOf(cmd), a.ctrl, a.hub, chat.Options{
		AppName:         opts.AppName,
		WelcomeTitle:    opts.WelcomeTitle,
		WelcomeSubtitle: opts.WelcomeSubtitle,
		ArtifactDir:     artifactDir(a.cfg.DataDir()),
	})
}

func artifactDir(dataDir string) string {
	return filepath.Join(dataDir, "artifacts")
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
