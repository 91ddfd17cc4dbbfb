package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/aurora/internal/history"
)

const listTitleWidth = 42

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "history"},
		Short:   "Manage saved conversations",
		Long: `List, show, pin and delete saved conversations.

Commands that take an ID also accept any unique prefix of it.`,
	}

	cmd.AddCommand(
		newSessionsListCmd(),
		newSessionsShowCmd(),
		newSessionsPinCmd(true),
		newSessionsPinCmd(false),
		newSessionsDeleteCmd(),
	)
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [query]",
		Aliases: []string{"ls"},
		Short:   "List saved conversations, pinned first",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sessions := a.ctrl.Sessions()
			if len(args) == 1 {
				sessions = a.ctrl.SearchSessions(args[0])
			}

			asJSON, _ := cmd.Flags().GetBool("json") //nolint:errcheck // flag is registered below
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sessions)
			}
			printSessions(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print sessions as JSON")
	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id := resolveSessionID(a.ctrl.Sessions(), args[0])
			s, ok := a.ctrl.Session(id)
			if !ok {
				return fmt.Errorf("session %s: %w", args[0], history.ErrNotFound)
			}

			asJSON, _ := cmd.Flags().GetBool("json") //nolint:errcheck // flag is registered below
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			printTranscript(cmd.OutOrStdout(), s, a.ctrl.DisplayName(), a.cfg.Options.AppName)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the session as JSON")
	return cmd
}

func newSessionsPinCmd(pin bool) *cobra.Command {
	use, short := "pin <id>", "Pin a conversation to the top of the list"
	if !pin {
		use, short = "unpin <id>", "Unpin a conversation"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id := resolveSessionID(a.ctrl.Sessions(), args[0])
			s, ok := a.ctrl.Session(id)
			if !ok {
				return fmt.Errorf("session %s: %w", args[0], history.ErrNotFound)
			}
			if s.Pinned != pin {
				if err := a.ctrl.TogglePin(contextOf(cmd), id); err != nil {
					return err
				}
			}

			state := "Pinned"
			if !pin {
				state = "Unpinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n", state, s.Title)
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id := resolveSessionID(a.ctrl.Sessions(), args[0])
			s, ok := a.ctrl.Session(id)
			if !ok {
				return fmt.Errorf("session %s: %w", args[0], history.ErrNotFound)
			}
			if err := a.ctrl.DeleteSession(contextOf(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", s.Title)
			return nil
		},
	}
}

// resolveSessionID expands a unique ID prefix. Anything else is returned
// unchanged so the lookup reports it as not found.
func resolveSessionID(sessions []history.Session, ref string) string {
	match := ""
	for _, s := range sessions {
		if s.ID == ref {
			return ref
		}
		if strings.HasPrefix(s.ID, ref) {
			if match != "" {
				return ref
			}
			match = s.ID
		}
	}
	if match == "" {
		return ref
	}
	return match
}

func printSessions(w io.Writer, sessions []history.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No saved conversations.")
		return
	}
	for _, s := range sessions {
		marker := " "
		if s.Pinned {
			marker = "★"
		}
		fmt.Fprintf(w, "%s %s  %s  %3d msgs  %s\n",
			marker,
			s.ID,
			padTitle(s.Title, listTitleWidth),
			len(s.Messages),
			s.UpdatedAt().Format("2006-01-02 15:04"),
		)
	}
}

func printTranscript(w io.Writer, s history.Session, userName, appName string) {
	fmt.Fprintln(w, s.Title)
	fmt.Fprintln(w, strings.Repeat("─", 40))
	for _, msg := range s.Messages {
		author := appName
		if msg.Role == history.RoleUser {
			author = userName
		}
		fmt.Fprintf(w, "\n%s:\n", author)
		if msg.Attachment != nil {
			fmt.Fprintf(w, "[attachment: %s]\n", attachmentRef(msg.Attachment.URL))
		}
		fmt.Fprintln(w, msg.Content)
	}
}

// padTitle pads or cuts a title to width terminal cells.
func padTitle(title string, width int) string {
	t := ansi.Truncate(title, width, "…")
	return t + strings.Repeat(" ", max(0, width-lipgloss.Width(t)))
}

func attachmentRef(url string) string {
	if strings.HasPrefix(url, "data:") {
		mime, _, _ := strings.Cut(strings.TrimPrefix(url, "data:"), ";")
		return "inline " + mime
	}
	return url
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
