package chat

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/util"
)

// Command message types.
type (
	// ToggleModeMsg toggles a generation mode.
	ToggleModeMsg struct {
		Mode session.Mode
	}

	// AttachMsg attaches the image at Path to the next submission.
	AttachMsg struct {
		Path string
	}

	// DetachMsg drops the pending attachment.
	DetachMsg struct{}

	// NewConversationMsg starts an empty conversation.
	NewConversationMsg struct{}

	// SetNameMsg changes the display name. Empty restores the default.
	SetNameMsg struct {
		Name string
	}

	// ToggleSidebarMsg shows or hides the history sidebar.
	ToggleSidebarMsg struct{}

	// SaveArtifactMsg writes the previewed artifact to disk.
	SaveArtifactMsg struct{}

	// CopyCodeMsg copies the previewed code to the clipboard.
	CopyCodeMsg struct{}

	// HelpMsg lists the commands.
	HelpMsg struct{}

	// UnknownCommandMsg indicates an unknown slash command was entered.
	UnknownCommandMsg struct {
		Command string
	}
)

// Command represents a slash command.
type Command struct {
	Name        string
	Args        string
	Description string
	Handler     func(args []string) tea.Msg
}

// CommandRegistry holds registered slash commands.
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry with default commands.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{
		commands: make(map[string]Command),
	}

	mode := func(m session.Mode) func([]string) tea.Msg {
		return func([]string) tea.Msg { return ToggleModeMsg{Mode: m} }
	}
	fixed := func(msg tea.Msg) func([]string) tea.Msg {
		return func([]string) tea.Msg { return msg }
	}

	r.Register(Command{Name: "image", Description: "Toggle image generation", Handler: mode(session.ModeImage)})
	r.Register(Command{Name: "code", Description: "Toggle code generation", Handler: mode(session.ModeCode)})
	r.Register(Command{Name: "slides", Description: "Toggle presentation generation", Handler: mode(session.ModePresentation)})
	r.Register(Command{
		Name:        "attach",
		Args:        "<path>",
		Description: "Attach an image to the next message",
		Handler: func(args []string) tea.Msg {
			if len(args) == 0 {
				return util.InfoMsg{Type: util.InfoTypeWarn, Msg: "usage: /attach <path>"}
			}
			return AttachMsg{Path: strings.Join(args, " ")}
		},
	})
	r.Register(Command{Name: "detach", Description: "Remove the pending attachment", Handler: fixed(DetachMsg{})})
	r.Register(Command{Name: "new", Description: "Start a new conversation", Handler: fixed(NewConversationMsg{})})
	r.Register(Command{
		Name:        "name",
		Args:        "[name]",
		Description: "Set your display name",
		Handler: func(args []string) tea.Msg {
			return SetNameMsg{Name: strings.Join(args, " ")}
		},
	})
	r.Register(Command{Name: "sidebar", Description: "Show or hide chat history", Handler: fixed(ToggleSidebarMsg{})})
	r.Register(Command{Name: "save", Description: "Save the previewed artifact", Handler: fixed(SaveArtifactMsg{})})
	r.Register(Command{Name: "copy", Description: "Copy the previewed code", Handler: fixed(CopyCodeMsg{})})
	r.Register(Command{Name: "help", Description: "List commands", Handler: fixed(HelpMsg{})})

	return r
}

// Register adds a command to the registry.
func (r *CommandRegistry) Register(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// Parse attempts to parse input as a slash command.
// Returns the command message and true if it's a command, nil and false otherwise.
func (r *CommandRegistry) Parse(input string) (tea.Msg, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil, false
	}

	// Split command and args.
	parts := strings.Fields(input[1:]) // Remove leading "/"
	if len(parts) == 0 {
		return nil, false
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	// Look up command.
	cmd, ok := r.commands[cmdName]
	if !ok {
		return UnknownCommandMsg{Command: cmdName}, true
	}

	return cmd.Handler(args), true
}

// GetCommands returns all registered commands sorted by name.
func (r *CommandRegistry) GetCommands() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	slices.SortFunc(cmds, func(a, b Command) int { return strings.Compare(a.Name, b.Name) })
	return cmds
}

// Help renders the command list.
func (r *CommandRegistry) Help() string {
	var b strings.Builder
	b.WriteString("**Commands**\n\n")
	for _, c := range r.GetCommands() {
		usage := "/" + c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		fmt.Fprintf(&b, "- `%s` %s\n", usage, c.Description)
	}
	b.WriteString("\n**Keys**\n\n")
	b.WriteString("- `ctrl+n` new chat, `ctrl+b` toggle history, `tab` focus history\n")
	b.WriteString("- `pgup`/`pgdn` scroll, `esc` close the preview\n")
	b.WriteString("- `ctrl+s` save artifact, `ctrl+y` copy code\n")
	return b.String()
}

// parseCommand is a helper method for the chat Model.
// Returns a tea.Cmd if the input is a command, nil otherwise.
func (m *Model) parseCommand(input string) tea.Cmd {
	if m.commandRegistry == nil {
		m.commandRegistry = NewCommandRegistry()
	}

	msg, isCmd := m.commandRegistry.Parse(input)
	if !isCmd {
		return nil
	}

	return util.CmdHandler(msg)
}
