// Package util holds small helpers shared by TUI components.
package util

import (
	tea "charm.land/bubbletea/v2"
)

// Model is a sub-component that renders to a string.
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
}

// InfoType classifies a status notice.
type InfoType int

// Notice kinds.
const (
	InfoTypeInfo InfoType = iota
	InfoTypeWarn
	InfoTypeError
)

// InfoMsg is a short notice for the status bar.
type InfoMsg struct {
	Type InfoType
	Msg  string
}

// CmdHandler wraps a message in a command.
func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// ReportInfo returns a command that shows an informational notice.
func ReportInfo(msg string) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeInfo, Msg: msg})
}

// ReportError returns a command that shows an error notice.
func ReportError(err error) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeError, Msg: err.Error()})
}
