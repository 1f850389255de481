// Package common holds messages and styles shared by the TUI components.
package common

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/julianstephens/mealplanner/internal/errors"
)

// SessionExpiredMsg tells the root model to send the user back to the
// login form.
type SessionExpiredMsg struct{}

// StatusMsg shows a transient line in the root status bar.
type StatusMsg struct {
	Text  string
	Error bool
}

// CheckSession returns a command that reports an expired session when err
// is a session error, or nil.
func CheckSession(err error) tea.Cmd {
	if err == nil || !apperrors.IsSessionInvalid(err) {
		return nil
	}
	return func() tea.Msg { return SessionExpiredMsg{} }
}

// Status returns a command delivering a StatusMsg.
func Status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Error: isErr} }
}

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
	BarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)
