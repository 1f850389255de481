package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/tui"
)

// TuiCmd starts the interactive interface.
type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	logger.Info("Starting TUI", "api", ctx.Client.BaseURL(), "session_store", ctx.Session.StoreName())
	p := tea.NewProgram(tui.NewModel(ctx.Client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
