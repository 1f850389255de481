package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/constants"
	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/session"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/tui/components/account"
	"github.com/julianstephens/mealplanner/internal/tui/components/recipesearch"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case sessionEventMsg:
		cmd := m.handleSessionEvent(session.Event(msg))
		return m, tea.Batch(cmd, waitForSessionEvent(m.events))

	case common.SessionExpiredMsg:
		return m, m.expire()

	case common.StatusMsg:
		m.status = msg.Text
		m.statusErr = msg.Error
		return m, nil

	case recipesearch.SelectedMsg:
		if msg.Key != searchKey {
			return m, m.broadcast(msg)
		}
		m.status = msg.Recipe.DisplayName() + ": " + msg.Recipe.IngredientList()
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
		return m, m.updateActive(msg)
	}

	// Results and ticks go to every screen; each one ignores keys that
	// are not its own.
	return m, m.broadcast(msg)
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return true, tea.Quit
	case m.modal():
		return false, nil
	case key.Matches(msg, m.keys.Tab):
		return true, m.cycle(1)
	case key.Matches(msg, m.keys.ShiftTab):
		return true, m.cycle(-1)
	case m.typing():
		return false, nil
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	}
	return false, nil
}

func (m *Model) cycle(step int) tea.Cmd {
	tabs := m.Tabs()
	i := (m.tabIndex() + step + len(tabs)) % len(tabs)
	return m.enter(tabs[i])
}

// enter switches to state and fetches its data, as every screen loads on
// mount.
func (m *Model) enter(state constants.SessionState) tea.Cmd {
	if !m.allowed(state) {
		state = constants.StateAccount
	}
	m.state = state
	m.status = ""

	switch state {
	case constants.StateIngredients:
		return m.ingredientsModel.Load()
	case constants.StateCalendar:
		return m.calendarModel.Load()
	case constants.StateRecommendations:
		return m.recommendationsModel.Load()
	case constants.StateDashboard:
		return m.dashboardModel.Load()
	case constants.StateAnalytics:
		return m.analyticsModel.Load()
	}
	return nil
}

func (m *Model) handleSessionEvent(ev session.Event) tea.Cmd {
	logger.Debug("Session event", "type", ev.Type.String(), "username", ev.Username)
	switch ev.Type {
	case session.EventLogin:
		m.loggedIn = true
		m.accountModel.SetUser(ev.Username, true)
		return m.enter(constants.StateIngredients)
	case session.EventLogout:
		m.loggedIn = false
		m.accountModel.SetUser("", false)
		if !m.allowed(m.state) {
			return m.enter(constants.StateAccount)
		}
		return nil
	case session.EventExpired:
		return m.expire()
	}
	return nil
}

// expire sends the user to the login form. It is reached both from the
// session manager's event and from a screen's failed call, so it must be
// idempotent.
func (m *Model) expire() tea.Cmd {
	m.loggedIn = false
	m.accountModel.SetUser("", false)
	m.state = constants.StateAccount
	if m.accountModel.Mode() == account.ModeLogin && m.accountModel.Notice() == apperrors.SessionExpiredMessage {
		return nil
	}
	return m.accountModel.ShowLogin(apperrors.SessionExpiredMessage, "")
}

func (m *Model) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.state {
	case constants.StateSearch:
		m.searchModel, cmd = m.searchModel.Update(msg)
	case constants.StateIngredients:
		m.ingredientsModel, cmd = m.ingredientsModel.Update(msg)
	case constants.StateCalendar:
		m.calendarModel, cmd = m.calendarModel.Update(msg)
	case constants.StateRecommendations:
		m.recommendationsModel, cmd = m.recommendationsModel.Update(msg)
	case constants.StateDashboard:
		m.dashboardModel, cmd = m.dashboardModel.Update(msg)
	case constants.StateAnalytics:
		m.analyticsModel, cmd = m.analyticsModel.Update(msg)
	case constants.StateAccount:
		m.accountModel, cmd = m.accountModel.Update(msg)
	}
	return cmd
}

func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 7)
	m.searchModel, cmds[0] = m.searchModel.Update(msg)
	m.ingredientsModel, cmds[1] = m.ingredientsModel.Update(msg)
	m.calendarModel, cmds[2] = m.calendarModel.Update(msg)
	m.recommendationsModel, cmds[3] = m.recommendationsModel.Update(msg)
	m.dashboardModel, cmds[4] = m.dashboardModel.Update(msg)
	m.analyticsModel, cmds[5] = m.analyticsModel.Update(msg)
	m.accountModel, cmds[6] = m.accountModel.Update(msg)
	return tea.Batch(cmds...)
}
