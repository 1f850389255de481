package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mealplanner/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateSearch:
		content = m.searchModel.View()
	case constants.StateIngredients:
		content = m.ingredientsModel.View()
	case constants.StateCalendar:
		content = m.calendarModel.View()
	case constants.StateRecommendations:
		content = m.recommendationsModel.View()
	case constants.StateDashboard:
		content = m.dashboardModel.View()
	case constants.StateAnalytics:
		content = m.analyticsModel.View()
	case constants.StateAccount:
		content = m.accountModel.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for _, state := range m.Tabs() {
		title := tabTitles[state]
		if m.state == state {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.loggedIn && m.accountModel.DisplayName() != "" {
		tabs = append(tabs, userStyle.Render("● "+m.accountModel.DisplayName()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return statusErrorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}
