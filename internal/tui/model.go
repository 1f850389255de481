package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/api"
	cal "github.com/julianstephens/mealplanner/internal/calendar"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/session"
	"github.com/julianstephens/mealplanner/internal/tui/components/account"
	"github.com/julianstephens/mealplanner/internal/tui/components/analytics"
	"github.com/julianstephens/mealplanner/internal/tui/components/calendar"
	"github.com/julianstephens/mealplanner/internal/tui/components/dashboard"
	"github.com/julianstephens/mealplanner/internal/tui/components/ingredients"
	"github.com/julianstephens/mealplanner/internal/tui/components/recipesearch"
	"github.com/julianstephens/mealplanner/internal/tui/components/recommendations"
)

const searchKey = "search"

var tabTitles = map[constants.SessionState]string{
	constants.StateSearch:          "Search",
	constants.StateIngredients:     "Ingredients",
	constants.StateCalendar:        "Calendar",
	constants.StateRecommendations: "Recommendations",
	constants.StateDashboard:       "Dashboard",
	constants.StateAnalytics:       "Analytics",
	constants.StateAccount:         "Account",
}

var (
	guestTabs = []constants.SessionState{constants.StateSearch, constants.StateAccount}
	userTabs  = []constants.SessionState{
		constants.StateSearch,
		constants.StateIngredients,
		constants.StateCalendar,
		constants.StateRecommendations,
		constants.StateDashboard,
		constants.StateAnalytics,
		constants.StateAccount,
	}
)

// sessionEventMsg carries a session.Event from the manager into Update.
type sessionEventMsg session.Event

// recommendationService joins the pantry and recipe clients for the
// recommendations screen.
type recommendationService struct {
	client *api.Client
}

func (s recommendationService) Pantry(ctx context.Context) ([]models.Ingredient, error) {
	return s.client.Ingredients().List(ctx)
}

func (s recommendationService) Recommend(ctx context.Context, q models.SearchQuery) (models.RecipePage, error) {
	return s.client.Recipes().Recommend(ctx, q)
}

// Model is the root TUI model. It owns the tabs and routes messages to them.
type Model struct {
	client  *api.Client
	session *session.Manager
	events  chan session.Event
	planner *cal.Planner

	state    constants.SessionState
	loggedIn bool
	keys     KeyMap
	help     help.Model

	searchModel          recipesearch.Model
	ingredientsModel     ingredients.Model
	calendarModel        calendar.Model
	recommendationsModel recommendations.Model
	dashboardModel       dashboard.Model
	analyticsModel       analytics.Model
	accountModel         account.Model

	status    string
	statusErr bool
	quitting  bool
	width     int
	height    int
}

// forwardSessionEvents queues session changes for Update without blocking
// the caller. Events that find the queue full are dropped.
func forwardSessionEvents(events chan<- session.Event) func(session.Event) {
	return func(ev session.Event) {
		select {
		case events <- ev:
		default:
			logger.Warn("Dropped session event, queue full", "event", ev.Type, "queued", len(events))
		}
	}
}

// NewModel builds the root model. Session changes made anywhere,
// including inside API calls, are delivered to Update as messages.
func NewModel(client *api.Client) Model {
	sess := client.Session()
	events := make(chan session.Event, 16)
	sess.Subscribe(forwardSessionEvents(events))

	recipes := client.Recipes()
	planner := cal.NewPlanner(client.Calendar())

	am := account.New(client.Auth(), 0, 0)
	loggedIn := sess.LoggedIn()
	am.SetUser(sess.Username(), loggedIn)

	m := Model{
		client:   client,
		session:  sess,
		events:   events,
		planner:  planner,
		state:    constants.StateSearch,
		loggedIn: loggedIn,
		keys:     DefaultKeyMap(),
		help:     help.New(),

		searchModel:          recipesearch.New(searchKey, recipes.Search, constants.SearchPageSize, 0, 0),
		ingredientsModel:     ingredients.New(client.Ingredients(), 0, 0),
		calendarModel:        calendar.New(planner, recipes.Search, 0, 0),
		recommendationsModel: recommendations.New(recommendationService{client: client}, 0, 0),
		dashboardModel:       dashboard.New(client.Analytics().RemainingIngredients, 0, 0),
		analyticsModel:       analytics.New(client.Analytics().Aggregated, 0, 0),
		accountModel:         am,
	}
	return m
}

func waitForSessionEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg(<-events)
	}
}

// Tabs returns the tabs available for the current session.
func (m Model) Tabs() []constants.SessionState {
	if m.loggedIn {
		return userTabs
	}
	return guestTabs
}

// State is whether a session is active.
func (m Model) State() constants.SessionState { return m.state }

func (m Model) tabIndex() int {
	for i, s := range m.Tabs() {
		if s == m.state {
			return i
		}
	}
	return 0
}

func (m Model) allowed(state constants.SessionState) bool {
	for _, s := range m.Tabs() {
		if s == state {
			return true
		}
	}
	return false
}

// typing reports whether the active screen has a text field focused, in
// which case single-letter shortcuts belong to the screen.
func (m Model) typing() bool {
	switch m.state {
	case constants.StateSearch:
		return m.searchModel.Typing()
	case constants.StateIngredients:
		return m.ingredientsModel.Typing()
	case constants.StateCalendar:
		return m.calendarModel.Typing()
	case constants.StateAccount:
		return m.accountModel.Typing()
	}
	return false
}

// modal reports whether the active screen owns tab and esc.
func (m Model) modal() bool {
	switch m.state {
	case constants.StateIngredients:
		return m.ingredientsModel.Adding()
	case constants.StateCalendar:
		return m.calendarModel.DialogOpen()
	case constants.StateAccount:
		return m.accountModel.Typing()
	}
	return false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Help}
	if !m.typing() {
		keys = append(keys, m.keys.Quit)
	}
	return append(keys, m.screenKeys()...)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.ForceQuit, m.keys.Help}
	return [][]key.Binding{global, m.screenKeys()}
}

func (m Model) screenKeys() []key.Binding {
	switch m.state {
	case constants.StateSearch:
		return m.searchModel.HelpKeys()
	case constants.StateIngredients:
		return m.ingredientsModel.HelpKeys()
	case constants.StateCalendar:
		return m.calendarModel.HelpKeys()
	case constants.StateRecommendations:
		return m.recommendationsModel.HelpKeys()
	case constants.StateDashboard:
		return m.dashboardModel.HelpKeys()
	case constants.StateAnalytics:
		return m.analyticsModel.HelpKeys()
	case constants.StateAccount:
		return m.accountModel.HelpKeys()
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSessionEvent(m.events), m.searchModel.Init())
}

// SetSize resizes every screen. Two lines go to the tab bar and two to
// the help and status lines.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	w := width - docStyle.GetHorizontalFrameSize()
	h := height - docStyle.GetVerticalFrameSize() - 4
	m.searchModel.SetSize(w, h)
	m.ingredientsModel.SetSize(w, h)
	m.calendarModel.SetSize(w, h)
	m.recommendationsModel.SetSize(w, h)
	m.dashboardModel.SetSize(w, h)
	m.analyticsModel.SetSize(w, h)
	m.accountModel.SetSize(w, h)
}
