// Package analytics charts ingredient searches and recipe repetition.
package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/utils"
)

const dataKey = "analytics.data"

// AggregatedFunc loads all report series at once.
type AggregatedFunc func(ctx context.Context) (models.AggregatedData, error)

type KeyMap struct {
	NextPage key.Binding
	PrevPage key.Binding
	Reload   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// Model is the analytics screen.
type Model struct {
	aggregated AggregatedFunc
	req        fetch.Request[models.AggregatedData]
	paginator  paginator.Model
	keys       KeyMap
	width      int
	height     int
}

// New returns an empty analytics screen. Call Load to fetch data.
func New(aggregated AggregatedFunc, width, height int) Model {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = constants.AnalyticsPageSize

	return Model{
		aggregated: aggregated,
		req:        fetch.New[models.AggregatedData]("Failed to fetch analytics."),
		paginator:  p,
		keys:       DefaultKeyMap(),
		width:      width,
		height:     height,
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Load fetches the reports.
func (m *Model) Load() tea.Cmd {
	return fetch.Cmd[models.AggregatedData](context.Background(), dataKey, m.req.Start(), m.aggregated)
}

func (m Model) Data() models.AggregatedData { return m.req.Value() }

// Page is the 1-based page of the repetition list.
func (m Model) Page() int { return m.paginator.Page + 1 }

// Repetitions returns the repetition rows on the current page.
func (m Model) Repetitions() []models.RecipeRepetition {
	return utils.PageSlice(m.req.Value().RecipeData, m.Page(), constants.AnalyticsPageSize)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetch.Result[models.AggregatedData]:
		if msg.Key != dataKey || msg.Seq != m.req.Seq() {
			return m, nil
		}
		m.req.Apply(msg)
		m.paginator.SetTotalPages(len(m.req.Value().RecipeData))
		if m.paginator.Page >= m.paginator.TotalPages {
			m.paginator.Page = 0
		}
		return m, common.CheckSession(msg.Err)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.NextPage):
			m.paginator.NextPage()
		case key.Matches(msg, m.keys.PrevPage):
			m.paginator.PrevPage()
		case key.Matches(msg, m.keys.Reload):
			return m, m.Load()
		}
	}
	return m, nil
}

func (m Model) HelpKeys() []key.Binding {
	return []key.Binding{m.keys.NextPage, m.keys.PrevPage, m.keys.Reload}
}

func (m Model) barWidth() int {
	return max(m.width-40, 10)
}

func (m Model) viewSearches() string {
	data := m.req.Value()
	if len(data.IngredientCounts) == 0 {
		return common.MutedStyle.Render("No ingredient searches recorded yet.")
	}
	limit := float64(data.MaxSearchCount())
	var b strings.Builder
	for _, c := range data.IngredientCounts {
		b.WriteString(fmt.Sprintf("%-16s %s %d\n",
			utils.Truncate(c.Ingredient, 16),
			common.BarStyle.Render(utils.Bar(float64(c.SearchCount), limit, m.barWidth())),
			c.SearchCount))
	}
	return b.String()
}

func (m Model) viewRepetitions() string {
	data := m.req.Value()
	if len(data.RecipeData) == 0 {
		return common.MutedStyle.Render("No recipes planned yet.")
	}
	limit := float64(data.MaxRepetition())
	var b strings.Builder
	for _, r := range m.Repetitions() {
		b.WriteString(fmt.Sprintf("%-20s %s %d\n",
			utils.Truncate(r.Recipe, 20),
			common.BarStyle.Render(utils.Bar(float64(r.Count), limit, m.barWidth())),
			r.Count))
	}
	b.WriteString(m.paginator.View())
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render("Analytics"))
	b.WriteString("\n")

	switch {
	case m.req.Loading():
		b.WriteString(common.MutedStyle.Render("Loading analytics..."))
		return b.String()
	case m.req.Message() != "":
		b.WriteString(common.ErrorStyle.Render(m.req.Message()))
		return b.String()
	}

	b.WriteString("Ingredient searches\n")
	b.WriteString(m.viewSearches())
	b.WriteString("\n\nRecipe repetition\n")
	b.WriteString(m.viewRepetitions())
	return b.String()
}
