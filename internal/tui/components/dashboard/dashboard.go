// Package dashboard shows how far the pantry goes against the planned week.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/utils"
)

const remainingKey = "dashboard.remaining"

// RemainingFunc fetches the remaining-ingredient rows.
type RemainingFunc func(ctx context.Context) ([]models.RemainingIngredient, error)

type KeyMap struct {
	Reload key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

var shortageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

// Model is the remaining ingredients screen.
type Model struct {
	remaining RemainingFunc
	req       fetch.Request[[]models.RemainingIngredient]
	table     table.Model
	keys      KeyMap
	width     int
	height    int
}

// New returns an empty dashboard. Call Load to fetch data.
func New(remaining RemainingFunc, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithHeight(max(height/2, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	t.SetStyles(s)

	return Model{
		remaining: remaining,
		req:       fetch.New[[]models.RemainingIngredient]("Failed to fetch remaining ingredients."),
		table:     t,
		keys:      DefaultKeyMap(),
		width:     width,
		height:    height,
	}
}

func columns(width int) []table.Column {
	return []table.Column{
		{Title: "Ingredient", Width: max(width-60, 14)},
		{Title: "Available", Width: 10},
		{Title: "Planned", Width: 10},
		{Title: "Remaining", Width: 10},
		{Title: "Unit", Width: 10},
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height/2, 3))
}

// Load fetches the remaining quantities.
func (m *Model) Load() tea.Cmd {
	return fetch.Cmd[[]models.RemainingIngredient](context.Background(), remainingKey, m.req.Start(), m.remaining)
}

func (m Model) Rows() []models.RemainingIngredient { return m.req.Value() }

func formatQty(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (m *Model) syncTable() {
	rows := m.req.Value()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.IngredientName, formatQty(r.TotalQuantity), formatQty(r.UsedQuantity), formatQty(r.RemainingQuantity), r.Measurement}
	}
	m.table.SetRows(out)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetch.Result[[]models.RemainingIngredient]:
		if msg.Key != remainingKey || msg.Seq != m.req.Seq() {
			return m, nil
		}
		m.req.Apply(msg)
		m.syncTable()
		return m, common.CheckSession(msg.Err)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Reload) {
			return m, m.Load()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) HelpKeys() []key.Binding {
	return []key.Binding{m.keys.Reload}
}

// viewBars draws remaining against available for every ingredient.
func (m Model) viewBars() string {
	rows := m.req.Value()
	labelWidth := 14
	barWidth := max(m.width-labelWidth-20, 10)

	var b strings.Builder
	for _, r := range rows {
		label := fmt.Sprintf("%-*s", labelWidth, utils.Truncate(r.IngredientName, labelWidth))
		if r.Shortage() {
			b.WriteString(fmt.Sprintf("%s %s\n", label, shortageStyle.Render("short by "+formatQty(-r.RemainingQuantity)+" "+r.Measurement)))
			continue
		}
		bar := utils.Bar(r.RemainingQuantity, r.TotalQuantity, barWidth)
		b.WriteString(fmt.Sprintf("%s %s %s\n", label, common.BarStyle.Render(bar), common.MutedStyle.Render(formatQty(r.RemainingQuantity))))
	}
	return b.String()
}

func (m Model) viewShortages() string {
	shortages := models.Shortages(m.req.Value())
	if len(shortages) == 0 {
		return common.SuccessStyle.Render("Your pantry covers every planned meal.")
	}
	var b strings.Builder
	b.WriteString(shortageStyle.Render(fmt.Sprintf("Shopping list (%d)", len(shortages))))
	b.WriteString("\n")
	for _, s := range shortages {
		b.WriteString(fmt.Sprintf("  • %s: %s %s\n", s.IngredientName, formatQty(-s.RemainingQuantity), s.Measurement))
	}
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render("Dashboard"))
	b.WriteString("\n")

	switch {
	case m.req.Loading():
		b.WriteString(common.MutedStyle.Render("Loading..."))
		return b.String()
	case m.req.Message() != "":
		b.WriteString(common.ErrorStyle.Render(m.req.Message()))
		return b.String()
	case len(m.req.Value()) == 0:
		b.WriteString(common.MutedStyle.Render("No ingredients to track yet."))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewBars())
	b.WriteString("\n")
	b.WriteString(m.viewShortages())
	return b.String()
}
