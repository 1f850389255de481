// Package recipesearch is the ingredient-driven recipe picker used by the
// Search tab and the calendar dialog.
package recipesearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/utils"
	"github.com/julianstephens/mealplanner/internal/validation"
)

const fallbackMessage = "Failed to fetch recipes. Please try again."

// SearchFunc runs one recipe query.
type SearchFunc func(ctx context.Context, q models.SearchQuery) (models.RecipePage, error)

// SelectedMsg is emitted when the user picks a recipe.
type SelectedMsg struct {
	Key    string
	Recipe models.Recipe
}

type focus int

const (
	focusInput focus = iota
	focusResults
)

// Item adapts a recipe to the bubbles list.
type Item struct {
	Recipe models.Recipe
}

func (i Item) Title() string { return i.Recipe.DisplayName() }
func (i Item) Description() string {
	return utils.Truncate(i.Recipe.IngredientList(), 60)
}
func (i Item) FilterValue() string { return i.Recipe.Name }

// KeyMap holds the picker bindings. Enter adds a chip while typing and picks a recipe in the results.
type KeyMap struct {
	AddChip    key.Binding
	RemoveChip key.Binding
	PrevChip   key.Binding
	NextChip   key.Binding
	Select     key.Binding
	Results    key.Binding
	Input      key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		AddChip: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add ingredient"),
		),
		RemoveChip: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x/⌫", "remove ingredient"),
		),
		PrevChip: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/→", "pick ingredient"),
		),
		NextChip: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "pick ingredient"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose recipe"),
		),
		Results: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "results"),
		),
		Input: key.NewBinding(
			key.WithKeys("i", "/"),
			key.WithHelp("i", "edit ingredients"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown", "right", "l"),
			key.WithHelp("→/pgdn", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup", "left", "h"),
			key.WithHelp("←/pgup", "prev page"),
		),
	}
}

var (
	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			MarginRight(1)
	activeChipStyle = chipStyle.
			Background(lipgloss.Color("205")).
			Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model holds the chips, the current page and the in-flight query. Every
// chip or page change issues a fresh search.
type Model struct {
	key      string
	search   SearchFunc
	pageSize int
	role     string

	input     textinput.Model
	chips     []string
	chip      int
	list      list.Model
	paginator paginator.Model
	spinner   spinner.Model
	focus     focus
	page      int
	req       fetch.Request[models.RecipePage]
	keys      KeyMap
	width     int
	height    int
}

// New builds a picker. key tags its results and selections so several
// pickers can coexist.
func New(key string, search SearchFunc, pageSize, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Type an ingredient and press enter"
	ti.Prompt = "Ingredients: "
	ti.CharLimit = 64
	ti.Focus()

	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)

	if pageSize < 1 {
		pageSize = constants.SearchPageSize
	}

	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = pageSize

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		key:       key,
		search:    search,
		pageSize:  pageSize,
		input:     ti,
		list:      l,
		paginator: p,
		spinner:   sp,
		page:      1,
		req:       fetch.New[models.RecipePage](fallbackMessage),
		keys:      DefaultKeyMap(),
	}
	m.SetSize(width, height)
	return m
}

// SetRole fixes the role sent with every query. Empty lets the client
// derive it from the session.
func (m *Model) SetRole(role string) { m.role = role }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-20, 10)
	// chips, input, paginator and status lines
	m.list.SetSize(width, max(height-6, 3))
}

func (m Model) Chips() []string { return append([]string(nil), m.chips...) }
func (m Model) Page() int        { return m.page }
func (m Model) Loading() bool    { return m.req.Loading() }
func (m Model) Err() error       { return m.req.Err() }

// SelectedChip is the index of the highlighted chip, the one RemoveChip
// drops. It is 0 when there are no chips.
func (m Model) SelectedChip() int { return m.chip }

// SelectChip highlights the chip at i, clamped to the chip list.
func (m *Model) SelectChip(i int) {
	m.chip = max(min(i, len(m.chips)-1), 0)
}

// Results returns the recipes of the last successful query.
func (m Model) Results() []models.Recipe {
	return m.req.Value().Recipes
}

// Pages is the page count of the last successful query.
func (m Model) Pages() int {
	return utils.Pages(m.req.Value().TotalCount, m.pageSize)
}

// Reset clears chips and results, used when a dialog reopens.
func (m *Model) Reset() {
	m.chips = nil
	m.chip = 0
	m.page = 1
	m.input.SetValue("")
	m.focusInput()
	m.req.Reset()
	m.list.SetItems(nil)
	m.paginator.SetTotalPages(0)
}

func (m *Model) focusInput() {
	m.focus = focusInput
	m.input.Focus()
}

func (m *Model) focusResults() {
	m.focus = focusResults
	m.input.Blur()
}

// AddChip appends an ingredient and re-runs the search from page 1. An
// ingredient that is already a chip, ignoring case, is skipped.
func (m *Model) AddChip(name string) tea.Cmd {
	names := validation.NormalizeIngredients([]string{name})
	if len(names) == 0 {
		return nil
	}
	if i := m.chipIndex(names[0]); i >= 0 {
		m.chip = i
		return nil
	}
	m.chips = append(m.chips, names[0])
	m.chip = len(m.chips) - 1
	m.page = 1
	return m.query()
}

// RemoveChip drops the highlighted ingredient and re-runs the search.
func (m *Model) RemoveChip() tea.Cmd {
	return m.removeChipAt(m.chip)
}

// RemoveChipNamed drops the ingredient matching name, ignoring case.
func (m *Model) RemoveChipNamed(name string) tea.Cmd {
	return m.removeChipAt(m.chipIndex(strings.TrimSpace(name)))
}

func (m *Model) chipIndex(name string) int {
	for i, c := range m.chips {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func (m *Model) removeChipAt(i int) tea.Cmd {
	if i < 0 || i >= len(m.chips) {
		return nil
	}
	m.chips = append(m.chips[:i:i], m.chips[i+1:]...)
	m.SelectChip(m.chip)
	m.page = 1
	return m.query()
}

// SetPage moves to page and re-runs the search.
func (m *Model) SetPage(page int) tea.Cmd {
	page = utils.ClampPage(page, m.Pages())
	if page == m.page {
		return nil
	}
	m.page = page
	return m.query()
}

func (m *Model) query() tea.Cmd {
	if len(m.chips) == 0 {
		m.req.Start()
		m.req.Resolve(models.RecipePage{Recipes: []models.Recipe{}})
		m.syncResults()
		return nil
	}
	seq := m.req.Start()
	q := models.SearchQuery{
		Ingredients: m.Chips(),
		Page:        m.page,
		PageSize:    m.pageSize,
		Role:        m.role,
	}
	search := m.search
	return tea.Batch(
		m.spinner.Tick,
		fetch.Cmd(context.Background(), m.key, seq, func(ctx context.Context) (models.RecipePage, error) {
			return search(ctx, q)
		}),
	)
}

func (m *Model) syncResults() {
	recipes := m.req.Value().Recipes
	items := make([]list.Item, len(recipes))
	for i, r := range recipes {
		items[i] = Item{Recipe: r}
	}
	m.list.SetItems(items)
	m.list.Select(0)
	m.paginator.SetTotalPages(m.req.Value().TotalCount)
	m.paginator.Page = m.page - 1
	if len(recipes) == 0 && m.focus == focusResults {
		m.focusInput()
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetch.Result[models.RecipePage]:
		if msg.Key != m.key || msg.Seq != m.req.Seq() {
			return m, nil
		}
		m.req.Apply(msg)
		m.syncResults()
		return m, nil

	case spinner.TickMsg:
		if !m.req.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateResults(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.AddChip):
		value := m.input.Value()
		m.input.SetValue("")
		return m, m.AddChip(value)
	case msg.Type == tea.KeyBackspace && m.input.Value() == "":
		return m, m.RemoveChip()
	case key.Matches(msg, m.keys.PrevChip) && m.input.Value() == "":
		m.SelectChip(m.chip - 1)
		return m, nil
	case key.Matches(msg, m.keys.NextChip) && m.input.Value() == "":
		m.SelectChip(m.chip + 1)
		return m, nil
	case key.Matches(msg, m.keys.Results):
		if len(m.Results()) > 0 {
			m.focusResults()
		}
		return m, nil
	case msg.Type == tea.KeyPgDown:
		return m, m.SetPage(m.page + 1)
	case msg.Type == tea.KeyPgUp:
		return m, m.SetPage(m.page - 1)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if i, ok := m.list.SelectedItem().(Item); ok {
			sel := SelectedMsg{Key: m.key, Recipe: i.Recipe}
			return m, func() tea.Msg { return sel }
		}
		return m, nil
	case key.Matches(msg, m.keys.RemoveChip), msg.Type == tea.KeyBackspace:
		return m, m.RemoveChip()
	case key.Matches(msg, m.keys.Input):
		m.focusInput()
		return m, nil
	case msg.Type == tea.KeyUp && m.list.Index() == 0:
		m.focusInput()
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		return m, m.SetPage(m.page + 1)
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.SetPage(m.page - 1)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// HelpKeys are the bindings shown by the parent's help view.
func (m Model) HelpKeys() []key.Binding {
	if m.focus == focusInput {
		return []key.Binding{m.keys.AddChip, m.keys.RemoveChip, m.keys.PrevChip, m.keys.Results}
	}
	return []key.Binding{m.keys.Select, m.keys.RemoveChip, m.keys.Input, m.keys.NextPage, m.keys.PrevPage}
}

// Typing reports whether key presses go to the text input, so the parent
// must not treat letters as shortcuts.
func (m Model) Typing() bool { return m.focus == focusInput }

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if len(m.chips) == 0 {
		b.WriteString(mutedStyle.Render("No ingredients selected"))
	} else {
		for i, c := range m.chips {
			style := chipStyle
			if i == m.chip {
				style = activeChipStyle
			}
			b.WriteString(style.Render(c))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.req.Loading():
		b.WriteString(m.spinner.View() + " Searching...")
	case m.req.Message() != "":
		b.WriteString(errorStyle.Render(m.req.Message()))
	case len(m.chips) == 0:
		b.WriteString(mutedStyle.Render("Add ingredients to find recipes."))
	case len(m.Results()) == 0:
		b.WriteString(mutedStyle.Render("No recipes found."))
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s  page %d of %d (%d recipes)",
			m.paginator.View(), m.page, m.Pages(), m.req.Value().TotalCount))
	}
	return b.String()
}
