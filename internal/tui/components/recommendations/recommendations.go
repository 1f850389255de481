// Package recommendations suggests recipes from the user's own pantry.
package recommendations

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/tui/components/recipesearch"
	"github.com/julianstephens/mealplanner/internal/utils"
)

const resultKey = "recommendations"

// Service is what the screen needs from the API client.
type Service interface {
	Pantry(ctx context.Context) ([]models.Ingredient, error)
	Recommend(ctx context.Context, q models.SearchQuery) (models.RecipePage, error)
}

// Page is one page of recommendations plus the pantry names it was built
// from.
type Page struct {
	Ingredients []string
	Recipes     models.RecipePage
}

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

var detailStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 1)

// Model is the pantry based recommendations screen.
type Model struct {
	svc    Service
	req    fetch.Request[Page]
	page   int
	list   list.Model
	detail viewport.Model
	keys   KeyMap
	width  int
	height int
}

// New returns the recommendations screen.
func New(svc Service, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width/2, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)

	m := Model{
		svc:    svc,
		req:    fetch.New[Page]("Failed to fetch recommendations. Please try again."),
		page:   1,
		list:   l,
		detail: viewport.New(width/2, height),
		keys:   DefaultKeyMap(),
	}
	m.SetSize(width, height)
	return m
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	half := max(width/2-2, 20)
	m.list.SetSize(half, max(height-6, 3))
	m.detail.Width = half
	m.detail.Height = max(height-8, 3)
	m.syncDetail()
}

// Load re-reads the pantry and fetches the current page.
func (m *Model) Load() tea.Cmd {
	seq := m.req.Start()
	svc := m.svc
	page := m.page
	return fetch.Cmd(context.Background(), resultKey, seq, func(ctx context.Context) (Page, error) {
		pantry, err := svc.Pantry(ctx)
		if err != nil {
			return Page{}, err
		}
		names := models.IngredientNames(pantry)
		recipes, err := svc.Recommend(ctx, models.SearchQuery{
			Ingredients: names,
			Page:        page,
			PageSize:    constants.RecommendationPageSize,
			Role:        "",
		})
		if err != nil {
			return Page{}, err
		}
		return Page{Ingredients: names, Recipes: recipes}, nil
	})
}

// Pages is the page count of the last result.
func (m Model) Pages() int {
	return utils.Pages(m.req.Value().Recipes.TotalCount, constants.RecommendationPageSize)
}

func (m Model) Recipes() []models.Recipe { return m.req.Value().Recipes.Recipes }
func (m Model) CurrentPage() int        { return m.page }

func (m *Model) setPage(page int) tea.Cmd {
	page = utils.ClampPage(page, m.Pages())
	if page == m.page {
		return nil
	}
	m.page = page
	return m.Load()
}

func (m *Model) syncList() {
	recipes := m.Recipes()
	items := make([]list.Item, len(recipes))
	for i, r := range recipes {
		items[i] = recipesearch.Item{Recipe: r}
	}
	m.list.SetItems(items)
	m.list.Select(0)
	m.syncDetail()
}

func (m *Model) syncDetail() {
	i, ok := m.list.SelectedItem().(recipesearch.Item)
	if !ok {
		m.detail.SetContent("")
		return
	}
	r := i.Recipe
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render(r.Name))
	b.WriteString("\n")
	b.WriteString("Ingredients:\n")
	for _, ing := range r.Ingredients {
		b.WriteString("  • " + ing + "\n")
	}
	if r.Instructions != "" {
		b.WriteString("\nInstructions:\n")
		b.WriteString(lipgloss.NewStyle().Width(max(m.detail.Width-2, 10)).Render(r.Instructions))
	}
	m.detail.SetContent(b.String())
	m.detail.GotoTop()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetch.Result[Page]:
		if msg.Key != resultKey || msg.Seq != m.req.Seq() {
			return m, nil
		}
		m.req.Apply(msg)
		m.syncList()
		return m, common.CheckSession(msg.Err)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.NextPage):
			return m, m.setPage(m.page + 1)
		case key.Matches(msg, m.keys.PrevPage):
			return m, m.setPage(m.page - 1)
		case key.Matches(msg, m.keys.Reload):
			return m, m.Load()
		case msg.Type == tea.KeyCtrlD, msg.Type == tea.KeyCtrlU:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.syncDetail()
		return m, cmd
	}
	return m, nil
}

func (m Model) HelpKeys() []key.Binding {
	return []key.Binding{m.keys.NextPage, m.keys.PrevPage, m.keys.Reload}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render("Recommended Recipes"))
	b.WriteString("\n")

	switch {
	case m.req.Loading():
		b.WriteString(common.MutedStyle.Render("Loading recommendations..."))
		return b.String()
	case m.req.Message() != "":
		b.WriteString(common.ErrorStyle.Render(m.req.Message()))
		return b.String()
	case len(m.req.Value().Ingredients) == 0 && m.req.State() == fetch.Success:
		b.WriteString(common.MutedStyle.Render("Add ingredients to your pantry to get recommendations."))
		return b.String()
	case len(m.Recipes()) == 0:
		b.WriteString(common.MutedStyle.Render("No recommendations found."))
		return b.String()
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		fmt.Sprintf("page %d of %d", m.page, m.Pages()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, detailStyle.Render(m.detail.View())))
	return b.String()
}
