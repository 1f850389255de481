// Package ingredients is the pantry screen: family size, available
// ingredients and a form to add more.
package ingredients

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/validation"
)

const (
	familyKey = "ingredients.family"
	listKey   = "ingredients.list"
	createKey = "ingredients.create"
)

// Service is the slice of the API client this screen needs.
type Service interface {
	FamilySize(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Ingredient, error)
	Create(ctx context.Context, ing models.Ingredient) (models.Ingredient, error)
}

// AddedMsg is emitted after an ingredient is stored so other screens can
// refresh.
type AddedMsg struct {
	Ingredient models.Ingredient
}

type formData struct {
	Name        string
	Quantity    string
	Measurement string
}

type KeyMap struct {
	Add    key.Binding
	Reload key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add ingredient"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model is the pantry screen.
type Model struct {
	svc    Service
	family fetch.Request[int]
	list   fetch.Request[[]models.Ingredient]
	create fetch.Request[models.Ingredient]
	table  table.Model
	keys   KeyMap

	form      *huh.Form
	data      *formData
	formError string

	width  int
	height int
}

// New returns the pantry screen.
func New(svc Service, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(max(height-8, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)

	return Model{
		svc:    svc,
		family: fetch.New[int]("Failed to fetch family size."),
		list:   fetch.New[[]models.Ingredient]("Failed to fetch ingredients. Please try again."),
		create: fetch.New[models.Ingredient]("Failed to add ingredient. Please try again."),
		table:  t,
		keys:   DefaultKeyMap(),
		width:  width,
		height: height,
	}
}

func columns(width int) []table.Column {
	name := max(width-40, 16)
	return []table.Column{
		{Title: "Ingredient", Width: name},
		{Title: "Quantity", Width: 10},
		{Title: "Measurement", Width: 14},
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-8, 3))
}

// Load fetches family size and ingredients together.
func (m *Model) Load() tea.Cmd {
	svc := m.svc
	return tea.Batch(
		fetch.Cmd(context.Background(), familyKey, m.family.Start(), svc.FamilySize),
		fetch.Cmd(context.Background(), listKey, m.list.Start(), svc.List),
	)
}

func (m Model) Ingredients() []models.Ingredient { return m.list.Value() }
func (m Model) FamilySize() int                 { return m.family.Value() }
func (m Model) Adding() bool                    { return m.form != nil }
func (m Model) FormError() string               { return m.formError }

func (m *Model) syncTable() {
	ings := m.list.Value()
	rows := make([]table.Row, len(ings))
	for i, ing := range ings {
		rows[i] = table.Row{ing.Name, ing.FormatQuantity(), ing.Measurement}
	}
	m.table.SetRows(rows)
}

func newForm(d *formData) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ingredient").
				Value(&d.Name),
			huh.NewInput().
				Title("Quantity").
				Value(&d.Quantity),
			huh.NewInput().
				Title("Measurement").
				Placeholder("g, kg, ml, pcs").
				Value(&d.Measurement),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) openForm() tea.Cmd {
	m.data = &formData{}
	m.form = newForm(m.data)
	m.formError = ""
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.data = nil
	m.formError = ""
}

// submit validates the form locally and sends it. Invalid input never
// reaches the API.
func (m *Model) submit() tea.Cmd {
	d := m.data
	ing := models.Ingredient{
		Name:        strings.TrimSpace(d.Name),
		Measurement: strings.TrimSpace(d.Measurement),
	}
	q, err := validation.ParseQuantity(d.Quantity)
	if err == nil {
		ing.Quantity = q
		err = validation.ValidateIngredient(ing)
	}
	if err != nil {
		m.formError = apperrors.UserMessage(err, validation.MsgIngredientFields)
		m.form.State = huh.StateNormal
		return nil
	}

	m.formError = ""
	svc := m.svc
	return fetch.Cmd(context.Background(), createKey, m.create.Start(), func(ctx context.Context) (models.Ingredient, error) {
		return svc.Create(ctx, ing)
	})
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetch.Result[int]:
		if msg.Key != familyKey || msg.Seq != m.family.Seq() {
			return m, nil
		}
		m.family.Apply(msg)
		return m, common.CheckSession(msg.Err)

	case fetch.Result[[]models.Ingredient]:
		if msg.Key != listKey || msg.Seq != m.list.Seq() {
			return m, nil
		}
		m.list.Apply(msg)
		m.syncTable()
		return m, common.CheckSession(msg.Err)

	case fetch.Result[models.Ingredient]:
		if msg.Key != createKey || msg.Seq != m.create.Seq() {
			return m, nil
		}
		m.create.Apply(msg)
		if msg.Err != nil {
			m.formError = m.create.Message()
			if m.form != nil {
				m.form.State = huh.StateNormal
			}
			return m, common.CheckSession(msg.Err)
		}
		m.list.Resolve(append(m.list.Value(), msg.Value))
		m.syncTable()
		m.closeForm()
		added := AddedMsg{Ingredient: msg.Value}
		return m, tea.Batch(
			func() tea.Msg { return added },
			common.Status(fmt.Sprintf("Added %s.", msg.Value.Name), false),
		)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, m.openForm()
		case key.Matches(msg, m.keys.Reload):
			return m, m.Load()
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Cancel) {
		m.closeForm()
		return m, nil
	}
	if m.create.Loading() {
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.submit())
	case huh.StateAborted:
		m.closeForm()
	}
	return m, tea.Batch(cmds...)
}

// Typing reports whether the add form has focus.
func (m Model) Typing() bool { return m.form != nil }

func (m Model) HelpKeys() []key.Binding {
	if m.form != nil {
		return []key.Binding{m.keys.Cancel}
	}
	return []key.Binding{m.keys.Add, m.keys.Reload}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render("Available Ingredients"))
	b.WriteString("\n")

	switch {
	case m.family.Loading():
		b.WriteString(common.MutedStyle.Render("Family size: loading..."))
	case m.family.Message() != "":
		b.WriteString(common.ErrorStyle.Render(m.family.Message()))
	default:
		b.WriteString(fmt.Sprintf("Family size: %d", m.family.Value()))
	}
	b.WriteString("\n\n")

	if m.form != nil {
		b.WriteString(m.form.View())
		if m.create.Loading() {
			b.WriteString("\n" + common.MutedStyle.Render("Saving..."))
		}
		if m.formError != "" {
			b.WriteString("\n" + common.ErrorStyle.Render(m.formError))
		}
		return b.String()
	}

	switch {
	case m.list.Loading():
		b.WriteString(common.MutedStyle.Render("Loading ingredients..."))
	case m.list.Message() != "":
		b.WriteString(common.ErrorStyle.Render(m.list.Message()))
	case len(m.list.Value()) == 0:
		b.WriteString(common.MutedStyle.Render("No ingredients yet. Press 'a' to add one."))
	default:
		b.WriteString(m.table.View())
	}
	return b.String()
}
