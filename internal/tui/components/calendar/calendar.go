// Package calendar renders the weekly meal grid and the recipe picker
// dialog used to fill a slot.
package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cal "github.com/julianstephens/mealplanner/internal/calendar"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/tui/components/recipesearch"
	"github.com/julianstephens/mealplanner/internal/utils"
)

const (
	loadKey    = "calendar.load"
	saveKey    = "calendar.save"
	pickerKey  = "calendar.picker"
	loadFailed = "Failed to load the weekly calendar."
	saveFailed = "Failed to save the recipe. Please try again."
)

// KeyMap holds the calendar grid bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Open   key.Binding
	Reload key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev slot"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next slot"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add/edit recipe"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	cursorStyle = cellStyle.
			BorderForeground(lipgloss.Color("205")).
			Bold(true)
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// placed is a finished save. It carries its own coordinates because the
// cursor may have moved to another slot by the time it arrives.
type placed struct {
	day    cal.Day
	slot   cal.SlotNumber
	recipe models.Recipe
}

// Model is the weekly calendar screen. The planner grid is only changed
// from Update.
type Model struct {
	planner *cal.Planner
	load    fetch.Request[cal.Week]
	save    fetch.Request[placed]
	keys    KeyMap

	day  cal.Day
	slot cal.SlotNumber

	dialog  bool
	picker  recipesearch.Model
	pending struct {
		day  cal.Day
		slot cal.SlotNumber
	}

	width  int
	height int
}

// New returns the calendar screen with the cursor on Sunday slot 1.
func New(planner *cal.Planner, search recipesearch.SearchFunc, width, height int) Model {
	m := Model{
		planner: planner,
		load:    fetch.New[cal.Week](loadFailed),
		save:    fetch.New[placed](saveFailed),
		keys:    DefaultKeyMap(),
		day:     cal.Sunday,
		slot:    1,
		picker:  recipesearch.New(pickerKey, search, constants.SearchPageSize, width, height),
	}
	m.SetSize(width, height)
	return m
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.picker.SetSize(max(width-10, 20), max(height-10, 5))
}

// Load fetches the week from the store.
func (m *Model) Load() tea.Cmd {
	seq := m.load.Start()
	planner := m.planner
	return fetch.Cmd(context.Background(), loadKey, seq, planner.Fetch)
}

// Week returns the grid as last loaded or saved.
func (m Model) Week() cal.Week { return m.planner.Week() }

// Cursor returns the selected day and slot.
func (m Model) Cursor() (cal.Day, cal.SlotNumber) { return m.day, m.slot }

// DialogOpen reports whether the recipe picker is showing.
func (m Model) DialogOpen() bool { return m.dialog }

// DialogTitle is "Edit Recipe" when the selected cell is filled.
func (m Model) DialogTitle() string {
	w := m.planner.Week()
	if w.Cell(m.day, m.slot).Empty() {
		return "Add Recipe"
	}
	return "Edit Recipe"
}

// SaveError is the inline error shown in the dialog.
func (m Model) SaveError() string { return m.save.Message() }

// Typing reports whether keys go to the picker's text input.
func (m Model) Typing() bool { return m.dialog && m.picker.Typing() }

func (m *Model) openDialog() tea.Cmd {
	m.dialog = true
	m.pending.day, m.pending.slot = m.day, m.slot
	m.save.Reset()
	m.picker.Reset()
	return m.picker.Init()
}

func (m *Model) closeDialog() {
	m.dialog = false
}

func (m *Model) assign(recipe models.Recipe) tea.Cmd {
	seq := m.save.Start()
	planner := m.planner
	day, slot := m.pending.day, m.pending.slot
	return fetch.Cmd(context.Background(), saveKey, seq, func(ctx context.Context) (placed, error) {
		if err := planner.Save(ctx, day, slot, recipe); err != nil {
			return placed{}, err
		}
		return placed{day: day, slot: slot, recipe: recipe}, nil
	})
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetch.Result[cal.Week]:
		if msg.Key != loadKey || msg.Seq != m.load.Seq() {
			return m, nil
		}
		m.load.Apply(msg)
		// a failed load resets the grid
		m.planner.SetWeek(msg.Value)
		return m, common.CheckSession(msg.Err)

	case fetch.Result[placed]:
		if msg.Key != saveKey {
			return m, nil
		}
		p := msg.Value
		if msg.Seq != m.save.Seq() {
			// an earlier dialog's save still landed remotely
			if msg.Err == nil {
				m.planner.Place(p.day, p.slot, p.recipe)
			}
			return m, nil
		}
		m.save.Apply(msg)
		if msg.Err != nil {
			return m, common.CheckSession(msg.Err)
		}
		m.planner.Place(p.day, p.slot, p.recipe)
		m.closeDialog()
		return m, common.Status(fmt.Sprintf("Saved %s to %s slot %d.", p.recipe.DisplayName(), p.day, p.slot), false)

	case recipesearch.SelectedMsg:
		if msg.Key != pickerKey || !m.dialog || m.save.Loading() {
			return m, nil
		}
		return m, m.assign(msg.Recipe)

	case tea.KeyMsg:
		if m.dialog {
			if key.Matches(msg, m.keys.Cancel) {
				m.closeDialog()
				return m, nil
			}
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.slot > 1 {
				m.slot--
			}
		case key.Matches(msg, m.keys.Down):
			if m.slot < constants.SlotsPerDay {
				m.slot++
			}
		case key.Matches(msg, m.keys.Left):
			if m.day > cal.Sunday {
				m.day--
			}
		case key.Matches(msg, m.keys.Right):
			if m.day < cal.Saturday {
				m.day++
			}
		case key.Matches(msg, m.keys.Open):
			return m, m.openDialog()
		case key.Matches(msg, m.keys.Reload):
			return m, m.Load()
		}
		return m, nil
	}

	if m.dialog {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) HelpKeys() []key.Binding {
	if m.dialog {
		return append(m.picker.HelpKeys(), m.keys.Cancel)
	}
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Open, m.keys.Reload}
}

func (m Model) View() string {
	if m.dialog {
		return m.viewDialog()
	}

	var b strings.Builder
	b.WriteString(common.TitleStyle.Render("Weekly Calendar"))
	b.WriteString("\n")
	switch {
	case m.load.Loading():
		b.WriteString(common.MutedStyle.Render("Loading calendar..."))
		b.WriteString("\n")
	case m.load.Message() != "":
		b.WriteString(common.ErrorStyle.Render(m.load.Message()))
		b.WriteString("\n")
	}
	b.WriteString(m.viewGrid())
	return b.String()
}

func (m Model) viewGrid() string {
	colWidth := max((m.width-4)/constants.DaysPerWeek-4, 8)
	week := m.planner.Week()

	cols := make([]string, 0, constants.DaysPerWeek)
	for d := cal.Sunday; d <= cal.Saturday; d++ {
		cells := []string{headerStyle.Width(colWidth + 4).Render(d.String()[:3])}
		for s := cal.SlotNumber(1); s <= constants.SlotsPerDay; s++ {
			label := common.MutedStyle.Render("empty")
			if r, ok := week.Cell(d, s).Recipe(); ok {
				label = utils.Truncate(r.DisplayName(), colWidth)
			}
			style := cellStyle
			if d == m.day && s == m.slot {
				style = cursorStyle
			}
			cells = append(cells, style.Width(colWidth+2).Render(label))
		}
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Left, cells...))
	}
	grid := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	detail := common.MutedStyle.Render(fmt.Sprintf("%s, slot %d: empty", m.day, m.slot))
	if r, ok := week.Cell(m.day, m.slot).Recipe(); ok {
		detail = fmt.Sprintf("%s, slot %d: %s\n%s", m.day, m.slot, r.DisplayName(),
			common.MutedStyle.Render(utils.Truncate(r.IngredientList(), max(m.width-4, 20))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, grid, "", detail)
}

func (m Model) viewDialog() string {
	title := m.DialogTitle()
	header := common.TitleStyle.Render(fmt.Sprintf("%s: %s, slot %d", title, m.pending.day, m.pending.slot))

	parts := []string{header, m.picker.View()}
	if m.save.Loading() {
		parts = append(parts, "", common.MutedStyle.Render("Saving..."))
	}
	if msg := m.save.Message(); msg != "" {
		parts = append(parts, "", common.ErrorStyle.Render(msg))
	}
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
