package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	cal "github.com/julianstephens/mealplanner/internal/calendar"
	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/tui/components/recipesearch"
)

type fakeStore struct {
	rows    []models.CalendarRow
	loadErr error
	saveErr error
	saved   []models.SlotAssignment
}

func (f *fakeStore) WeeklyCalendar(ctx context.Context) ([]models.CalendarRow, error) {
	return f.rows, f.loadErr
}

func (f *fakeStore) SaveSlot(ctx context.Context, a models.SlotAssignment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, a)
	return nil
}

func noSearch(ctx context.Context, q models.SearchQuery) (models.RecipePage, error) {
	return models.RecipePage{}, nil
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	var follow []tea.Msg
	for _, msg := range drain(cmd) {
		var next tea.Cmd
		m, next = m.Update(msg)
		follow = append(follow, drain(next)...)
	}
	return m, follow
}

func newModel(store *fakeStore) Model {
	return New(cal.NewPlanner(store), noSearch, 120, 40)
}

func load(m Model) Model {
	cmd := m.Load()
	m, _ = feed(m, cmd)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func soup() models.CalendarRow {
	return models.CalendarRow{ID: 1, DayOfWeek: 0, SlotID: 1, Recipe: &models.CalendarRecipe{ID: "r1", Name: "Soup"}}
}

func TestLoadFillsGrid(t *testing.T) {
	m := load(newModel(&fakeStore{rows: []models.CalendarRow{soup()}}))

	w := m.Week()
	r, ok := w.Cell(cal.Sunday, 1).Recipe()
	if !ok || r.Name != "Soup" {
		t.Errorf("Sunday slot 1 = %+v, want Soup", r)
	}
	if w.Filled() != 1 {
		t.Errorf("Filled() = %d, want 1", w.Filled())
	}
}

func TestLoadFailureResetsGrid(t *testing.T) {
	store := &fakeStore{rows: []models.CalendarRow{soup()}}
	m := load(newModel(store))

	store.loadErr = errors.New("boom")
	m = load(m)
	w := m.Week()
	if w.Filled() != 0 {
		t.Errorf("Filled() = %d after failed load, want 0", w.Filled())
	}
	if m.load.Message() != loadFailed {
		t.Errorf("Message() = %q", m.load.Message())
	}
}

func TestCursorStaysInGrid(t *testing.T) {
	m := newModel(&fakeStore{})
	for i := 0; i < 10; i++ {
		m, _ = m.Update(keyMsg("right"))
		m, _ = m.Update(keyMsg("down"))
	}
	day, slot := m.Cursor()
	if day != cal.Saturday || slot != 3 {
		t.Errorf("cursor = %s/%d, want Saturday/3", day, slot)
	}
}

func TestDialogTitle(t *testing.T) {
	m := load(newModel(&fakeStore{rows: []models.CalendarRow{soup()}}))
	if got := m.DialogTitle(); got != "Edit Recipe" {
		t.Errorf("DialogTitle() on Sunday slot 1 = %q, want Edit Recipe", got)
	}
	m, _ = m.Update(keyMsg("down"))
	if got := m.DialogTitle(); got != "Add Recipe" {
		t.Errorf("DialogTitle() on Sunday slot 2 = %q, want Add Recipe", got)
	}
}

func TestSelectionSavesAndClosesDialog(t *testing.T) {
	store := &fakeStore{}
	m := load(newModel(store))

	m, _ = m.Update(keyMsg("right"))
	m, _ = m.Update(keyMsg("enter"))
	if !m.DialogOpen() {
		t.Fatal("enter should open the dialog")
	}

	stew := models.Recipe{ID: "r2", Name: "Stew"}
	m, cmd := m.Update(recipesearch.SelectedMsg{Key: pickerKey, Recipe: stew})
	m, _ = feed(m, cmd)

	if m.DialogOpen() {
		t.Error("dialog should close after a successful save")
	}
	w := m.Week()
	if r, ok := w.Cell(cal.Monday, 1).Recipe(); !ok || r.Name != "Stew" {
		t.Errorf("Monday slot 1 = %+v, want Stew", r)
	}
	if len(store.saved) != 1 || store.saved[0].DayOfWeek != 1 || store.saved[0].SlotID != 1 {
		t.Errorf("saved = %+v", store.saved)
	}
}

func TestSaveFailureKeepsDialogOpen(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("500")}
	m := load(newModel(store))
	m, _ = m.Update(keyMsg("enter"))

	m, cmd := m.Update(recipesearch.SelectedMsg{Key: pickerKey, Recipe: models.Recipe{ID: "r9", Name: "Pie"}})
	m, _ = feed(m, cmd)

	if !m.DialogOpen() {
		t.Fatal("dialog should stay open after a failed save")
	}
	if m.SaveError() != saveFailed {
		t.Errorf("SaveError() = %q, want %q", m.SaveError(), saveFailed)
	}
	w := m.Week()
	if !w.Cell(cal.Sunday, 1).Empty() {
		t.Error("grid changed after a failed save")
	}

	m, _ = m.Update(keyMsg("esc"))
	if m.DialogOpen() {
		t.Error("esc should close the dialog")
	}
}

func TestEarlierDialogSaveDoesNotLandInLaterDialog(t *testing.T) {
	store := &fakeStore{}
	m := load(newModel(store))

	m, _ = m.Update(keyMsg("enter"))
	soupA := models.Recipe{ID: "a", Name: "Soup"}
	m, sundayCmd := m.Update(recipesearch.SelectedMsg{Key: pickerKey, Recipe: soupA})
	m, _ = m.Update(keyMsg("esc"))

	m, _ = m.Update(keyMsg("right"))
	m, _ = m.Update(keyMsg("enter"))
	stewB := models.Recipe{ID: "b", Name: "Stew"}
	m, mondayCmd := m.Update(recipesearch.SelectedMsg{Key: pickerKey, Recipe: stewB})
	if mondayCmd == nil {
		t.Fatal("selection in the reopened dialog should save")
	}

	m, _ = feed(m, sundayCmd)
	w := m.Week()
	if !m.DialogOpen() {
		t.Error("the earlier save closed the Monday dialog")
	}
	if !w.Cell(cal.Monday, 1).Empty() {
		t.Errorf("Monday slot 1 = %+v before its own save finished", w.Cell(cal.Monday, 1))
	}
	if r, ok := w.Cell(cal.Sunday, 1).Recipe(); !ok || r.ID != "a" {
		t.Errorf("Sunday slot 1 = %+v, want Soup", r)
	}

	m, _ = feed(m, mondayCmd)
	w = m.Week()
	if m.DialogOpen() {
		t.Error("dialog should close after its own save")
	}
	if r, ok := w.Cell(cal.Monday, 1).Recipe(); !ok || r.ID != "b" {
		t.Errorf("Monday slot 1 = %+v, want Stew", r)
	}
	if r, ok := w.Cell(cal.Sunday, 1).Recipe(); !ok || r.ID != "a" {
		t.Errorf("Sunday slot 1 = %+v, want Soup", r)
	}
}

func TestBlankRecipeNameRendersPlaceholder(t *testing.T) {
	row := models.CalendarRow{ID: 1, DayOfWeek: 0, SlotID: 1, Recipe: &models.CalendarRecipe{ID: "r1"}}
	m := load(newModel(&fakeStore{rows: []models.CalendarRow{row}}))

	if got := m.View(); !strings.Contains(got, models.UnnamedRecipe) {
		t.Errorf("View() missing %q:\n%s", models.UnnamedRecipe, got)
	}
}

func TestSelectionFromOtherPickerIgnored(t *testing.T) {
	store := &fakeStore{}
	m := load(newModel(store))
	m, _ = m.Update(keyMsg("enter"))

	_, cmd := m.Update(recipesearch.SelectedMsg{Key: "search", Recipe: models.Recipe{Name: "Pie"}})
	if cmd != nil {
		t.Error("selection from the Search tab must not save")
	}
}

func TestExpiredSessionReported(t *testing.T) {
	store := &fakeStore{loadErr: apperrors.ErrSessionInvalid}
	m := newModel(store)
	cmd := m.Load()
	_, follow := feed(m, cmd)

	found := false
	for _, msg := range follow {
		if _, ok := msg.(common.SessionExpiredMsg); ok {
			found = true
		}
	}
	if !found {
		t.Error("expected SessionExpiredMsg")
	}
}
