package ingredients

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

type fakeService struct {
	family    int
	items     []models.Ingredient
	createErr error
	created   []models.Ingredient
}

func (f *fakeService) FamilySize(ctx context.Context) (int, error) { return f.family, nil }

func (f *fakeService) List(ctx context.Context) ([]models.Ingredient, error) { return f.items, nil }

func (f *fakeService) Create(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	if f.createErr != nil {
		return models.Ingredient{}, f.createErr
	}
	ing.ID = int64(len(f.created) + 1)
	f.created = append(f.created, ing)
	return ing, nil
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

// fill opens the add form and sets its fields as if typed.
func fill(m *Model, name, qty, unit string) {
	m.openForm()
	m.data.Name = name
	m.data.Quantity = qty
	m.data.Measurement = unit
}

func TestLoadFetchesFamilyAndPantry(t *testing.T) {
	svc := &fakeService{family: 4, items: []models.Ingredient{{ID: 1, Name: "Rice", Quantity: 2, Measurement: "kg"}}}
	m := New(svc, 80, 24)

	cmd := m.Load()
	m, _ = feed(m, cmd)

	if m.FamilySize() != 4 {
		t.Errorf("FamilySize() = %d, want 4", m.FamilySize())
	}
	if len(m.Ingredients()) != 1 || m.Ingredients()[0].Name != "Rice" {
		t.Errorf("Ingredients() = %+v", m.Ingredients())
	}
}

func TestInvalidFormSendsNothing(t *testing.T) {
	tests := []struct {
		name               string
		ingName, qty, unit string
		want               string
	}{
		{"blank name", "", "2", "kg", validation.MsgIngredientFields},
		{"blank quantity", "Rice", "", "kg", validation.MsgIngredientFields},
		{"zero quantity", "Rice", "0", "kg", validation.MsgQuantityPositive},
		{"not a number", "Rice", "lots", "kg", validation.MsgQuantityPositive},
		{"blank measurement", "Rice", "2", "  ", validation.MsgIngredientFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			m := New(svc, 80, 24)
			fill(&m, tt.ingName, tt.qty, tt.unit)

			if cmd := m.submit(); cmd != nil {
				t.Fatal("invalid form should not produce a request")
			}
			if m.FormError() != tt.want {
				t.Errorf("FormError() = %q, want %q", m.FormError(), tt.want)
			}
			if !m.Adding() {
				t.Error("form should stay open")
			}
			if len(svc.created) != 0 {
				t.Error("Create should not be called")
			}
		})
	}
}

func TestAddAppendsAndClosesForm(t *testing.T) {
	svc := &fakeService{}
	m := New(svc, 80, 24)
	fill(&m, " Beans ", "1.5", "kg")

	cmd := m.submit()
	m, follow := feed(m, cmd)

	if m.Adding() {
		t.Error("form should close after a successful add")
	}
	if len(m.Ingredients()) != 1 || m.Ingredients()[0].Name != "Beans" {
		t.Errorf("Ingredients() = %+v", m.Ingredients())
	}
	if len(svc.created) != 1 || svc.created[0].Quantity != 1.5 {
		t.Errorf("created = %+v", svc.created)
	}

	added := false
	for _, msg := range follow {
		if a, ok := msg.(AddedMsg); ok && a.Ingredient.Name == "Beans" {
			added = true
		}
	}
	if !added {
		t.Error("expected AddedMsg")
	}
}

func TestCreateFailureKeepsForm(t *testing.T) {
	svc := &fakeService{createErr: errors.New("500")}
	m := New(svc, 80, 24)
	fill(&m, "Beans", "1", "kg")

	cmd := m.submit()
	m, _ = feed(m, cmd)

	if !m.Adding() {
		t.Fatal("form should stay open after a failed add")
	}
	if m.FormError() != "Failed to add ingredient. Please try again." {
		t.Errorf("FormError() = %q", m.FormError())
	}
	if len(m.Ingredients()) != 0 {
		t.Error("list changed after a failed add")
	}
}

func TestEscClosesForm(t *testing.T) {
	m := New(&fakeService{}, 80, 24)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if !m.Adding() {
		t.Fatal("a should open the form")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Adding() {
		t.Error("esc should close the form")
	}
}
