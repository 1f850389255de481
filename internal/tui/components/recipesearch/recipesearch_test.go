package recipesearch

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/models"
)

type fakeSearch struct {
	queries []models.SearchQuery
	err     error
}

func (f *fakeSearch) search(ctx context.Context, q models.SearchQuery) (models.RecipePage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return models.RecipePage{}, f.err
	}
	return models.RecipePage{
		Recipes:    []models.Recipe{{ID: "r1", Name: "Pancakes"}, {ID: "r2", Name: "Crepes"}},
		TotalCount: 30,
	}, nil
}

// drain runs cmd and any batched commands, returning their messages.
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

// step runs fn against m and feeds the resulting messages back into it.
func step(t *testing.T, m *Model, fn func(*Model) tea.Cmd) {
	t.Helper()
	cmd := fn(m)
	for _, msg := range drain(cmd) {
		*m, _ = m.Update(msg)
	}
}

func addChip(name string) func(*Model) tea.Cmd {
	return func(m *Model) tea.Cmd { return m.AddChip(name) }
}

func removeChip(m *Model) tea.Cmd { return m.RemoveChip() }

func TestEmptySearchSendsNothing(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)

	if cmd := m.AddChip("   "); cmd != nil {
		t.Error("blank ingredient should not produce a command")
	}
	if len(m.Chips()) != 0 {
		t.Errorf("chips = %v, want none", m.Chips())
	}
	if cmd := m.RemoveChip(); cmd != nil {
		t.Error("removing from an empty chip list should not search")
	}
	if len(fs.queries) != 0 {
		t.Errorf("search called %d times, want 0", len(fs.queries))
	}
	if len(m.Results()) != 0 {
		t.Error("expected zero results")
	}
}

func TestEveryChangeSearchesAgain(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)

	step(t, &m, addChip("egg"))
	step(t, &m, addChip("flour"))
	if len(fs.queries) != 2 {
		t.Fatalf("search called %d times, want 2", len(fs.queries))
	}
	q := fs.queries[1]
	if len(q.Ingredients) != 2 || q.Ingredients[0] != "egg" || q.Ingredients[1] != "flour" {
		t.Errorf("ingredients = %v", q.Ingredients)
	}
	if q.Page != 1 || q.PageSize != 12 {
		t.Errorf("page = %d size = %d, want 1 and 12", q.Page, q.PageSize)
	}
	if m.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", m.Pages())
	}
	if len(m.Results()) != 2 {
		t.Errorf("Results() = %d recipes, want 2", len(m.Results()))
	}

	step(t, &m, func(m *Model) tea.Cmd { return m.SetPage(2) })
	if len(fs.queries) != 3 || fs.queries[2].Page != 2 {
		t.Fatalf("page change did not search page 2: %+v", fs.queries)
	}

	step(t, &m, removeChip)
	if len(fs.queries) != 4 || fs.queries[3].Page != 1 || len(fs.queries[3].Ingredients) != 1 {
		t.Errorf("remove should search page 1 with one ingredient: %+v", fs.queries[3])
	}

	step(t, &m, removeChip)
	if len(fs.queries) != 4 {
		t.Error("removing the last chip should not search")
	}
	if len(m.Results()) != 0 {
		t.Error("no chips should mean no results")
	}
}

func TestStaleResultIgnored(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)

	first := drain(m.AddChip("egg"))
	step(t, &m, addChip("milk"))

	for _, msg := range first {
		if res, ok := msg.(fetch.Result[models.RecipePage]); ok {
			res.Value = models.RecipePage{Recipes: []models.Recipe{{Name: "Stale"}}, TotalCount: 1}
			m, _ = m.Update(res)
		}
	}
	if len(m.Results()) != 2 || m.Results()[0].Name != "Pancakes" {
		t.Errorf("stale result replaced the newer one: %+v", m.Results())
	}
}

func TestResultsForOtherPickerIgnored(t *testing.T) {
	fs := &fakeSearch{}
	m := New("mine", fs.search, 12, 80, 24)
	m.AddChip("egg")

	m, _ = m.Update(fetch.Result[models.RecipePage]{Key: "theirs", Seq: 1, Value: models.RecipePage{TotalCount: 99}})
	if !m.Loading() {
		t.Error("a result for another picker must not resolve this one")
	}
}

func TestSearchFailureShowsMessage(t *testing.T) {
	fs := &fakeSearch{err: errors.New("connection refused")}
	m := New("test", fs.search, 12, 80, 24)
	step(t, &m, addChip("egg"))

	if m.Err() == nil {
		t.Fatal("expected an error")
	}
	if m.req.Message() != fallbackMessage {
		t.Errorf("Message() = %q, want %q", m.req.Message(), fallbackMessage)
	}
}

func TestSelectEmitsRecipe(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)
	step(t, &m, addChip("egg"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Typing() {
		t.Fatal("down should move focus to the results")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := drain(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	sel, ok := msgs[0].(SelectedMsg)
	if !ok {
		t.Fatalf("got %T, want SelectedMsg", msgs[0])
	}
	if sel.Key != "test" || sel.Recipe.Name != "Pancakes" {
		t.Errorf("selected = %+v", sel)
	}
}

func TestResultFromBeforeResetIgnored(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)

	egg := drain(m.AddChip("egg"))
	m.Reset()
	flour := drain(m.AddChip("flour"))

	for _, msg := range egg {
		if res, ok := msg.(fetch.Result[models.RecipePage]); ok {
			res.Value = models.RecipePage{Recipes: []models.Recipe{{Name: "Omelette"}}, TotalCount: 1}
			m, _ = m.Update(res)
		}
	}
	if !m.Loading() {
		t.Fatalf("a reply from before Reset resolved the new search: %+v", m.Results())
	}

	for _, msg := range flour {
		m, _ = m.Update(msg)
	}
	if len(m.Results()) != 2 || m.Results()[0].Name != "Pancakes" {
		t.Errorf("Results() = %+v, want the flour search", m.Results())
	}
}

func TestAddChipSkipsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		add  []string
		want []string
	}{
		{"exact", []string{"egg", "egg"}, []string{"egg"}},
		{"case", []string{"Egg", "EGG"}, []string{"Egg"}},
		{"spaces", []string{"egg", "  egg "}, []string{"egg"}},
		{"distinct", []string{"egg", "flour"}, []string{"egg", "flour"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSearch{}
			m := New("test", fs.search, 12, 80, 24)
			for _, name := range tt.add {
				step(t, &m, addChip(name))
			}
			got := m.Chips()
			if len(got) != len(tt.want) {
				t.Fatalf("Chips() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Chips()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if len(fs.queries) != len(tt.want) {
				t.Errorf("search called %d times, want %d", len(fs.queries), len(tt.want))
			}
		})
	}
}

func TestRemoveAnyChip(t *testing.T) {
	tests := []struct {
		name   string
		remove func(*Model) tea.Cmd
		want   []string
	}{
		{"by name", func(m *Model) tea.Cmd { return m.RemoveChipNamed("FLOUR") }, []string{"egg", "milk"}},
		{"first by cursor", func(m *Model) tea.Cmd { m.SelectChip(0); return m.RemoveChip() }, []string{"flour", "milk"}},
		{"middle by cursor", func(m *Model) tea.Cmd { m.SelectChip(1); return m.RemoveChip() }, []string{"egg", "milk"}},
		{"last by default", removeChip, []string{"egg", "flour"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSearch{}
			m := New("test", fs.search, 12, 80, 24)
			for _, name := range []string{"egg", "flour", "milk"} {
				step(t, &m, addChip(name))
			}
			step(t, &m, tt.remove)

			got := m.Chips()
			if len(got) != 2 || got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("Chips() = %v, want %v", got, tt.want)
			}
			q := fs.queries[len(fs.queries)-1]
			if len(fs.queries) != 4 || len(q.Ingredients) != 2 || q.Page != 1 {
				t.Errorf("last query = %+v after %d searches", q, len(fs.queries))
			}
		})
	}
}

func TestRemoveUnknownChipDoesNothing(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)
	step(t, &m, addChip("egg"))

	if cmd := m.RemoveChipNamed("butter"); cmd != nil {
		t.Error("removing a missing ingredient should not search")
	}
	if len(m.Chips()) != 1 {
		t.Errorf("Chips() = %v", m.Chips())
	}
}

func TestArrowKeysPickChipToRemove(t *testing.T) {
	fs := &fakeSearch{}
	m := New("test", fs.search, 12, 80, 24)
	for _, name := range []string{"egg", "flour", "milk"} {
		step(t, &m, addChip(name))
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.SelectedChip() != 0 {
		t.Fatalf("SelectedChip() = %d, want 0", m.SelectedChip())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})

	step(t, &m, func(m *Model) tea.Cmd {
		var cmd tea.Cmd
		*m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		return cmd
	})
	got := m.Chips()
	if len(got) != 2 || got[0] != "egg" || got[1] != "milk" {
		t.Errorf("Chips() = %v, want [egg milk]", got)
	}
	if m.SelectedChip() != 1 {
		t.Errorf("SelectedChip() = %d, want 1", m.SelectedChip())
	}
}
