package calendar

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/mealplanner/internal/models"
)

type fakeStore struct {
	rows    []models.CalendarRow
	loadErr error
	saveErr error
	saved   []models.SlotAssignment
}

func (f *fakeStore) WeeklyCalendar(ctx context.Context) ([]models.CalendarRow, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.rows, nil
}

func (f *fakeStore) SaveSlot(ctx context.Context, a models.SlotAssignment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, a)
	return nil
}

func soupRow() models.CalendarRow {
	return models.CalendarRow{
		ID:        1,
		DayOfWeek: 0,
		SlotID:    1,
		RecipeID:  "r1",
		Recipe:    &models.CalendarRecipe{ID: "r1", Name: "Soup"},
	}
}

func TestLoad_SundaySoup(t *testing.T) {
	p := NewPlanner(&fakeStore{rows: []models.CalendarRow{soupRow()}})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	week := p.Week()

	r, ok := week.Cell(Sunday, 1).Recipe()
	if !ok {
		t.Fatal("Sunday slot 1 is empty, want Soup")
	}
	if r.Name != "Soup" || r.ID != "r1" {
		t.Errorf("Sunday slot 1 = %+v, want r1/Soup", r)
	}
	if got := week.Filled(); got != 1 {
		t.Errorf("Filled() = %d, want 1", got)
	}
}

func TestLoad_AbsentDaysHaveThreeEmptySlots(t *testing.T) {
	p := NewPlanner(&fakeStore{rows: []models.CalendarRow{soupRow()}})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	week := p.Week()
	for d := Monday; d <= Saturday; d++ {
		if len(week[d]) != 3 {
			t.Fatalf("%s has %d slots, want 3", d, len(week[d]))
		}
		for s := SlotNumber(1); s <= 3; s++ {
			if !week.Cell(d, s).Empty() {
				t.Errorf("%s slot %d should be empty", d, s)
			}
		}
	}
}

func TestLoad_NullRecipeAndOutOfRangeRows(t *testing.T) {
	rows := []models.CalendarRow{
		{ID: 1, DayOfWeek: 2, SlotID: 2, Recipe: nil},
		{ID: 2, DayOfWeek: 7, SlotID: 1, Recipe: &models.CalendarRecipe{ID: "x", Name: "Ghost"}},
		{ID: 3, DayOfWeek: 1, SlotID: 4, Recipe: &models.CalendarRecipe{ID: "y", Name: "Ghost"}},
		{ID: 4, DayOfWeek: -1, SlotID: 0, Recipe: &models.CalendarRecipe{ID: "z", Name: "Ghost"}},
	}
	p := NewPlanner(&fakeStore{rows: rows})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	week := p.Week()
	if got := week.Filled(); got != 0 {
		t.Errorf("Filled() = %d, want 0", got)
	}
}

func TestBuildWeek_FirstRowWinsForRepeatedSlot(t *testing.T) {
	tests := []struct {
		name string
		rows []models.CalendarRow
		want string
	}{
		{
			name: "two recipes",
			rows: []models.CalendarRow{
				soupRow(),
				{ID: 2, DayOfWeek: 0, SlotID: 1, Recipe: &models.CalendarRecipe{ID: "r2", Name: "Stew"}},
			},
			want: "Soup",
		},
		{
			name: "empty row first",
			rows: []models.CalendarRow{
				{ID: 2, DayOfWeek: 0, SlotID: 1},
				soupRow(),
			},
			want: "",
		},
		{
			name: "empty row second",
			rows: []models.CalendarRow{
				soupRow(),
				{ID: 2, DayOfWeek: 0, SlotID: 1},
			},
			want: "Soup",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := BuildWeek(tt.rows)
			r, _ := week.Cell(Sunday, 1).Recipe()
			if r.Name != tt.want {
				t.Errorf("Sunday slot 1 = %q, want %q", r.Name, tt.want)
			}
		})
	}
}

func TestLoad_ErrorResetsGrid(t *testing.T) {
	store := &fakeStore{rows: []models.CalendarRow{soupRow()}}
	p := NewPlanner(store)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	store.loadErr = errors.New("connection refused")
	if err := p.Load(context.Background()); err == nil {
		t.Fatal("Load() expected error")
	}
	week := p.Week()
	if got := week.Filled(); got != 0 {
		t.Errorf("Filled() after failed load = %d, want 0", got)
	}
}

func TestAssign_OnlyTargetChanges(t *testing.T) {
	store := &fakeStore{rows: []models.CalendarRow{soupRow()}}
	p := NewPlanner(store)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := p.Week()

	stew := models.Recipe{ID: "r2", Name: "Stew", Ingredients: []string{"beef", "carrot"}}
	if err := p.Assign(context.Background(), Wednesday, 2, stew); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	after := p.Week()

	for d := Sunday; d <= Saturday; d++ {
		for s := SlotNumber(1); s <= 3; s++ {
			if d == Wednesday && s == 2 {
				r, ok := after.Cell(d, s).Recipe()
				if !ok || r.Name != "Stew" {
					t.Errorf("Wednesday slot 2 = %+v, want Stew", r)
				}
				continue
			}
			if before.Cell(d, s) != after.Cell(d, s) {
				t.Errorf("%s slot %d changed unexpectedly", d, s)
			}
		}
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d payloads, want 1", len(store.saved))
	}
	got := store.saved[0]
	if got.ID != 0 || got.DayOfWeek != 3 || got.SlotID != 2 || got.RecipeID != "r2" {
		t.Errorf("payload = %+v", got)
	}
	if got.Recipe.Name != "Stew" || len(got.Recipe.Ingredients) != 2 {
		t.Errorf("payload recipe = %+v", got.Recipe)
	}
}

func TestAssign_ReplaceDoesNotDuplicate(t *testing.T) {
	p := NewPlanner(&fakeStore{rows: []models.CalendarRow{soupRow()}})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := p.Assign(context.Background(), Sunday, 1, models.Recipe{ID: "r3", Name: "Salad"}); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	week := p.Week()
	r, _ := week.Cell(Sunday, 1).Recipe()
	if r.Name != "Salad" {
		t.Errorf("Sunday slot 1 = %q, want Salad", r.Name)
	}
	if got := week.Filled(); got != 1 {
		t.Errorf("Filled() = %d, want 1", got)
	}
}

func TestAssign_FailureLeavesStateUnchanged(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("500")}
	p := NewPlanner(store)
	err := p.Assign(context.Background(), Friday, 3, models.Recipe{ID: "r9", Name: "Pie"})
	if err == nil {
		t.Fatal("Assign() expected error")
	}
	if !errors.Is(err, store.saveErr) {
		t.Errorf("Assign() error = %v, want wrapped save error", err)
	}
	week := p.Week()
	if !week.Cell(Friday, 3).Empty() {
		t.Error("Friday slot 3 should still be empty")
	}
}

func TestAssign_InvalidCoordinates(t *testing.T) {
	store := &fakeStore{}
	p := NewPlanner(store)
	if err := p.Assign(context.Background(), Day(7), 1, models.Recipe{}); err == nil {
		t.Error("expected error for day 7")
	}
	if err := p.Assign(context.Background(), Monday, 0, models.Recipe{}); err == nil {
		t.Error("expected error for slot 0")
	}
	if len(store.saved) != 0 {
		t.Errorf("invalid assignments reached the store: %d", len(store.saved))
	}
}

func TestWeekIsACopy(t *testing.T) {
	p := NewPlanner(&fakeStore{})
	w := p.Week()
	w.Set(Monday, 1, Filled(models.Recipe{Name: "Toast"}))
	week := p.Week()
	if !week.Cell(Monday, 1).Empty() {
		t.Error("mutating the returned week changed the planner")
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{"Sunday", Sunday, false},
		{"mon", Monday, false},
		{"THU", Thursday, false},
		{"6", Saturday, false},
		{" 0 ", Sunday, false},
		{"7", 0, true},
		{"funday", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSlot(t *testing.T) {
	for _, in := range []string{"1", "2", "3"} {
		if _, err := ParseSlot(in); err != nil {
			t.Errorf("ParseSlot(%q) error = %v", in, err)
		}
	}
	for _, in := range []string{"0", "4", "x"} {
		if _, err := ParseSlot(in); err == nil {
			t.Errorf("ParseSlot(%q) expected error", in)
		}
	}
}

func TestFetchAndSaveLeaveGridAlone(t *testing.T) {
	store := &fakeStore{rows: []models.CalendarRow{soupRow()}}
	p := NewPlanner(store)

	w, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if w.Filled() != 1 {
		t.Errorf("fetched Filled() = %d, want 1", w.Filled())
	}
	week := p.Week()
	if week.Filled() != 0 {
		t.Error("Fetch() must not change the planner grid")
	}

	pie := models.Recipe{ID: "r9", Name: "Pie"}
	if err := p.Save(context.Background(), Friday, 3, pie); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	week = p.Week()
	if !week.Cell(Friday, 3).Empty() {
		t.Error("Save() must not change the planner grid")
	}

	p.SetWeek(w)
	p.Place(Friday, 3, pie)
	week = p.Week()
	if week.Filled() != 2 {
		t.Errorf("Filled() = %d, want 2", week.Filled())
	}
}
