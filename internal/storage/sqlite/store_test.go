package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "sandbox.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandbox.db")

	if err := NewStore(path).Load(); err == nil {
		t.Fatal("Load() on missing database should fail")
	}

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer reopened.Close()
	if reopened.Name() != path {
		t.Errorf("Name() = %q, want %q", reopened.Name(), path)
	}
}

func TestUsers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, storage.User{
		Username:       "alice",
		Email:          "Alice@Example.com",
		PasswordHash:   "hash",
		FamilySize:     3,
		SecretQuestion: "What is your favorite book?",
		AnswerHash:     "answer",
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if u.ID == 0 {
		t.Error("CreateUser() did not assign an id")
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if got.ID != u.ID || got.FamilySize != 3 || got.Email != "alice@example.com" {
		t.Errorf("GetUserByEmail() = %+v", got)
	}

	if _, err := store.CreateUser(ctx, storage.User{Email: "ALICE@example.com"}); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrDuplicate", err)
	}

	if err := store.UpdatePassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() failed: %v", err)
	}
	got, _ = store.GetUser(ctx, u.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want new-hash", got.PasswordHash)
	}

	if _, err := store.GetUser(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUser(999) error = %v, want ErrNotFound", err)
	}
	if err := store.UpdatePassword(ctx, 999, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdatePassword(999) error = %v, want ErrNotFound", err)
	}
}

func TestRecipes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	soup := models.Recipe{ID: "r1", Name: "Soup", Ingredients: []string{"carrot", "onion"}}
	if err := store.UpsertRecipe(ctx, soup); err != nil {
		t.Fatalf("UpsertRecipe() failed: %v", err)
	}
	if err := store.UpsertRecipe(ctx, models.Recipe{ID: "r2", Name: "Bread"}); err != nil {
		t.Fatalf("UpsertRecipe() failed: %v", err)
	}
	soup.Instructions = "Simmer."
	if err := store.UpsertRecipe(ctx, soup); err != nil {
		t.Fatalf("UpsertRecipe() update failed: %v", err)
	}

	n, err := store.CountRecipes(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountRecipes() = (%d, %v), want 2", n, err)
	}

	got, err := store.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRecipe() failed: %v", err)
	}
	if got.Instructions != "Simmer." || len(got.Ingredients) != 2 {
		t.Errorf("GetRecipe() = %+v", got)
	}

	all, err := store.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes() failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Bread" {
		t.Errorf("ListRecipes() = %+v, want Bread first", all)
	}

	if _, err := store.GetRecipe(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRecipe(missing) error = %v", err)
	}
}

func TestIngredientsArePerUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	egg, err := store.AddIngredient(ctx, 1, models.Ingredient{Name: "egg", Quantity: 12, Measurement: "pcs"})
	if err != nil {
		t.Fatalf("AddIngredient() failed: %v", err)
	}
	if egg.ID == 0 {
		t.Error("AddIngredient() did not assign an id")
	}
	if _, err := store.AddIngredient(ctx, 2, models.Ingredient{Name: "milk", Quantity: 1, Measurement: "l"}); err != nil {
		t.Fatalf("AddIngredient() failed: %v", err)
	}

	ings, err := store.ListIngredients(ctx, 1)
	if err != nil {
		t.Fatalf("ListIngredients() failed: %v", err)
	}
	if len(ings) != 1 || ings[0].Name != "egg" || ings[0].Quantity != 12 {
		t.Errorf("ListIngredients(1) = %+v", ings)
	}

	empty, err := store.ListIngredients(ctx, 3)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("ListIngredients(3) = (%v, %v), want empty non-nil", empty, err)
	}
}

func TestCalendarUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertCalendarSlot(ctx, storage.CalendarSlot{UserID: 1, DayOfWeek: 0, SlotID: 1, RecipeID: "r1"})
	if err != nil {
		t.Fatalf("UpsertCalendarSlot() failed: %v", err)
	}
	second, err := store.UpsertCalendarSlot(ctx, storage.CalendarSlot{UserID: 1, DayOfWeek: 0, SlotID: 1, RecipeID: "r2"})
	if err != nil {
		t.Fatalf("UpsertCalendarSlot() replace failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("replace changed row id: %d -> %d", first.ID, second.ID)
	}
	if _, err := store.UpsertCalendarSlot(ctx, storage.CalendarSlot{UserID: 1, DayOfWeek: 2, SlotID: 3, RecipeID: "r1"}); err != nil {
		t.Fatal(err)
	}

	slots, err := store.ListCalendarSlots(ctx, 1)
	if err != nil {
		t.Fatalf("ListCalendarSlots() failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].RecipeID != "r2" {
		t.Errorf("Sunday slot 1 = %q, want r2", slots[0].RecipeID)
	}

	if _, err := store.UpsertCalendarSlot(ctx, storage.CalendarSlot{UserID: 1, DayOfWeek: 9, SlotID: 1, RecipeID: "r1"}); err == nil {
		t.Error("day 9 should violate the check constraint")
	}
}

func TestSearchCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.IncrementSearchCounts(ctx, []string{"egg", "Flour"}); err != nil {
		t.Fatalf("IncrementSearchCounts() failed: %v", err)
	}
	if err := store.IncrementSearchCounts(ctx, []string{"egg"}); err != nil {
		t.Fatalf("IncrementSearchCounts() failed: %v", err)
	}
	if err := store.IncrementSearchCounts(ctx, nil); err != nil {
		t.Fatalf("IncrementSearchCounts(nil) failed: %v", err)
	}

	counts, err := store.SearchCounts(ctx)
	if err != nil {
		t.Fatalf("SearchCounts() failed: %v", err)
	}
	want := []models.IngredientSearchCount{{Ingredient: "egg", SearchCount: 2}, {Ingredient: "flour", SearchCount: 1}}
	if len(counts) != len(want) {
		t.Fatalf("SearchCounts() = %+v", counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}
