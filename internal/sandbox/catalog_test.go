package sandbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/mealplanner/internal/models"
)

func TestSeedRecipes(t *testing.T) {
	recipes, err := SeedRecipes()
	require.NoError(t, err)
	require.NotEmpty(t, recipes)

	seen := map[models.ID]bool{}
	for _, r := range recipes {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Ingredients, r.Name)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestRank(t *testing.T) {
	recipes := []models.Recipe{
		{ID: "1", Name: "Toast", Ingredients: []string{"bread", "butter"}},
		{ID: "2", Name: "Pancakes", Ingredients: []string{"egg", "flour", "milk"}},
		{ID: "3", Name: "Crepes", Ingredients: []string{"egg", "flour", "milk"}},
		{ID: "4", Name: "Omelette", Ingredients: []string{"Eggs", "cheese"}},
	}

	page, total := Rank(recipes, []string{"egg", "FLOUR"}, 1, 10)
	assert.Equal(t, 3, total)
	require.Len(t, page, 3)
	assert.Equal(t, "Crepes", page[0].Name, "ties break by name")
	assert.Equal(t, "Pancakes", page[1].Name)
	assert.Equal(t, "Omelette", page[2].Name, "substring match on Eggs")

	page, total = Rank(recipes, []string{"egg"}, 2, 2)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)

	page, total = Rank(recipes, []string{"egg"}, 5, 2)
	assert.Equal(t, 3, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page, total = Rank(recipes, []string{" "}, 1, 10)
	assert.Equal(t, 0, total)
	assert.NotNil(t, page)
}

func TestRecipeRepetitions(t *testing.T) {
	planned := []models.Recipe{{Name: "Soup"}, {Name: "Stew"}, {Name: "Soup"}, {Name: "Bread"}}
	got := RecipeRepetitions(planned)
	want := []models.RecipeRepetition{{Recipe: "Soup", Count: 2}, {Recipe: "Bread", Count: 1}, {Recipe: "Stew", Count: 1}}
	assert.Equal(t, want, got)
	assert.NotNil(t, RecipeRepetitions(nil))
}

func TestRemaining(t *testing.T) {
	pantry := []models.Ingredient{
		{Name: "Egg", Quantity: 6, Measurement: "pcs"},
		{Name: "milk", Quantity: 1, Measurement: "l"},
		{Name: "egg", Quantity: 2, Measurement: "pcs"},
	}
	planned := []models.Recipe{
		{Name: "Pancakes", Ingredients: []string{"egg", "milk", "egg"}},
		{Name: "Omelette", Ingredients: []string{"egg"}},
	}

	got := Remaining(pantry, planned, 3)
	require.Len(t, got, 2)
	assert.Equal(t, models.RemainingIngredient{
		IngredientName: "Egg", TotalQuantity: 8, UsedQuantity: 6, RemainingQuantity: 2, Measurement: "pcs",
	}, got[0])
	assert.Equal(t, float64(-2), got[1].RemainingQuantity)
	assert.True(t, got[1].Shortage())
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(7, "grace")
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	other := NewTokenIssuer("another-secret-0123456789", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
