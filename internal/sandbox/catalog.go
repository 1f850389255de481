package sandbox

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/storage"
	"github.com/julianstephens/mealplanner/internal/utils"
)

//go:embed data/recipes.json
var seedRecipes []byte

// SeedRecipes returns the built-in recipe catalog.
func SeedRecipes() ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := json.Unmarshal(seedRecipes, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse seed recipes: %w", err)
	}
	return recipes, nil
}

// Seed upserts the built-in catalog and returns the number of recipes
// written.
func Seed(ctx context.Context, store storage.Provider) (int, error) {
	recipes, err := SeedRecipes()
	if err != nil {
		return 0, err
	}
	for _, r := range recipes {
		if err := store.UpsertRecipe(ctx, r); err != nil {
			return 0, err
		}
	}
	logger.Info("Seeded recipe catalog", "recipes", len(recipes), "store", store.Name())
	return len(recipes), nil
}

// matchCount counts recipe ingredients that contain any query term.
func matchCount(r models.Recipe, terms []string) int {
	n := 0
	for _, ing := range r.Ingredients {
		ing = strings.ToLower(ing)
		for _, term := range terms {
			if strings.Contains(ing, term) {
				n++
				break
			}
		}
	}
	return n
}

// Rank returns one page of recipes using at least one of the ingredients,
// ordered by match count then name, and the total number of matches.
func Rank(recipes []models.Recipe, ingredients []string, page, pageSize int) ([]models.Recipe, int) {
	terms := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if t := strings.ToLower(strings.TrimSpace(ing)); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return []models.Recipe{}, 0
	}

	type scored struct {
		recipe models.Recipe
		score  int
	}
	var matches []scored
	for _, r := range recipes {
		if n := matchCount(r, terms); n > 0 {
			matches = append(matches, scored{r, n})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].recipe.Name < matches[j].recipe.Name
	})

	ranked := make([]models.Recipe, len(matches))
	for i, m := range matches {
		ranked[i] = m.recipe
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(ranked)
	}
	out := utils.PageSlice(ranked, page, pageSize)
	if out == nil {
		out = []models.Recipe{}
	}
	return out, len(ranked)
}
