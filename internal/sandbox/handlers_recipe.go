package sandbox

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

func (s *Server) searchRecipes(c *gin.Context, defaultSize int, record bool) {
	var q models.SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	q.Ingredients = validation.NormalizeIngredients(q.Ingredients)
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}

	ctx := c.Request.Context()
	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		logger.Error("Failed to list recipes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	page, total := Rank(recipes, q.Ingredients, q.Page, q.PageSize)
	for i := range page {
		page[i].Role = q.Role
	}

	if record {
		if err := s.store.IncrementSearchCounts(ctx, q.Ingredients); err != nil {
			logger.Warn("Failed to record ingredient searches", "error", err)
		}
	}
	c.JSON(http.StatusOK, models.RecipePage{Recipes: page, TotalCount: total})
}

// recommend is the recipe search. Each searched ingredient is counted for
// analytics.
func (s *Server) recommend(c *gin.Context) {
	s.searchRecipes(c, constants.SearchPageSize, true)
}

func (s *Server) recommendByIngredients(c *gin.Context) {
	s.searchRecipes(c, constants.RecommendationPageSize, false)
}

// plannedRecipes resolves the user's calendar slots to recipes. Slots whose
// recipe no longer exists are skipped.
func (s *Server) plannedRecipes(ctx context.Context, user int64) ([]models.Recipe, error) {
	slots, err := s.store.ListCalendarSlots(ctx, user)
	if err != nil {
		return nil, err
	}
	planned := make([]models.Recipe, 0, len(slots))
	for _, slot := range slots {
		r, err := s.store.GetRecipe(ctx, slot.RecipeID)
		if err != nil {
			logger.Warn("Calendar slot references unknown recipe", "slot", slot.ID, "recipe", slot.RecipeID)
			continue
		}
		planned = append(planned, r)
	}
	return planned, nil
}

// RecipeRepetitions counts how often each recipe appears in a plan, most
// frequent first.
func RecipeRepetitions(planned []models.Recipe) []models.RecipeRepetition {
	counts := map[string]int{}
	for _, r := range planned {
		counts[r.Name]++
	}
	out := make([]models.RecipeRepetition, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.RecipeRepetition{Recipe: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Recipe < out[j].Recipe
	})
	return out
}

func (s *Server) aggregatedData(c *gin.Context) {
	ctx := c.Request.Context()
	counts, err := s.store.SearchCounts(ctx)
	if err != nil {
		logger.Error("Failed to read search counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	planned, err := s.plannedRecipes(ctx, userID(c))
	if err != nil {
		logger.Error("Failed to read calendar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, models.AggregatedData{
		IngredientCounts: counts,
		RecipeData:       RecipeRepetitions(planned),
	})
}

// Remaining subtracts planned usage from the pantry. Every planned recipe
// that lists an ingredient consumes familySize units of it. Pantry rows
// with the same name are merged.
func Remaining(pantry []models.Ingredient, planned []models.Recipe, familySize int) []models.RemainingIngredient {
	var order []string
	byName := map[string]*models.RemainingIngredient{}
	for _, ing := range pantry {
		key := strings.ToLower(strings.TrimSpace(ing.Name))
		row, ok := byName[key]
		if !ok {
			row = &models.RemainingIngredient{IngredientName: ing.Name, Measurement: ing.Measurement}
			byName[key] = row
			order = append(order, key)
		}
		row.TotalQuantity += ing.Quantity
	}

	for _, r := range planned {
		seen := map[string]bool{}
		for _, name := range r.Ingredients {
			key := strings.ToLower(strings.TrimSpace(name))
			if row, ok := byName[key]; ok && !seen[key] {
				row.UsedQuantity += float64(familySize)
				seen[key] = true
			}
		}
	}

	out := make([]models.RemainingIngredient, 0, len(order))
	for _, key := range order {
		row := byName[key]
		row.RemainingQuantity = row.TotalQuantity - row.UsedQuantity
		out = append(out, *row)
	}
	return out
}

func (s *Server) remainingIngredients(c *gin.Context) {
	user := userID(c)
	if user == 0 {
		c.JSON(http.StatusOK, []models.RemainingIngredient{})
		return
	}

	ctx := c.Request.Context()
	u, err := s.store.GetUser(ctx, user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	pantry, err := s.store.ListIngredients(ctx, user)
	if err != nil {
		logger.Error("Failed to list ingredients", "user", user, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	planned, err := s.plannedRecipes(ctx, user)
	if err != nil {
		logger.Error("Failed to read calendar", "user", user, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, Remaining(pantry, planned, u.FamilySize))
}
