package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

// RecipeClient is the recipe directory: ingredient-driven, paged queries.
type RecipeClient struct {
	c *Client
}

func emptyPage() models.RecipePage {
	return models.RecipePage{Recipes: []models.Recipe{}}
}

func normalizeQuery(q models.SearchQuery, defaultSize int) models.SearchQuery {
	q.Ingredients = validation.NormalizeIngredients(q.Ingredients)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}
	return q
}

// Search returns one page of recipes that use the given ingredients. An
// empty ingredient list yields an empty page without contacting the API.
// When q.Role is empty it is derived from the session.
func (r *RecipeClient) Search(ctx context.Context, q models.SearchQuery) (models.RecipePage, error) {
	q = normalizeQuery(q, constants.SearchPageSize)
	if len(q.Ingredients) == 0 {
		return emptyPage(), nil
	}
	if q.Role == "" && r.c.session != nil {
		q.Role = r.c.session.Role()
	}

	var page models.RecipePage
	if err := r.c.do(ctx, "search recipes", http.MethodPost, "/recipe/recommend", authNone, q, &page); err != nil {
		return models.RecipePage{}, err
	}
	return page, nil
}

// Recommend queries the by-ingredients endpoint. The role is sent exactly
// as given, including empty.
func (r *RecipeClient) Recommend(ctx context.Context, q models.SearchQuery) (models.RecipePage, error) {
	q = normalizeQuery(q, constants.RecommendationPageSize)
	if len(q.Ingredients) == 0 {
		return emptyPage(), nil
	}

	var page models.RecipePage
	if err := r.c.do(ctx, "recommend recipes", http.MethodPost, "/recipe/recommendByIngredients", authNone, q, &page); err != nil {
		return models.RecipePage{}, err
	}
	return page, nil
}
