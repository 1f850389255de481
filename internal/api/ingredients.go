package api

import (
	"context"
	"math"
	"net/http"

	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

// IngredientClient reads and writes the user's pantry. Every call needs a
// valid session and fails with session.ErrSessionInvalid before any
// request when there is none.
type IngredientClient struct {
	c *Client
}

// FamilySize returns the household size recorded at registration.
func (i *IngredientClient) FamilySize(ctx context.Context) (int, error) {
	var size float64
	if err := i.c.do(ctx, "get family size", http.MethodGet, "/familysize", authRequired, nil, &size); err != nil {
		return 0, err
	}
	return int(math.Round(size)), nil
}

// List returns the available ingredients.
func (i *IngredientClient) List(ctx context.Context) ([]models.Ingredient, error) {
	var ings []models.Ingredient
	if err := i.c.do(ctx, "list ingredients", http.MethodGet, "/AvailableGrocery", authRequired, nil, &ings); err != nil {
		return nil, err
	}
	if ings == nil {
		ings = []models.Ingredient{}
	}
	return ings, nil
}

// Create adds an ingredient and returns the stored entity with its
// server-assigned id. The id sent is always 0.
func (i *IngredientClient) Create(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	if err := validation.ValidateIngredient(ing); err != nil {
		return models.Ingredient{}, err
	}
	ing.ID = 0

	var created models.Ingredient
	if err := i.c.do(ctx, "create ingredient", http.MethodPost, "/AvailableGrocery", authRequired, ing, &created); err != nil {
		return models.Ingredient{}, err
	}
	return created, nil
}
