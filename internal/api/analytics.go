package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/julianstephens/mealplanner/internal/models"
)

// ErrIncompleteAnalytics is returned when the analytics payload is missing
// one of its two series.
var ErrIncompleteAnalytics = errors.New("API response does not contain expected data")

// AnalyticsClient reads aggregate usage data.
type AnalyticsClient struct {
	c *Client
}

// Aggregated returns ingredient search counts and recipe repetition counts.
func (a *AnalyticsClient) Aggregated(ctx context.Context) (models.AggregatedData, error) {
	var raw struct {
		IngredientCounts *[]models.IngredientSearchCount `json:"aggregatedIngredientCount"`
		RecipeData       *[]models.RecipeRepetition      `json:"recipeData"`
	}
	if err := a.c.do(ctx, "load analytics", http.MethodGet, "/recipe/aggregateddata", authOptional, nil, &raw); err != nil {
		return models.AggregatedData{}, err
	}
	if raw.IngredientCounts == nil || raw.RecipeData == nil {
		return models.AggregatedData{}, &Error{Op: "load analytics", Method: http.MethodGet, Path: "/recipe/aggregateddata", Status: http.StatusOK, Err: ErrIncompleteAnalytics}
	}
	return models.AggregatedData{
		IngredientCounts: *raw.IngredientCounts,
		RecipeData:       *raw.RecipeData,
	}, nil
}

// RemainingIngredients returns pantry quantities left after the planned
// meals are accounted for.
func (a *AnalyticsClient) RemainingIngredients(ctx context.Context) ([]models.RemainingIngredient, error) {
	var rows []models.RemainingIngredient
	if err := a.c.do(ctx, "load remaining ingredients", http.MethodGet, "/recipe/remaining-ingredients", authOptional, nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.RemainingIngredient{}
	}
	return rows, nil
}
