package models

import "sort"

// IngredientSearchCount is how often an ingredient was searched for.
type IngredientSearchCount struct {
	Ingredient  string `json:"ingredient"`
	SearchCount int    `json:"searchCount"`
}

// RecipeRepetition is how often a recipe appears on the calendar.
type RecipeRepetition struct {
	Recipe string `json:"recipe"`
	Count  int    `json:"count"`
}

// AggregatedData is the analytics payload. Both slices must be present in
// the response for it to be considered valid.
type AggregatedData struct {
	IngredientCounts []IngredientSearchCount `json:"aggregatedIngredientCount"`
	RecipeData       []RecipeRepetition      `json:"recipeData"`
}

// MaxRepetition returns the largest recipe count, never less than 1 so it
// can be used as a divisor when scaling bars.
func (a AggregatedData) MaxRepetition() int {
	m := 1
	for _, r := range a.RecipeData {
		if r.Count > m {
			m = r.Count
		}
	}
	return m
}

// MaxSearchCount returns the largest ingredient search count, minimum 1.
func (a AggregatedData) MaxSearchCount() int {
	m := 1
	for _, c := range a.IngredientCounts {
		if c.SearchCount > m {
			m = c.SearchCount
		}
	}
	return m
}

// RemainingIngredient is a pantry item with its planned usage.
type RemainingIngredient struct {
	IngredientName    string  `json:"ingredientName"`
	TotalQuantity     float64 `json:"totalQuantity"`
	UsedQuantity      float64 `json:"usedQuantity"`
	RemainingQuantity float64 `json:"remainingQuantity"`
	Measurement       string  `json:"measurement"`
}

// Shortage reports whether the planned meals need more than is available.
func (r RemainingIngredient) Shortage() bool {
	return r.RemainingQuantity < 0
}

// Shortages filters rows down to those with negative remaining quantity,
// worst first.
func Shortages(rows []RemainingIngredient) []RemainingIngredient {
	var out []RemainingIngredient
	for _, r := range rows {
		if r.Shortage() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemainingQuantity < out[j].RemainingQuantity
	})
	return out
}
