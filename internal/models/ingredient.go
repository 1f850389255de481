package models

import "strconv"

// Ingredient is an item in the user's available grocery list. New
// ingredients are sent with ID 0 and the server assigns the real id.
type Ingredient struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Measurement string  `json:"measurement"`
}

// FormatQuantity renders the quantity without trailing zeros.
func (i Ingredient) FormatQuantity() string {
	return strconv.FormatFloat(i.Quantity, 'f', -1, 64)
}

// IngredientNames returns the names of ings in order.
func IngredientNames(ings []Ingredient) []string {
	names := make([]string, 0, len(ings))
	for _, ing := range ings {
		names = append(names, ing.Name)
	}
	return names
}
