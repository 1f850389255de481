package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a remote identifier. The API is inconsistent about sending ids as
// numbers or strings, so both decode into the same value.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Recipe is immutable once fetched and is copied by value into UI state.
type Recipe struct {
	ID           ID       `json:"id"`
	Name         string   `json:"recipeName"`
	Ingredients  []string `json:"ingredients,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Role         string   `json:"role,omitempty"`
}

// UnnamedRecipe is shown in place of a blank recipe name.
const UnnamedRecipe = "Unnamed Recipe"

// DisplayName is the recipe's name, or UnnamedRecipe when it is blank.
func (r Recipe) DisplayName() string {
	if strings.TrimSpace(r.Name) == "" {
		return UnnamedRecipe
	}
	return r.Name
}

// IngredientList joins the recipe's ingredients for single-line display.
func (r Recipe) IngredientList() string {
	return strings.Join(r.Ingredients, ", ")
}

// SearchQuery is the request body for both recipe recommendation endpoints.
type SearchQuery struct {
	Ingredients []string `json:"ingredients"`
	Page        int      `json:"pageNumber"`
	PageSize    int      `json:"pageSize"`
	Role        string   `json:"role"`
}

// RecipePage is one page of recipe results plus the total match count.
type RecipePage struct {
	Recipes    []Recipe `json:"recipes"`
	TotalCount int      `json:"totalCount"`
}

// UnmarshalJSON tolerates a missing or malformed recipes field, which the
// API treats as an empty page.
func (p *RecipePage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Recipes    json.RawMessage `json:"recipes"`
		TotalCount int             `json:"totalCount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.TotalCount = raw.TotalCount
	p.Recipes = []Recipe{}
	if len(raw.Recipes) > 0 && raw.Recipes[0] == '[' {
		if err := json.Unmarshal(raw.Recipes, &p.Recipes); err != nil {
			return err
		}
	}
	return nil
}
