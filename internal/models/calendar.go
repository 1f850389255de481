package models

// CalendarRecipe is the recipe shape embedded in calendar rows. Unlike
// Recipe, the remote store names the title field "name" here.
type CalendarRecipe struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

// Recipe converts the embedded shape back to the directory shape.
func (c CalendarRecipe) Recipe() Recipe {
	ings := c.Ingredients
	if ings == nil {
		ings = []string{}
	}
	return Recipe{
		ID:           c.ID,
		Name:         c.Name,
		Ingredients:  ings,
		ImageURL:     c.ImageURL,
		Instructions: c.Instructions,
	}
}

// CalendarRow is one persisted slot as returned by GET /WeeklyCalendar.
type CalendarRow struct {
	ID        int64           `json:"id"`
	DayOfWeek int             `json:"dayOfWeek"`
	SlotID    int             `json:"slotId"`
	RecipeID  ID              `json:"recipeId"`
	Recipe    *CalendarRecipe `json:"recipe"`
}

// SlotAssignment is the payload for POST /WeeklyCalendar. It carries a
// denormalized copy of the recipe.
type SlotAssignment struct {
	ID        int64            `json:"id"`
	DayOfWeek int              `json:"dayOfWeek"`
	SlotID    int              `json:"slotId"`
	RecipeID  ID               `json:"recipeId"`
	Recipe    AssignmentRecipe `json:"recipe"`
}

// AssignmentRecipe is the recipe as sent when saving a slot.
type AssignmentRecipe struct {
	ID           ID       `json:"id"`
	Name         string   `json:"recipeName"`
	Instructions string   `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
}

// NewSlotAssignment builds the payload for assigning recipe to a slot.
func NewSlotAssignment(day, slot int, recipe Recipe) SlotAssignment {
	ings := recipe.Ingredients
	if ings == nil {
		ings = []string{}
	}
	return SlotAssignment{
		ID:        0,
		DayOfWeek: day,
		SlotID:    slot,
		RecipeID:  recipe.ID,
		Recipe: AssignmentRecipe{
			ID:           recipe.ID,
			Name:         recipe.Name,
			Instructions: recipe.Instructions,
			Ingredients:  ings,
		},
	}
}
