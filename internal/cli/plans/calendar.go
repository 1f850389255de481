package plans

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/mealplanner/internal/calendar"
	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
)

// CalendarShowCmd prints the weekly calendar.
type CalendarShowCmd struct {
	Day string `arg:"" optional:"" help:"Only show this day (name, abbreviation or 0-6)."`
}

func (cmd *CalendarShowCmd) Run(ctx *cli.Context) error {
	first, last := calendar.Sunday, calendar.Saturday
	if cmd.Day != "" {
		d, err := calendar.ParseDay(cmd.Day)
		if err != nil {
			return err
		}
		first, last = d, d
	}

	planner := calendar.NewPlanner(ctx.Client.Calendar())
	if err := planner.Load(context.Background()); err != nil {
		return cli.Fail("failed to load the weekly calendar", err)
	}

	week := planner.Week()
	for d := first; d <= last; d++ {
		ctx.Printf("%s:\n", d)
		for s := calendar.SlotNumber(1); s <= constants.SlotsPerDay; s++ {
			if r, ok := week.Cell(d, s).Recipe(); ok {
				ctx.Printf("  %d. %s\n", s, r.DisplayName())
			} else {
				ctx.Printf("  %d. (empty)\n", s)
			}
		}
	}
	ctx.Printf("%d of %d slots planned\n", week.Filled(), constants.DaysPerWeek*constants.SlotsPerDay)
	return nil
}

// CalendarAssignCmd searches by ingredient and stores the chosen recipe in
// a slot.
type CalendarAssignCmd struct {
	Day         string   `arg:"" help:"Day (name, abbreviation or 0-6)."`
	Slot        string   `arg:"" help:"Meal slot (1-3)."`
	Ingredients []string `short:"i" name:"ingredient" help:"Ingredient to search by (repeatable)." required:""`
	Recipe      string   `short:"r" help:"Recipe name or ID from the results. Defaults to the best match."`
}

func (cmd *CalendarAssignCmd) Run(ctx *cli.Context) error {
	day, err := calendar.ParseDay(cmd.Day)
	if err != nil {
		return err
	}
	slot, err := calendar.ParseSlot(cmd.Slot)
	if err != nil {
		return err
	}

	page, err := ctx.Client.Recipes().Search(context.Background(), models.SearchQuery{
		Ingredients: cmd.Ingredients,
		Page:        1,
		PageSize:    constants.SearchPageSize,
	})
	if err != nil {
		return cli.Fail("failed to fetch recipes", err)
	}
	recipe, err := pick(page.Recipes, cmd.Recipe)
	if err != nil {
		return err
	}

	planner := calendar.NewPlanner(ctx.Client.Calendar())
	if err := planner.Assign(context.Background(), day, slot, recipe); err != nil {
		return cli.Fail("failed to save the recipe", err)
	}
	ctx.Printf("✓ %s slot %d: %s\n", day, slot, recipe.DisplayName())
	return nil
}

// pick returns the recipe matching want by ID or case-insensitive name, or
// the first result when want is empty.
func pick(recipes []models.Recipe, want string) (models.Recipe, error) {
	if len(recipes) == 0 {
		return models.Recipe{}, fmt.Errorf("no recipes found for those ingredients")
	}
	want = strings.TrimSpace(want)
	if want == "" {
		return recipes[0], nil
	}
	for _, r := range recipes {
		if string(r.ID) == want || strings.EqualFold(r.Name, want) {
			return r, nil
		}
	}
	return models.Recipe{}, fmt.Errorf("recipe %q is not among the first %d results", want, len(recipes))
}
