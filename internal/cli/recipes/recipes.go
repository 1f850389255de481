package recipes

import (
	"context"

	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/utils"
)

// SearchCmd finds recipes by ingredient.
type SearchCmd struct {
	Ingredients []string `arg:"" help:"Ingredients the recipes should use."`
	Page        int      `short:"p" help:"Page number." default:"1"`
	PageSize    int      `short:"n" help:"Recipes per page." default:"12" name:"page-size"`
	ShowIDs     bool     `help:"Show recipe IDs." name:"show-ids"`
}

func (cmd *SearchCmd) Run(ctx *cli.Context) error {
	q := models.SearchQuery{Ingredients: cmd.Ingredients, Page: cmd.Page, PageSize: cmd.PageSize}
	page, err := ctx.Client.Recipes().Search(context.Background(), q)
	if err != nil {
		return cli.Fail("failed to fetch recipes", err)
	}
	printPage(ctx, page, q.Page, q.PageSize, cmd.ShowIDs)
	return nil
}

// RecommendCmd suggests recipes from the pantry, or from the given
// ingredients when any are passed.
type RecommendCmd struct {
	Ingredients []string `arg:"" optional:"" help:"Ingredients to use instead of the pantry."`
	Page        int      `short:"p" help:"Page number." default:"1"`
	ShowIDs     bool     `help:"Show recipe IDs." name:"show-ids"`
}

func (cmd *RecommendCmd) Run(ctx *cli.Context) error {
	names := cmd.Ingredients
	if len(names) == 0 {
		pantry, err := ctx.Client.Ingredients().List(context.Background())
		if err != nil {
			return cli.Fail("failed to fetch ingredients", err)
		}
		names = models.IngredientNames(pantry)
		if len(names) == 0 {
			ctx.Println("Add ingredients to your pantry to get recommendations.")
			return nil
		}
	}

	q := models.SearchQuery{Ingredients: names, Page: cmd.Page, PageSize: constants.RecommendationPageSize}
	page, err := ctx.Client.Recipes().Recommend(context.Background(), q)
	if err != nil {
		return cli.Fail("failed to fetch recommendations", err)
	}
	printPage(ctx, page, q.Page, q.PageSize, cmd.ShowIDs)
	return nil
}

func printPage(ctx *cli.Context, page models.RecipePage, current, size int, showIDs bool) {
	if len(page.Recipes) == 0 {
		ctx.Println("No recipes found")
		return
	}
	for _, r := range page.Recipes {
		if showIDs {
			ctx.Printf("  %s (ID: %s)\n", r.DisplayName(), r.ID)
		} else {
			ctx.Printf("  %s\n", r.DisplayName())
		}
		if len(r.Ingredients) > 0 {
			ctx.Printf("      %s\n", r.IngredientList())
		}
	}
	ctx.Printf("Page %d of %d (%d recipes)\n", current, utils.Pages(page.TotalCount, size), page.TotalCount)
}
