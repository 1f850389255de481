package reports

import (
	"context"
	"strconv"

	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/utils"
)

const barWidth = 30

// AnalyticsCmd prints the usage reports.
type AnalyticsCmd struct {
	Page int `short:"p" help:"Page of the recipe repetition list." default:"1"`
}

func (cmd *AnalyticsCmd) Run(ctx *cli.Context) error {
	data, err := ctx.Client.Analytics().Aggregated(context.Background())
	if err != nil {
		return cli.Fail("failed to fetch analytics", err)
	}

	ctx.Println("Ingredient searches:")
	if len(data.IngredientCounts) == 0 {
		ctx.Println("  (none yet)")
	}
	maxSearch := float64(data.MaxSearchCount())
	for _, c := range data.IngredientCounts {
		ctx.Printf("  %-18s %s %d\n", utils.Truncate(c.Ingredient, 18), utils.Bar(float64(c.SearchCount), maxSearch, barWidth), c.SearchCount)
	}

	pages := utils.Pages(len(data.RecipeData), constants.AnalyticsPageSize)
	page := utils.ClampPage(cmd.Page, pages)
	ctx.Println()
	ctx.Println("Recipe repetitions:")
	if pages == 0 {
		ctx.Println("  (nothing planned yet)")
		return nil
	}
	maxRep := float64(data.MaxRepetition())
	for _, r := range utils.PageSlice(data.RecipeData, page, constants.AnalyticsPageSize) {
		ctx.Printf("  %-24s %s %d\n", utils.Truncate(r.Recipe, 24), utils.Bar(float64(r.Count), maxRep, barWidth), r.Count)
	}
	ctx.Printf("Page %d of %d\n", page, pages)
	return nil
}

// DashboardCmd prints remaining ingredient quantities.
type DashboardCmd struct {
	ShortagesOnly bool `help:"Only list ingredients the plan runs short of." name:"shortages"`
}

func formatQty(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (cmd *DashboardCmd) Run(ctx *cli.Context) error {
	rows, err := ctx.Client.Analytics().RemainingIngredients(context.Background())
	if err != nil {
		return cli.Fail("failed to fetch remaining ingredients", err)
	}
	if len(rows) == 0 {
		ctx.Println("No ingredients to track yet")
		return nil
	}

	if !cmd.ShortagesOnly {
		ctx.Printf("  %-20s %10s %10s %10s  %s\n", "Ingredient", "Available", "Planned", "Remaining", "Unit")
		for _, r := range rows {
			ctx.Printf("  %-20s %10s %10s %10s  %s\n", utils.Truncate(r.IngredientName, 20),
				formatQty(r.TotalQuantity), formatQty(r.UsedQuantity), formatQty(r.RemainingQuantity), r.Measurement)
		}
		ctx.Println()
	}

	shortages := models.Shortages(rows)
	if len(shortages) == 0 {
		ctx.Println("✓ Your pantry covers every planned meal.")
		return nil
	}
	ctx.Printf("⚠ Shopping list (%d):\n", len(shortages))
	for _, s := range shortages {
		ctx.Printf("  • %s: %s %s\n", s.IngredientName, formatQty(-s.RemainingQuantity), s.Measurement)
	}
	return nil
}
