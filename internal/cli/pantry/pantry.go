package pantry

import (
	"context"
	"strings"

	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

// IngredientsListCmd prints the pantry.
type IngredientsListCmd struct{}

func (cmd *IngredientsListCmd) Run(ctx *cli.Context) error {
	ings, err := ctx.Client.Ingredients().List(context.Background())
	if err != nil {
		return cli.Fail("failed to fetch ingredients", err)
	}
	if len(ings) == 0 {
		ctx.Println("No ingredients yet")
		return nil
	}

	ctx.Println("Available ingredients:")
	for _, ing := range ings {
		ctx.Printf("  %-24s %8s %s\n", ing.Name, ing.FormatQuantity(), ing.Measurement)
	}
	return nil
}

// IngredientsAddCmd adds one ingredient to the pantry.
type IngredientsAddCmd struct {
	Name        string `arg:"" help:"Ingredient name."`
	Quantity    string `arg:"" help:"Quantity available (positive number)."`
	Measurement string `arg:"" help:"Unit, e.g. g, kg, ml, pcs."`
}

func (cmd *IngredientsAddCmd) Run(ctx *cli.Context) error {
	q, err := validation.ParseQuantity(cmd.Quantity)
	if err != nil {
		return cli.Fail("invalid ingredient", err)
	}
	ing := models.Ingredient{
		Name:        strings.TrimSpace(cmd.Name),
		Quantity:    q,
		Measurement: strings.TrimSpace(cmd.Measurement),
	}
	if err := validation.ValidateIngredient(ing); err != nil {
		return cli.Fail("invalid ingredient", err)
	}

	created, err := ctx.Client.Ingredients().Create(context.Background(), ing)
	if err != nil {
		return cli.Fail("failed to add ingredient", err)
	}
	ctx.Printf("✓ Added %s %s %s\n", created.FormatQuantity(), created.Measurement, created.Name)
	return nil
}

// FamilySizeCmd prints the stored family size.
type FamilySizeCmd struct{}

func (cmd *FamilySizeCmd) Run(ctx *cli.Context) error {
	n, err := ctx.Client.Ingredients().FamilySize(context.Background())
	if err != nil {
		return cli.Fail("failed to fetch family size", err)
	}
	ctx.Printf("Family size: %d\n", n)
	return nil
}
