package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/interfaces/cli/output"
)

// newRecipeCommand creates the recipe command with subcommands
func newRecipeCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Show or replace product recipes",
		Long: `Manage the bill of materials of a product.

Examples:
  gestionale recipe show SCIARPA
  gestionale recipe set SCIARPA LANA=2.5 FODERA=0.5`,
	}

	cmd.AddCommand(newRecipeShowCommand(opts))
	cmd.AddCommand(newRecipeSetCommand(opts))

	return cmd
}

func newRecipeShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product>",
		Short: "Show the recipe of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				productID := entities.ProductID(args[0])
				if _, err := app.Products.GetProduct(cmd.Context(), productID); err != nil {
					return output.Report{}, err
				}
				recipe, err := app.Recipes.GetRecipe(cmd.Context(), productID)
				if err != nil {
					return output.Report{}, err
				}
				return output.RecipeReport(recipe), nil
			})
		},
	}
}

func newRecipeSetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product> [<material>=<qty>...]",
		Short: "Replace every line of a product recipe",
		Long: `Replace the recipe of a product with the given lines. Every material
must exist and appear once; quantities must be positive. With no lines
the recipe is cleared.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := ParseRecipeLines(args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				recipe, err := app.Production.SetRecipe(cmd.Context(), entities.ProductID(args[0]), lines)
				if err != nil {
					return output.Report{}, err
				}
				return output.RecipeReport(recipe), nil
			})
		},
	}
}

// ParseRecipeLines parses material=quantity arguments
func ParseRecipeLines(args []string) ([]entities.RecipeLine, error) {
	lines := make([]entities.RecipeLine, 0, len(args))
	for _, arg := range args {
		materialID, qty, ok := strings.Cut(arg, "=")
		if !ok || materialID == "" {
			return nil, fmt.Errorf("invalid recipe line %q: expected <material>=<qty>", arg)
		}
		quantity, err := decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
		}
		line, err := entities.NewRecipeLine(entities.MaterialID(materialID), quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid recipe line %q: %w", arg, err)
		}
		lines = append(lines, *line)
	}
	return lines, nil
}
