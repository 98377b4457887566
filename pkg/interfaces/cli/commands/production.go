package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/interfaces/cli/output"
)

// newProducibleCommand creates the producible command
func newProducibleCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "producible <product>",
		Short: "How many units of a product can be made from current stock",
		Long: `Report the producible units of a product, its unit cost and the
limiting materials. Recipe lines whose material no longer exists are
flagged as missing and make the product unproducible.

Examples:
  gestionale producible SCIARPA --catalog catalog.yaml
  gestionale producible GILET --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				report, err := app.Production.Producibility(cmd.Context(), entities.ProductID(args[0]))
				if err != nil {
					return output.Report{}, err
				}
				return output.ProducibilityReport(report), nil
			})
		},
	}
}

// newCostCommand creates the cost command
func newCostCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cost <product>",
		Short: "Unit production cost of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				productID := entities.ProductID(args[0])
				cost, err := app.Production.ProductionCost(cmd.Context(), productID)
				if err != nil {
					return output.Report{}, err
				}
				return output.CostReport(productID, cost), nil
			})
		},
	}
}

// newShortageCommand creates the shortage command
func newShortageCommand(opts *globalOptions) *cobra.Command {
	var units int64

	cmd := &cobra.Command{
		Use:   "shortage <product>",
		Short: "Materials to buy to produce a number of units",
		Long: `List every material whose stock does not cover the requested units,
with the missing quantity and an estimated purchase cost.

Examples:
  gestionale shortage GILET --units 10
  gestionale shortage GILET --units 10 --format xlsx --output acquisti.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				report, err := app.Production.Shortage(cmd.Context(), entities.ProductID(args[0]), units)
				if err != nil {
					return output.Report{}, err
				}
				return output.ShortageReport(report), nil
			})
		},
	}

	cmd.Flags().Int64VarP(&units, "units", "n", 1, "Units to produce")
	return cmd
}

// newProjectCommand creates the project command
func newProjectCommand(opts *globalOptions) *cobra.Command {
	var units int64

	cmd := &cobra.Command{
		Use:   "project <product>",
		Short: "Preview stock after producing a number of units",
		Long: `Show each recipe material before and after a hypothetical run.
Nothing is written; negative results mean the run is not feasible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				report, err := app.Production.Project(cmd.Context(), entities.ProductID(args[0]), units)
				if err != nil {
					return output.Report{}, err
				}
				return output.ProjectionReport(report), nil
			})
		},
	}

	cmd.Flags().Int64VarP(&units, "units", "n", 1, "Units to produce")
	return cmd
}

// newProduceCommand creates the produce command
func newProduceCommand(opts *globalOptions) *cobra.Command {
	var units int64

	cmd := &cobra.Command{
		Use:   "produce <product>",
		Short: "Consume stock to produce a number of units",
		Long: `Allocate the materials for a production run. Either every material is
consumed or none is; the run fails when any material is short.

Examples:
  gestionale produce SCIARPA --units 3
  gestionale produce SCIARPA --units 3 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if units <= 0 {
				return fmt.Errorf("--units must be positive, got %d", units)
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				run, err := app.Production.Produce(cmd.Context(), entities.ProductID(args[0]), units)
				if err != nil {
					return output.Report{}, err
				}
				return output.ProductionRunReport(run), nil
			})
		},
	}

	cmd.Flags().Int64VarP(&units, "units", "n", 1, "Units to produce")
	return cmd
}
