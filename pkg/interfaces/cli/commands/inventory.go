package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/interfaces/cli/output"
)

// newMaterialsCommand creates the materials command with subcommands
func newMaterialsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "Raw material warehouse operations",
		Long: `List, receive and create raw materials.

Examples:
  gestionale materials list --search lana
  gestionale materials list --category accessori --format csv
  gestionale materials receive LANA --qty 10 --cost 1.50
  gestionale materials add --name "Bottone corno" --unit pz --qty 100 --cost 0.35`,
	}

	cmd.AddCommand(newMaterialsListCommand(opts))
	cmd.AddCommand(newMaterialsReceiveCommand(opts))
	cmd.AddCommand(newMaterialsAddCommand(opts))

	return cmd
}

func newMaterialsListCommand(opts *globalOptions) *cobra.Command {
	var (
		search   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List materials with their stock status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				materials, err := app.Inventory.Search(cmd.Context(), search, category)
				if err != nil {
					return output.Report{}, err
				}
				return output.MaterialListReport(materials), nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match code, name or category (case-insensitive)")
	cmd.Flags().StringVar(&category, "category", "", "Only materials of this category")
	return cmd
}

func newMaterialsReceiveCommand(opts *globalOptions) *cobra.Command {
	var (
		qty  string
		cost string
	)

	cmd := &cobra.Command{
		Use:   "receive <material>",
		Short: "Record a purchase receipt",
		Long: `Add received stock to a material. The unit cost becomes the average of
the current and received cost, weighted by quantity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseDecimalFlag("qty", qty)
			if err != nil {
				return err
			}
			unitCost, err := parseDecimalFlag("cost", cost)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				m, err := app.Inventory.Receive(cmd.Context(), entities.MaterialID(args[0]), quantity, unitCost)
				if err != nil {
					return output.Report{}, err
				}
				return output.MaterialReport("Received "+quantity.String()+" of "+string(m.ID), m), nil
			})
		},
	}

	cmd.Flags().StringVar(&qty, "qty", "", "Received quantity")
	cmd.Flags().StringVar(&cost, "cost", "0", "Unit cost of the received goods")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newMaterialsAddCommand(opts *globalOptions) *cobra.Command {
	var (
		req      dto.NewMaterialRequest
		qty      string
		cost     string
		minStock string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a material with the next free MAT- code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.QuantityAvailable, err = parseDecimalFlag("qty", qty); err != nil {
				return err
			}
			if req.UnitCost, err = parseDecimalFlag("cost", cost); err != nil {
				return err
			}
			if req.MinimumStock, err = parseDecimalFlag("min-stock", minStock); err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				m, err := app.Inventory.CreateMaterial(cmd.Context(), req)
				if err != nil {
					return output.Report{}, err
				}
				return output.MaterialReport("Created material "+m.Code, m), nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Material name")
	cmd.Flags().StringVar(&req.Category, "category", "", "Category")
	cmd.Flags().StringVar(&req.UnitOfMeasure, "unit", "", "Unit of measure (mt, pz, kg...)")
	cmd.Flags().StringVar(&qty, "qty", "0", "Initial quantity")
	cmd.Flags().StringVar(&cost, "cost", "0", "Unit cost")
	cmd.Flags().StringVar(&minStock, "min-stock", "0", "Reorder threshold (0 uses the default)")
	return cmd
}

// newProductsCommand creates the products command with subcommands
func newProductsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Finished product operations",
	}
	cmd.AddCommand(newProductsAddCommand(opts))
	return cmd
}

func newProductsAddCommand(opts *globalOptions) *cobra.Command {
	var (
		req   dto.NewProductRequest
		price string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product with the next free PROD- code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.SalePrice, err = parseDecimalFlag("price", price); err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				p, err := app.Inventory.CreateProduct(cmd.Context(), req)
				if err != nil {
					return output.Report{}, err
				}
				return output.Report{
					Title: "Created product " + p.Code,
					Icon:  "🧶",
					Summary: []output.SummaryLine{
						{Label: "ID", Value: string(p.ID)},
						{Label: "Name", Value: p.Name},
						{Label: "Sale price", Value: output.Money(p.SalePrice)},
					},
					Data: p,
				}, nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&price, "price", "0", "Sale price")
	return cmd
}

// newSummaryCommand creates the summary command
func newSummaryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Warehouse dashboard: value, low and out of stock counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				summary, err := app.Inventory.Summary(cmd.Context())
				if err != nil {
					return output.Report{}, err
				}
				return output.SummaryReport(summary), nil
			})
		},
	}
}

func parseDecimalFlag(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return d, nil
}
