package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/interfaces/cli/output"
)

// newOrdersCommand creates the orders command with subcommands
func newOrdersCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Supplier purchase orders",
		Long: `Place purchase orders with suppliers and book them into stock on arrival.
Orders only persist with a database store (database.type sqlite or postgres).

Examples:
  gestionale orders create --supplier "Ingrosso Filati" --shipping 6.50 LANA=20@1.10 BOTTONE=100
  gestionale orders list --status pending
  gestionale orders show ORD-IN-001
  gestionale orders receive ORD-IN-001`,
	}

	cmd.AddCommand(newOrdersCreateCommand(opts))
	cmd.AddCommand(newOrdersListCommand(opts))
	cmd.AddCommand(newOrdersShowCommand(opts))
	cmd.AddCommand(newOrdersReceiveCommand(opts))

	return cmd
}

func newOrdersCreateCommand(opts *globalOptions) *cobra.Command {
	var (
		req      dto.NewPurchaseOrderRequest
		shipping string
	)

	cmd := &cobra.Command{
		Use:   "create <material>=<qty>[@<cost>]...",
		Short: "Place a pending order under the next ORD-IN- code",
		Long: `Place a purchase order. Each line is material=quantity, optionally
followed by @unit-cost; without a cost the material's current unit cost
is used. The order total is the sum of the line totals plus shipping.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.ShippingCost, err = parseDecimalFlag("shipping", shipping); err != nil {
				return err
			}
			if req.Lines, err = ParseOrderLines(args); err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				order, err := app.Purchasing.CreateOrder(cmd.Context(), req)
				if err != nil {
					return output.Report{}, err
				}
				return output.PurchaseOrderReport("Created order "+order.Code, order), nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Supplier, "supplier", "", "Supplier name")
	cmd.Flags().StringVar(&req.PaymentMethod, "payment", "", "Payment method")
	cmd.Flags().StringVar(&shipping, "shipping", "0", "Shipping cost added to the order total")
	_ = cmd.MarkFlagRequired("supplier")
	return cmd
}

func newOrdersListCommand(opts *globalOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List purchase orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter entities.OrderStatus
			if status != "" {
				parsed, err := entities.ParseOrderStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				orders, err := app.Purchasing.ListOrders(cmd.Context(), filter)
				if err != nil {
					return output.Report{}, err
				}
				return output.PurchaseOrderListReport(orders), nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only orders in this status (pending, received)")
	return cmd
}

func newOrdersShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show an order with its line totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				order, err := app.Purchasing.GetOrder(cmd.Context(), args[0])
				if err != nil {
					return output.Report{}, err
				}
				return output.PurchaseOrderReport("Order "+order.Code, order), nil
			})
		},
	}
}

func newOrdersReceiveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "receive <code>",
		Short: "Book a pending order into stock",
		Long: `Receive every line of a pending order: stock grows by the line quantity
and unit costs are re-averaged with the line cost. A failed line leaves the
order pending; receiving it again resumes from that line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) (output.Report, error) {
				order, err := app.Purchasing.ReceiveOrder(cmd.Context(), args[0])
				if err != nil {
					return output.Report{}, err
				}
				return output.PurchaseOrderReport("Received order "+order.Code, order), nil
			})
		},
	}
}

// ParseOrderLines parses material=quantity[@cost] arguments
func ParseOrderLines(args []string) ([]dto.PurchaseOrderLineRequest, error) {
	lines := make([]dto.PurchaseOrderLineRequest, 0, len(args))
	for _, arg := range args {
		materialID, rest, ok := strings.Cut(arg, "=")
		if !ok || materialID == "" {
			return nil, fmt.Errorf("invalid order line %q: expected <material>=<qty>[@<cost>]", arg)
		}
		qty, cost, hasCost := strings.Cut(rest, "@")

		quantity, err := decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
		}
		line := dto.PurchaseOrderLineRequest{
			MaterialID: entities.MaterialID(materialID),
			Quantity:   quantity,
		}
		if hasCost {
			unitCost, err := decimal.NewFromString(cost)
			if err != nil {
				return nil, fmt.Errorf("invalid unit cost in %q: %w", arg, err)
			}
			line.UnitCost = &unitCost
		}
		lines = append(lines, line)
	}
	return lines, nil
}
