package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// Money formats an amount with two decimals
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func quantity(d decimal.Decimal, unit string) string {
	if unit == "" {
		return d.String()
	}
	return d.String() + " " + unit
}

func productLabel(id entities.ProductID, name string) string {
	if name == "" {
		return string(id)
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

// ProducibilityReport renders how many units of a product can be made
func ProducibilityReport(r *dto.ProducibilityReport) Report {
	limiting := make([]string, len(r.LimitingMaterials))
	for i, id := range r.LimitingMaterials {
		limiting[i] = string(id)
	}
	if len(limiting) == 0 {
		limiting = []string{"-"}
	}

	rows := make([][]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		flag := ""
		switch {
		case line.Missing:
			flag = "missing"
		case line.Limiting:
			flag = "limiting"
		}
		rows = append(rows, []string{
			string(line.MaterialID),
			line.MaterialName,
			quantity(line.QuantityRequired, line.UnitOfMeasure),
			quantity(line.Available, line.UnitOfMeasure),
			strconv.FormatInt(line.UnitsSupported, 10),
			Money(line.LineCost),
			flag,
		})
	}

	return Report{
		Title: "Producibility: " + productLabel(r.ProductID, r.ProductName),
		Icon:  "🏭",
		Summary: []SummaryLine{
			{Label: "Producible units", Value: strconv.FormatInt(r.ProducibleUnits, 10)},
			{Label: "Unit cost", Value: Money(r.UnitCost)},
			{Label: "Limiting materials", Value: strings.Join(limiting, ", ")},
		},
		Tables: []Table{{
			Title:   "Recipe",
			Headers: []string{"Material", "Name", "Per unit", "Available", "Units", "Line cost", "Note"},
			Rows:    rows,
		}},
		Data: r,
	}
}

// CostReport renders the unit production cost of a product
func CostReport(productID entities.ProductID, cost decimal.Decimal) Report {
	return Report{
		Title: "Production cost: " + string(productID),
		Icon:  "💶",
		Summary: []SummaryLine{
			{Label: "Unit cost", Value: Money(cost)},
		},
		Data: map[string]interface{}{
			"product_id": productID,
			"unit_cost":  cost,
		},
	}
}

// ShortageReport renders the materials to buy for a production target
func ShortageReport(r *dto.ShortageReport) Report {
	rows := make([][]string, 0, len(r.Shortages))
	for _, s := range r.Shortages {
		rows = append(rows, []string{
			string(s.MaterialID),
			s.MaterialName,
			quantity(s.Required, s.UnitOfMeasure),
			quantity(s.Available, s.UnitOfMeasure),
			quantity(s.ShortQty, s.UnitOfMeasure),
			Money(s.UnitCost),
			Money(s.PurchaseCost),
		})
	}

	return Report{
		Title: fmt.Sprintf("Shortages for %d x %s", r.DesiredUnits, productLabel(r.ProductID, r.ProductName)),
		Icon:  "⚠️ ",
		Summary: []SummaryLine{
			{Label: "Materials short", Value: strconv.Itoa(len(r.Shortages))},
			{Label: "Purchase cost", Value: Money(r.PurchaseCost)},
		},
		Tables: []Table{{
			Title:   "Shortages",
			Headers: []string{"Material", "Name", "Required", "Available", "Short", "Unit cost", "Purchase cost"},
			Rows:    rows,
		}},
		Data: r,
	}
}

// ProjectionReport renders stock before and after a hypothetical run
func ProjectionReport(r *dto.ProjectionReport) Report {
	rows := make([][]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		rows = append(rows, []string{
			string(line.MaterialID),
			line.MaterialName,
			quantity(line.Before, line.UnitOfMeasure),
			quantity(line.Consumed, line.UnitOfMeasure),
			quantity(line.After, line.UnitOfMeasure),
		})
	}

	feasible := "yes"
	if !r.Feasible {
		feasible = "no"
	}
	return Report{
		Title: fmt.Sprintf("Projection for %d x %s", r.Units, productLabel(r.ProductID, r.ProductName)),
		Icon:  "🔮",
		Summary: []SummaryLine{
			{Label: "Feasible", Value: feasible},
		},
		Tables: []Table{{
			Title:   "Projected stock",
			Headers: []string{"Material", "Name", "Before", "Consumed", "After"},
			Rows:    rows,
		}},
		Data: r,
	}
}

// ProductionRunReport renders a committed production run
func ProductionRunReport(r *dto.ProductionRun) Report {
	rows := make([][]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		rows = append(rows, []string{
			string(c.MaterialID),
			c.Before.String(),
			c.Consumed.String(),
			c.After.String(),
		})
	}

	return Report{
		Title: fmt.Sprintf("Produced %d x %s", r.Units, r.ProductID),
		Icon:  "✅",
		Summary: []SummaryLine{
			{Label: "Run", Value: r.RunID},
			{Label: "Unit cost", Value: Money(r.UnitCost)},
			{Label: "Total cost", Value: Money(r.TotalCost)},
			{Label: "Attempts", Value: strconv.Itoa(r.Attempts)},
			{Label: "Completed at", Value: r.CompletedAt.Format("2006-01-02 15:04:05")},
		},
		Tables: []Table{{
			Title:   "Stock changes",
			Headers: []string{"Material", "Before", "Consumed", "After"},
			Rows:    rows,
		}},
		Data: r,
	}
}

// RecipeReport renders a product recipe
func RecipeReport(recipe *entities.Recipe) Report {
	rows := make([][]string, 0, len(recipe.Lines))
	for _, line := range recipe.Lines {
		rows = append(rows, []string{string(line.MaterialID), line.QuantityRequired.String()})
	}
	return Report{
		Title: "Recipe: " + string(recipe.ProductID),
		Icon:  "📋",
		Tables: []Table{{
			Title:   "Lines",
			Headers: []string{"Material", "Quantity"},
			Rows:    rows,
		}},
		Data: recipe,
	}
}

// MaterialListReport renders materials with their warehouse status
func MaterialListReport(materials []*dto.MaterialStatus) Report {
	rows := make([][]string, 0, len(materials))
	for _, m := range materials {
		rows = append(rows, []string{
			m.Code,
			string(m.ID),
			m.Name,
			m.Category,
			quantity(m.QuantityAvailable, m.UnitOfMeasure),
			Money(m.UnitCost),
			Money(m.Value),
			m.StatusTag,
		})
	}
	return Report{
		Title: "Materials",
		Icon:  "📦",
		Summary: []SummaryLine{
			{Label: "Count", Value: strconv.Itoa(len(materials))},
		},
		Tables: []Table{{
			Title:   "Materials",
			Headers: []string{"Code", "ID", "Name", "Category", "Available", "Unit cost", "Value", "Status"},
			Rows:    rows,
		}},
		Data: materials,
	}
}

// MaterialReport renders a single material, e.g. after a receipt
func MaterialReport(title string, m *entities.Material) Report {
	return Report{
		Title: title,
		Icon:  "📦",
		Summary: []SummaryLine{
			{Label: "Material", Value: fmt.Sprintf("%s %s", m.Code, m.Name)},
			{Label: "Available", Value: quantity(m.QuantityAvailable, m.UnitOfMeasure)},
			{Label: "Unit cost", Value: Money(m.UnitCost)},
			{Label: "Version", Value: strconv.FormatInt(m.Version, 10)},
		},
		Data: m,
	}
}

// SummaryReport renders the warehouse dashboard
func SummaryReport(s *dto.InventorySummary) Report {
	return Report{
		Title: "Warehouse summary",
		Icon:  "📊",
		Summary: []SummaryLine{
			{Label: "Materials", Value: strconv.Itoa(s.MaterialCount)},
			{Label: "Products", Value: strconv.Itoa(s.ProductCount)},
			{Label: "Warehouse value", Value: Money(s.WarehouseValue)},
			{Label: "Low stock", Value: strconv.Itoa(s.LowStockCount)},
			{Label: "Out of stock", Value: strconv.Itoa(s.OutOfStockCount)},
		},
		Data: s,
	}
}

// PurchaseOrderReport renders one supplier order with its line totals
func PurchaseOrderReport(title string, o *entities.PurchaseOrder) Report {
	rows := make([][]string, 0, len(o.Lines))
	for _, line := range o.Lines {
		received := "no"
		if line.Received {
			received = "yes"
		}
		rows = append(rows, []string{
			string(line.MaterialID),
			line.Quantity.String(),
			Money(line.UnitCost),
			Money(line.Total()),
			received,
		})
	}

	summary := []SummaryLine{
		{Label: "Code", Value: o.Code},
		{Label: "Supplier", Value: o.Supplier},
		{Label: "Status", Value: string(o.Status)},
		{Label: "Ordered", Value: o.OrderedAt.Format("2006-01-02")},
	}
	if o.ReceivedAt != nil {
		summary = append(summary, SummaryLine{Label: "Received", Value: o.ReceivedAt.Format("2006-01-02")})
	}
	if o.PaymentMethod != "" {
		summary = append(summary, SummaryLine{Label: "Payment", Value: o.PaymentMethod})
	}
	summary = append(summary,
		SummaryLine{Label: "Goods", Value: Money(o.GoodsTotal())},
		SummaryLine{Label: "Shipping", Value: Money(o.ShippingCost)},
		SummaryLine{Label: "Total", Value: Money(o.Total())},
	)

	return Report{
		Title:   title,
		Icon:    "🚚",
		Summary: summary,
		Tables: []Table{{
			Title:   "Lines",
			Headers: []string{"Material", "Quantity", "Unit cost", "Line total", "Received"},
			Rows:    rows,
		}},
		Data: o,
	}
}

// PurchaseOrderListReport renders orders one per row
func PurchaseOrderListReport(orders []*entities.PurchaseOrder) Report {
	rows := make([][]string, 0, len(orders))
	total := decimal.Zero
	for _, o := range orders {
		rows = append(rows, []string{
			o.Code,
			o.OrderedAt.Format("2006-01-02"),
			o.Supplier,
			string(o.Status),
			strconv.Itoa(len(o.Lines)),
			Money(o.Total()),
		})
		total = total.Add(o.Total())
	}
	return Report{
		Title: "Purchase orders",
		Icon:  "🚚",
		Summary: []SummaryLine{
			{Label: "Count", Value: strconv.Itoa(len(orders))},
			{Label: "Total", Value: Money(total)},
		},
		Tables: []Table{{
			Title:   "Orders",
			Headers: []string{"Code", "Date", "Supplier", "Status", "Lines", "Total"},
			Rows:    rows,
		}},
		Data: orders,
	}
}
