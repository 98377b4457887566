package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// StockStatusOf classifies a material by its free stock
func StockStatusOf(m *entities.Material) entities.StockStatus {
	free := m.FreeStock()
	switch {
	case !free.IsPositive():
		return entities.OutOfStock
	case free.LessThanOrEqual(m.ReorderThreshold()):
		return entities.LowStock
	default:
		return entities.InStock
	}
}

// WarehouseValue sums available quantity times unit cost over all materials
func WarehouseValue(materials []*entities.Material) decimal.Decimal {
	total := decimal.Zero
	for _, m := range materials {
		total = total.Add(m.QuantityAvailable.Mul(m.UnitCost))
	}
	return total
}

// CountLowStock counts materials that are low but not out of stock
func CountLowStock(materials []*entities.Material) int {
	count := 0
	for _, m := range materials {
		if StockStatusOf(m) == entities.LowStock {
			count++
		}
	}
	return count
}

// WeightedAverageCost returns the unit cost after receiving qty at unitCost
// on top of the current stock. Receiving into empty stock takes the new cost.
func WeightedAverageCost(currentQty, currentCost, receivedQty, receivedCost decimal.Decimal) decimal.Decimal {
	if currentQty.IsNegative() {
		currentQty = decimal.Zero
	}
	totalQty := currentQty.Add(receivedQty)
	if !totalQty.IsPositive() {
		return receivedCost
	}

	currentValue := currentQty.Mul(currentCost)
	receivedValue := receivedQty.Mul(receivedCost)
	return currentValue.Add(receivedValue).DivRound(totalQty, 4)
}

// MatchesSearch reports whether a material matches a case-insensitive
// substring query over code, name and category, and an exact category filter.
// Empty query and empty category match everything.
func MatchesSearch(m *entities.Material, query, category string) bool {
	if category != "" && !strings.EqualFold(m.Category, category) {
		return false
	}

	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return true
	}

	for _, field := range []string{m.Code, m.Name, m.Category, string(m.ID)} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// FilterMaterials returns the materials matching MatchesSearch, order preserved
func FilterMaterials(materials []*entities.Material, query, category string) []*entities.Material {
	filtered := make([]*entities.Material, 0, len(materials))
	for _, m := range materials {
		if MatchesSearch(m, query, category) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
