package services

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// StockAllocationEngine computes producibility, cost, shortage and projected
// stock for a recipe against a material snapshot, and commits allocations.
// It holds no state: every call works on the snapshot it is given.
type StockAllocationEngine struct {
	validator *RecipeValidator
}

// NewStockAllocationEngine creates a new stock allocation engine
func NewStockAllocationEngine() *StockAllocationEngine {
	return &StockAllocationEngine{
		validator: NewRecipeValidator(),
	}
}

// ProducibleUnits returns the whole units of product the snapshot supports.
// An empty recipe yields 0, as does any line whose material is missing.
func (e *StockAllocationEngine) ProducibleUnits(recipe *entities.Recipe, materials entities.MaterialSnapshot) int64 {
	if recipe.IsEmpty() {
		return 0
	}

	producible := int64(-1)
	perUnit := requiredTotals(recipe, 1)
	for id, required := range perUnit {
		units := unitsFor(materials.Available(id), required)
		if producible < 0 || units < producible {
			producible = units
		}
		if producible == 0 {
			return 0
		}
	}

	return producible
}

// LimitingMaterials returns the materials whose stock bounds ProducibleUnits
func (e *StockAllocationEngine) LimitingMaterials(recipe *entities.Recipe, materials entities.MaterialSnapshot) []entities.MaterialID {
	if recipe.IsEmpty() {
		return nil
	}

	producible := e.ProducibleUnits(recipe, materials)
	perUnit := requiredTotals(recipe, 1)
	limiting := make([]entities.MaterialID, 0)
	for _, id := range uniqueMaterialIDs(recipe) {
		if unitsFor(materials.Available(id), perUnit[id]) == producible {
			limiting = append(limiting, id)
		}
	}

	return limiting
}

// UnitCost returns the material cost of producing one unit at current prices.
// Missing materials contribute nothing.
func (e *StockAllocationEngine) UnitCost(recipe *entities.Recipe, materials entities.MaterialSnapshot) decimal.Decimal {
	total := decimal.Zero
	if recipe.IsEmpty() {
		return total
	}

	for _, line := range recipe.Lines {
		total = total.Add(line.QuantityRequired.Mul(materials.UnitCost(line.MaterialID)))
	}

	return total
}

// Shortage returns, for each material that falls short of producing
// desiredUnits, the missing quantity. Sufficient materials are absent.
func (e *StockAllocationEngine) Shortage(recipe *entities.Recipe, materials entities.MaterialSnapshot, desiredUnits int64) map[entities.MaterialID]decimal.Decimal {
	shortage := make(map[entities.MaterialID]decimal.Decimal)
	if recipe.IsEmpty() || desiredUnits <= 0 {
		return shortage
	}

	for id, required := range requiredTotals(recipe, desiredUnits) {
		shortfall := required.Sub(materials.Available(id))
		if shortfall.IsPositive() {
			shortage[id] = shortfall
		}
	}

	return shortage
}

// ShortageReport is Shortage with required and available quantities,
// sorted by material ID.
func (e *StockAllocationEngine) ShortageReport(recipe *entities.Recipe, materials entities.MaterialSnapshot, desiredUnits int64) []entities.Shortage {
	shortfalls := e.Shortage(recipe, materials, desiredUnits)
	if len(shortfalls) == 0 {
		return []entities.Shortage{}
	}

	required := requiredTotals(recipe, desiredUnits)
	report := make([]entities.Shortage, 0, len(shortfalls))
	for id, short := range shortfalls {
		report = append(report, entities.Shortage{
			MaterialID: id,
			Required:   required[id],
			Available:  materials.Available(id),
			ShortQty:   short,
		})
	}
	sort.Slice(report, func(i, j int) bool {
		return report[i].MaterialID < report[j].MaterialID
	})

	return report
}

// ProjectedStock returns the stock each recipe material would have after
// producing units. Values may be negative; the snapshot is not modified.
func (e *StockAllocationEngine) ProjectedStock(recipe *entities.Recipe, materials entities.MaterialSnapshot, units int64) map[entities.MaterialID]decimal.Decimal {
	projected := make(map[entities.MaterialID]decimal.Decimal)
	if recipe.IsEmpty() {
		return projected
	}
	if units < 0 {
		units = 0
	}

	for id, required := range requiredTotals(recipe, units) {
		projected[id] = materials.Available(id).Sub(required)
	}

	return projected
}

// Allocate commits production of units against the snapshot, decrementing
// every recipe material by its required total. Either all materials are
// decremented or none are. The returned changes carry the version each
// material had when read, for the caller to persist with a version check.
func (e *StockAllocationEngine) Allocate(recipe *entities.Recipe, materials entities.MaterialSnapshot, units int64) (*entities.AllocationResult, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w, got %d", entities.ErrInvalidUnits, units)
	}

	var productID entities.ProductID
	if recipe != nil {
		productID = recipe.ProductID
	}

	producible := e.ProducibleUnits(recipe, materials)
	if producible < units {
		return nil, &entities.InsufficientStockError{
			ProductID:  productID,
			Requested:  units,
			Producible: producible,
		}
	}

	required := requiredTotals(recipe, units)
	changes := make([]entities.StockChange, 0, len(required))
	for _, id := range uniqueMaterialIDs(recipe) {
		consumed := required[id]
		material := materials[id]
		changes = append(changes, entities.StockChange{
			MaterialID:      id,
			Before:          material.QuantityAvailable,
			Consumed:        consumed,
			After:           material.QuantityAvailable.Sub(consumed),
			ExpectedVersion: material.Version,
		})
	}

	for _, change := range changes {
		materials[change.MaterialID].QuantityAvailable = change.After
	}

	return &entities.AllocationResult{
		ProductID: productID,
		Units:     units,
		Changes:   changes,
	}, nil
}

// ReplaceRecipe validates a new set of lines for a product and returns the
// canonical recipe. Unknown materials are rejected when a snapshot is given.
func (e *StockAllocationEngine) ReplaceRecipe(productID entities.ProductID, lines []entities.RecipeLine, materials entities.MaterialSnapshot) (*entities.Recipe, error) {
	result := e.validator.ValidateRecipe(productID, lines, materials)
	if !result.IsValid() {
		return nil, &entities.InvalidRecipeError{
			ProductID: productID,
			Problems:  result.Errors,
		}
	}

	canonical := make([]entities.RecipeLine, len(lines))
	copy(canonical, lines)

	return &entities.Recipe{
		ProductID: productID,
		Lines:     canonical,
	}, nil
}

// UnitsSupported returns, per recipe material, how many units its stock alone covers
func (e *StockAllocationEngine) UnitsSupported(recipe *entities.Recipe, materials entities.MaterialSnapshot) map[entities.MaterialID]int64 {
	supported := make(map[entities.MaterialID]int64)
	if recipe.IsEmpty() {
		return supported
	}

	perUnit := requiredTotals(recipe, 1)
	for id, required := range perUnit {
		supported[id] = unitsFor(materials.Available(id), required)
	}
	return supported
}

// Requirements returns the total quantity of each material consumed by units.
// The changes carry only MaterialID and Consumed, in recipe order.
func (e *StockAllocationEngine) Requirements(recipe *entities.Recipe, units int64) []entities.StockChange {
	if recipe.IsEmpty() || units <= 0 {
		return nil
	}

	totals := requiredTotals(recipe, units)
	changes := make([]entities.StockChange, 0, len(totals))
	for _, id := range uniqueMaterialIDs(recipe) {
		changes = append(changes, entities.StockChange{MaterialID: id, Consumed: totals[id]})
	}
	return changes
}

// unitsFor returns floor(available / required), zero for non-positive stock
func unitsFor(available, required decimal.Decimal) int64 {
	if !available.IsPositive() || !required.IsPositive() {
		return 0
	}
	quotient, _ := available.QuoRem(required, 0)
	return quotient.IntPart()
}

// uniqueMaterialIDs returns recipe material IDs in line order without repeats
func uniqueMaterialIDs(recipe *entities.Recipe) []entities.MaterialID {
	seen := make(map[entities.MaterialID]bool, len(recipe.Lines))
	ids := make([]entities.MaterialID, 0, len(recipe.Lines))
	for _, id := range recipe.MaterialIDs() {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// requiredTotals sums quantity required times units per material
func requiredTotals(recipe *entities.Recipe, units int64) map[entities.MaterialID]decimal.Decimal {
	totals := make(map[entities.MaterialID]decimal.Decimal)
	multiplier := decimal.NewFromInt(units)
	for _, line := range recipe.Lines {
		totals[line.MaterialID] = totals[line.MaterialID].Add(line.QuantityRequired.Mul(multiplier))
	}
	return totals
}
