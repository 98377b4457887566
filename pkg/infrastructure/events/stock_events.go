package events

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

const (
	StockAllocatedEvent     = "stock.allocated"
	StockReceivedEvent      = "stock.received"
	RecipeReplacedEvent     = "recipe.replaced"
	ShortageIdentifiedEvent = "shortage.identified"
)

type StockAllocated struct {
	RunID      string                    `json:"run_id"`
	Allocation entities.AllocationResult `json:"allocation"`
}

type StockReceived struct {
	MaterialID entities.MaterialID `json:"material_id"`
	Quantity   decimal.Decimal     `json:"quantity"`
	UnitCost   decimal.Decimal     `json:"unit_cost"`
	NewStock   decimal.Decimal     `json:"new_stock"`
	NewCost    decimal.Decimal     `json:"new_unit_cost"`
}

type RecipeReplaced struct {
	ProductID entities.ProductID    `json:"product_id"`
	OldLines  []entities.RecipeLine `json:"old_lines"`
	NewLines  []entities.RecipeLine `json:"new_lines"`
}

type ShortageIdentified struct {
	ProductID    entities.ProductID  `json:"product_id"`
	DesiredUnits int64               `json:"desired_units"`
	Shortages    []entities.Shortage `json:"shortages"`
}

func NewStockAllocatedEvent(runID string, allocation entities.AllocationResult) Event {
	return NewEvent(StockAllocatedEvent, string(allocation.ProductID), StockAllocated{
		RunID:      runID,
		Allocation: allocation,
	})
}

func NewStockReceivedEvent(material *entities.Material, quantity, unitCost decimal.Decimal) Event {
	return NewEvent(StockReceivedEvent, string(material.ID), StockReceived{
		MaterialID: material.ID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		NewStock:   material.QuantityAvailable,
		NewCost:    material.UnitCost,
	})
}

func NewRecipeReplacedEvent(productID entities.ProductID, oldLines, newLines []entities.RecipeLine) Event {
	return NewEvent(RecipeReplacedEvent, string(productID), RecipeReplaced{
		ProductID: productID,
		OldLines:  oldLines,
		NewLines:  newLines,
	})
}

func NewShortageIdentifiedEvent(productID entities.ProductID, units int64, shortages []entities.Shortage) Event {
	return NewEvent(ShortageIdentifiedEvent, string(productID), ShortageIdentified{
		ProductID:    productID,
		DesiredUnits: units,
		Shortages:    shortages,
	})
}
