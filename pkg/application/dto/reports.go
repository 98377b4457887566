package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// LineDetail describes one recipe line against current stock
type LineDetail struct {
	MaterialID       entities.MaterialID `json:"material_id"`
	MaterialName     string              `json:"material_name"`
	UnitOfMeasure    string              `json:"unit_of_measure"`
	QuantityRequired decimal.Decimal     `json:"quantity_required"`
	Available        decimal.Decimal     `json:"available"`
	UnitCost         decimal.Decimal     `json:"unit_cost"`
	LineCost         decimal.Decimal     `json:"line_cost"`
	UnitsSupported   int64               `json:"units_supported"`
	Limiting         bool                `json:"limiting"`
	// Missing is set when the line references a material that no longer exists
	Missing bool `json:"missing"`
}

// ProducibilityReport answers "how many can we make right now"
type ProducibilityReport struct {
	ProductID         entities.ProductID    `json:"product_id"`
	ProductName       string                `json:"product_name"`
	ProducibleUnits   int64                 `json:"producible_units"`
	UnitCost          decimal.Decimal       `json:"unit_cost"`
	LimitingMaterials []entities.MaterialID `json:"limiting_materials"`
	Lines             []LineDetail          `json:"lines"`
}

// ShortageLine is a material deficit with its purchase estimate
type ShortageLine struct {
	entities.Shortage
	MaterialName  string          `json:"material_name"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	PurchaseCost  decimal.Decimal `json:"purchase_cost"`
}

// ShortageReport lists what must be bought to produce DesiredUnits
type ShortageReport struct {
	ProductID    entities.ProductID `json:"product_id"`
	ProductName  string             `json:"product_name"`
	DesiredUnits int64              `json:"desired_units"`
	Shortages    []ShortageLine     `json:"shortages"`
	PurchaseCost decimal.Decimal    `json:"purchase_cost"`
}

// ProjectionLine is a material's stock before and after a hypothetical run
type ProjectionLine struct {
	MaterialID    entities.MaterialID `json:"material_id"`
	MaterialName  string              `json:"material_name"`
	UnitOfMeasure string              `json:"unit_of_measure"`
	Before        decimal.Decimal     `json:"before"`
	Consumed      decimal.Decimal     `json:"consumed"`
	After         decimal.Decimal     `json:"after"`
}

// ProjectionReport previews stock after producing Units, without committing
type ProjectionReport struct {
	ProductID   entities.ProductID `json:"product_id"`
	ProductName string             `json:"product_name"`
	Units       int64              `json:"units"`
	Feasible    bool               `json:"feasible"`
	Lines       []ProjectionLine   `json:"lines"`
}

// ProductionRun is the record of a committed allocation
type ProductionRun struct {
	RunID       string                 `json:"run_id"`
	ProductID   entities.ProductID     `json:"product_id"`
	Units       int64                  `json:"units"`
	UnitCost    decimal.Decimal        `json:"unit_cost"`
	TotalCost   decimal.Decimal        `json:"total_cost"`
	Attempts    int                    `json:"attempts"`
	Changes     []entities.StockChange `json:"changes"`
	CompletedAt time.Time              `json:"completed_at"`
}

// MaterialStatus is a material with its derived warehouse status
type MaterialStatus struct {
	*entities.Material
	Status    entities.StockStatus `json:"-"`
	StatusTag string               `json:"status"`
	FreeStock decimal.Decimal      `json:"free_stock"`
	Value     decimal.Decimal      `json:"value"`
}

// InventorySummary is the warehouse dashboard
type InventorySummary struct {
	MaterialCount   int             `json:"material_count"`
	ProductCount    int             `json:"product_count"`
	WarehouseValue  decimal.Decimal `json:"warehouse_value"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
}
