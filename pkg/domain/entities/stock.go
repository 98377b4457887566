package entities

import "github.com/shopspring/decimal"

// StockStatus represents the warehouse status of a material
type StockStatus int

const (
	InStock StockStatus = iota
	LowStock
	OutOfStock
)

// String method for StockStatus enum
func (s StockStatus) String() string {
	switch s {
	case InStock:
		return "InStock"
	case LowStock:
		return "LowStock"
	case OutOfStock:
		return "OutOfStock"
	default:
		return "Unknown"
	}
}

// StockChange is the effect of an allocation on a single material.
// ExpectedVersion is the material version the change was computed against.
type StockChange struct {
	MaterialID      MaterialID      `json:"material_id"`
	Before          decimal.Decimal `json:"before"`
	Consumed        decimal.Decimal `json:"consumed"`
	After           decimal.Decimal `json:"after"`
	ExpectedVersion int64           `json:"expected_version"`
}

// AllocationResult represents a committed production allocation
type AllocationResult struct {
	ProductID ProductID     `json:"product_id"`
	Units     int64         `json:"units"`
	Changes   []StockChange `json:"changes"`
}

// Shortage represents the deficit of one material for a target production quantity
type Shortage struct {
	MaterialID MaterialID      `json:"material_id"`
	Required   decimal.Decimal `json:"required"`
	Available  decimal.Decimal `json:"available"`
	ShortQty   decimal.Decimal `json:"short_qty"`
}
