package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID represents a unique finished product identifier
type ProductID string

// Product represents a finished good built from raw materials.
// Production cost is derived from the recipe on demand and never stored.
type Product struct {
	ID            ProductID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	FinishedStock int64           `json:"finished_stock"`
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, code, name string, salePrice decimal.Decimal) (*Product, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	if salePrice.IsNegative() {
		return nil, fmt.Errorf("sale price cannot be negative, got %s", salePrice)
	}

	return &Product{
		ID:        id,
		Code:      code,
		Name:      name,
		SalePrice: salePrice,
	}, nil
}
