package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RecipeLine represents a single line in a product recipe: the amount of one
// material consumed per unit of product. MaterialID is a weak reference.
type RecipeLine struct {
	MaterialID       MaterialID      `json:"material_id" yaml:"material_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required" yaml:"quantity_required"`
}

// NewRecipeLine creates a validated RecipeLine
func NewRecipeLine(materialID MaterialID, quantityRequired decimal.Decimal) (*RecipeLine, error) {
	if string(materialID) == "" {
		return nil, fmt.Errorf("material id cannot be empty")
	}
	if !quantityRequired.IsPositive() {
		return nil, fmt.Errorf("quantity required must be positive, got %s", quantityRequired)
	}

	return &RecipeLine{
		MaterialID:       materialID,
		QuantityRequired: quantityRequired,
	}, nil
}

// Recipe is the bill of materials for one unit of a product
type Recipe struct {
	ProductID ProductID    `json:"product_id"`
	Lines     []RecipeLine `json:"lines"`
}

// IsEmpty reports whether the recipe declares no lines
func (r *Recipe) IsEmpty() bool {
	return r == nil || len(r.Lines) == 0
}

// MaterialIDs returns the referenced material IDs in line order
func (r *Recipe) MaterialIDs() []MaterialID {
	if r == nil {
		return nil
	}
	ids := make([]MaterialID, 0, len(r.Lines))
	for _, line := range r.Lines {
		ids = append(ids, line.MaterialID)
	}
	return ids
}

// Line returns the line for a material, if present
func (r *Recipe) Line(materialID MaterialID) (RecipeLine, bool) {
	if r == nil {
		return RecipeLine{}, false
	}
	for _, line := range r.Lines {
		if line.MaterialID == materialID {
			return line, true
		}
	}
	return RecipeLine{}, false
}

// SortedLines returns a copy of the lines ordered by material ID
func (r *Recipe) SortedLines() []RecipeLine {
	if r == nil {
		return nil
	}
	lines := make([]RecipeLine, len(r.Lines))
	copy(lines, r.Lines)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].MaterialID < lines[j].MaterialID
	})
	return lines
}
