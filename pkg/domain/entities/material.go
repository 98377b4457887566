package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaterialID represents a unique raw material identifier
type MaterialID string

// DefaultMinimumStock is the reorder threshold used when a material has none set
var DefaultMinimumStock = decimal.NewFromInt(100)

// Material represents a raw material kept in the warehouse
type Material struct {
	ID                MaterialID      `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	MinimumStock      decimal.Decimal `json:"minimum_stock"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Version           int64           `json:"version"`
}

// NewMaterial creates a validated Material
func NewMaterial(id MaterialID, code, name, category, unitOfMeasure string, quantityAvailable, unitCost decimal.Decimal) (*Material, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("material id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("material name cannot be empty")
	}
	if quantityAvailable.IsNegative() {
		return nil, fmt.Errorf("quantity available cannot be negative, got %s", quantityAvailable)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	return &Material{
		ID:                id,
		Code:              code,
		Name:              name,
		Category:          category,
		UnitOfMeasure:     unitOfMeasure,
		QuantityAvailable: quantityAvailable,
		UnitCost:          unitCost,
	}, nil
}

// FreeStock returns the stock not reserved for open orders, never below zero
func (m *Material) FreeStock() decimal.Decimal {
	free := m.QuantityAvailable.Sub(m.QuantityReserved)
	if free.IsNegative() {
		return decimal.Zero
	}
	return free
}

// ReorderThreshold returns MinimumStock, or DefaultMinimumStock when unset
func (m *Material) ReorderThreshold() decimal.Decimal {
	if m.MinimumStock.IsZero() {
		return DefaultMinimumStock
	}
	return m.MinimumStock
}

// Clone returns a copy that can be mutated without touching the original
func (m *Material) Clone() *Material {
	c := *m
	return &c
}

// MaterialSnapshot is a point-in-time view of materials keyed by ID.
// Lookups of unknown IDs degrade to zero stock and zero cost.
type MaterialSnapshot map[MaterialID]*Material

// NewMaterialSnapshot indexes materials by ID
func NewMaterialSnapshot(materials []*Material) MaterialSnapshot {
	snapshot := make(MaterialSnapshot, len(materials))
	for _, m := range materials {
		if m == nil {
			continue
		}
		snapshot[m.ID] = m
	}
	return snapshot
}

// Available returns the available quantity of a material, zero if unknown
func (s MaterialSnapshot) Available(id MaterialID) decimal.Decimal {
	if m, ok := s[id]; ok && m != nil {
		return m.QuantityAvailable
	}
	return decimal.Zero
}

// UnitCost returns the unit cost of a material, zero if unknown
func (s MaterialSnapshot) UnitCost(id MaterialID) decimal.Decimal {
	if m, ok := s[id]; ok && m != nil {
		return m.UnitCost
	}
	return decimal.Zero
}

// Has reports whether the snapshot resolves the material
func (s MaterialSnapshot) Has(id MaterialID) bool {
	m, ok := s[id]
	return ok && m != nil
}

// Clone deep-copies the snapshot
func (s MaterialSnapshot) Clone() MaterialSnapshot {
	c := make(MaterialSnapshot, len(s))
	for id, m := range s {
		if m == nil {
			continue
		}
		c[id] = m.Clone()
	}
	return c
}
