package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMaterial_Validation(t *testing.T) {
	validMaterial, err := NewMaterial("m1", "MAT-001", "Cotone", "filati", "rocca", decimal.NewFromInt(10), decimal.RequireFromString("2.50"))
	if err != nil {
		t.Fatalf("Expected valid material creation to succeed: %v", err)
	}
	if !validMaterial.QuantityAvailable.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected quantity 10, got %s", validMaterial.QuantityAvailable)
	}

	testCases := []struct {
		name        string
		id          MaterialID
		materialNm  string
		quantity    decimal.Decimal
		unitCost    decimal.Decimal
		expectError string
	}{
		{"empty id", "", "Cotone", decimal.NewFromInt(1), decimal.Zero, "material id cannot be empty"},
		{"empty name", "m1", "", decimal.NewFromInt(1), decimal.Zero, "material name cannot be empty"},
		{"negative quantity", "m1", "Cotone", decimal.NewFromInt(-5), decimal.Zero, "quantity available cannot be negative, got -5"},
		{"negative cost", "m1", "Cotone", decimal.NewFromInt(1), decimal.NewFromInt(-2), "unit cost cannot be negative, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMaterial(tc.id, "", tc.materialNm, "", "pz", tc.quantity, tc.unitCost)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestMaterial_FreeStock(t *testing.T) {
	testCases := []struct {
		name      string
		available int64
		reserved  int64
		expected  int64
	}{
		{"no reservation", 50, 0, 50},
		{"partial reservation", 50, 20, 30},
		{"fully reserved", 50, 50, 0},
		{"over reserved", 10, 30, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &Material{
				QuantityAvailable: decimal.NewFromInt(tc.available),
				QuantityReserved:  decimal.NewFromInt(tc.reserved),
			}
			if got := m.FreeStock(); !got.Equal(decimal.NewFromInt(tc.expected)) {
				t.Errorf("Expected free stock %d, got %s", tc.expected, got)
			}
		})
	}
}

func TestMaterial_ReorderThreshold(t *testing.T) {
	m := &Material{}
	if !m.ReorderThreshold().Equal(DefaultMinimumStock) {
		t.Errorf("Expected default threshold %s, got %s", DefaultMinimumStock, m.ReorderThreshold())
	}

	m.MinimumStock = decimal.NewFromInt(25)
	if !m.ReorderThreshold().Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected threshold 25, got %s", m.ReorderThreshold())
	}
}

func TestMaterialSnapshot_MissingDegradesToZero(t *testing.T) {
	snapshot := NewMaterialSnapshot([]*Material{
		{ID: "A", QuantityAvailable: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(3)},
		nil,
	})

	if !snapshot.Available("A").Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected 10 available for A, got %s", snapshot.Available("A"))
	}
	if !snapshot.Available("Z").IsZero() {
		t.Errorf("Expected zero stock for unknown material, got %s", snapshot.Available("Z"))
	}
	if !snapshot.UnitCost("Z").IsZero() {
		t.Errorf("Expected zero cost for unknown material, got %s", snapshot.UnitCost("Z"))
	}
	if snapshot.Has("Z") {
		t.Error("Expected unknown material to be unresolved")
	}
}

func TestMaterialSnapshot_CloneIsIndependent(t *testing.T) {
	snapshot := NewMaterialSnapshot([]*Material{
		{ID: "A", QuantityAvailable: decimal.NewFromInt(10)},
	})

	clone := snapshot.Clone()
	clone["A"].QuantityAvailable = decimal.NewFromInt(1)

	if !snapshot.Available("A").Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected original untouched at 10, got %s", snapshot.Available("A"))
	}
}
