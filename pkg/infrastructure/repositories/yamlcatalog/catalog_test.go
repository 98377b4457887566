package yamlcatalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

const knitwear = `
materials:
  - id: LANA
    code: MAT-001
    name: Lana merino
    category: filati
    unit_of_measure: mt
    quantity_available: 40
    unit_cost: "1.20"
    minimum_stock: 20
  - id: FODERA
    name: Fodera in cotone
    unit_of_measure: mt
    quantity_available: 6.5
    unit_cost: 3
products:
  - id: SCIARPA
    code: PROD-001
    name: Sciarpa
    sale_price: 35
    finished_stock: 1
recipes:
  - product_id: SCIARPA
    lines:
      - material_id: LANA
        quantity_required: 2.5
      - material_id: FODERA
        quantity_required: 0.5
`

func TestLoad(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(knitwear), 0o600))

	// Act
	catalog, err := Load(path)

	// Assert
	require.NoError(t, err)
	require.Len(t, catalog.Materials, 2)
	assert.Equal(t, entities.MaterialID("LANA"), catalog.Materials[0].ID)
	assert.True(t, catalog.Materials[0].UnitCost.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, catalog.Materials[0].MinimumStock.Equal(decimal.NewFromInt(20)))
	assert.True(t, catalog.Materials[1].QuantityAvailable.Equal(decimal.RequireFromString("6.5")))

	require.Len(t, catalog.Products, 1)
	assert.Equal(t, int64(1), catalog.Products[0].FinishedStock)

	require.Len(t, catalog.Recipes, 1)
	require.Len(t, catalog.Recipes[0].Lines, 2)
	assert.True(t, catalog.Recipes[0].Lines[0].QuantityRequired.Equal(decimal.RequireFromString("2.5")))
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		doc      string
		expected string
	}{
		{"malformed", "materials: [", "failed to parse catalog"},
		{"material without name", "materials:\n  - id: A\n", "materials[0]: material name cannot be empty"},
		{"negative price", "products:\n  - id: P\n    name: P\n    sale_price: -1\n", "products[0]: sale price cannot be negative"},
		{"recipe without product", "recipes:\n  - lines: []\n", "recipes[0]: product id cannot be empty"},
		{"zero line", "recipes:\n  - product_id: P\n    lines:\n      - material_id: A\n        quantity_required: 0\n", "recipes[0].lines[0]: quantity required must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}
