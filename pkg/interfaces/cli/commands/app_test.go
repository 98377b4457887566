package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/infrastructure/events"
)

const duplicateLineCatalog = `
materials:
  - {id: LANA, name: Lana merino, unit_of_measure: mt, quantity_available: 40, unit_cost: "1.20"}
products:
  - {id: SCIARPA, name: Sciarpa, sale_price: 35}
recipes:
  - product_id: SCIARPA
    lines:
      - {material_id: LANA, quantity_required: 2}
      - {material_id: LANA, quantity_required: 3}
      - {material_id: GHOST, quantity_required: 1}
`

func TestNewApp_RejectsInvalidCatalogRecipes(t *testing.T) {
	// Arrange
	setupCLI(t)
	useSQLite(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(duplicateLineCatalog), 0o600))

	// Act
	app, err := NewApp(context.Background(), &globalOptions{catalogPath: path})

	// Assert
	require.Error(t, err)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, entities.ErrInvalidRecipe)
	var invalid *entities.InvalidRecipeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, entities.ProductID("SCIARPA"), invalid.ProductID)
	assert.Len(t, invalid.Problems, 2, "one duplicate and one unknown material")

	// nothing of the rejected catalog reached the store
	clean, err := NewApp(context.Background(), &globalOptions{})
	require.NoError(t, err)
	defer clean.Close()
	materials, err := clean.Materials.GetAllMaterials(context.Background())
	require.NoError(t, err)
	assert.Empty(t, materials)
	recipe, err := clean.Recipes.GetRecipe(context.Background(), "SCIARPA")
	require.NoError(t, err)
	assert.True(t, recipe.IsEmpty())
}

// gathered returns the value of the sample of name whose labels include labels
func gathered(t *testing.T, reg prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched != len(labels) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestNewApp_EventsFeedMetrics(t *testing.T) {
	catalog := setupCLI(t)
	ctx := context.Background()
	app, err := NewApp(ctx, &globalOptions{catalogPath: catalog})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Production.Shortage(ctx, "GILET", 4)
	require.NoError(t, err)
	_, err = app.Production.Produce(ctx, "SCIARPA", 1)
	require.NoError(t, err)
	app.Events.Wait()

	assert.Equal(t, 1.0, gathered(t, app.Registry, "gestionale_domain_events_total",
		map[string]string{"type": events.ShortageIdentifiedEvent}))
	assert.Equal(t, 1.0, gathered(t, app.Registry, "gestionale_domain_events_total",
		map[string]string{"type": events.StockAllocatedEvent}))
	// 4 gilets need 20 bottoni, 12 in stock
	assert.Equal(t, 8.0, gathered(t, app.Registry, "gestionale_material_shortfall",
		map[string]string{"product_id": "GILET", "material_id": "BOTTONE"}))
}
