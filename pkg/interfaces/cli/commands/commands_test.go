package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
)

const knitwearCatalog = `
materials:
  - {id: LANA, code: MAT-001, name: Lana merino, category: filati, unit_of_measure: mt, quantity_available: 40, unit_cost: "1.20", minimum_stock: 20}
  - {id: FODERA, code: MAT-002, name: Fodera, category: tessuti, unit_of_measure: mt, quantity_available: 6, unit_cost: 3, minimum_stock: 10}
  - {id: BOTTONE, code: MAT-003, name: Bottone, category: accessori, unit_of_measure: pz, quantity_available: 12, unit_cost: "0.40"}
products:
  - {id: SCIARPA, code: PROD-001, name: Sciarpa, sale_price: 35}
  - {id: GILET, code: PROD-002, name: Gilet, sale_price: 80}
recipes:
  - product_id: SCIARPA
    lines:
      - {material_id: LANA, quantity_required: 2.5}
      - {material_id: FODERA, quantity_required: 0.5}
  - product_id: GILET
    lines:
      - {material_id: LANA, quantity_required: 4}
      - {material_id: BOTTONE, quantity_required: 5}
`

// setupCLI isolates the working directory and environment and returns the
// path of a knitwear catalog
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GEST_LOGGING_LEVEL", "error")
	t.Setenv("GEST_DATABASE_TYPE", "memory")

	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(knitwearCatalog), 0o600))
	return path
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("GEST_DATABASE_TYPE", "sqlite")
	t.Setenv("GEST_DATABASE_PATH", filepath.Join(t.TempDir(), "gestionale.db"))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProducibleCommand(t *testing.T) {
	// Arrange
	catalog := setupCLI(t)

	// Act
	out, err := runCLI(t, "producible", "SCIARPA", "--catalog", catalog, "--format", "json")

	// Assert
	require.NoError(t, err)
	var report dto.ProducibilityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(12), report.ProducibleUnits)
	assert.Equal(t, []entities.MaterialID{"FODERA"}, report.LimitingMaterials)
	assert.True(t, report.UnitCost.Equal(decimal.RequireFromString("4.5")))
}

func TestProducibleCommand_Text(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "producible", "GILET", "--catalog", catalog)

	require.NoError(t, err)
	assert.Contains(t, out, "Producibility: Gilet (GILET)")
	assert.Contains(t, out, "6.80")
	assert.Contains(t, out, "BOTTONE")
}

func TestProducibleCommand_UnknownProduct(t *testing.T) {
	catalog := setupCLI(t)

	_, err := runCLI(t, "producible", "CAPPELLO", "--catalog", catalog)

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrProductNotFound)
}

func TestCostCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "cost", "SCIARPA", "--catalog", catalog)

	require.NoError(t, err)
	assert.Contains(t, out, "4.50")
}

func TestShortageCommand_CSV(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "shortage", "GILET", "--units", "4", "--catalog", catalog, "--format", "csv")

	require.NoError(t, err)
	// 4 gilets need 16 mt of lana (40 available) and 20 bottoni (12 available)
	assert.Contains(t, out, "BOTTONE,Bottone,20 pz,12 pz,8 pz,0.40,3.20")
	assert.NotContains(t, out, "LANA,")
}

func TestProjectCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "project", "SCIARPA", "-n", "13", "--catalog", catalog, "--format", "json")

	require.NoError(t, err)
	var report dto.ProjectionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Feasible)
	require.Len(t, report.Lines, 2)
	assert.True(t, report.Lines[1].After.Equal(decimal.RequireFromString("-0.5")))
}

func TestProduceCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "produce", "SCIARPA", "--units", "3", "--catalog", catalog, "--format", "json")

	require.NoError(t, err)
	var run dto.ProductionRun
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, int64(3), run.Units)
	assert.Len(t, run.RunID, 36)
	assert.True(t, run.TotalCost.Equal(decimal.RequireFromString("13.5")))
	require.Len(t, run.Changes, 2)
	assert.True(t, run.Changes[0].After.Equal(decimal.RequireFromString("32.5")))
}

func TestProduceCommand_Failures(t *testing.T) {
	catalog := setupCLI(t)

	_, err := runCLI(t, "produce", "SCIARPA", "--units", "13", "--catalog", catalog)
	assert.ErrorIs(t, err, entities.ErrInsufficientStock)

	_, err = runCLI(t, "produce", "SCIARPA", "--units", "0", "--catalog", catalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--units must be positive")
}

func TestProduceCommand_PersistsAcrossInvocations(t *testing.T) {
	// Arrange
	catalog := setupCLI(t)
	useSQLite(t)

	// Act
	_, err := runCLI(t, "produce", "SCIARPA", "--units", "4", "--catalog", catalog)
	require.NoError(t, err)
	_, err = runCLI(t, "produce", "SCIARPA", "--units", "8")
	require.NoError(t, err)
	_, err = runCLI(t, "produce", "SCIARPA", "--units", "1")

	// Assert
	assert.ErrorIs(t, err, entities.ErrInsufficientStock, "fodera is exhausted after 12 scarves")

	out, err := runCLI(t, "producible", "GILET", "--format", "json")
	require.NoError(t, err)
	var report dto.ProducibilityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	// 40 - 12*2.5 = 10 mt of lana left, 4 per gilet
	assert.Equal(t, int64(2), report.ProducibleUnits)
}

func TestRecipeSetCommand(t *testing.T) {
	catalog := setupCLI(t)
	useSQLite(t)

	out, err := runCLI(t, "recipe", "set", "SCIARPA", "LANA=3", "--catalog", catalog, "--format", "json")
	require.NoError(t, err)
	var recipe entities.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &recipe))
	require.Len(t, recipe.Lines, 1)

	out, err = runCLI(t, "producible", "SCIARPA", "--format", "json")
	require.NoError(t, err)
	var report dto.ProducibilityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(13), report.ProducibleUnits)
}

func TestRecipeSetCommand_RejectsInvalidLines(t *testing.T) {
	catalog := setupCLI(t)

	_, err := runCLI(t, "recipe", "set", "SCIARPA", "SETA=1", "--catalog", catalog)
	assert.ErrorIs(t, err, entities.ErrInvalidRecipe)

	_, err = runCLI(t, "recipe", "set", "SCIARPA", "LANA", "--catalog", catalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected <material>=<qty>")
}

func TestRecipeShowCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "recipe", "show", "GILET", "--catalog", catalog)

	require.NoError(t, err)
	assert.Contains(t, out, "Recipe: GILET")
	assert.Contains(t, out, "BOTTONE")
}

func TestMaterialsListCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "materials", "list", "--category", "accessori", "--catalog", catalog, "--format", "json")

	require.NoError(t, err)
	var materials []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &materials))
	require.Len(t, materials, 1)
	assert.Equal(t, "BOTTONE", materials[0]["id"])
	assert.Equal(t, "LowStock", materials[0]["status"])
}

func TestMaterialsReceiveCommand(t *testing.T) {
	catalog := setupCLI(t)
	useSQLite(t)

	_, err := runCLI(t, "materials", "receive", "FODERA", "--qty", "6", "--cost", "4", "--catalog", catalog)
	require.NoError(t, err)

	out, err := runCLI(t, "materials", "list", "--search", "fodera", "--format", "json")
	require.NoError(t, err)
	var materials []dto.MaterialStatus
	require.NoError(t, json.Unmarshal([]byte(out), &materials))
	require.Len(t, materials, 1)
	assert.True(t, materials[0].QuantityAvailable.Equal(decimal.NewFromInt(12)))
	assert.True(t, materials[0].UnitCost.Equal(decimal.RequireFromString("3.5")))
}

func TestMaterialsAddCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "materials", "add", "--name", "Etichetta", "--unit", "pz",
		"--qty", "50", "--catalog", catalog, "--format", "json")

	require.NoError(t, err)
	var m entities.Material
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "MAT-004", m.Code)
	assert.Len(t, string(m.ID), 36)

	_, err = runCLI(t, "materials", "add", "--unit", "pz", "--catalog", catalog)
	assert.Error(t, err, "name is required")
}

func TestProductsAddCommand(t *testing.T) {
	catalog := setupCLI(t)

	out, err := runCLI(t, "products", "add", "--name", "Berretto", "--price", "22", "--catalog", catalog)

	require.NoError(t, err)
	assert.Contains(t, out, "Created product PROD-003")
	assert.Contains(t, out, "22.00")
}

func TestSummaryCommand_Excel(t *testing.T) {
	catalog := setupCLI(t)
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	_, err := runCLI(t, "summary", "--catalog", catalog, "--format", "xlsx", "--output", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	// 40*1.20 + 6*3 + 12*0.40
	assert.Contains(t, rows, []string{"Warehouse value", "70.80"})
	assert.Contains(t, rows, []string{"Materials", "3"})
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	catalog := setupCLI(t)

	_, err := runCLI(t, "summary", "--catalog", catalog, "--format", "pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --format")
}

func TestLoadCatalog(t *testing.T) {
	catalog := setupCLI(t)

	loaded, err := LoadCatalog(catalog)
	require.NoError(t, err)
	assert.Len(t, loaded.Materials, 3)
	assert.Len(t, loaded.Recipes, 2)

	txt := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))
	_, err = LoadCatalog(txt)
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestParseRecipeLines(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"empty clears recipe", nil, 0, false},
		{"two lines", []string{"LANA=2.5", "FODERA=0.5"}, 2, false},
		{"missing quantity", []string{"LANA"}, 0, true},
		{"missing material", []string{"=2"}, 0, true},
		{"bad number", []string{"LANA=due"}, 0, true},
		{"zero quantity", []string{"LANA=0"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := ParseRecipeLines(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lines, tt.want)
		})
	}
}
