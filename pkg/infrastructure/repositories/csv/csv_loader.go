package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// File names looked up by LoadDirectory
const (
	MaterialsFile = "materials.csv"
	ProductsFile  = "products.csv"
	RecipesFile   = "recipes.csv"
)

var (
	materialsHeader = []string{"id", "code", "name", "category", "unit_of_measure", "quantity_available", "unit_cost", "minimum_stock"}
	productsHeader  = []string{"id", "code", "name", "sale_price", "finished_stock"}
	recipesHeader   = []string{"product_id", "material_id", "quantity_required"}
)

// Loader handles loading catalog data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDirectory reads materials.csv, products.csv and recipes.csv from dir.
// Only materials.csv is mandatory.
func (l *Loader) LoadDirectory(dir string) (*entities.Catalog, error) {
	materials, err := l.LoadMaterials(filepath.Join(dir, MaterialsFile))
	if err != nil {
		return nil, err
	}

	catalog := &entities.Catalog{Materials: materials}

	productsPath := filepath.Join(dir, ProductsFile)
	if fileExists(productsPath) {
		if catalog.Products, err = l.LoadProducts(productsPath); err != nil {
			return nil, err
		}
	}

	recipesPath := filepath.Join(dir, RecipesFile)
	if fileExists(recipesPath) {
		if catalog.Recipes, err = l.LoadRecipes(recipesPath); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

// LoadMaterials loads materials from a CSV file
func (l *Loader) LoadMaterials(filename string) ([]*entities.Material, error) {
	records, err := readRecords(filename, "materials", materialsHeader)
	if err != nil {
		return nil, err
	}

	var materials []*entities.Material
	for i, record := range records {
		material, err := parseMaterial(record)
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		materials = append(materials, material)
	}

	return materials, nil
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readRecords(filename, "products", productsHeader)
	if err != nil {
		return nil, err
	}

	var products []*entities.Product
	for i, record := range records {
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}

	return products, nil
}

// LoadRecipes loads recipe lines and groups them per product, keeping file order
func (l *Loader) LoadRecipes(filename string) ([]*entities.Recipe, error) {
	records, err := readRecords(filename, "recipes", recipesHeader)
	if err != nil {
		return nil, err
	}

	var recipes []*entities.Recipe
	byProduct := make(map[entities.ProductID]*entities.Recipe)

	for i, record := range records {
		productID := entities.ProductID(strings.TrimSpace(record[0]))
		if productID == "" {
			return nil, fmt.Errorf("recipes CSV row %d: product_id cannot be empty", i+2)
		}

		quantity, err := parseDecimal("quantity_required", record[2])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}
		line, err := entities.NewRecipeLine(entities.MaterialID(strings.TrimSpace(record[1])), quantity)
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}

		recipe, exists := byProduct[productID]
		if !exists {
			recipe = &entities.Recipe{ProductID: productID}
			byProduct[productID] = recipe
			recipes = append(recipes, recipe)
		}
		recipe.Lines = append(recipe.Lines, *line)
	}

	return recipes, nil
}

// Helper functions for parsing CSV records

func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseMaterial(record []string) (*entities.Material, error) {
	quantity, err := parseDecimal("quantity_available", record[5])
	if err != nil {
		return nil, err
	}
	unitCost, err := parseDecimal("unit_cost", record[6])
	if err != nil {
		return nil, err
	}

	material, err := entities.NewMaterial(
		entities.MaterialID(strings.TrimSpace(record[0])),
		strings.TrimSpace(record[1]),
		strings.TrimSpace(record[2]),
		strings.TrimSpace(record[3]),
		strings.TrimSpace(record[4]),
		quantity,
		unitCost,
	)
	if err != nil {
		return nil, err
	}

	// An empty minimum_stock keeps the default reorder threshold
	if strings.TrimSpace(record[7]) != "" {
		minimum, err := parseDecimal("minimum_stock", record[7])
		if err != nil {
			return nil, err
		}
		material.MinimumStock = minimum
	}

	return material, nil
}

func parseProduct(record []string) (*entities.Product, error) {
	salePrice, err := parseDecimal("sale_price", record[3])
	if err != nil {
		return nil, err
	}

	product, err := entities.NewProduct(
		entities.ProductID(strings.TrimSpace(record[0])),
		strings.TrimSpace(record[1]),
		strings.TrimSpace(record[2]),
		salePrice,
	)
	if err != nil {
		return nil, err
	}

	if s := strings.TrimSpace(record[4]); s != "" {
		finished, err := strconv.ParseInt(s, 10, 64)
		if err != nil || finished < 0 {
			return nil, fmt.Errorf("invalid finished_stock: %s", record[4])
		}
		product.FinishedStock = finished
	}

	return product, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, value)
	}
	return d, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
