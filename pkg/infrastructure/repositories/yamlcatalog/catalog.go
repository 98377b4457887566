package yamlcatalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

type document struct {
	Materials []materialDoc `yaml:"materials"`
	Products  []productDoc  `yaml:"products"`
	Recipes   []recipeDoc   `yaml:"recipes"`
}

type materialDoc struct {
	ID                string          `yaml:"id"`
	Code              string          `yaml:"code"`
	Name              string          `yaml:"name"`
	Category          string          `yaml:"category"`
	UnitOfMeasure     string          `yaml:"unit_of_measure"`
	QuantityAvailable decimal.Decimal `yaml:"quantity_available"`
	UnitCost          decimal.Decimal `yaml:"unit_cost"`
	MinimumStock      decimal.Decimal `yaml:"minimum_stock"`
}

type productDoc struct {
	ID            string          `yaml:"id"`
	Code          string          `yaml:"code"`
	Name          string          `yaml:"name"`
	SalePrice     decimal.Decimal `yaml:"sale_price"`
	FinishedStock int64           `yaml:"finished_stock"`
}

type recipeDoc struct {
	ProductID string                `yaml:"product_id"`
	Lines     []entities.RecipeLine `yaml:"lines"`
}

// Load reads a catalog from a YAML file
func Load(path string) (*entities.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) (*entities.Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := &entities.Catalog{}

	for i, md := range doc.Materials {
		m, err := entities.NewMaterial(entities.MaterialID(md.ID), md.Code, md.Name, md.Category,
			md.UnitOfMeasure, md.QuantityAvailable, md.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("materials[%d]: %w", i, err)
		}
		m.MinimumStock = md.MinimumStock
		catalog.Materials = append(catalog.Materials, m)
	}

	for i, pd := range doc.Products {
		p, err := entities.NewProduct(entities.ProductID(pd.ID), pd.Code, pd.Name, pd.SalePrice)
		if err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}
		if pd.FinishedStock < 0 {
			return nil, fmt.Errorf("products[%d]: finished stock cannot be negative, got %d", i, pd.FinishedStock)
		}
		p.FinishedStock = pd.FinishedStock
		catalog.Products = append(catalog.Products, p)
	}

	for i, rd := range doc.Recipes {
		if rd.ProductID == "" {
			return nil, fmt.Errorf("recipes[%d]: product id cannot be empty", i)
		}
		recipe := &entities.Recipe{ProductID: entities.ProductID(rd.ProductID)}
		for j, line := range rd.Lines {
			validated, err := entities.NewRecipeLine(line.MaterialID, line.QuantityRequired)
			if err != nil {
				return nil, fmt.Errorf("recipes[%d].lines[%d]: %w", i, j, err)
			}
			recipe.Lines = append(recipe.Lines, *validated)
		}
		catalog.Recipes = append(catalog.Recipes, recipe)
	}

	return catalog, nil
}
