package testing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/memory"
)

// Repositories bundles the in-memory stores a fixture was loaded into
type Repositories struct {
	Materials *memory.MaterialRepository
	Recipes   *memory.RecipeRepository
	Products  *memory.ProductRepository
}

// BuildKnitwearTestData builds a small knitwear workshop: two products
// sharing yarn, one of them limited by buttons.
//
//	SCIARPA  = 2.5 mt LANA + 0.5 mt FODERA
//	GILET    = 4 mt LANA + 5 pz BOTTONE
func BuildKnitwearTestData() *Repositories {
	repos := newRepositories(4, 2)

	materials := []*entities.Material{
		{
			ID:                "LANA",
			Code:              "MAT-001",
			Name:              "Lana merino",
			Category:          "filati",
			UnitOfMeasure:     "mt",
			QuantityAvailable: decimal.NewFromInt(40),
			MinimumStock:      decimal.NewFromInt(20),
			UnitCost:          decimal.RequireFromString("1.20"),
		},
		{
			ID:                "FODERA",
			Code:              "MAT-002",
			Name:              "Fodera in cotone",
			Category:          "tessuti",
			UnitOfMeasure:     "mt",
			QuantityAvailable: decimal.NewFromInt(6),
			MinimumStock:      decimal.NewFromInt(10),
			UnitCost:          decimal.RequireFromString("3.00"),
		},
		{
			ID:                "BOTTONE",
			Code:              "MAT-003",
			Name:              "Bottone in corno",
			Category:          "accessori",
			UnitOfMeasure:     "pz",
			QuantityAvailable: decimal.NewFromInt(12),
			UnitCost:          decimal.RequireFromString("0.40"),
		},
		{
			ID:                "ETICHETTA",
			Code:              "MAT-004",
			Name:              "Etichetta tessuta",
			Category:          "accessori",
			UnitOfMeasure:     "pz",
			QuantityAvailable: decimal.Zero,
			UnitCost:          decimal.RequireFromString("0.15"),
		},
	}

	products := []*entities.Product{
		{ID: "SCIARPA", Code: "PROD-001", Name: "Sciarpa", SalePrice: decimal.NewFromInt(35)},
		{ID: "GILET", Code: "PROD-002", Name: "Gilet", SalePrice: decimal.NewFromInt(80)},
	}

	recipes := []*entities.Recipe{
		{ProductID: "SCIARPA", Lines: []entities.RecipeLine{
			{MaterialID: "LANA", QuantityRequired: decimal.RequireFromString("2.5")},
			{MaterialID: "FODERA", QuantityRequired: decimal.RequireFromString("0.5")},
		}},
		{ProductID: "GILET", Lines: []entities.RecipeLine{
			{MaterialID: "LANA", QuantityRequired: decimal.NewFromInt(4)},
			{MaterialID: "BOTTONE", QuantityRequired: decimal.NewFromInt(5)},
		}},
	}

	repos.mustLoad(materials, products, recipes)
	return repos
}

// BuildSimpleTestData creates one product made of one material
func BuildSimpleTestData() *Repositories {
	repos := newRepositories(1, 1)

	materials := []*entities.Material{
		{
			ID:                "COMPONENT_A",
			Code:              "MAT-001",
			Name:              "Test Component A",
			UnitOfMeasure:     "pz",
			QuantityAvailable: decimal.NewFromInt(10),
			UnitCost:          decimal.NewFromInt(2),
		},
	}
	products := []*entities.Product{
		{ID: "ASSEMBLY_A", Code: "PROD-001", Name: "Test Assembly A"},
	}
	recipes := []*entities.Recipe{
		{ProductID: "ASSEMBLY_A", Lines: []entities.RecipeLine{
			{MaterialID: "COMPONENT_A", QuantityRequired: decimal.NewFromInt(2)},
		}},
	}

	repos.mustLoad(materials, products, recipes)
	return repos
}

func newRepositories(expectedMaterials, expectedProducts int) *Repositories {
	return &Repositories{
		Materials: memory.NewMaterialRepository(expectedMaterials),
		Recipes:   memory.NewRecipeRepository(),
		Products:  memory.NewProductRepository(expectedProducts),
	}
}

func (r *Repositories) mustLoad(materials []*entities.Material, products []*entities.Product, recipes []*entities.Recipe) {
	ctx := context.Background()

	if err := r.Materials.LoadMaterials(ctx, materials); err != nil {
		panic(err)
	}
	if err := r.Products.LoadProducts(ctx, products); err != nil {
		panic(err)
	}
	for _, recipe := range recipes {
		if err := r.Recipes.ReplaceRecipe(ctx, recipe); err != nil {
			panic(err)
		}
	}
}
