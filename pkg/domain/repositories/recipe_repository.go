package repositories

import (
	"context"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// RecipeRepository provides access to product recipes
type RecipeRepository interface {
	// GetRecipe returns an empty recipe when the product has none
	GetRecipe(ctx context.Context, productID entities.ProductID) (*entities.Recipe, error)
	GetAllRecipes(ctx context.Context) ([]*entities.Recipe, error)
	// ReplaceRecipe atomically swaps every line of the product's recipe
	ReplaceRecipe(ctx context.Context, recipe *entities.Recipe) error
	DeleteRecipe(ctx context.Context, productID entities.ProductID) error
}
