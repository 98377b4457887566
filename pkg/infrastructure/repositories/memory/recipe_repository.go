package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// RecipeRepository provides in-memory recipe storage with replace-all writes
type RecipeRepository struct {
	mu      sync.RWMutex
	recipes map[entities.ProductID][]entities.RecipeLine
}

// NewRecipeRepository creates a new in-memory recipe repository
func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{
		recipes: make(map[entities.ProductID][]entities.RecipeLine),
	}
}

// Verify interface compliance
var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

// GetRecipe returns a copy of the product's recipe, empty if none was set
func (r *RecipeRepository) GetRecipe(ctx context.Context, productID entities.ProductID) (*entities.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.recipeCopy(productID), nil
}

// GetAllRecipes returns all recipes ordered by product ID
func (r *RecipeRepository) GetAllRecipes(ctx context.Context) ([]*entities.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productIDs := make([]entities.ProductID, 0, len(r.recipes))
	for id := range r.recipes {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	recipes := make([]*entities.Recipe, 0, len(productIDs))
	for _, id := range productIDs {
		recipes = append(recipes, r.recipeCopy(id))
	}
	return recipes, nil
}

// ReplaceRecipe swaps the whole line set of a product's recipe
func (r *RecipeRepository) ReplaceRecipe(ctx context.Context, recipe *entities.Recipe) error {
	if recipe == nil || string(recipe.ProductID) == "" {
		return fmt.Errorf("product id cannot be empty")
	}

	lines := make([]entities.RecipeLine, len(recipe.Lines))
	copy(lines, recipe.Lines)

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(lines) == 0 {
		delete(r.recipes, recipe.ProductID)
		return nil
	}
	r.recipes[recipe.ProductID] = lines
	return nil
}

// DeleteRecipe removes a product's recipe
func (r *RecipeRepository) DeleteRecipe(ctx context.Context, productID entities.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.recipes, productID)
	return nil
}

func (r *RecipeRepository) recipeCopy(productID entities.ProductID) *entities.Recipe {
	stored := r.recipes[productID]
	lines := make([]entities.RecipeLine, len(stored))
	copy(lines, stored)
	return &entities.Recipe{ProductID: productID, Lines: lines}
}
