package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// GormRecipeRepository implements RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GORM recipe repository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

var _ repositories.RecipeRepository = (*GormRecipeRepository)(nil)

// GetRecipe returns the product's lines in stored order, empty if none
func (r *GormRecipeRepository) GetRecipe(ctx context.Context, productID entities.ProductID) (*entities.Recipe, error) {
	var models []RecipeLineModel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", string(productID)).
		Order("position").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return linesToRecipe(productID, models), nil
}

// GetAllRecipes returns every recipe ordered by product ID
func (r *GormRecipeRepository) GetAllRecipes(ctx context.Context) ([]*entities.Recipe, error) {
	var models []RecipeLineModel
	if err := r.db.WithContext(ctx).Order("product_id, position").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	var recipes []*entities.Recipe
	for start := 0; start < len(models); {
		end := start
		for end < len(models) && models[end].ProductID == models[start].ProductID {
			end++
		}
		recipes = append(recipes, linesToRecipe(entities.ProductID(models[start].ProductID), models[start:end]))
		start = end
	}
	return recipes, nil
}

// ReplaceRecipe deletes the old lines and inserts the new ones in one transaction
func (r *GormRecipeRepository) ReplaceRecipe(ctx context.Context, recipe *entities.Recipe) error {
	if recipe == nil || string(recipe.ProductID) == "" {
		return fmt.Errorf("product id cannot be empty")
	}

	models := make([]RecipeLineModel, 0, len(recipe.Lines))
	for i, line := range recipe.Lines {
		models = append(models, RecipeLineModel{
			ProductID:        string(recipe.ProductID),
			MaterialID:       string(line.MaterialID),
			QuantityRequired: line.QuantityRequired,
			Position:         i,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", string(recipe.ProductID)).Delete(&RecipeLineModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to insert recipe lines: %w", err)
		}
		return nil
	})
}

// DeleteRecipe removes every line of the product's recipe
func (r *GormRecipeRepository) DeleteRecipe(ctx context.Context, productID entities.ProductID) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", string(productID)).Delete(&RecipeLineModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

func linesToRecipe(productID entities.ProductID, models []RecipeLineModel) *entities.Recipe {
	recipe := &entities.Recipe{ProductID: productID}
	for _, m := range models {
		recipe.Lines = append(recipe.Lines, entities.RecipeLine{
			MaterialID:       entities.MaterialID(m.MaterialID),
			QuantityRequired: m.QuantityRequired,
		})
	}
	return recipe
}
