package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ repositories.ProductRepository = (*GormProductRepository)(nil)

// GetProduct retrieves a product by ID
func (r *GormProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	var model ProductModel
	result := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}
	return modelToProduct(&model), nil
}

// GetAllProducts retrieves every product ordered by code
func (r *GormProductRepository) GetAllProducts(ctx context.Context) ([]*entities.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("code, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*entities.Product, 0, len(models))
	for i := range models {
		products = append(products, modelToProduct(&models[i]))
	}
	return products, nil
}

// SaveProduct upserts a product
func (r *GormProductRepository) SaveProduct(ctx context.Context, product *entities.Product) error {
	if string(product.ID) == "" {
		return fmt.Errorf("product id cannot be empty")
	}
	if err := r.db.WithContext(ctx).Save(productToModel(product)).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// LoadProducts saves every product
func (r *GormProductRepository) LoadProducts(ctx context.Context, products []*entities.Product) error {
	for _, p := range products {
		if err := r.SaveProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProduct removes a product
func (r *GormProductRepository) DeleteProduct(ctx context.Context, id entities.ProductID) error {
	result := r.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&ProductModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
	}
	return nil
}

// AdjustFinishedStock adds delta to finished stock without letting it go negative
func (r *GormProductRepository) AdjustFinishedStock(ctx context.Context, id entities.ProductID, delta int64) error {
	result := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ? AND finished_stock + ? >= 0", string(id), delta).
		Update("finished_stock", gorm.Expr("finished_stock + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust finished stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetProduct(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("finished stock of %s cannot go below zero", id)
	}
	return nil
}

func modelToProduct(model *ProductModel) *entities.Product {
	return &entities.Product{
		ID:            entities.ProductID(model.ID),
		Code:          model.Code,
		Name:          model.Name,
		SalePrice:     model.SalePrice,
		FinishedStock: model.FinishedStock,
	}
}

func productToModel(p *entities.Product) *ProductModel {
	return &ProductModel{
		ID:            string(p.ID),
		Code:          p.Code,
		Name:          p.Name,
		SalePrice:     p.SalePrice,
		FinishedStock: p.FinishedStock,
	}
}
