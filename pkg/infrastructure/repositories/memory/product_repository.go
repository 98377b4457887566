package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// ProductRepository provides in-memory product storage
type ProductRepository struct {
	mu          sync.RWMutex
	products    []entities.Product
	productsMap map[entities.ProductID]int
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products:    make([]entities.Product, 0, expectedProducts),
		productsMap: make(map[entities.ProductID]int, expectedProducts),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts loads products into the repository
func (r *ProductRepository) LoadProducts(ctx context.Context, products []*entities.Product) error {
	for _, p := range products {
		if err := r.SaveProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// GetProduct returns a copy of a product
func (r *ProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.productsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
	}
	p := r.products[index]
	return &p, nil
}

// GetAllProducts returns copies of all products in insertion order
func (r *ProductRepository) GetAllProducts(ctx context.Context) ([]*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*entities.Product, 0, len(r.products))
	for i := range r.products {
		p := r.products[i]
		products = append(products, &p)
	}
	return products, nil
}

// SaveProduct inserts or replaces a product
func (r *ProductRepository) SaveProduct(ctx context.Context, product *entities.Product) error {
	if string(product.ID) == "" {
		return fmt.Errorf("product id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.productsMap[product.ID]; exists {
		r.products[index] = *product
		return nil
	}
	r.productsMap[product.ID] = len(r.products)
	r.products = append(r.products, *product)
	return nil
}

// DeleteProduct removes a product
func (r *ProductRepository) DeleteProduct(ctx context.Context, id entities.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.productsMap[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
	}

	r.products = append(r.products[:index], r.products[index+1:]...)
	delete(r.productsMap, id)
	for i := index; i < len(r.products); i++ {
		r.productsMap[r.products[i].ID] = i
	}
	return nil
}

// AdjustFinishedStock adds delta to the product's finished stock
func (r *ProductRepository) AdjustFinishedStock(ctx context.Context, id entities.ProductID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.productsMap[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
	}
	if r.products[index].FinishedStock+delta < 0 {
		return fmt.Errorf("finished stock of %s cannot go below zero", id)
	}
	r.products[index].FinishedStock += delta
	return nil
}
