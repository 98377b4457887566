package repositories

import (
	"context"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// ProductRepository provides access to finished products
type ProductRepository interface {
	GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error)
	GetAllProducts(ctx context.Context) ([]*entities.Product, error)
	SaveProduct(ctx context.Context, product *entities.Product) error
	DeleteProduct(ctx context.Context, id entities.ProductID) error
	LoadProducts(ctx context.Context, products []*entities.Product) error
	AdjustFinishedStock(ctx context.Context, id entities.ProductID, delta int64) error
}
