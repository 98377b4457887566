package repositories

import (
	"context"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// PurchaseOrderRepository stores supplier orders keyed by code
type PurchaseOrderRepository interface {
	GetOrder(ctx context.Context, code string) (*entities.PurchaseOrder, error)
	// GetAllOrders returns orders by code; an empty status matches all
	GetAllOrders(ctx context.Context, status entities.OrderStatus) ([]*entities.PurchaseOrder, error)
	// SaveOrder inserts or replaces the order with its lines
	SaveOrder(ctx context.Context, order *entities.PurchaseOrder) error
}
