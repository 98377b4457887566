package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// PurchaseOrderRepository keeps purchase orders in a map keyed by code
type PurchaseOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*entities.PurchaseOrder
}

// NewPurchaseOrderRepository creates an empty in-memory order store
func NewPurchaseOrderRepository() *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		orders: make(map[string]*entities.PurchaseOrder),
	}
}

var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

func (r *PurchaseOrderRepository) GetOrder(ctx context.Context, code string) (*entities.PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[code]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrOrderNotFound, code)
	}
	return copyOrder(order), nil
}

func (r *PurchaseOrderRepository) GetAllOrders(ctx context.Context, status entities.OrderStatus) ([]*entities.PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*entities.PurchaseOrder, 0, len(r.orders))
	for _, order := range r.orders {
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, copyOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Code < orders[j].Code })
	return orders, nil
}

func (r *PurchaseOrderRepository) SaveOrder(ctx context.Context, order *entities.PurchaseOrder) error {
	if order == nil || order.Code == "" {
		return fmt.Errorf("order code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.Code] = copyOrder(order)
	return nil
}

func copyOrder(order *entities.PurchaseOrder) *entities.PurchaseOrder {
	c := *order
	c.Lines = make([]entities.PurchaseOrderLine, len(order.Lines))
	copy(c.Lines, order.Lines)
	if order.ReceivedAt != nil {
		receivedAt := *order.ReceivedAt
		c.ReceivedAt = &receivedAt
	}
	return &c
}
