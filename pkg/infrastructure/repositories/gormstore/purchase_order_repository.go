package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GORM purchase order repository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

var _ repositories.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

func (r *GormPurchaseOrderRepository) GetOrder(ctx context.Context, code string) (*entities.PurchaseOrder, error) {
	var model PurchaseOrderModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", entities.ErrOrderNotFound, code)
		}
		return nil, fmt.Errorf("failed to find purchase order: %w", err)
	}

	var lines []PurchaseOrderLineModel
	err := r.db.WithContext(ctx).Where("order_code = ?", code).Order("position").Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order lines: %w", err)
	}
	return modelToOrder(&model, lines), nil
}

func (r *GormPurchaseOrderRepository) GetAllOrders(ctx context.Context, status entities.OrderStatus) ([]*entities.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Order("code")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var models []PurchaseOrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	if len(models) == 0 {
		return []*entities.PurchaseOrder{}, nil
	}

	codes := make([]string, 0, len(models))
	for _, m := range models {
		codes = append(codes, m.Code)
	}
	var lines []PurchaseOrderLineModel
	err := r.db.WithContext(ctx).Where("order_code IN ?", codes).Order("order_code, position").Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order lines: %w", err)
	}

	byOrder := make(map[string][]PurchaseOrderLineModel, len(models))
	for _, line := range lines {
		byOrder[line.OrderCode] = append(byOrder[line.OrderCode], line)
	}
	orders := make([]*entities.PurchaseOrder, 0, len(models))
	for i := range models {
		orders = append(orders, modelToOrder(&models[i], byOrder[models[i].Code]))
	}
	return orders, nil
}

// SaveOrder upserts the order row and rewrites its lines in one transaction
func (r *GormPurchaseOrderRepository) SaveOrder(ctx context.Context, order *entities.PurchaseOrder) error {
	if order == nil || order.Code == "" {
		return fmt.Errorf("order code cannot be empty")
	}

	model := PurchaseOrderModel{
		Code:          order.Code,
		Supplier:      order.Supplier,
		PaymentMethod: order.PaymentMethod,
		Status:        string(order.Status),
		ShippingCost:  order.ShippingCost,
		OrderedAt:     order.OrderedAt,
		ReceivedAt:    order.ReceivedAt,
	}
	lines := make([]PurchaseOrderLineModel, 0, len(order.Lines))
	for i, line := range order.Lines {
		lines = append(lines, PurchaseOrderLineModel{
			OrderCode:  order.Code,
			MaterialID: string(line.MaterialID),
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
			Received:   line.Received,
			Position:   i,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&model).Error; err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		if err := tx.Where("order_code = ?", order.Code).Delete(&PurchaseOrderLineModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear purchase order lines: %w", err)
		}
		if len(lines) == 0 {
			return nil
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("failed to insert purchase order lines: %w", err)
		}
		return nil
	})
}

func modelToOrder(model *PurchaseOrderModel, lines []PurchaseOrderLineModel) *entities.PurchaseOrder {
	order := &entities.PurchaseOrder{
		Code:          model.Code,
		Supplier:      model.Supplier,
		PaymentMethod: model.PaymentMethod,
		Status:        entities.OrderStatus(model.Status),
		ShippingCost:  model.ShippingCost,
		OrderedAt:     model.OrderedAt,
		ReceivedAt:    model.ReceivedAt,
		Lines:         make([]entities.PurchaseOrderLine, 0, len(lines)),
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, entities.PurchaseOrderLine{
			MaterialID: entities.MaterialID(line.MaterialID),
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
			Received:   line.Received,
		})
	}
	return order
}
