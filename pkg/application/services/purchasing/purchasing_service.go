package purchasing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/domain/services"
)

// Receiver books received goods into stock. InventoryService implements it.
type Receiver interface {
	Receive(ctx context.Context, id entities.MaterialID, quantity, unitCost decimal.Decimal) (*entities.Material, error)
}

// Dependencies are the collaborators of PurchasingService. Logger is optional.
type Dependencies struct {
	Orders    repositories.PurchaseOrderRepository
	Materials repositories.MaterialRepository
	Receiver  Receiver
	Logger    *slog.Logger
}

// PurchasingService places supplier orders and books them into stock on
// arrival.
type PurchasingService struct {
	orders    repositories.PurchaseOrderRepository
	materials repositories.MaterialRepository
	receiver  Receiver
	logger    *slog.Logger
	validate  *validator.Validate
	codeWidth int

	createMu  sync.Mutex
	receiveMu sync.Mutex
}

// NewPurchasingService creates a purchasing service; codeWidth <= 0 uses the default width
func NewPurchasingService(deps Dependencies, codeWidth int) *PurchasingService {
	if codeWidth <= 0 {
		codeWidth = services.DefaultCodeWidth
	}
	s := &PurchasingService{
		orders:    deps.Orders,
		materials: deps.Materials,
		receiver:  deps.Receiver,
		logger:    deps.Logger,
		validate:  validator.New(),
		codeWidth: codeWidth,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CreateOrder stores a pending order under the next ORD-IN- code. Every
// line must reference an existing material.
func (s *PurchasingService) CreateOrder(ctx context.Context, req dto.NewPurchaseOrderRequest) (*entities.PurchaseOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidOrder, err)
	}

	ids := make([]entities.MaterialID, 0, len(req.Lines))
	for _, line := range req.Lines {
		ids = append(ids, line.MaterialID)
	}
	snapshot, err := s.materials.GetMaterials(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load order materials: %w", err)
	}

	order := &entities.PurchaseOrder{
		Supplier:      req.Supplier,
		PaymentMethod: req.PaymentMethod,
		OrderedAt:     time.Now().UTC(),
		Status:        entities.OrderPending,
		ShippingCost:  req.ShippingCost,
		Lines:         make([]entities.PurchaseOrderLine, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		material, ok := snapshot[line.MaterialID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, line.MaterialID)
		}
		unitCost := material.UnitCost
		if line.UnitCost != nil {
			unitCost = *line.UnitCost
		}
		order.Lines = append(order.Lines, entities.PurchaseOrderLine{
			MaterialID: line.MaterialID,
			Quantity:   line.Quantity,
			UnitCost:   unitCost,
		})
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.orders.GetAllOrders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	codes := make([]string, 0, len(existing))
	for _, o := range existing {
		codes = append(codes, o.Code)
	}
	order.Code = services.NextCode(services.PurchaseOrderCodePrefix, codes, s.codeWidth)

	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		"code", order.Code,
		"supplier", order.Supplier,
		"lines", len(order.Lines),
		"total", order.Total().StringFixed(2))
	return order, nil
}

func (s *PurchasingService) GetOrder(ctx context.Context, code string) (*entities.PurchaseOrder, error) {
	return s.orders.GetOrder(ctx, code)
}

// ListOrders returns orders by code; an empty status lists all of them
func (s *PurchasingService) ListOrders(ctx context.Context, status entities.OrderStatus) ([]*entities.PurchaseOrder, error) {
	return s.orders.GetAllOrders(ctx, status)
}

// ReceiveOrder books every line of a pending order into stock at the line's
// unit cost and marks the order received. Lines are booked one at a time:
// when one fails the lines already booked stay marked, so receiving the
// order again resumes from the failed line.
func (s *PurchasingService) ReceiveOrder(ctx context.Context, code string) (*entities.PurchaseOrder, error) {
	s.receiveMu.Lock()
	defer s.receiveMu.Unlock()

	order, err := s.orders.GetOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.Status != entities.OrderPending {
		return nil, fmt.Errorf("%w: %s is %s", entities.ErrOrderNotPending, code, order.Status)
	}

	logger := s.logger.With("code", code)
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.Received {
			continue
		}
		if _, err := s.receiver.Receive(ctx, line.MaterialID, line.Quantity, line.UnitCost); err != nil {
			if saveErr := s.orders.SaveOrder(ctx, order); saveErr != nil {
				logger.Error("failed to save partially received order", "error", saveErr)
			}
			logger.Warn("purchase order line not received", "line", i+1, "material_id", line.MaterialID, "error", err)
			return nil, fmt.Errorf("order %s line %d (%s): %w", code, i+1, line.MaterialID, err)
		}
		line.Received = true
	}

	receivedAt := time.Now().UTC()
	order.Status = entities.OrderReceived
	order.ReceivedAt = &receivedAt
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("order %s booked into stock but not marked received: %w", code, err)
	}

	logger.Info("purchase order received", "lines", len(order.Lines), "total", order.Total().StringFixed(2))
	return order, nil
}
