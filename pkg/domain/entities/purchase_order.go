package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks a purchase order from placement to receipt
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderReceived OrderStatus = "received"
)

// ParseOrderStatus accepts the status names case-sensitively
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderReceived:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("unknown order status %q (expected %s or %s)", s, OrderPending, OrderReceived)
	}
}

// PurchaseOrderLine is a quantity of one material bought at a unit cost.
// Received is set once the line has been booked into stock.
type PurchaseOrderLine struct {
	MaterialID MaterialID      `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Received   bool            `json:"received"`
}

// Total is the line cost, unit cost times quantity
func (l PurchaseOrderLine) Total() decimal.Decimal {
	return l.UnitCost.Mul(l.Quantity)
}

// PurchaseOrder is an order placed with a supplier for raw materials
type PurchaseOrder struct {
	Code          string              `json:"code"`
	Supplier      string              `json:"supplier"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	OrderedAt     time.Time           `json:"ordered_at"`
	ReceivedAt    *time.Time          `json:"received_at,omitempty"`
	Status        OrderStatus         `json:"status"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	Lines         []PurchaseOrderLine `json:"lines"`
}

// GoodsTotal sums the line totals
func (o *PurchaseOrder) GoodsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Total())
	}
	return total
}

// Total is the goods total plus shipping
func (o *PurchaseOrder) Total() decimal.Decimal {
	return o.GoodsTotal().Add(o.ShippingCost)
}

// Validate checks the amounts an order can be stored with
func (o *PurchaseOrder) Validate() error {
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: at least one line is required", ErrInvalidOrder)
	}
	if o.ShippingCost.IsNegative() {
		return fmt.Errorf("%w: shipping cost cannot be negative, got %s", ErrInvalidOrder, o.ShippingCost)
	}
	for i, line := range o.Lines {
		if line.MaterialID == "" {
			return fmt.Errorf("%w: line %d has no material", ErrInvalidOrder, i+1)
		}
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("%w: line %d quantity must be positive, got %s", ErrInvalidOrder, i+1, line.Quantity)
		}
		if line.UnitCost.IsNegative() {
			return fmt.Errorf("%w: line %d unit cost cannot be negative, got %s", ErrInvalidOrder, i+1, line.UnitCost)
		}
	}
	return nil
}
