package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// NewMaterialRequest carries the fields of a material to create; ID and
// code are assigned by the inventory service.
type NewMaterialRequest struct {
	Name              string          `validate:"required,max=200"`
	Category          string          `validate:"max=100"`
	UnitOfMeasure     string          `validate:"required,max=20"`
	QuantityAvailable decimal.Decimal `validate:"-"`
	UnitCost          decimal.Decimal `validate:"-"`
	MinimumStock      decimal.Decimal `validate:"-"`
}

// NewProductRequest carries the fields of a product to create
type NewProductRequest struct {
	Name      string          `validate:"required,max=200"`
	SalePrice decimal.Decimal `validate:"-"`
}

// NewPurchaseOrderRequest carries a supplier order to place; the code is
// assigned by the purchasing service.
type NewPurchaseOrderRequest struct {
	Supplier      string                     `validate:"required,max=200"`
	PaymentMethod string                     `validate:"max=50"`
	ShippingCost  decimal.Decimal            `validate:"-"`
	Lines         []PurchaseOrderLineRequest `validate:"required,min=1,dive"`
}

// PurchaseOrderLineRequest is one material of a new order. A nil UnitCost
// takes the material's current unit cost.
type PurchaseOrderLineRequest struct {
	MaterialID entities.MaterialID `validate:"required"`
	Quantity   decimal.Decimal     `validate:"-"`
	UnitCost   *decimal.Decimal    `validate:"-"`
}
