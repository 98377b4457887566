package gormstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialModel represents the materials table
type MaterialModel struct {
	ID                string          `gorm:"column:id;primaryKey"`
	Code              string          `gorm:"column:code;index"`
	Name              string          `gorm:"column:name;not null"`
	Category          string          `gorm:"column:category;index"`
	UnitOfMeasure     string          `gorm:"column:unit_of_measure"`
	QuantityAvailable decimal.Decimal `gorm:"column:quantity_available;type:decimal(20,6);not null;default:0"`
	QuantityReserved  decimal.Decimal `gorm:"column:quantity_reserved;type:decimal(20,6);not null;default:0"`
	MinimumStock      decimal.Decimal `gorm:"column:minimum_stock;type:decimal(20,6);not null;default:0"`
	UnitCost          decimal.Decimal `gorm:"column:unit_cost;type:decimal(20,6);not null;default:0"`
	Version           int64           `gorm:"column:version;not null;default:1"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (MaterialModel) TableName() string {
	return "materials"
}

// ProductModel represents the products table
type ProductModel struct {
	ID            string          `gorm:"column:id;primaryKey"`
	Code          string          `gorm:"column:code;index"`
	Name          string          `gorm:"column:name;not null"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:decimal(20,6);not null;default:0"`
	FinishedStock int64           `gorm:"column:finished_stock;not null;default:0"`
}

func (ProductModel) TableName() string {
	return "products"
}

// RecipeLineModel represents the recipe_lines table, one row per material of a product
type RecipeLineModel struct {
	ID               uint            `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID        string          `gorm:"column:product_id;not null;uniqueIndex:idx_recipe_product_material"`
	MaterialID       string          `gorm:"column:material_id;not null;uniqueIndex:idx_recipe_product_material"`
	QuantityRequired decimal.Decimal `gorm:"column:quantity_required;type:decimal(20,6);not null"`
	Position         int             `gorm:"column:position;not null;default:0"`
}

func (RecipeLineModel) TableName() string {
	return "recipe_lines"
}

// PurchaseOrderModel represents the purchase_orders table
type PurchaseOrderModel struct {
	Code          string          `gorm:"column:code;primaryKey"`
	Supplier      string          `gorm:"column:supplier"`
	PaymentMethod string          `gorm:"column:payment_method"`
	Status        string          `gorm:"column:status;not null;index"`
	ShippingCost  decimal.Decimal `gorm:"column:shipping_cost;type:decimal(20,6);not null;default:0"`
	OrderedAt     time.Time       `gorm:"column:ordered_at"`
	ReceivedAt    *time.Time      `gorm:"column:received_at"`
}

func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLineModel represents the purchase_order_lines table
type PurchaseOrderLineModel struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderCode  string          `gorm:"column:order_code;not null;index"`
	MaterialID string          `gorm:"column:material_id;not null"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:decimal(20,6);not null"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:decimal(20,6);not null;default:0"`
	Received   bool            `gorm:"column:received;not null;default:false"`
	Position   int             `gorm:"column:position;not null;default:0"`
}

func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// Models lists every table for auto-migration
func Models() []interface{} {
	return []interface{}{
		&MaterialModel{},
		&ProductModel{},
		&RecipeLineModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderLineModel{},
	}
}
