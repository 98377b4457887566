package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// MaterialRepository provides access to raw material master data and stock
type MaterialRepository interface {
	GetMaterial(ctx context.Context, id entities.MaterialID) (*entities.Material, error)
	GetAllMaterials(ctx context.Context) ([]*entities.Material, error)
	// GetMaterials returns the requested materials keyed by ID.
	// Unknown IDs are absent from the result rather than an error.
	GetMaterials(ctx context.Context, ids []entities.MaterialID) (entities.MaterialSnapshot, error)
	SaveMaterial(ctx context.Context, material *entities.Material) error
	DeleteMaterial(ctx context.Context, id entities.MaterialID) error
	LoadMaterials(ctx context.Context, materials []*entities.Material) error

	// ApplyConsumption durably applies every change or none. Each change is
	// checked against the stored version and stock: a version mismatch yields
	// ErrConcurrentModification, stock below the consumed amount yields
	// ErrInsufficientStock.
	ApplyConsumption(ctx context.Context, changes []entities.StockChange) error

	// RestoreConsumption adds consumed quantities back without a version
	// check. It undoes an ApplyConsumption whose run could not complete.
	RestoreConsumption(ctx context.Context, changes []entities.StockChange) error

	// ApplyReceipt adds received quantity and re-averages the unit cost
	// with the received unit cost, weighted by quantity
	ApplyReceipt(ctx context.Context, id entities.MaterialID, quantity, unitCost decimal.Decimal) (*entities.Material, error)
}
