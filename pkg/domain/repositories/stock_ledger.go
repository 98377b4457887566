package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// StockLedger is a fast atomic counter store for material stock, used to
// reserve stock before the durable write in MaterialRepository.
type StockLedger interface {
	SetStock(ctx context.Context, id entities.MaterialID, quantity decimal.Decimal) error
	GetStock(ctx context.Context, ids []entities.MaterialID) (map[entities.MaterialID]decimal.Decimal, error)
	// Reserve decrements every material by its consumed amount, or nothing
	// when any of them is short, returning ErrInsufficientStock.
	Reserve(ctx context.Context, changes []entities.StockChange) error
	// Release gives back a reservation made by Reserve
	Release(ctx context.Context, changes []entities.StockChange) error
	// AddStock credits newly received stock. Implementations that round
	// must round down.
	AddStock(ctx context.Context, id entities.MaterialID, quantity decimal.Decimal) error
}
