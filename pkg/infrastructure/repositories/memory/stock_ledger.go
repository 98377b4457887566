package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
)

// StockLedger is an in-process StockLedger guarded by a mutex
type StockLedger struct {
	mu    sync.Mutex
	stock map[entities.MaterialID]decimal.Decimal
}

// NewStockLedger creates an empty in-memory stock ledger
func NewStockLedger() *StockLedger {
	return &StockLedger{
		stock: make(map[entities.MaterialID]decimal.Decimal),
	}
}

// Verify interface compliance
var _ repositories.StockLedger = (*StockLedger)(nil)

// SetStock overwrites the ledger quantity of a material
func (l *StockLedger) SetStock(ctx context.Context, id entities.MaterialID, quantity decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stock[id] = quantity
	return nil
}

// GetStock returns ledger quantities; unknown materials are absent
func (l *StockLedger) GetStock(ctx context.Context, ids []entities.MaterialID) (map[entities.MaterialID]decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make(map[entities.MaterialID]decimal.Decimal, len(ids))
	for _, id := range ids {
		if qty, ok := l.stock[id]; ok {
			result[id] = qty
		}
	}
	return result, nil
}

// Reserve decrements every material or none
func (l *StockLedger) Reserve(ctx context.Context, changes []entities.StockChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, change := range changes {
		qty, ok := l.stock[change.MaterialID]
		if !ok || qty.LessThan(change.Consumed) {
			return fmt.Errorf("%w: ledger has %s of %s, needs %s",
				entities.ErrInsufficientStock, qty, change.MaterialID, change.Consumed)
		}
	}
	for _, change := range changes {
		l.stock[change.MaterialID] = l.stock[change.MaterialID].Sub(change.Consumed)
	}
	return nil
}

// Release adds reserved quantities back
func (l *StockLedger) Release(ctx context.Context, changes []entities.StockChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, change := range changes {
		l.stock[change.MaterialID] = l.stock[change.MaterialID].Add(change.Consumed)
	}
	return nil
}

// AddStock credits received stock
func (l *StockLedger) AddStock(ctx context.Context, id entities.MaterialID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("added stock must be positive, got %s", quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.stock[id] = l.stock[id].Add(quantity)
	return nil
}
