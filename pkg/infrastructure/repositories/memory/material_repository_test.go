package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

func newMaterial(id string, qty int64) *entities.Material {
	return &entities.Material{
		ID:                entities.MaterialID(id),
		Name:              id,
		QuantityAvailable: decimal.NewFromInt(qty),
		UnitCost:          decimal.NewFromInt(2),
	}
}

func TestMaterialRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(10)

	m := newMaterial("A", 10)
	if err := repo.SaveMaterial(ctx, m); err != nil {
		t.Fatalf("Failed to save material: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("Expected version 1 after insert, got %d", m.Version)
	}

	retrieved, err := repo.GetMaterial(ctx, "A")
	if err != nil {
		t.Fatalf("Failed to get material: %v", err)
	}
	if !retrieved.QuantityAvailable.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected quantity 10, got %s", retrieved.QuantityAvailable)
	}

	// Returned copies must not alias storage
	retrieved.QuantityAvailable = decimal.Zero
	again, _ := repo.GetMaterial(ctx, "A")
	if !again.QuantityAvailable.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected stored quantity to stay 10, got %s", again.QuantityAvailable)
	}

	m.Name = "renamed"
	if err := repo.SaveMaterial(ctx, m); err != nil {
		t.Fatalf("Failed to update material: %v", err)
	}
	if m.Version != 2 {
		t.Errorf("Expected version 2 after update, got %d", m.Version)
	}
}

func TestMaterialRepository_GetMaterials_SkipsUnknown(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(2)
	_ = repo.LoadMaterials(ctx, []*entities.Material{newMaterial("A", 1), newMaterial("B", 2)})

	snapshot, err := repo.GetMaterials(ctx, []entities.MaterialID{"A", "Z"})
	if err != nil {
		t.Fatalf("Expected no error for unknown ids, got %v", err)
	}
	if len(snapshot) != 1 || !snapshot.Has("A") {
		t.Errorf("Expected only A in snapshot, got %v", snapshot)
	}
}

func TestMaterialRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(3)
	_ = repo.LoadMaterials(ctx, []*entities.Material{newMaterial("A", 1), newMaterial("B", 2), newMaterial("C", 3)})

	if err := repo.DeleteMaterial(ctx, "A"); err != nil {
		t.Fatalf("Failed to delete material: %v", err)
	}
	if _, err := repo.GetMaterial(ctx, "A"); !errors.Is(err, entities.ErrMaterialNotFound) {
		t.Errorf("Expected ErrMaterialNotFound, got %v", err)
	}
	c, err := repo.GetMaterial(ctx, "C")
	if err != nil || !c.QuantityAvailable.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected C to survive reindexing, got %v, %v", c, err)
	}
	if err := repo.DeleteMaterial(ctx, "A"); !errors.Is(err, entities.ErrMaterialNotFound) {
		t.Errorf("Expected ErrMaterialNotFound on second delete, got %v", err)
	}
}

func TestMaterialRepository_ApplyConsumption(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(2)
	_ = repo.LoadMaterials(ctx, []*entities.Material{newMaterial("A", 10), newMaterial("B", 4)})

	changes := []entities.StockChange{
		{MaterialID: "A", Consumed: decimal.NewFromInt(6), ExpectedVersion: 1},
		{MaterialID: "B", Consumed: decimal.NewFromInt(1), ExpectedVersion: 1},
	}
	if err := repo.ApplyConsumption(ctx, changes); err != nil {
		t.Fatalf("Expected consumption to apply, got %v", err)
	}

	a, _ := repo.GetMaterial(ctx, "A")
	if !a.QuantityAvailable.Equal(decimal.NewFromInt(4)) || a.Version != 2 {
		t.Errorf("Expected A at 4 version 2, got %s version %d", a.QuantityAvailable, a.Version)
	}

	// Replaying the same changes is stale
	err := repo.ApplyConsumption(ctx, changes)
	if !errors.Is(err, entities.ErrConcurrentModification) {
		t.Fatalf("Expected ErrConcurrentModification, got %v", err)
	}
}

func TestMaterialRepository_ApplyConsumption_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(2)
	_ = repo.LoadMaterials(ctx, []*entities.Material{newMaterial("A", 10), newMaterial("B", 1)})

	err := repo.ApplyConsumption(ctx, []entities.StockChange{
		{MaterialID: "A", Consumed: decimal.NewFromInt(5), ExpectedVersion: 1},
		{MaterialID: "B", Consumed: decimal.NewFromInt(2), ExpectedVersion: 1},
	})
	if !errors.Is(err, entities.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	a, _ := repo.GetMaterial(ctx, "A")
	if !a.QuantityAvailable.Equal(decimal.NewFromInt(10)) || a.Version != 1 {
		t.Errorf("Expected A untouched, got %s version %d", a.QuantityAvailable, a.Version)
	}
}

func TestMaterialRepository_ApplyConsumption_ConcurrentWritersNeverOversell(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(1)
	_ = repo.LoadMaterials(ctx, []*entities.Material{newMaterial("A", 10)})

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				snapshot, _ := repo.GetMaterials(ctx, []entities.MaterialID{"A"})
				m := snapshot["A"]
				if m.QuantityAvailable.LessThan(decimal.NewFromInt(1)) {
					return
				}
				err := repo.ApplyConsumption(ctx, []entities.StockChange{
					{MaterialID: "A", Consumed: decimal.NewFromInt(1), ExpectedVersion: m.Version},
				})
				if err == nil {
					successCount.Add(1)
					return
				}
				if !errors.Is(err, entities.ErrConcurrentModification) {
					return
				}
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 10 {
		t.Errorf("Expected exactly 10 successful consumptions, got %d", successCount.Load())
	}
	a, _ := repo.GetMaterial(ctx, "A")
	if !a.QuantityAvailable.IsZero() {
		t.Errorf("Expected stock 0, got %s", a.QuantityAvailable)
	}
}

func TestMaterialRepository_ApplyReceipt(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(1)
	_ = repo.LoadMaterials(ctx, []*entities.Material{newMaterial("A", 10)})

	updated, err := repo.ApplyReceipt(ctx, "A", decimal.NewFromInt(10), decimal.NewFromInt(4))
	if err != nil {
		t.Fatalf("Expected receipt to apply, got %v", err)
	}
	if !updated.QuantityAvailable.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected quantity 20, got %s", updated.QuantityAvailable)
	}
	if !updated.UnitCost.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected weighted cost 3, got %s", updated.UnitCost)
	}

	if _, err := repo.ApplyReceipt(ctx, "A", decimal.Zero, decimal.NewFromInt(1)); err == nil {
		t.Error("Expected error for zero quantity receipt")
	}
	if _, err := repo.ApplyReceipt(ctx, "Z", decimal.NewFromInt(1), decimal.NewFromInt(1)); !errors.Is(err, entities.ErrMaterialNotFound) {
		t.Errorf("Expected ErrMaterialNotFound, got %v", err)
	}
}
