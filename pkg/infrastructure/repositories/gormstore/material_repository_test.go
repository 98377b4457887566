package gormstore_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/gormstore"
	testhelpers "github.com/vsinha/gestionale/pkg/infrastructure/testing"
)

func seedMaterial(t *testing.T, repo *gormstore.GormMaterialRepository, id string, qty int64, cost string) *entities.Material {
	t.Helper()
	m := &entities.Material{
		ID:                entities.MaterialID(id),
		Code:              "MAT-" + id,
		Name:              id,
		Category:          "filati",
		UnitOfMeasure:     "mt",
		QuantityAvailable: decimal.NewFromInt(qty),
		UnitCost:          decimal.RequireFromString(cost),
	}
	require.NoError(t, repo.SaveMaterial(context.Background(), m))
	return m
}

func TestGormMaterialRepository_SaveAndGet(t *testing.T) {
	// Arrange
	db := testhelpers.NewTestDB(t)
	repo := gormstore.NewGormMaterialRepository(db)
	ctx := context.Background()
	m := seedMaterial(t, repo, "LANA", 40, "1.25")

	// Act
	retrieved, err := repo.GetMaterial(ctx, "LANA")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Version)
	assert.Equal(t, "MAT-LANA", retrieved.Code)
	assert.True(t, retrieved.QuantityAvailable.Equal(decimal.NewFromInt(40)), "got %s", retrieved.QuantityAvailable)
	assert.True(t, retrieved.UnitCost.Equal(decimal.RequireFromString("1.25")), "got %s", retrieved.UnitCost)
	assert.Equal(t, int64(1), retrieved.Version)

	m.Name = "Lana merino"
	require.NoError(t, repo.SaveMaterial(ctx, m))
	assert.Equal(t, int64(2), m.Version)

	updated, err := repo.GetMaterial(ctx, "LANA")
	require.NoError(t, err)
	assert.Equal(t, "Lana merino", updated.Name)
	assert.Equal(t, int64(2), updated.Version)
}

func TestGormMaterialRepository_GetMaterial_NotFound(t *testing.T) {
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))

	_, err := repo.GetMaterial(context.Background(), "MISSING")

	assert.ErrorIs(t, err, entities.ErrMaterialNotFound)
}

func TestGormMaterialRepository_GetMaterials_SkipsUnknown(t *testing.T) {
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))
	seedMaterial(t, repo, "A", 1, "1")
	seedMaterial(t, repo, "B", 2, "1")

	snapshot, err := repo.GetMaterials(context.Background(), []entities.MaterialID{"A", "Z"})

	require.NoError(t, err)
	assert.Len(t, snapshot, 1)
	assert.True(t, snapshot.Has("A"))
}

func TestGormMaterialRepository_GetAllAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))
	seedMaterial(t, repo, "B", 1, "1")
	seedMaterial(t, repo, "A", 1, "1")

	all, err := repo.GetAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entities.MaterialID("A"), all[0].ID, "ordered by code")

	require.NoError(t, repo.DeleteMaterial(ctx, "A"))
	assert.ErrorIs(t, repo.DeleteMaterial(ctx, "A"), entities.ErrMaterialNotFound)
}

func TestGormMaterialRepository_ApplyConsumption(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))
	seedMaterial(t, repo, "LANA", 40, "1")
	seedMaterial(t, repo, "FODERA", 6, "3")
	changes := []entities.StockChange{
		{MaterialID: "LANA", Consumed: decimal.RequireFromString("7.5"), ExpectedVersion: 1},
		{MaterialID: "FODERA", Consumed: decimal.RequireFromString("1.5"), ExpectedVersion: 1},
	}

	// Act
	err := repo.ApplyConsumption(ctx, changes)

	// Assert
	require.NoError(t, err)
	lana, _ := repo.GetMaterial(ctx, "LANA")
	assert.True(t, lana.QuantityAvailable.Equal(decimal.RequireFromString("32.5")), "got %s", lana.QuantityAvailable)
	assert.Equal(t, int64(2), lana.Version)

	err = repo.ApplyConsumption(ctx, changes)
	assert.ErrorIs(t, err, entities.ErrConcurrentModification, "replayed changes are stale")
}

func TestGormMaterialRepository_ApplyConsumption_RollsBack(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))
	seedMaterial(t, repo, "LANA", 40, "1")
	seedMaterial(t, repo, "FODERA", 1, "3")

	// Act
	err := repo.ApplyConsumption(ctx, []entities.StockChange{
		{MaterialID: "LANA", Consumed: decimal.NewFromInt(5), ExpectedVersion: 1},
		{MaterialID: "FODERA", Consumed: decimal.NewFromInt(2), ExpectedVersion: 1},
	})

	// Assert
	assert.ErrorIs(t, err, entities.ErrInsufficientStock)
	lana, _ := repo.GetMaterial(ctx, "LANA")
	assert.True(t, lana.QuantityAvailable.Equal(decimal.NewFromInt(40)), "first update must roll back, got %s", lana.QuantityAvailable)
	assert.Equal(t, int64(1), lana.Version)

	err = repo.ApplyConsumption(ctx, []entities.StockChange{
		{MaterialID: "GONE", Consumed: decimal.NewFromInt(1), ExpectedVersion: 1},
	})
	assert.ErrorIs(t, err, entities.ErrMaterialNotFound)
}

func TestGormMaterialRepository_ApplyConsumption_ConcurrentWritersNeverOversell(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))
	seedMaterial(t, repo, "A", 10, "1")

	var wg sync.WaitGroup
	var successCount atomic.Int64

	// Act
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				snapshot, err := repo.GetMaterials(ctx, []entities.MaterialID{"A"})
				if err != nil {
					return
				}
				m := snapshot["A"]
				if m.QuantityAvailable.LessThan(decimal.NewFromInt(1)) {
					return
				}
				err = repo.ApplyConsumption(ctx, []entities.StockChange{
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

	// Assert
	assert.Equal(t, int64(10), successCount.Load())
	a, err := repo.GetMaterial(ctx, "A")
	require.NoError(t, err)
	assert.True(t, a.QuantityAvailable.IsZero(), "got %s", a.QuantityAvailable)
}

func TestGormMaterialRepository_ApplyReceipt(t *testing.T) {
	ctx := context.Background()
	repo := gormstore.NewGormMaterialRepository(testhelpers.NewTestDB(t))
	seedMaterial(t, repo, "LANA", 10, "2")

	updated, err := repo.ApplyReceipt(ctx, "LANA", decimal.NewFromInt(10), decimal.NewFromInt(4))

	require.NoError(t, err)
	assert.True(t, updated.QuantityAvailable.Equal(decimal.NewFromInt(20)), "got %s", updated.QuantityAvailable)
	assert.True(t, updated.UnitCost.Equal(decimal.NewFromInt(3)), "got %s", updated.UnitCost)
	assert.Equal(t, int64(2), updated.Version)

	_, err = repo.ApplyReceipt(ctx, "MISSING", decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, entities.ErrMaterialNotFound)
	_, err = repo.ApplyReceipt(ctx, "LANA", decimal.NewFromInt(-1), decimal.NewFromInt(1))
	assert.Error(t, err)
}
