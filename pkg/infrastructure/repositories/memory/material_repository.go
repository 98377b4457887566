package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/domain/services"
)

// MaterialRepository provides in-memory material storage with versioned stock
type MaterialRepository struct {
	mu           sync.RWMutex
	materials    []entities.Material
	materialsMap map[entities.MaterialID]int
}

// NewMaterialRepository creates a new in-memory material repository
func NewMaterialRepository(expectedMaterials int) *MaterialRepository {
	return &MaterialRepository{
		materials:    make([]entities.Material, 0, expectedMaterials),
		materialsMap: make(map[entities.MaterialID]int, expectedMaterials),
	}
}

// Verify interface compliance
var _ repositories.MaterialRepository = (*MaterialRepository)(nil)

// LoadMaterials loads materials into the repository
func (r *MaterialRepository) LoadMaterials(ctx context.Context, materials []*entities.Material) error {
	for _, m := range materials {
		if err := r.SaveMaterial(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// GetMaterial returns a copy of a material
func (r *MaterialRepository) GetMaterial(ctx context.Context, id entities.MaterialID) (*entities.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.materialsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, id)
	}
	m := r.materials[index]
	return &m, nil
}

// GetAllMaterials returns copies of all materials in insertion order
func (r *MaterialRepository) GetAllMaterials(ctx context.Context) ([]*entities.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := make([]*entities.Material, 0, len(r.materials))
	for i := range r.materials {
		m := r.materials[i]
		materials = append(materials, &m)
	}
	return materials, nil
}

// GetMaterials returns copies of the requested materials, skipping unknown IDs
func (r *MaterialRepository) GetMaterials(ctx context.Context, ids []entities.MaterialID) (entities.MaterialSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(entities.MaterialSnapshot, len(ids))
	for _, id := range ids {
		index, exists := r.materialsMap[id]
		if !exists {
			continue
		}
		m := r.materials[index]
		snapshot[id] = &m
	}
	return snapshot, nil
}

// SaveMaterial inserts or replaces a material and bumps its version
func (r *MaterialRepository) SaveMaterial(ctx context.Context, material *entities.Material) error {
	if string(material.ID) == "" {
		return fmt.Errorf("material id cannot be empty")
	}
	if material.QuantityAvailable.IsNegative() {
		return fmt.Errorf("quantity available cannot be negative, got %s", material.QuantityAvailable)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.materialsMap[material.ID]; exists {
		material.Version = r.materials[index].Version + 1
		r.materials[index] = *material
		return nil
	}

	material.Version = 1
	r.materialsMap[material.ID] = len(r.materials)
	r.materials = append(r.materials, *material)
	return nil
}

// DeleteMaterial removes a material. Recipes referencing it are left dangling.
func (r *MaterialRepository) DeleteMaterial(ctx context.Context, id entities.MaterialID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.materialsMap[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, id)
	}

	r.materials = append(r.materials[:index], r.materials[index+1:]...)
	delete(r.materialsMap, id)
	for i := index; i < len(r.materials); i++ {
		r.materialsMap[r.materials[i].ID] = i
	}
	return nil
}

// ApplyConsumption checks every change against the stored version and stock,
// then applies all of them under a single lock
func (r *MaterialRepository) ApplyConsumption(ctx context.Context, changes []entities.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, change := range changes {
		index, exists := r.materialsMap[change.MaterialID]
		if !exists {
			return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, change.MaterialID)
		}
		stored := r.materials[index]
		if stored.Version != change.ExpectedVersion {
			return fmt.Errorf("%w: material %s at version %d, expected %d",
				entities.ErrConcurrentModification, change.MaterialID, stored.Version, change.ExpectedVersion)
		}
		if stored.QuantityAvailable.LessThan(change.Consumed) {
			return fmt.Errorf("%w: material %s has %s, needs %s",
				entities.ErrInsufficientStock, change.MaterialID, stored.QuantityAvailable, change.Consumed)
		}
	}

	for _, change := range changes {
		index := r.materialsMap[change.MaterialID]
		r.materials[index].QuantityAvailable = r.materials[index].QuantityAvailable.Sub(change.Consumed)
		r.materials[index].Version++
	}
	return nil
}

// RestoreConsumption puts consumed stock back; unit costs are untouched
func (r *MaterialRepository) RestoreConsumption(ctx context.Context, changes []entities.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, change := range changes {
		if _, exists := r.materialsMap[change.MaterialID]; !exists {
			return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, change.MaterialID)
		}
	}
	for _, change := range changes {
		index := r.materialsMap[change.MaterialID]
		r.materials[index].QuantityAvailable = r.materials[index].QuantityAvailable.Add(change.Consumed)
		r.materials[index].Version++
	}
	return nil
}

// ApplyReceipt adds received stock and re-averages the unit cost
func (r *MaterialRepository) ApplyReceipt(ctx context.Context, id entities.MaterialID, quantity, unitCost decimal.Decimal) (*entities.Material, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("received quantity must be positive, got %s", quantity)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.materialsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, id)
	}

	m := &r.materials[index]
	m.UnitCost = services.WeightedAverageCost(m.QuantityAvailable, m.UnitCost, quantity, unitCost)
	m.QuantityAvailable = m.QuantityAvailable.Add(quantity)
	m.Version++

	updated := *m
	return &updated, nil
}
