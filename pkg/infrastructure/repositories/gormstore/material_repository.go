package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/domain/services"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GORM material repository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// Verify interface compliance
var _ repositories.MaterialRepository = (*GormMaterialRepository)(nil)

// GetMaterial retrieves a material by ID
func (r *GormMaterialRepository) GetMaterial(ctx context.Context, id entities.MaterialID) (*entities.Material, error) {
	var model MaterialModel
	result := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, id)
		}
		return nil, fmt.Errorf("failed to find material: %w", result.Error)
	}
	return modelToMaterial(&model), nil
}

// GetAllMaterials retrieves every material ordered by code
func (r *GormMaterialRepository) GetAllMaterials(ctx context.Context) ([]*entities.Material, error) {
	var models []MaterialModel
	if err := r.db.WithContext(ctx).Order("code, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	materials := make([]*entities.Material, 0, len(models))
	for i := range models {
		materials = append(materials, modelToMaterial(&models[i]))
	}
	return materials, nil
}

// GetMaterials retrieves the requested materials; unknown IDs are absent
func (r *GormMaterialRepository) GetMaterials(ctx context.Context, ids []entities.MaterialID) (entities.MaterialSnapshot, error) {
	snapshot := make(entities.MaterialSnapshot, len(ids))
	if len(ids) == 0 {
		return snapshot, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, string(id))
	}

	var models []MaterialModel
	if err := r.db.WithContext(ctx).Where("id IN ?", keys).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	for i := range models {
		m := modelToMaterial(&models[i])
		snapshot[m.ID] = m
	}
	return snapshot, nil
}

// SaveMaterial upserts a material and bumps its version
func (r *GormMaterialRepository) SaveMaterial(ctx context.Context, material *entities.Material) error {
	if string(material.ID) == "" {
		return fmt.Errorf("material id cannot be empty")
	}
	if material.QuantityAvailable.IsNegative() {
		return fmt.Errorf("quantity available cannot be negative, got %s", material.QuantityAvailable)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing MaterialModel
		err := tx.Select("version").Where("id = ?", string(material.ID)).First(&existing).Error
		switch {
		case err == nil:
			material.Version = existing.Version + 1
		case errors.Is(err, gorm.ErrRecordNotFound):
			material.Version = 1
		default:
			return fmt.Errorf("failed to read material version: %w", err)
		}

		if err := tx.Save(materialToModel(material)).Error; err != nil {
			return fmt.Errorf("failed to save material: %w", err)
		}
		return nil
	})
}

// LoadMaterials saves every material
func (r *GormMaterialRepository) LoadMaterials(ctx context.Context, materials []*entities.Material) error {
	for _, m := range materials {
		if err := r.SaveMaterial(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMaterial removes a material; recipe lines referencing it are kept
func (r *GormMaterialRepository) DeleteMaterial(ctx context.Context, id entities.MaterialID) error {
	result := r.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&MaterialModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete material: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, id)
	}
	return nil
}

// ApplyConsumption decrements every material in one transaction. Each row is
// updated only if its version and stock still match; any miss rolls back.
func (r *GormMaterialRepository) ApplyConsumption(ctx context.Context, changes []entities.StockChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			result := tx.Model(&MaterialModel{}).
				Where("id = ? AND version = ? AND quantity_available >= ?",
					string(change.MaterialID), change.ExpectedVersion, change.Consumed).
				Updates(map[string]interface{}{
					"quantity_available": gorm.Expr("quantity_available - ?", change.Consumed),
					"version":            gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to consume material %s: %w", change.MaterialID, result.Error)
			}
			if result.RowsAffected == 0 {
				return r.explainMissedUpdate(tx, change)
			}
		}
		return nil
	})
}

// explainMissedUpdate re-reads a row whose guarded update matched nothing
func (r *GormMaterialRepository) explainMissedUpdate(tx *gorm.DB, change entities.StockChange) error {
	var model MaterialModel
	err := tx.Where("id = ?", string(change.MaterialID)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, change.MaterialID)
	}
	if err != nil {
		return fmt.Errorf("failed to re-read material %s: %w", change.MaterialID, err)
	}
	if model.Version != change.ExpectedVersion {
		return fmt.Errorf("%w: material %s at version %d, expected %d",
			entities.ErrConcurrentModification, change.MaterialID, model.Version, change.ExpectedVersion)
	}
	return fmt.Errorf("%w: material %s has %s, needs %s",
		entities.ErrInsufficientStock, change.MaterialID, model.QuantityAvailable, change.Consumed)
}

// RestoreConsumption puts consumed stock back in one transaction
func (r *GormMaterialRepository) RestoreConsumption(ctx context.Context, changes []entities.StockChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			result := tx.Model(&MaterialModel{}).
				Where("id = ?", string(change.MaterialID)).
				Updates(map[string]interface{}{
					"quantity_available": gorm.Expr("quantity_available + ?", change.Consumed),
					"version":            gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to restore material %s: %w", change.MaterialID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, change.MaterialID)
			}
		}
		return nil
	})
}

// ApplyReceipt adds received stock and re-averages the unit cost
func (r *GormMaterialRepository) ApplyReceipt(ctx context.Context, id entities.MaterialID, quantity, unitCost decimal.Decimal) (*entities.Material, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("received quantity must be positive, got %s", quantity)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	var updated *entities.Material
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model MaterialModel
		if err := tx.Where("id = ?", string(id)).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, id)
			}
			return fmt.Errorf("failed to find material: %w", err)
		}

		newCost := services.WeightedAverageCost(model.QuantityAvailable, model.UnitCost, quantity, unitCost)
		result := tx.Model(&MaterialModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]interface{}{
				"quantity_available": model.QuantityAvailable.Add(quantity),
				"unit_cost":          newCost,
				"version":            model.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to receive material: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: material %s", entities.ErrConcurrentModification, id)
		}

		model.QuantityAvailable = model.QuantityAvailable.Add(quantity)
		model.UnitCost = newCost
		model.Version++
		updated = modelToMaterial(&model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// modelToMaterial converts database model to domain entity
func modelToMaterial(model *MaterialModel) *entities.Material {
	return &entities.Material{
		ID:                entities.MaterialID(model.ID),
		Code:              model.Code,
		Name:              model.Name,
		Category:          model.Category,
		UnitOfMeasure:     model.UnitOfMeasure,
		QuantityAvailable: model.QuantityAvailable,
		QuantityReserved:  model.QuantityReserved,
		MinimumStock:      model.MinimumStock,
		UnitCost:          model.UnitCost,
		Version:           model.Version,
	}
}

// materialToModel converts domain entity to database model
func materialToModel(m *entities.Material) *MaterialModel {
	return &MaterialModel{
		ID:                string(m.ID),
		Code:              m.Code,
		Name:              m.Name,
		Category:          m.Category,
		UnitOfMeasure:     m.UnitOfMeasure,
		QuantityAvailable: m.QuantityAvailable,
		QuantityReserved:  m.QuantityReserved,
		MinimumStock:      m.MinimumStock,
		UnitCost:          m.UnitCost,
		Version:           m.Version,
	}
}
