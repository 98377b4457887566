package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/domain/services"
	"github.com/vsinha/gestionale/pkg/infrastructure/events"
)

// Dependencies are the collaborators of InventoryService. Ledger, Events
// and Logger are optional.
type Dependencies struct {
	Materials repositories.MaterialRepository
	Products  repositories.ProductRepository
	Ledger    repositories.StockLedger
	Events    events.Publisher
	Logger    *slog.Logger
}

// InventoryService covers the warehouse side: search, status, receipts and
// creation of new records with generated codes.
type InventoryService struct {
	materials repositories.MaterialRepository
	products  repositories.ProductRepository
	ledger    repositories.StockLedger
	events    events.Publisher
	logger    *slog.Logger
	validate  *validator.Validate
	codeWidth int

	// serialises code generation so two creations never share a code
	createMu sync.Mutex
}

// NewInventoryService creates an inventory service; codeWidth <= 0 uses the default width
func NewInventoryService(deps Dependencies, codeWidth int) *InventoryService {
	if codeWidth <= 0 {
		codeWidth = services.DefaultCodeWidth
	}
	s := &InventoryService{
		materials: deps.Materials,
		products:  deps.Products,
		ledger:    deps.Ledger,
		events:    deps.Events,
		logger:    deps.Logger,
		validate:  validator.New(),
		codeWidth: codeWidth,
	}
	if s.events == nil {
		s.events = events.Discard
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Search returns materials matching a case-insensitive query over code,
// name and category, optionally restricted to one category.
func (s *InventoryService) Search(ctx context.Context, query, category string) ([]*dto.MaterialStatus, error) {
	materials, err := s.materials.GetAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	matched := services.FilterMaterials(materials, query, category)
	result := make([]*dto.MaterialStatus, 0, len(matched))
	for _, m := range matched {
		result = append(result, s.describe(m))
	}
	return result, nil
}

// StockStatus classifies a material by free stock against its reorder threshold
func (s *InventoryService) StockStatus(m *entities.Material) entities.StockStatus {
	return services.StockStatusOf(m)
}

// Summary computes the warehouse dashboard figures
func (s *InventoryService) Summary(ctx context.Context) (*dto.InventorySummary, error) {
	materials, err := s.materials.GetAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	products, err := s.products.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	summary := &dto.InventorySummary{
		MaterialCount:  len(materials),
		ProductCount:   len(products),
		WarehouseValue: services.WarehouseValue(materials),
		LowStockCount:  services.CountLowStock(materials),
	}
	for _, m := range materials {
		if services.StockStatusOf(m) == entities.OutOfStock {
			summary.OutOfStockCount++
		}
	}
	return summary, nil
}

// Receive books a goods receipt: stock grows by quantity and the unit cost
// becomes the weighted average of old and received stock.
func (s *InventoryService) Receive(ctx context.Context, id entities.MaterialID, quantity, unitCost decimal.Decimal) (*entities.Material, error) {
	updated, err := s.materials.ApplyReceipt(ctx, id, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	if s.ledger != nil {
		if err := s.ledger.AddStock(ctx, id, quantity); err != nil {
			s.logger.Error("failed to add receipt to stock ledger", "material_id", id, "error", err)
		}
	}

	if err := s.events.Publish(events.NewStockReceivedEvent(updated, quantity, unitCost)); err != nil {
		s.logger.Error("failed to publish event", "type", events.StockReceivedEvent, "error", err)
	}
	s.logger.Info("goods received",
		"material_id", id,
		"quantity", quantity.String(),
		"new_stock", updated.QuantityAvailable.String(),
		"new_unit_cost", updated.UnitCost.String())

	return updated, nil
}

// CreateMaterial stores a new material under a fresh ID and the next MAT- code
func (s *InventoryService) CreateMaterial(ctx context.Context, req dto.NewMaterialRequest) (*entities.Material, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid material: %w", err)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.materials.GetAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	codes := make([]string, 0, len(existing))
	for _, m := range existing {
		codes = append(codes, m.Code)
	}

	material, err := entities.NewMaterial(
		entities.MaterialID(uuid.NewString()),
		services.NextCode(services.MaterialCodePrefix, codes, s.codeWidth),
		req.Name,
		req.Category,
		req.UnitOfMeasure,
		req.QuantityAvailable,
		req.UnitCost,
	)
	if err != nil {
		return nil, err
	}
	if req.MinimumStock.IsNegative() {
		return nil, fmt.Errorf("minimum stock cannot be negative, got %s", req.MinimumStock)
	}
	material.MinimumStock = req.MinimumStock

	if err := s.materials.SaveMaterial(ctx, material); err != nil {
		return nil, err
	}
	if s.ledger != nil {
		if err := s.ledger.SetStock(ctx, material.ID, material.QuantityAvailable); err != nil {
			s.logger.Error("failed to seed stock ledger", "material_id", material.ID, "error", err)
		}
	}

	s.logger.Info("material created", "material_id", material.ID, "code", material.Code)
	return material, nil
}

// CreateProduct stores a new product under a fresh ID and the next PROD- code
func (s *InventoryService) CreateProduct(ctx context.Context, req dto.NewProductRequest) (*entities.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid product: %w", err)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.products.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	codes := make([]string, 0, len(existing))
	for _, p := range existing {
		codes = append(codes, p.Code)
	}

	product, err := entities.NewProduct(
		entities.ProductID(uuid.NewString()),
		services.NextCode(services.ProductCodePrefix, codes, s.codeWidth),
		req.Name,
		req.SalePrice,
	)
	if err != nil {
		return nil, err
	}

	if err := s.products.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created", "product_id", product.ID, "code", product.Code)
	return product, nil
}

func (s *InventoryService) describe(m *entities.Material) *dto.MaterialStatus {
	status := services.StockStatusOf(m)
	return &dto.MaterialStatus{
		Material:  m,
		Status:    status,
		StatusTag: status.String(),
		FreeStock: m.FreeStock(),
		Value:     m.QuantityAvailable.Mul(m.UnitCost),
	}
}
