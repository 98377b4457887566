package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/domain/services"
	"github.com/vsinha/gestionale/pkg/infrastructure/events"
	"github.com/vsinha/gestionale/pkg/infrastructure/metrics"
)

// Config holds tuning for production runs
type Config struct {
	// MaxRetries bounds how many times a run re-reads stock after a
	// concurrent modification before giving up
	MaxRetries int
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{MaxRetries: 5}
}

// Dependencies are the collaborators of ProductionService. Ledger, Events,
// Metrics and Logger are optional.
type Dependencies struct {
	Materials repositories.MaterialRepository
	Recipes   repositories.RecipeRepository
	Products  repositories.ProductRepository
	Ledger    repositories.StockLedger
	Events    events.Publisher
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

// ProductionService answers producibility questions and commits production
// runs against persisted stock.
type ProductionService struct {
	engine    *services.StockAllocationEngine
	materials repositories.MaterialRepository
	recipes   repositories.RecipeRepository
	products  repositories.ProductRepository
	ledger    repositories.StockLedger
	events    events.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	config    Config
}

// NewProductionService creates a production service with default configuration
func NewProductionService(deps Dependencies) *ProductionService {
	return NewProductionServiceWithConfig(deps, DefaultConfig())
}

// NewProductionServiceWithConfig creates a production service with custom configuration
func NewProductionServiceWithConfig(deps Dependencies, config Config) *ProductionService {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}

	s := &ProductionService{
		engine:    services.NewStockAllocationEngine(),
		materials: deps.Materials,
		recipes:   deps.Recipes,
		products:  deps.Products,
		ledger:    deps.Ledger,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		config:    config,
	}
	if s.events == nil {
		s.events = events.Discard
	}
	if s.metrics == nil {
		s.metrics = metrics.NoopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Producibility reports how many units of a product current stock allows
func (s *ProductionService) Producibility(ctx context.Context, productID entities.ProductID) (*dto.ProducibilityReport, error) {
	product, recipe, snapshot, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	producible := s.engine.ProducibleUnits(recipe, snapshot)
	supported := s.engine.UnitsSupported(recipe, snapshot)

	report := &dto.ProducibilityReport{
		ProductID:         product.ID,
		ProductName:       product.Name,
		ProducibleUnits:   producible,
		UnitCost:          s.engine.UnitCost(recipe, snapshot),
		LimitingMaterials: s.engine.LimitingMaterials(recipe, snapshot),
		Lines:             make([]dto.LineDetail, 0, len(recipe.Lines)),
	}

	limiting := make(map[entities.MaterialID]bool, len(report.LimitingMaterials))
	for _, id := range report.LimitingMaterials {
		limiting[id] = true
	}

	for _, line := range recipe.Lines {
		detail := dto.LineDetail{
			MaterialID:       line.MaterialID,
			QuantityRequired: line.QuantityRequired,
			Available:        snapshot.Available(line.MaterialID),
			UnitCost:         snapshot.UnitCost(line.MaterialID),
			UnitsSupported:   supported[line.MaterialID],
			Limiting:         limiting[line.MaterialID],
			Missing:          !snapshot.Has(line.MaterialID),
		}
		detail.LineCost = line.QuantityRequired.Mul(detail.UnitCost)
		if m, ok := snapshot[line.MaterialID]; ok {
			detail.MaterialName = m.Name
			detail.UnitOfMeasure = m.UnitOfMeasure
		}
		report.Lines = append(report.Lines, detail)
	}

	s.metrics.SetProducibleUnits(string(productID), producible)
	return report, nil
}

// ProductionCost returns the material cost of one unit at current prices
func (s *ProductionService) ProductionCost(ctx context.Context, productID entities.ProductID) (decimal.Decimal, error) {
	_, recipe, snapshot, err := s.load(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.engine.UnitCost(recipe, snapshot), nil
}

// Shortage lists the materials that must be bought to produce units, with
// the cost of buying them at current unit costs.
func (s *ProductionService) Shortage(ctx context.Context, productID entities.ProductID, units int64) (*dto.ShortageReport, error) {
	product, recipe, snapshot, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	report := &dto.ShortageReport{
		ProductID:    product.ID,
		ProductName:  product.Name,
		DesiredUnits: units,
		Shortages:    make([]dto.ShortageLine, 0),
		PurchaseCost: decimal.Zero,
	}

	shortages := s.engine.ShortageReport(recipe, snapshot, units)
	for _, shortage := range shortages {
		line := dto.ShortageLine{
			Shortage: shortage,
			UnitCost: snapshot.UnitCost(shortage.MaterialID),
		}
		line.PurchaseCost = shortage.ShortQty.Mul(line.UnitCost)
		if m, ok := snapshot[shortage.MaterialID]; ok {
			line.MaterialName = m.Name
			line.UnitOfMeasure = m.UnitOfMeasure
		}
		report.Shortages = append(report.Shortages, line)
		report.PurchaseCost = report.PurchaseCost.Add(line.PurchaseCost)
	}

	if len(shortages) > 0 {
		s.publish(events.NewShortageIdentifiedEvent(product.ID, units, shortages))
		s.logger.Info("shortage identified",
			"product_id", product.ID,
			"units", units,
			"materials", len(shortages),
			"purchase_cost", report.PurchaseCost.StringFixed(2))
	}

	return report, nil
}

// Project previews stock after producing units without committing anything
func (s *ProductionService) Project(ctx context.Context, productID entities.ProductID, units int64) (*dto.ProjectionReport, error) {
	product, recipe, snapshot, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	projected := s.engine.ProjectedStock(recipe, snapshot, units)
	report := &dto.ProjectionReport{
		ProductID:   product.ID,
		ProductName: product.Name,
		Units:       units,
		Feasible:    units > 0 && s.engine.ProducibleUnits(recipe, snapshot) >= units,
		Lines:       make([]dto.ProjectionLine, 0, len(projected)),
	}

	for _, change := range s.engine.Requirements(recipe, units) {
		line := dto.ProjectionLine{
			MaterialID: change.MaterialID,
			Before:     snapshot.Available(change.MaterialID),
			Consumed:   change.Consumed,
			After:      projected[change.MaterialID],
		}
		if m, ok := snapshot[change.MaterialID]; ok {
			line.MaterialName = m.Name
			line.UnitOfMeasure = m.UnitOfMeasure
		}
		report.Lines = append(report.Lines, line)
	}

	return report, nil
}

// Produce commits a production run of units: it consumes the recipe's
// materials and adds the units to the product's finished stock. Stock is
// either consumed in full or not at all.
func (s *ProductionService) Produce(ctx context.Context, productID entities.ProductID, units int64) (*dto.ProductionRun, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "product_id", productID, "units", units)

	if units <= 0 {
		return nil, fmt.Errorf("%w, got %d", entities.ErrInvalidUnits, units)
	}

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	recipe, err := s.recipes.GetRecipe(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe for %s: %w", productID, err)
	}

	reservation, err := s.reserve(ctx, recipe, units)
	if err != nil {
		s.finish(productID, metrics.ResultInsufficient, 0, start)
		logger.Warn("ledger reservation refused", "error", err)
		return nil, err
	}

	var allocation *entities.AllocationResult
	var snapshot entities.MaterialSnapshot
	attempts := 0

	for attempts < s.config.MaxRetries {
		attempts++

		snapshot, err = s.materials.GetMaterials(ctx, recipe.MaterialIDs())
		if err != nil {
			break
		}

		allocation, err = s.engine.Allocate(recipe, snapshot, units)
		if err != nil {
			break
		}

		err = s.materials.ApplyConsumption(ctx, allocation.Changes)
		if err == nil || !errors.Is(err, entities.ErrConcurrentModification) {
			break
		}

		s.metrics.RecordAllocationRetry(string(productID))
		logger.Debug("stock changed underneath allocation, retrying", "attempt", attempts)
	}

	if err != nil {
		s.release(ctx, logger, reservation)
		result := metrics.ResultError
		switch {
		case errors.Is(err, entities.ErrInsufficientStock):
			result = metrics.ResultInsufficient
		case errors.Is(err, entities.ErrConcurrentModification):
			result = metrics.ResultConflict
			err = fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}
		s.finish(productID, result, 0, start)
		logger.Warn("production run failed", "attempts", attempts, "error", err)
		return nil, err
	}

	if err := s.products.AdjustFinishedStock(ctx, productID, units); err != nil {
		s.finish(productID, metrics.ResultError, 0, start)
		if restoreErr := s.materials.RestoreConsumption(ctx, allocation.Changes); restoreErr != nil {
			logger.Error("materials consumed but neither finished stock nor materials updated",
				"error", err, "restore_error", restoreErr)
			return nil, fmt.Errorf("run %s consumed materials, failed to add finished stock (%v) and to restore materials: %w",
				runID, err, restoreErr)
		}
		s.release(ctx, logger, reservation)
		logger.Warn("finished stock not updated, materials restored", "error", err)
		return nil, fmt.Errorf("run %s failed to add finished stock: %w", runID, err)
	}

	unitCost := s.engine.UnitCost(recipe, snapshot)
	run := &dto.ProductionRun{
		RunID:       runID,
		ProductID:   productID,
		Units:       units,
		UnitCost:    unitCost,
		TotalCost:   unitCost.Mul(decimal.NewFromInt(units)),
		Attempts:    attempts,
		Changes:     allocation.Changes,
		CompletedAt: time.Now().UTC(),
	}

	s.publish(events.NewStockAllocatedEvent(runID, *allocation))
	s.finish(productID, metrics.ResultSuccess, units, start)
	// snapshot already reflects the consumption
	s.metrics.SetProducibleUnits(string(productID), s.engine.ProducibleUnits(recipe, snapshot))

	logger.Info("production run completed",
		"attempts", attempts,
		"total_cost", run.TotalCost.StringFixed(2),
		"duration", time.Since(start))

	return run, nil
}

// SetRecipe replaces the whole recipe of a product. Every line must
// reference an existing material.
func (s *ProductionService) SetRecipe(ctx context.Context, productID entities.ProductID, lines []entities.RecipeLine) (*entities.Recipe, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	ids := make([]entities.MaterialID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MaterialID)
	}
	snapshot, err := s.materials.GetMaterials(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe materials: %w", err)
	}

	recipe, err := s.engine.ReplaceRecipe(productID, lines, snapshot)
	if err != nil {
		return nil, err
	}

	previous, err := s.recipes.GetRecipe(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current recipe: %w", err)
	}
	if err := s.recipes.ReplaceRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to store recipe: %w", err)
	}

	s.publish(events.NewRecipeReplacedEvent(productID, previous.Lines, recipe.Lines))
	s.logger.Info("recipe replaced",
		"product_id", productID,
		"old_lines", len(previous.Lines),
		"new_lines", len(recipe.Lines))

	return recipe, nil
}

// SyncLedger copies durable stock into the ledger; call before serving
// production when a ledger is configured.
func (s *ProductionService) SyncLedger(ctx context.Context) error {
	if s.ledger == nil {
		return nil
	}

	materials, err := s.materials.GetAllMaterials(ctx)
	if err != nil {
		return fmt.Errorf("failed to list materials: %w", err)
	}
	for _, m := range materials {
		if err := s.ledger.SetStock(ctx, m.ID, m.QuantityAvailable); err != nil {
			return fmt.Errorf("failed to seed ledger for %s: %w", m.ID, err)
		}
	}

	s.logger.Info("stock ledger synchronised", "materials", len(materials))
	return nil
}

// load fetches the product, its recipe and a snapshot of the recipe's materials
func (s *ProductionService) load(ctx context.Context, productID entities.ProductID) (*entities.Product, *entities.Recipe, entities.MaterialSnapshot, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, nil, err
	}

	recipe, err := s.recipes.GetRecipe(ctx, productID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load recipe for %s: %w", productID, err)
	}

	snapshot, err := s.materials.GetMaterials(ctx, recipe.MaterialIDs())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load materials for %s: %w", productID, err)
	}

	return product, recipe, snapshot, nil
}

// reserve takes the run's materials from the ledger, if one is configured
func (s *ProductionService) reserve(ctx context.Context, recipe *entities.Recipe, units int64) ([]entities.StockChange, error) {
	if s.ledger == nil || recipe.IsEmpty() {
		return nil, nil
	}

	changes := s.engine.Requirements(recipe, units)
	if err := s.ledger.Reserve(ctx, changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *ProductionService) release(ctx context.Context, logger *slog.Logger, reservation []entities.StockChange) {
	if s.ledger == nil || len(reservation) == 0 {
		return
	}
	if err := s.ledger.Release(ctx, reservation); err != nil {
		logger.Error("failed to release ledger reservation", "error", err)
	}
}

func (s *ProductionService) finish(productID entities.ProductID, result string, units int64, start time.Time) {
	s.metrics.RecordProductionRun(string(productID), result, units, time.Since(start))
}

func (s *ProductionService) publish(event events.Event) {
	if err := s.events.Publish(event); err != nil {
		s.logger.Error("failed to publish event", "type", event.Type(), "error", err)
	}
}
