package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/vsinha/gestionale/pkg/application/services/inventory"
	"github.com/vsinha/gestionale/pkg/application/services/production"
	"github.com/vsinha/gestionale/pkg/application/services/purchasing"
	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/domain/services"
	"github.com/vsinha/gestionale/pkg/infrastructure/config"
	"github.com/vsinha/gestionale/pkg/infrastructure/database"
	"github.com/vsinha/gestionale/pkg/infrastructure/events"
	"github.com/vsinha/gestionale/pkg/infrastructure/logging"
	"github.com/vsinha/gestionale/pkg/infrastructure/metrics"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/gormstore"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/redisstock"
	"github.com/vsinha/gestionale/pkg/infrastructure/repositories/yamlcatalog"
)

// App is the wired application used by every command
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Materials  repositories.MaterialRepository
	Products   repositories.ProductRepository
	Recipes    repositories.RecipeRepository
	Orders     repositories.PurchaseOrderRepository
	Ledger     repositories.StockLedger
	Events     *events.InMemoryEventStore
	Registry   *prometheus.Registry
	Production *production.ProductionService
	Inventory  *inventory.InventoryService
	Purchasing *purchasing.PurchasingService

	db          *gorm.DB
	redisClient *redis.Client
}

// NewApp loads configuration, opens the configured stores, seeds them from
// the catalog when one is given and builds the application services.
func NewApp(ctx context.Context, opts *globalOptions) (*App, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	app := &App{
		Config: cfg,
		Logger: logging.New(cfg.Logging),
	}

	if err := app.openStores(); err != nil {
		app.Close()
		return nil, err
	}

	if opts.catalogPath != "" {
		catalog, err := LoadCatalog(opts.catalogPath)
		if err != nil {
			app.Close()
			return nil, err
		}
		if err := app.Seed(ctx, catalog); err != nil {
			app.Close()
			return nil, err
		}
	}

	if cfg.Redis.Enabled {
		client, err := redisstock.NewClient(ctx, cfg.Redis)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redisClient = client
		app.Ledger = redisstock.NewStockLedger(client, cfg.Redis.KeyPrefix, cfg.Redis.Scale)
	}

	registry, collector, err := metrics.NewRegistry()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	app.Registry = registry
	app.Events = events.NewInMemoryEventStore(app.Logger)
	if err := app.Events.Subscribe(metrics.ObservedEvents, collector.EventHandler()); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to subscribe event metrics: %w", err)
	}

	app.Production = production.NewProductionServiceWithConfig(production.Dependencies{
		Materials: app.Materials,
		Recipes:   app.Recipes,
		Products:  app.Products,
		Ledger:    app.Ledger,
		Events:    app.Events,
		Metrics:   collector,
		Logger:    app.Logger,
	}, production.Config{MaxRetries: cfg.Allocation.MaxRetries})

	app.Inventory = inventory.NewInventoryService(inventory.Dependencies{
		Materials: app.Materials,
		Products:  app.Products,
		Ledger:    app.Ledger,
		Events:    app.Events,
		Logger:    app.Logger,
	}, cfg.Codes.Width)

	app.Purchasing = purchasing.NewPurchasingService(purchasing.Dependencies{
		Orders:    app.Orders,
		Materials: app.Materials,
		Receiver:  app.Inventory,
		Logger:    app.Logger,
	}, cfg.Codes.Width)

	if app.Ledger != nil {
		if err := app.Production.SyncLedger(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	return app, nil
}

func (a *App) openStores() error {
	switch a.Config.Database.Type {
	case "memory":
		a.Materials = memory.NewMaterialRepository(0)
		a.Products = memory.NewProductRepository(0)
		a.Recipes = memory.NewRecipeRepository()
		a.Orders = memory.NewPurchaseOrderRepository()
		return nil

	case "postgres", "sqlite":
		db, err := database.NewConnection(&a.Config.Database)
		if err != nil {
			return err
		}
		a.db = db
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		a.Materials = gormstore.NewGormMaterialRepository(db)
		a.Products = gormstore.NewGormProductRepository(db)
		a.Recipes = gormstore.NewGormRecipeRepository(db)
		a.Orders = gormstore.NewGormPurchaseOrderRepository(db)
		a.Logger.Debug("database opened", "type", a.Config.Database.Type)
		return nil

	default:
		return fmt.Errorf("unsupported database type: %s", a.Config.Database.Type)
	}
}

// Seed writes a catalog into the stores; existing records are overwritten.
// Recipes are validated against stored and catalog materials before
// anything is written.
func (a *App) Seed(ctx context.Context, catalog *entities.Catalog) error {
	recipes, err := a.validateCatalogRecipes(ctx, catalog)
	if err != nil {
		return err
	}

	if err := a.Materials.LoadMaterials(ctx, catalog.Materials); err != nil {
		return fmt.Errorf("failed to seed materials: %w", err)
	}
	if err := a.Products.LoadProducts(ctx, catalog.Products); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	for _, recipe := range recipes {
		if err := a.Recipes.ReplaceRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("failed to seed recipe of %s: %w", recipe.ProductID, err)
		}
	}

	a.Logger.Debug("catalog seeded",
		"materials", len(catalog.Materials),
		"products", len(catalog.Products),
		"recipes", len(catalog.Recipes))
	return nil
}

func (a *App) validateCatalogRecipes(ctx context.Context, catalog *entities.Catalog) ([]*entities.Recipe, error) {
	stored, err := a.Materials.GetAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	snapshot := entities.NewMaterialSnapshot(stored)
	for id, m := range entities.NewMaterialSnapshot(catalog.Materials) {
		snapshot[id] = m
	}

	engine := services.NewStockAllocationEngine()
	recipes := make([]*entities.Recipe, 0, len(catalog.Recipes))
	for _, recipe := range catalog.Recipes {
		valid, err := engine.ReplaceRecipe(recipe.ProductID, recipe.Lines, snapshot)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		recipes = append(recipes, valid)
	}
	return recipes, nil
}

// Close waits for event handlers and releases connections
func (a *App) Close() {
	if a.Events != nil {
		a.Events.Wait()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", "error", err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.Logger.Warn("failed to close database", "error", err)
		}
	}
}

// LoadCatalog reads a CSV directory or a YAML file
func LoadCatalog(path string) (*entities.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if info.IsDir() {
		return csv.NewLoader().LoadDirectory(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlcatalog.Load(path)
	default:
		return nil, fmt.Errorf("catalog %s: expected a CSV directory or a .yaml file", path)
	}
}
