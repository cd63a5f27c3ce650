// Package main populates the admin database with demo brands, products and
// orders. It goes through the service layer so every row passes the same
// validation as the HTTP API, and it can be run repeatedly: rows that
// already exist are looked up instead of inserted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/utafrali/storefront-admin/internal/cache"
	"github.com/utafrali/storefront-admin/internal/config"
	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/event"
	"github.com/utafrali/storefront-admin/internal/migrations"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/repository/postgres"
	"github.com/utafrali/storefront-admin/internal/service"
	storagemem "github.com/utafrali/storefront-admin/internal/storage/memory"
	pkgconfig "github.com/utafrali/storefront-admin/pkg/config"
	"github.com/utafrali/storefront-admin/pkg/database"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/logger"
)

type seedConfig struct {
	ProductsPerBrand int `env:"SEED_PRODUCTS_PER_BRAND" envDefault:"8"`
	Orders           int `env:"SEED_ORDERS" envDefault:"25"`
}

type brandDef struct {
	name string
	url  string
	hex  string
}

var brands = []brandDef{
	{name: "Northwind Outfitters", url: "https://northwind.example.com", hex: "#1f6feb"},
	{name: "Acme Corp", url: "https://acme.example.com", hex: "#d73a49"},
	{name: "Blue Harbor", url: "https://blueharbor.example.com", hex: "#0366d6"},
	{name: "Café Ümit", url: "https://cafe-umit.example.com", hex: "#6f42c1"},
	{name: "Summit Gear", url: "https://summit.example.com", hex: "#28a745"},
}

var adjectives = []string{"Classic", "Everyday", "Premium", "Compact", "Travel", "Signature"}
var nouns = []string{"Backpack", "Mug", "Notebook", "Jacket", "Lamp", "Headphones", "Bottle", "Scarf"}

// lifecycles are the status walks applied to seeded orders.
var lifecycles = [][]domain.OrderStatus{
	{},
	{domain.OrderStatusProcessing},
	{domain.OrderStatusProcessing, domain.OrderStatusCompleted},
	{domain.OrderStatusProcessing, domain.OrderStatusCompleted, domain.OrderStatusRefunded},
	{domain.OrderStatusCancelled},
	{domain.OrderStatusProcessing, domain.OrderStatusDecline},
	{domain.OrderStatusFailed},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	var seed seedConfig
	if err := pkgconfig.Load(&seed); err != nil {
		slog.Error("failed to load seed config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("storefront-admin-seed", cfg.LogLevel)
	if cfg.StorageDriver != config.StorageDriverPostgres {
		log.Error("seeding requires STORAGE_DRIVER=postgres")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, seed, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, seed seedConfig, log *slog.Logger) error {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	brandRepo := postgres.NewBrandRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	brandSvc := service.NewBrandService(brandRepo, cache.Noop{}, event.Noop{}, log)
	productSvc := service.NewProductService(productRepo, brandRepo, storagemem.NewPermissive("/assets"), cache.Noop{}, event.Noop{}, log)
	orderSvc := service.NewOrderService(postgres.NewOrderRepository(pool), productRepo, nil, nil, log)

	brandIDs, err := seedBrands(ctx, brandSvc, log)
	if err != nil {
		return err
	}
	productIDs, err := seedProducts(ctx, productSvc, brandIDs, seed.ProductsPerBrand, log)
	if err != nil {
		return err
	}
	if err := seedOrders(ctx, orderSvc, productIDs, seed.Orders, log); err != nil {
		return err
	}

	log.Info("seed complete",
		slog.Int("brands", len(brandIDs)),
		slog.Int("products", len(productIDs)),
		slog.Int("orders", seed.Orders),
	)
	return nil
}

func seedBrands(ctx context.Context, svc *service.BrandService, log *slog.Logger) ([]string, error) {
	ids := make([]string, 0, len(brands))
	for _, def := range brands {
		hex := def.hex
		brand, err := svc.CreateBrand(ctx, &service.CreateBrandInput{
			Name:        def.name,
			URL:         def.url,
			Description: def.name + " official storefront brand.",
			PrimaryHex:  &hex,
		})
		if errors.Is(err, apperrors.ErrDuplicateField) {
			existing, lookupErr := findBrand(ctx, svc, def.name)
			if lookupErr != nil {
				return nil, lookupErr
			}
			ids = append(ids, existing.ID)
			log.Debug("brand exists", slog.String("name", def.name))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create brand %q: %w", def.name, err)
		}
		ids = append(ids, brand.ID)
		log.Info("brand seeded", slog.String("name", brand.Name), slog.String("slug", brand.Slug))
	}
	return ids, nil
}

func findBrand(ctx context.Context, svc *service.BrandService, name string) (*domain.Brand, error) {
	found, _, err := svc.ListBrands(ctx, repository.BrandFilter{Search: &name, IncludeDeleted: true, Page: 1, PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("look up brand %q: %w", name, err)
	}
	for i := range found {
		if found[i].Name == name {
			return &found[i], nil
		}
	}
	return nil, fmt.Errorf("brand %q reported as duplicate but not found", name)
}

func seedProducts(ctx context.Context, svc *service.ProductService, brandIDs []string, perBrand int, log *slog.Logger) ([]string, error) {
	rng := rand.New(rand.NewSource(42)) // #nosec G404 -- deterministic demo data
	types := []string{string(domain.ProductTypeDeliverable), string(domain.ProductTypeDownloadable)}

	var ids []string
	for b, brandID := range brandIDs {
		for i := 0; i < perBrand; i++ {
			sku := fmt.Sprintf("SEED-%02d-%03d", b+1, i+1)
			name := fmt.Sprintf("%s %s %d", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))], b*perBrand+i+1)
			featured := rng.Intn(5) == 0

			product, err := svc.CreateProduct(ctx, &service.CreateProductInput{
				Name:        name,
				Description: "Demo product " + sku + ".",
				SKU:         sku,
				Price:       fmt.Sprintf("%d.%02d", 5+rng.Intn(495), rng.Intn(100)),
				Quantity:    rng.Intn(101),
				Type:        types[rng.Intn(len(types))],
				IsFeatured:  &featured,
				PublishedAt: time.Now().AddDate(0, 0, -rng.Intn(90)),
				Image:       "products/" + sku + ".jpg",
				BrandID:     brandID,
			})
			if errors.Is(err, apperrors.ErrDuplicateField) {
				log.Debug("product exists", slog.String("sku", sku))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("create product %s: %w", sku, err)
			}
			ids = append(ids, product.ID)
		}
	}
	log.Info("products seeded", slog.Int("count", len(ids)))
	return ids, nil
}

// seedOrders creates orders for newly seeded products and walks each one
// through a lifecycle so every status shows up in the admin listing.
func seedOrders(ctx context.Context, svc *service.OrderService, productIDs []string, count int, log *slog.Logger) error {
	if len(productIDs) == 0 {
		log.Info("no new products, skipping orders")
		return nil
	}
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- deterministic demo data

	for i := 0; i < count; i++ {
		picked := make([]string, 1+rng.Intn(3))
		for j := range picked {
			picked[j] = productIDs[rng.Intn(len(productIDs))]
		}
		order, err := svc.CreateOrder(ctx, &service.CreateOrderInput{ProductIDs: picked})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, status := range lifecycles[i%len(lifecycles)] {
			if _, err := svc.Transition(ctx, order.ID, status); err != nil {
				return fmt.Errorf("move order %s to %s: %w", order.ID, status, err)
			}
		}
	}
	log.Info("orders seeded", slog.Int("count", count))
	return nil
}
