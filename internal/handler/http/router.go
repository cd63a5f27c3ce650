package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront-admin/internal/service"
	"github.com/utafrali/storefront-admin/pkg/health"
	"github.com/utafrali/storefront-admin/pkg/middleware"
)

// ServiceName labels metrics and spans produced by the HTTP layer.
const ServiceName = "storefront-admin"

// Services groups the application services the router exposes.
type Services struct {
	Brands   *service.BrandService
	Products *service.ProductService
	Orders   *service.OrderService
}

// NewRouter creates a chi router with all admin routes registered. Request
// metrics are registered on reg and served from /metrics.
func NewRouter(
	svc Services,
	healthHandler *health.Handler,
	reg *prometheus.Registry,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.NewHTTPMetrics(reg, ServiceName).Middleware)
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	brandHandler := NewBrandHandler(svc.Brands, logger)
	productHandler := NewProductHandler(svc.Products, logger)
	orderHandler := NewOrderHandler(svc.Orders, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", brandHandler.ListBrands)
			r.Post("/", brandHandler.CreateBrand)
			r.Post("/validate", brandHandler.ValidateBrand)
			r.Post("/bulk-delete", brandHandler.BulkDeleteBrands)
			r.Get("/{id}", brandHandler.GetBrand)
			r.Put("/{id}", brandHandler.UpdateBrand)
			r.Delete("/{id}", brandHandler.DeleteBrand)
		})

		// {id} also accepts a slug on GET.
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Post("/validate", productHandler.ValidateProduct)
			r.Post("/bulk-delete", productHandler.BulkDeleteProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Put("/{id}/status", orderHandler.UpdateOrderStatus)
			r.Get("/{id}/history", orderHandler.GetOrderHistory)
		})

		r.Get("/order-statuses", orderHandler.ListOrderStatuses)
	})

	return r
}
