package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/health"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/middleware"
)

// catalogMaxAge is how long clients may cache catalog responses, in seconds.
const catalogMaxAge = 300

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalog *service.CatalogService,
	sessions *service.CartSessions,
	orders *service.CustomOrderService,
	healthHandler *health.Handler,
	cors middleware.CORSConfig,
	orderLimit middleware.RateLimitConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cors))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Session)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	catalogHandler := NewCatalogHandler(catalog, logger)
	cartHandler := NewCartHandler(sessions, catalog, logger)
	orderHandler := NewCustomOrderHandler(orders, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/best-sellers", catalogHandler.BestSellers)
			r.Get("/new-arrivals", catalogHandler.NewArrivals)
			r.Get("/finder", catalogHandler.Finder)
			r.Get("/labels", catalogHandler.Labels)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(ContentTypeJSON)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{key}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{key}", cartHandler.RemoveItem)

			r.Put("/visibility", cartHandler.SetVisibility)
		})

		r.With(middleware.NoStore, middleware.RateLimit(orderLimit, logger)).
			Post("/custom-orders", orderHandler.Submit)
	})

	return r
}
