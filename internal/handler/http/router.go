package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/PosGo/internal/client"
	"github.com/utafrali/PosGo/internal/service"
	"github.com/utafrali/PosGo/pkg/health"
	"github.com/utafrali/PosGo/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	CartService      *service.CartService
	InventoryService *service.InventoryService
	CheckoutService  *service.CheckoutService
	BillingClient    *client.BillingClient
	HealthHandler    *health.Handler
	Logger           *slog.Logger
	CORS             middleware.CORSConfig
	PprofCIDRs       []string
}

// NewRouter creates a chi router with all terminal routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("pos-terminal"))
	r.Use(middleware.Tracing("pos-terminal"))
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, deps.PprofCIDRs, deps.Logger)

	cartHandler := NewCartHandler(deps.CartService, deps.Logger)
	inventoryHandler := NewInventoryHandler(deps.InventoryService, deps.Logger)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutService, deps.Logger)
	billingHandler := NewBillingHandler(deps.BillingClient, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Product reads serve from the snapshot; mutations proxy upstream.
		r.Route("/products", func(r chi.Router) {
			r.Get("/", inventoryHandler.ListProducts)
			r.Post("/", inventoryHandler.AddProduct)
			r.Post("/refresh", inventoryHandler.RefreshInventory)
			r.Get("/{pid}", inventoryHandler.GetProduct)
			r.Put("/{pid}", inventoryHandler.UpdateProduct)
		})

		// Cart and checkout are per-operator.
		r.Group(func(r chi.Router) {
			r.Use(OperatorIDFromHeader)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{pid}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{pid}", cartHandler.RemoveItem)
			})

			r.Post("/checkout", checkoutHandler.Checkout)
		})

		// Billing history and analysis pass through to the backend.
		r.Get("/billing/history", billingHandler.History)
		r.Get("/billing/{invoiceID}", billingHandler.Invoice)
		r.Get("/analysis", billingHandler.Analysis)
	})

	return r
}
