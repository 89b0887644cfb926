package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmfebriyanto/tokotenan-backend/api/controllers"
	"github.com/dmfebriyanto/tokotenan-backend/api/middleware"
	cartsvc "github.com/dmfebriyanto/tokotenan-backend/internal/cart"
	"github.com/dmfebriyanto/tokotenan-backend/internal/catalog"
	checkoutsvc "github.com/dmfebriyanto/tokotenan-backend/internal/checkout"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/config"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(catalogService, logg))
		r.Get("/{productID}", controllers.ProductDetail(catalogService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Session(logg))
		r.Get("/", controllers.CartFetch(cartService, logg))
		r.Post("/items", controllers.CartAddItem(cartService, logg))
		r.Post("/deal-items", controllers.CartAddDealItem(cartService, logg))
		r.Patch("/items/{lineID}", controllers.CartUpdateQuantity(cartService, logg))
		r.Delete("/items/{lineID}", controllers.CartRemoveItem(cartService, logg))
		r.Delete("/", controllers.CartClear(cartService, logg))
		r.Post("/revalidate", controllers.CartRevalidate(cartService, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.Session(logg))
		r.Post("/", controllers.CheckoutCommit(checkoutService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(catalogService, logg))
			r.Patch("/{productID}", controllers.AdminProductUpdate(catalogService, logg))
			r.Delete("/{productID}", controllers.AdminProductDelete(catalogService, logg))
		})
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", controllers.AdminDealList(catalogService, logg))
			r.Post("/", controllers.AdminDealCreate(catalogService, logg))
			r.Patch("/{dealID}", controllers.AdminDealUpdate(catalogService, logg))
			r.Patch("/{dealID}/status", controllers.AdminDealSetStatus(catalogService, logg))
			r.Delete("/{dealID}", controllers.AdminDealDelete(catalogService, logg))
		})
	})

	return r
}
