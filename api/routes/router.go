package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalogcart/api/controllers"
	"github.com/angelmondragon/catalogcart/api/middleware"
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/pkg/config"
	"github.com/angelmondragon/catalogcart/pkg/logger"
	"github.com/angelmondragon/catalogcart/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cat *catalog.Catalog,
	sessions controllers.SessionProvider,
	storefrontMetrics *metrics.StorefrontMetrics,
	gatherer prometheus.Gatherer,
	readiness map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/categories", controllers.CatalogCategories(cat, logg))
		r.Get("/products", controllers.CatalogProducts(cat, storefrontMetrics, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			CookieTTL:  cfg.Session.CookieTTL,
			Secure:     cfg.App.IsProd(),
		}, logg))

		r.Route("/api/v1/storefront", func(r chi.Router) {
			r.Get("/", controllers.StorefrontView(sessions, logg))
			r.Post("/categories/{categoryId}/select", controllers.StorefrontSelectCategory(sessions, logg))
			r.Post("/categories/{categoryId}/toggle", controllers.StorefrontToggleCategory(sessions, logg))
			r.Delete("/selection", controllers.StorefrontClearSelection(sessions, logg))
			r.Put("/filters", controllers.StorefrontUpdateFilters(sessions, logg))
		})

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(sessions, logg))
			r.Post("/items/{productId}", controllers.CartAddItem(sessions, logg))
			r.Post("/items/{productId}/increment", controllers.CartIncrementItem(sessions, logg))
			r.Post("/items/{productId}/decrement", controllers.CartDecrementItem(sessions, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(sessions, logg))
			r.Post("/checkout", controllers.CartCheckout(sessions, logg))
			r.Post("/panel/toggle", controllers.CartTogglePanel(sessions, logg))
			r.Post("/panel/close", controllers.CartClosePanel(sessions, logg))
		})
	})

	return r
}
