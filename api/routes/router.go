package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platedrop/ordercore/api/controllers"
	"github.com/platedrop/ordercore/api/middleware"
	"github.com/platedrop/ordercore/internal/cart"
	checkoutsvc "github.com/platedrop/ordercore/internal/checkout"
	"github.com/platedrop/ordercore/internal/pricing"
	"github.com/platedrop/ordercore/pkg/auth"
	"github.com/platedrop/ordercore/pkg/config"
	"github.com/platedrop/ordercore/pkg/logger"
)

// NewRouter assembles the console HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cartDB controllers.Pinger,
	cache controllers.Pinger,
	cartStore *cart.Store,
	calculator *pricing.Calculator,
	checkoutService *checkoutsvc.Service,
	orderService controllers.OrderService,
	driverOrderService controllers.DriverOrderService,
	readyFeed controllers.ReadyFeedService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, cartDB, cache))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartStore, logg))
			r.Delete("/", controllers.CartClear(cartStore, logg))
			r.Get("/quote", controllers.CartQuote(cartStore, calculator, logg))
			r.Post("/items", controllers.CartAddItem(cartStore, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(cartStore, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartStore, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/tracking", controllers.OrderTracking(orderService, logg))
			r.Post("/cancel", controllers.OrderCancel(orderService, logg))
		})

		r.Route("/driver", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleDriver, logg))
			r.Get("/ready-orders", controllers.DriverReadyOrders(readyFeed, logg))
			r.Post("/orders/{orderId}/picked-up", controllers.DriverMarkPickedUp(driverOrderService, logg))
			r.Post("/orders/{orderId}/delivered", controllers.DriverMarkDelivered(driverOrderService, logg))
		})
	})

	return r
}
