package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopease/shopease-backend/api/controllers"
	"github.com/shopease/shopease-backend/api/middleware"
	"github.com/shopease/shopease-backend/internal/addresses"
	"github.com/shopease/shopease-backend/internal/analytics"
	"github.com/shopease/shopease-backend/internal/auth"
	"github.com/shopease/shopease-backend/internal/cart"
	checkoutsvc "github.com/shopease/shopease-backend/internal/checkout"
	"github.com/shopease/shopease-backend/internal/delivery"
	"github.com/shopease/shopease-backend/internal/orders"
	"github.com/shopease/shopease-backend/internal/products"
	"github.com/shopease/shopease-backend/internal/settings"
	"github.com/shopease/shopease-backend/pkg/auth/session"
	"github.com/shopease/shopease-backend/pkg/config"
	"github.com/shopease/shopease-backend/pkg/db"
	"github.com/shopease/shopease-backend/pkg/logger"
	redisclient "github.com/shopease/shopease-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redisclient.Client
	SessionManager session.AccessSessionChecker
	Gatherer       prometheus.Gatherer

	AuthService      auth.Service
	Carts            *cart.Manager
	ProductService   products.Service
	CheckoutService  checkoutsvc.Service
	OrderService     orders.Service
	DeliveryService  delivery.Service
	SettingsService  settings.Service
	AddressService   addresses.Service
	AnalyticsService analytics.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, deps.Carts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, deps.Carts, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, deps.Carts, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).
			Get("/me", controllers.AuthMe(deps.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg))
		r.Get("/", controllers.ProductList(deps.ProductService, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.ProductService, logg))
	})

	r.Get("/api/v1/delivery/check", controllers.DeliveryCheck(deps.DeliveryService, logg))
	r.Post("/api/v1/delivery/check", controllers.DeliveryCheckBody(deps.DeliveryService, logg))
	r.Get("/api/v1/settings", controllers.SettingsList(deps.SettingsService, logg))

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.CartScope(logg))
		r.Get("/", controllers.CartFetch(deps.Carts, logg))
		r.Delete("/", controllers.CartClear(deps.Carts, logg))
		r.Post("/items", controllers.CartAdd(deps.Carts, deps.ProductService, logg))
		r.Patch("/items/{productId}", controllers.CartUpdateItem(deps.Carts, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Carts, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.CartScope(logg))
		r.Post("/", controllers.CheckoutBegin(deps.CheckoutService, logg))
		r.Get("/", controllers.CheckoutCurrent(deps.CheckoutService, logg))
		r.Post("/address", controllers.CheckoutAddress(deps.CheckoutService, logg))
		r.Post("/order", controllers.CheckoutCreateOrder(deps.CheckoutService, logg))
		r.Post("/verify", controllers.CheckoutVerify(deps.CheckoutService, logg))
		r.Post("/fail", controllers.CheckoutFail(deps.CheckoutService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Get("/", controllers.OrderHistory(deps.OrderService, logg))
		r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
	})

	r.Route("/api/v1/addresses", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Get("/", controllers.AddressList(deps.AddressService, logg))
		r.Post("/", controllers.AddressCreate(deps.AddressService, logg))
		r.Put("/{addressId}", controllers.AddressUpdate(deps.AddressService, logg))
		r.Delete("/{addressId}", controllers.AddressDelete(deps.AddressService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(deps.ProductService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.ProductService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.OrderService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderStatusUpdate(deps.OrderService, logg))
		})
		r.Route("/zones", func(r chi.Router) {
			r.Get("/", controllers.AdminZoneList(deps.DeliveryService, logg))
			r.Post("/", controllers.AdminZoneCreate(deps.DeliveryService, logg))
			r.Post("/bulk", controllers.AdminZoneBulkCreate(deps.DeliveryService, logg))
			r.Patch("/{zoneId}", controllers.AdminZoneSetActive(deps.DeliveryService, logg))
			r.Delete("/{zoneId}", controllers.AdminZoneDelete(deps.DeliveryService, logg))
		})
		r.Route("/settings", func(r chi.Router) {
			r.Put("/", controllers.AdminSettingUpsert(deps.SettingsService, logg))
			r.Delete("/{key}", controllers.AdminSettingDelete(deps.SettingsService, logg))
		})
		r.Get("/stats", controllers.AdminStats(deps.AnalyticsService, logg))
	})

	return r
}
