package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanvelez/shopcore-backend/api/controllers"
	"github.com/jordanvelez/shopcore-backend/api/middleware"
	authsvc "github.com/jordanvelez/shopcore-backend/internal/auth"
	cartsvc "github.com/jordanvelez/shopcore-backend/internal/cart"
	ordersvc "github.com/jordanvelez/shopcore-backend/internal/orders"
	productsvc "github.com/jordanvelez/shopcore-backend/internal/products"
	"github.com/jordanvelez/shopcore-backend/pkg/auth/session"
	"github.com/jordanvelez/shopcore-backend/pkg/config"
	"github.com/jordanvelez/shopcore-backend/pkg/db"
	"github.com/jordanvelez/shopcore-backend/pkg/logger"
	"github.com/jordanvelez/shopcore-backend/pkg/metrics"
	"github.com/jordanvelez/shopcore-backend/pkg/redis"
)

// RouterParams bundles everything NewRouter needs to assemble the API surface.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	Registry       *prometheus.Registry
	AuthService    authsvc.Service
	ProductService productsvc.Service
	CartService    cartsvc.Service
	OrderService   ordersvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	registry := p.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
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
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.Register(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.Login(p.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(p.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, p.SessionChecker, logg)).Post("/logout", controllers.Logout(p.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.ProductService, logg))
		r.Get("/{id}", controllers.ProductGet(p.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/", controllers.ProductCreate(p.ProductService, logg))
			r.Patch("/{id}", controllers.ProductUpdate(p.ProductService, logg))
			r.Delete("/{id}", controllers.ProductDelete(p.ProductService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.CartService, logg))
			r.Post("/", controllers.CartGetOrCreate(p.CartService, logg))
			r.Post("/items", controllers.CartAddItem(p.CartService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(p.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(p.CartService, logg))
			r.Delete("/", controllers.CartClear(p.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(p.OrderService, logg))
			r.Get("/", controllers.OrderList(p.OrderService, logg))
			r.Get("/{id}", controllers.OrderGet(p.OrderService, logg))
			r.Post("/{id}/cancel", controllers.OrderCancel(p.OrderService, logg))
			r.Delete("/{id}", controllers.OrderDelete(p.OrderService, logg))
			r.With(middleware.RequireRole("admin", logg)).Patch("/{id}/status", controllers.OrderUpdateStatus(p.OrderService, logg))
		})

		r.Post("/payments", controllers.PaymentProcess(p.OrderService, logg))
	})

	return r
}
