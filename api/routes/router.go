package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orangegegege/equipment-manager/api/controllers"
	"github.com/orangegegege/equipment-manager/api/middleware"
	authsvc "github.com/orangegegege/equipment-manager/internal/auth"
	borrowsvc "github.com/orangegegege/equipment-manager/internal/borrow"
	cartsvc "github.com/orangegegege/equipment-manager/internal/cart"
	"github.com/orangegegege/equipment-manager/internal/inventory"
	"github.com/orangegegege/equipment-manager/internal/manifest"
	mediasvc "github.com/orangegegege/equipment-manager/internal/media"
	"github.com/orangegegege/equipment-manager/pkg/auth/session"
	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/db"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	"github.com/orangegegege/equipment-manager/pkg/logger"
	"github.com/orangegegege/equipment-manager/pkg/metrics"
	"github.com/orangegegege/equipment-manager/pkg/redis"
	"github.com/orangegegege/equipment-manager/pkg/storage/gcs"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth      authsvc.Service
	Inventory inventory.Service
	Cart      cartsvc.Service
	Borrow    borrowsvc.Service
	Manifest  *manifest.Service
	Media     mediasvc.Service
	Workflow  *metrics.WorkflowMetrics
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient *gcs.Client,
	sessions session.Checker,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.NewReadinessCheck("db", dbP),
			controllers.NewReadinessCheck("redis", redisClient),
			controllers.NewReadinessCheck("storage", gcsClient),
		))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(cfg.RateLimit, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Post("/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		r.Get("/items", controllers.ItemsList(svcs.Inventory, logg))
		r.Get("/items/{itemId}", controllers.ItemDetail(svcs.Inventory, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartSetQuantity(svcs.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Route("/borrow", func(r chi.Router) {
			r.Post("/", controllers.BorrowCommit(svcs.Borrow, logg))
			r.Post("/manifest.pdf", controllers.ManifestPDF(svcs.Manifest, svcs.Borrow, svcs.Workflow, logg))
			r.Post("/manifest.xlsx", controllers.ManifestXLSX(svcs.Manifest, svcs.Borrow, svcs.Workflow, logg))
		})

		r.Post("/records/{recordId}/return", controllers.RecordReturn(svcs.Borrow, logg))
		r.Get("/records", controllers.RecordsList(svcs.Borrow, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

		r.Post("/items", controllers.AdminItemCreate(svcs.Inventory, svcs.Media, logg))
		r.Patch("/items/{itemId}", controllers.AdminItemUpdate(svcs.Inventory, svcs.Media, logg))
		r.Delete("/items/{itemId}", controllers.AdminItemDelete(svcs.Inventory, svcs.Media, logg))
		r.Post("/items/{itemId}/override", controllers.AdminItemOverride(svcs.Inventory, logg))
		r.Post("/returns/bulk", controllers.ReturnsBulk(svcs.Borrow, logg))
	})

	return r
}
