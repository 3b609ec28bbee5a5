package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paintqueue/paintqueue-backend/api/controllers"
	ordercontrollers "github.com/paintqueue/paintqueue-backend/api/controllers/orders"
	reportcontrollers "github.com/paintqueue/paintqueue-backend/api/controllers/reports"
	staffcontrollers "github.com/paintqueue/paintqueue-backend/api/controllers/staff"
	"github.com/paintqueue/paintqueue-backend/api/middleware"
	"github.com/paintqueue/paintqueue-backend/internal/orders"
	"github.com/paintqueue/paintqueue-backend/internal/reports"
	"github.com/paintqueue/paintqueue-backend/internal/staff"
	"github.com/paintqueue/paintqueue-backend/pkg/config"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/metrics"
	"github.com/paintqueue/paintqueue-backend/pkg/redis"
)

// Dependencies bundles what the router hands to controllers. DB and Redis are
// only used for readiness; Redis may be nil.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       *redis.Client
	Orders      orders.Service
	Staff       staff.Service
	Reports     reports.Service
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	readiness := map[string]controllers.Pinger{"database": deps.DB}
	var limiter *redis.Client
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
		limiter = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	lookupPolicy := middleware.NewRateLimitPolicy("employee_lookup", cfg.RateLimit.LookupWindow, cfg.RateLimit.LookupLimit).
		TrustProxies(cfg.RateLimit.TrustedProxies)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Get("/ping", controllers.Ping())

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.Orders, orders.ListViewActive, logg))
			r.Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/active", ordercontrollers.List(deps.Orders, orders.ListViewFloor, logg))
			r.Get("/archived", ordercontrollers.List(deps.Orders, orders.ListViewArchived, logg))
			r.Get("/complete", ordercontrollers.List(deps.Orders, orders.ListViewComplete, logg))
			r.Get("/admin", ordercontrollers.List(deps.Orders, orders.ListViewAwaitingAdmin, logg))
			r.Get("/deleted", ordercontrollers.ListDeleted(deps.Orders, logg))
			r.Get("/search", ordercontrollers.Search(deps.Orders, logg))
			r.Get("/report", reportcontrollers.Summary(deps.Reports, logg))
			r.Get("/check-id/{id}", ordercontrollers.CheckID(deps.Orders, logg))
			r.Put("/archive-old", ordercontrollers.ArchiveOld(deps.Orders, cfg.Orders.ArchiveCutoffDays, logg))
			r.Put("/mark-paid/{id}", ordercontrollers.MarkComplete(deps.Orders, logg))

			r.Get("/{id}", ordercontrollers.Detail(deps.Orders, logg))
			r.Get("/{id}/history", ordercontrollers.History(deps.Orders, logg))
			r.Put("/{id}", ordercontrollers.UpdateStatus(deps.Orders, logg))
			r.Put("/{id}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
			r.Delete("/{id}", ordercontrollers.Cancel(deps.Orders, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", staffcontrollers.List(deps.Staff, logg))
			r.Post("/", staffcontrollers.Create(deps.Staff, logg))
			r.Put("/{code}", staffcontrollers.Update(deps.Staff, logg))
			r.Delete("/{code}", staffcontrollers.Delete(deps.Staff, logg))
		})

		r.With(middleware.RateLimit(lookupPolicy, rateLimitStore(limiter), logg)).
			Get("/employees", staffcontrollers.Lookup(deps.Staff, logg))
		r.Get("/audit_logs", reportcontrollers.AuditLogs(deps.Reports, logg))
		r.Get("/active-orders-count", ordercontrollers.ActiveCount(deps.Orders, logg))
		r.Get("/check-duplicate", ordercontrollers.CheckDuplicate(deps.Orders, logg))
	})

	return r
}

// rateLimitStore keeps a nil *redis.Client from becoming a non-nil interface.
func rateLimitStore(c *redis.Client) middleware.RateLimitStore {
	if c == nil {
		return nil
	}
	return c
}
