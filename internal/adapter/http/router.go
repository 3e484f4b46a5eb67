package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gospend/internal/adapter/http/handler"
	"github.com/iho/gospend/internal/adapter/http/middleware"
	"github.com/iho/gospend/internal/infrastructure/metrics"
	"github.com/iho/gospend/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ExpenseHandler     *handler.ExpenseHandler
	ReportHandler      *handler.ReportHandler
	DataHandler        *handler.DataHandler
	PreferencesHandler *handler.PreferencesHandler
	HealthHandler      *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Confirmation)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", cfg.ExpenseHandler.List)
			r.Post("/", cfg.ExpenseHandler.Create)
			r.Delete("/", cfg.ExpenseHandler.Clear)
			r.Get("/{id}", cfg.ExpenseHandler.Get)
			r.Patch("/{id}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		// Reports
		r.Get("/stats", cfg.ReportHandler.Stats)
		r.Get("/budget", cfg.ReportHandler.Budget)

		// Preferences
		r.Get("/preferences", cfg.PreferencesHandler.Get)
		r.Put("/preferences", cfg.PreferencesHandler.Update)

		// Recurrence
		r.Post("/recurrence/run", cfg.DataHandler.RunRecurrence)
		r.Get("/recurrence/upcoming", cfg.ReportHandler.Upcoming)

		// Interchange
		r.Get("/export/csv", cfg.DataHandler.ExportCSV)
		r.Get("/export/json", cfg.DataHandler.ExportJSON)
		r.Post("/import", cfg.DataHandler.Import)
		r.Delete("/data", cfg.DataHandler.DeleteAll)
	})

	return r
}
