package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gospend/internal/adapter/http"
	"github.com/iho/gospend/internal/adapter/http/handler"
	"github.com/iho/gospend/internal/adapter/http/middleware"
	"github.com/iho/gospend/internal/adapter/repository"
	"github.com/iho/gospend/internal/infrastructure/config"
	"github.com/iho/gospend/internal/infrastructure/logger"
	"github.com/iho/gospend/internal/infrastructure/metrics"
	"github.com/iho/gospend/internal/infrastructure/storage"
	"github.com/iho/gospend/internal/usecase"
)

const (
	limiterSweepInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	a, err := newApp(ctx, cfg, log, metrics.New())
	if err != nil {
		stop()
		log.Fatal().Err(err).Msg("failed to start")
	}

	err = a.serve(ctx)
	a.close()
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// app is the wired server: stores, use cases and the HTTP handler.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	storage *storage.Storage
	ledger  *usecase.LedgerUseCase
	limiter *middleware.RateLimiter
	handler http.Handler
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	ledgerStore := usecase.NewLedgerStore(store.Blobs, usecase.SystemClock{}, m, log)
	preferencesUC := usecase.NewPreferencesUseCase(ledgerStore)
	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerUseCaseConfig{
		Store:       ledgerStore,
		Preferences: preferencesUC,
		IDGen:       repository.NewULIDGenerator(),
		Confirmer:   middleware.ContextConfirmer{},
		Metrics:     m,
		Location:    loc,
		Logger:      log,
	})

	if err := ledgerUC.Open(ctx); err != nil {
		// The ledger is loaded either way; only the catch-up spawn was lost.
		log.Warn().Err(err).Msg("failed to persist recurring expenses on startup")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ExpenseHandler:     handler.NewExpenseHandler(ledgerUC, loc),
		ReportHandler:      handler.NewReportHandler(ledgerUC, preferencesUC),
		DataHandler:        handler.NewDataHandler(ledgerUC),
		PreferencesHandler: handler.NewPreferencesHandler(preferencesUC),
		HealthHandler:      handler.NewHealthHandler(store.Blobs, store.Backend),
		IdempotencyStore:   store.Idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        limiter,
		Metrics:            m,
		Logger:             log,
	})

	return &app{
		cfg:     cfg,
		logger:  log,
		storage: store,
		ledger:  ledgerUC,
		limiter: limiter,
		handler: router,
	}, nil
}

func (a *app) close() {
	a.storage.Close()
}

// serve runs the HTTP server and the background loops until ctx is done,
// then shuts the server down gracefully.
func (a *app) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", a.cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  a.cfg.HTTPReadTimeout,
		WriteTimeout: a.cfg.HTTPWriteTimeout,
		IdleTimeout:  a.cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("port", a.cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.every(gctx, a.cfg.RecurrenceInterval, a.runRecurrence)
		return nil
	})

	if a.limiter != nil {
		g.Go(func() error {
			a.every(gctx, limiterSweepInterval, a.sweepLimiter)
			return nil
		})
	}

	return g.Wait()
}

// every calls fn on each tick of interval until ctx is done.
func (a *app) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (a *app) runRecurrence(ctx context.Context) {
	spawned, err := a.ledger.RunRecurrence(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("scheduled recurrence run failed")
		return
	}
	a.logger.Debug().Int("spawned", len(spawned)).Msg("scheduled recurrence run")
}

func (a *app) sweepLimiter(context.Context) {
	if n := a.limiter.Sweep(limiterMaxIdle); n > 0 {
		a.logger.Debug().Int("evicted", n).Msg("rate limiter swept")
	}
}
