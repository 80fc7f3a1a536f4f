// Package runtime assembles the configured application: configuration,
// logging, storage, services, middleware and the HTTP server lifecycle.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	app "github.com/fitmova/platform/internal/app"
	"github.com/fitmova/platform/internal/app/httpapi"
	"github.com/fitmova/platform/internal/app/storage/postgres"
	"github.com/fitmova/platform/internal/config"
	"github.com/fitmova/platform/internal/logging"
	"github.com/fitmova/platform/internal/metrics"
	"github.com/fitmova/platform/internal/middleware"
	"github.com/fitmova/platform/internal/platform/database"
	"github.com/fitmova/platform/internal/platform/migrations"
	"github.com/fitmova/platform/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	app    *app.Application
	server *http.Server
	db     *sql.DB
}

// NewApplication constructs the application from the loaded configuration.
// With a database DSN configured it runs migrations and uses PostgreSQL;
// without one it falls back to the in-memory stores.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithField("service", "fitmova")

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	core, err := app.NewWithOptions(stores, app.Options{
		PlansProviderURL:  cfg.Plans.ProviderURL,
		PlansProviderKey:  cfg.Plans.APIKey,
		PayoutResolverURL: cfg.Payout.ResolverURL,
		PayoutResolverKey: cfg.Payout.APIKey,
		CareerSchedule:    cfg.Career.Schedule,
	}, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}

	m := metrics.New("fitmova")
	handler, err := buildHandler(cfg, core, m)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSec) * time.Second,
	}

	return &Application{cfg: cfg, log: log, app: core, server: server, db: db}, nil
}

// App exposes the wired service layer, mainly for tests.
func (a *Application) App() *app.Application {
	return a.app
}

// Addr returns the configured listen address.
func (a *Application) Addr() string {
	return a.server.Addr
}

// Run starts the background services and the HTTP server, then blocks until
// the context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithFields(map[string]interface{}{"addr": a.server.Addr}).Info("HTTP server listening")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server, the background services and the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func buildStores(cfg *config.Config, log *logger.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Database.DSN == "" {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		return app.Stores{}, nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
	}

	store := postgres.New(db)
	return app.Stores{
		Members:     store,
		Commissions: store,
		Ledger:      store,
		Career:      store,
		Plans:       store,
	}, db, nil
}

func buildHandler(cfg *config.Config, core *app.Application, m *metrics.Metrics) (http.Handler, error) {
	weblog := logging.New("fitmova-http", cfg.Logging.Level, cfg.Logging.Format)

	handler := httpapi.NewHandler(core, m)

	if cfg.Auth.JWTSecret != "" {
		tokens, err := middleware.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("configure token manager: %w", err)
		}
		auth := middleware.NewAuthMiddleware(tokens, weblog, []string{
			"/healthz",
			"/metrics",
			"/members",
			"/webhooks/payments",
		})
		handler = auth.Handler(handler)
	} else {
		weblog.WithContext(context.Background()).Warn("JWT_SECRET not set; API authentication disabled")
	}

	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(int(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, weblog)
		handler = limiter.Handler(handler)
	}

	cors := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	handler = cors.Handler(handler)

	metricsMW := middleware.MetricsMiddleware("fitmova", m)
	handler = metricsMW(handler)

	tracing := middleware.NewTracingMiddleware(weblog)
	handler = tracing.Handler(handler)

	return handler, nil
}
