// Package main is the entry point for the Sentinel portal server.
// Sentinel Portal is a username/password login portal with role-gated views
// and a forced first-login password change.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/config"
	"github.com/prn-tf/sentinel-portal/internal/handler"
	"github.com/prn-tf/sentinel-portal/internal/metrics"
	"github.com/prn-tf/sentinel-portal/internal/repository"
	"github.com/prn-tf/sentinel-portal/internal/repository/postgres"
	"github.com/prn-tf/sentinel-portal/internal/repository/sqlite"
	"github.com/prn-tf/sentinel-portal/internal/service"
	"github.com/prn-tf/sentinel-portal/internal/session"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Sentinel portal server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Account store
	var (
		accountRepo repository.AccountRepository
		bootstrap   repository.Bootstrapper
		dbHealth    repository.DatabaseHealth
	)

	factory := repository.NewFactory(cfg.Database, logger)
	logger.Info().
		Str("driver", factory.Driver()).
		Bool("embedded", factory.IsEmbedded()).
		Msg("selected account store backend")

	switch factory.Driver() {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		accountRepo = postgres.NewAccountRepository(db)
		bootstrap = postgres.NewBootstrap(db, accountRepo, cfg.Bootstrap, logger)
		dbHealth = db
	default:
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		sqliteCfg.JournalMode = cfg.Database.JournalMode
		sqliteCfg.BusyTimeout = cfg.Database.BusyTimeout
		sqliteCfg.CacheSize = cfg.Database.CacheSize
		sqliteCfg.SynchronousMode = cfg.Database.SynchronousMode

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		accountRepo = sqlite.NewAccountRepository(db)
		bootstrap = sqlite.NewBootstrap(db, accountRepo, cfg.Bootstrap, logger)
		dbHealth = db
	}

	// Schema and seed accounts; idempotent against an initialized store.
	if err := bootstrap.Bootstrap(ctx); err != nil {
		return err
	}

	// Session store
	var sessionStore session.Store
	if cfg.Redis.Enabled {
		redisStore, err := session.NewRedisStore(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		sessionStore = redisStore
	} else {
		memStore := session.NewMemoryStore()
		defer memStore.Stop()
		sessionStore = memStore
	}

	// Metrics
	var (
		collector      *metrics.Collector
		metricsHandler http.Handler
		middleware     []func(http.Handler) http.Handler
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		collector = metrics.NewCollector(registry)
		metricsHandler = metrics.Handler(registry)
		middleware = append(middleware, collector.Middleware)
	}

	// Services
	accountService := service.NewAccountService(accountRepo, logger)
	var recorder service.MetricsRecorder
	if collector != nil {
		recorder = collector
	}
	portalService := service.NewPortalService(accountService, sessionStore, cfg.Session.TTL, recorder, logger)

	// HTTP
	portalHandler := handler.NewPortalHandler(handler.PortalConfig{
		Portal:     portalService,
		CookieName: cfg.Session.CookieName,
		Logger:     logger,
	})

	router := handler.NewRouter(handler.RouterConfig{
		PortalHandler:  portalHandler,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		Middleware:     middleware,
		Database:       dbHealth,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newLogger builds the process logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(out)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
