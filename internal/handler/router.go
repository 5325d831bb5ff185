package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DatabaseChecker is the health probe for the account store.
type DatabaseChecker interface {
	Health(ctx context.Context) error
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	PortalHandler  *PortalHandler
	MetricsHandler http.Handler
	MetricsPath    string
	Middleware     []func(http.Handler) http.Handler
	Database       DatabaseChecker
	Logger         zerolog.Logger
}

// NewRouter builds the portal's HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger.With().Str("component", "router").Logger()

	r := chi.NewRouter()
	r.Use(Recoverer(logger))
	r.Use(RequestLogger(logger))
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", handleHealth(cfg.Database))

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.MetricsHandler)
	}

	cfg.PortalHandler.RegisterRoutes(r)

	return r
}

// handleHealth reports process and store health.
func handleHealth(db DatabaseChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
