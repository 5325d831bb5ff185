package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/config"
	"github.com/prn-tf/sentinel-portal/internal/repository"
)

// Bootstrap initializes the PostgreSQL account store: schema plus seed
// accounts. The external init script is a SQLite-file concept and does not
// apply here.
type Bootstrap struct {
	db     *DB
	repo   repository.AccountRepository
	cfg    config.BootstrapConfig
	logger zerolog.Logger
}

// NewBootstrap creates a Bootstrap for the given store.
func NewBootstrap(db *DB, repo repository.AccountRepository, cfg config.BootstrapConfig, logger zerolog.Logger) *Bootstrap {
	return &Bootstrap{
		db:     db,
		repo:   repo,
		cfg:    cfg,
		logger: logger.With().Str("component", "bootstrap").Logger(),
	}
}

// Bootstrap runs the initialization sequence. Idempotent.
func (b *Bootstrap) Bootstrap(ctx context.Context) error {
	if err := b.db.Migrate(ctx); err != nil {
		return fmt.Errorf("bootstrap migrate: %w", err)
	}

	if err := repository.SeedAccounts(ctx, b.repo, b.logger, b.cfg.AdminPassword, b.cfg.UserPassword); err != nil {
		return fmt.Errorf("bootstrap seed: %w", err)
	}

	return nil
}

// Ensure Bootstrap implements repository.Bootstrapper.
var _ repository.Bootstrapper = (*Bootstrap)(nil)
