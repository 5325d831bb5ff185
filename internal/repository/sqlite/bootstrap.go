package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/config"
	"github.com/prn-tf/sentinel-portal/internal/repository"
)

// Bootstrap initializes the SQLite account store: it runs the optional
// external init script against a brand-new database file, applies the
// embedded schema migration, and seeds the two reference accounts.
// Idempotent: running it twice leaves exactly one admin and one user.
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

// Bootstrap runs the initialization sequence.
func (b *Bootstrap) Bootstrap(ctx context.Context) error {
	// The external script runs verbatim, and only against a store that did
	// not exist before this process opened it.
	if b.db.Fresh() && b.cfg.InitScript != "" {
		if err := b.db.RunScript(ctx, b.cfg.InitScript); err != nil {
			return fmt.Errorf("bootstrap init script: %w", err)
		}
	}

	// Idempotent fallback: ensure the schema exists even without a script.
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
