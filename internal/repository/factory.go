// Package repository provides the data access layer for Sentinel Portal.
// This file contains a small factory describing the configured backend.
package repository

import (
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/config"
)

// Factory describes which account store backend configuration selects.
// The concrete constructors live in the sqlite and postgres packages to
// keep driver imports out of this package.
type Factory struct {
	cfg    config.DatabaseConfig
	logger zerolog.Logger
}

// NewFactory creates a new repository factory.
func NewFactory(cfg config.DatabaseConfig, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Driver returns the configured database driver.
func (f *Factory) Driver() string {
	return f.cfg.Driver
}

// IsEmbedded returns true if using embedded database.
func (f *Factory) IsEmbedded() bool {
	return f.cfg.IsEmbedded()
}
