// Package repository provides the data access layer for Sentinel Portal.
package repository

import (
	"context"

	"github.com/prn-tf/sentinel-portal/internal/domain"
)

// AccountRepository defines storage operations for accounts.
// Implementations map driver-level failures to domain errors; callers never
// see raw driver errors.
type AccountRepository interface {
	// Create inserts a new account, assigning its ID and creation time.
	// Returns domain.ErrAccountAlreadyExists on a username collision.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by ID.
	// Returns domain.ErrAccountNotFound if no such account exists.
	GetByID(ctx context.Context, id int64) (*domain.Account, error)

	// GetByUsername retrieves an account by exact, case-sensitive username.
	// Returns domain.ErrAccountNotFound if no such account exists.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)

	// List returns every account's public fields, ordered by id ascending.
	// Credential digests are never included.
	List(ctx context.Context) ([]domain.AccountSummary, error)

	// UpdatePassword replaces the account's credential digest and clears
	// password_change_required in the same update. Returns
	// domain.ErrAccountNotFound when the update affects zero rows.
	UpdatePassword(ctx context.Context, id int64, newDigest string) error

	// ExistsByUsername checks if an account with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// Bootstrapper is implemented by stores that can initialize their own
// schema and seed accounts. Bootstrap must be idempotent: running it against
// an already-initialized store has no side effects beyond existence checks.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) error
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
