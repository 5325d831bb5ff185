package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/pkg/crypto"
)

// Seed usernames. Both accounts are created with the forced password change
// flag set so the reference first-login flow applies to them.
const (
	SeedAdminUsername = "admin"
	SeedUserUsername  = "user"
)

// SeedAccounts ensures the two reference accounts exist: "admin" (admin
// role) and "user" (non-admin), each inserted only when no account with
// that username already exists. Safe to run any number of times.
func SeedAccounts(ctx context.Context, repo AccountRepository, logger zerolog.Logger, adminPassword, userPassword string) error {
	seeds := []struct {
		username string
		password string
		isAdmin  bool
	}{
		{SeedAdminUsername, adminPassword, true},
		{SeedUserUsername, userPassword, false},
	}

	for _, seed := range seeds {
		exists, err := repo.ExistsByUsername(ctx, seed.username)
		if err != nil {
			return fmt.Errorf("failed to check seed account %q: %w", seed.username, err)
		}
		if exists {
			continue
		}

		account := domain.NewAccount(seed.username, crypto.PasswordDigest(seed.password))
		account.IsAdmin = seed.isAdmin

		if err := repo.Create(ctx, account); err != nil {
			// A concurrent bootstrap may have inserted it first.
			if errors.Is(err, domain.ErrAccountAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to create seed account %q: %w", seed.username, err)
		}

		logger.Info().
			Str("username", account.Username).
			Bool("is_admin", account.IsAdmin).
			Msg("seed account created")
	}

	return nil
}
