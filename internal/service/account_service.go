// Package service provides business logic services for Sentinel Portal.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/pkg/crypto"
	"github.com/prn-tf/sentinel-portal/internal/repository"
)

// AccountService handles account store operations: credential verification,
// listing, creation, and password mutation.
type AccountService struct {
	accountRepo repository.AccountRepository
	logger      zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo repository.AccountRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger.With().Str("service", "account").Logger(),
	}
}

// Authenticate verifies credentials and returns the account.
// Unknown username and wrong password both return
// domain.ErrInvalidCredentials; the caller cannot tell which part was wrong.
// The digest comparison runs in constant time.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Log but don't expose whether the username exists.
			s.logger.Debug().Str("username", username).Msg("account not found during authentication")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to look up account")
		return nil, err
	}

	if !crypto.VerifyPassword(password, account.PasswordDigest) {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Str("username", account.Username).
		Msg("account authenticated")

	return account, nil
}

// List returns every account's public fields in insertion order (id
// ascending). Credential digests are never included.
func (s *AccountService) List(ctx context.Context) ([]domain.AccountSummary, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

// CreateAccountInput contains the data needed to create a new account.
type CreateAccountInput struct {
	Username      string
	Password      string
	IsAdmin       bool
	RequireChange bool
}

// Create creates a new account. The store assigns id and creation time and
// hashes the supplied plaintext. A username collision surfaces as
// domain.ErrAccountAlreadyExists, never a crash.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domain.NewDomainError(domain.ErrValidation, "username and password are required")
	}

	account := domain.NewAccount(input.Username, crypto.PasswordDigest(input.Password))
	account.IsAdmin = input.IsAdmin
	account.PasswordChangeRequired = input.RequireChange

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create account")
		return nil, err
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Str("username", account.Username).
		Bool("is_admin", account.IsAdmin).
		Bool("password_change_required", account.PasswordChangeRequired).
		Msg("account created")

	return account, nil
}

// ChangePassword hashes the new plaintext and atomically replaces the
// account's digest while clearing password_change_required. Returns
// domain.ErrAccountNotFound when no account has the given id; no partial
// state (digest updated but flag not cleared) is ever observable.
func (s *AccountService) ChangePassword(ctx context.Context, accountID int64, newPassword string) error {
	if err := s.accountRepo.UpdatePassword(ctx, accountID, crypto.PasswordDigest(newPassword)); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("account_id", accountID).Msg("failed to change password")
		return fmt.Errorf("change password: %w", err)
	}

	s.logger.Info().Int64("account_id", accountID).Msg("password changed")
	return nil
}
