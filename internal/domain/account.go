package domain

import (
	"time"
)

// Account represents a registered account in the portal.
// Accounts are never deleted, renamed, or merged.
type Account struct {
	// ID is the unique identifier for the account (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique username for login and display.
	// Matching is case-sensitive and exact. Immutable after creation.
	Username string `json:"username"`

	// PasswordDigest is the hex SHA-256 digest of the account password.
	// This should never be exposed in API responses.
	PasswordDigest string `json:"-"`

	// IsAdmin indicates whether the account has administrative privileges.
	// Admins can list accounts and create new ones.
	IsAdmin bool `json:"is_admin"`

	// CreatedAt is the timestamp when the account was created. Immutable.
	CreatedAt time.Time `json:"created_at"`

	// PasswordChangeRequired forces a password change before the account
	// reaches its normal authenticated view. Cleared exactly once when the
	// account successfully completes a password change.
	PasswordChangeRequired bool `json:"password_change_required"`
}

// NewAccount creates a new Account with default values.
func NewAccount(username, passwordDigest string) *Account {
	return &Account{
		Username:               username,
		PasswordDigest:         passwordDigest,
		IsAdmin:                false,
		CreatedAt:              time.Now().UTC(),
		PasswordChangeRequired: true,
	}
}

// Summary returns the public fields of the account, digest excluded.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:                     a.ID,
		Username:               a.Username,
		IsAdmin:                a.IsAdmin,
		CreatedAt:              a.CreatedAt,
		PasswordChangeRequired: a.PasswordChangeRequired,
	}
}

// AccountSummary is the listing view of an account. It carries every public
// field and never the credential digest.
type AccountSummary struct {
	ID                     int64     `json:"id"`
	Username               string    `json:"username"`
	IsAdmin                bool      `json:"is_admin"`
	CreatedAt              time.Time `json:"created_at"`
	PasswordChangeRequired bool      `json:"password_change_required"`
}
