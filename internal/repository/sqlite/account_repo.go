package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/repository"
)

// accountRepository implements repository.AccountRepository for SQLite.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(db *DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO accounts (username, password, is_admin, created_at, password_change_required)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		account.Username,
		account.PasswordDigest,
		boolToInt(account.IsAdmin),
		account.CreatedAt.Format(time.RFC3339),
		boolToInt(account.PasswordChangeRequired),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %q", domain.ErrAccountAlreadyExists, account.Username)
		}
		return fmt.Errorf("%w: failed to create account: %v", domain.ErrStorageUnavailable, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: failed to get last insert ID: %v", domain.ErrStorageUnavailable, err)
	}
	account.ID = id

	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, username, password, is_admin, created_at, password_change_required
		FROM accounts
		WHERE id = ?
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername retrieves an account by exact username.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `
		SELECT id, username, password, is_admin, created_at, password_change_required
		FROM accounts
		WHERE username = ?
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, username))
}

// List returns every account's public fields in insertion order.
func (r *accountRepository) List(ctx context.Context) ([]domain.AccountSummary, error) {
	query := `
		SELECT id, username, is_admin, created_at, password_change_required
		FROM accounts
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list accounts: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var accounts []domain.AccountSummary
	for rows.Next() {
		var summary domain.AccountSummary
		var isAdmin, changeRequired int
		var createdAt string

		err := rows.Scan(
			&summary.ID,
			&summary.Username,
			&isAdmin,
			&createdAt,
			&changeRequired,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan account: %v", domain.ErrStorageUnavailable, err)
		}

		summary.IsAdmin = isAdmin != 0
		summary.PasswordChangeRequired = changeRequired != 0
		summary.CreatedAt = parseTimestamp(createdAt)

		accounts = append(accounts, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating accounts: %v", domain.ErrStorageUnavailable, err)
	}

	return accounts, nil
}

// UpdatePassword replaces the credential digest and clears the forced
// change flag in a single UPDATE, so no partial state is observable.
func (r *accountRepository) UpdatePassword(ctx context.Context, id int64, newDigest string) error {
	query := `
		UPDATE accounts
		SET password = ?, password_change_required = 0
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, newDigest, id)
	if err != nil {
		return fmt.Errorf("%w: failed to update password: %v", domain.ErrStorageUnavailable, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ExistsByUsername checks if an account with the given username exists.
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check username existence: %v", domain.ErrStorageUnavailable, err)
	}
	return count > 0, nil
}

// rowScanner abstracts sql.Row for single-account scans.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *accountRepository) scanAccount(row rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	var isAdmin, changeRequired int
	var createdAt string

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordDigest,
		&isAdmin,
		&createdAt,
		&changeRequired,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: failed to get account: %v", domain.ErrStorageUnavailable, err)
	}

	account.IsAdmin = isAdmin != 0
	account.PasswordChangeRequired = changeRequired != 0
	account.CreatedAt = parseTimestamp(createdAt)

	return account, nil
}

// parseTimestamp handles both our RFC3339 inserts and the SQLite
// CURRENT_TIMESTAMP format an external init script may have used.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// boolToInt converts a boolean to an integer (SQLite doesn't have native boolean).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
