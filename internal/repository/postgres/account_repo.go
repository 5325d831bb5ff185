package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/repository"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

// accountRepository implements repository.AccountRepository for PostgreSQL.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository.
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
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		account.Username,
		account.PasswordDigest,
		account.IsAdmin,
		account.CreatedAt,
		account.PasswordChangeRequired,
	).Scan(&account.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %q", domain.ErrAccountAlreadyExists, account.Username)
		}
		return fmt.Errorf("%w: failed to create account: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, username, password, is_admin, created_at, password_change_required
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByUsername retrieves an account by exact username.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `
		SELECT id, username, password, is_admin, created_at, password_change_required
		FROM accounts
		WHERE username = $1
	`
	return r.scanAccount(r.db.Pool.QueryRow(ctx, query, username))
}

// List returns every account's public fields in insertion order.
func (r *accountRepository) List(ctx context.Context) ([]domain.AccountSummary, error) {
	query := `
		SELECT id, username, is_admin, created_at, password_change_required
		FROM accounts
		ORDER BY id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list accounts: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var accounts []domain.AccountSummary
	for rows.Next() {
		var summary domain.AccountSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Username,
			&summary.IsAdmin,
			&summary.CreatedAt,
			&summary.PasswordChangeRequired,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan account: %v", domain.ErrStorageUnavailable, err)
		}
		accounts = append(accounts, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating accounts: %v", domain.ErrStorageUnavailable, err)
	}

	return accounts, nil
}

// UpdatePassword replaces the credential digest and clears the forced
// change flag in a single UPDATE.
func (r *accountRepository) UpdatePassword(ctx context.Context, id int64, newDigest string) error {
	query := `
		UPDATE accounts
		SET password = $1, password_change_required = FALSE
		WHERE id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, newDigest, id)
	if err != nil {
		return fmt.Errorf("%w: failed to update password: %v", domain.ErrStorageUnavailable, err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ExistsByUsername checks if an account with the given username exists.
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE username = $1`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check username existence: %v", domain.ErrStorageUnavailable, err)
	}
	return count > 0, nil
}

func (r *accountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordDigest,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.PasswordChangeRequired,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: failed to get account: %v", domain.ErrStorageUnavailable, err)
	}

	return account, nil
}

// isUniqueViolation checks if an error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
