// Package session provides storage for ephemeral visitor sessions.
// For single-node deployments, an in-memory store is used.
// For multi-node deployments, a Redis-backed store can be used.
package session

import (
	"context"

	"github.com/prn-tf/sentinel-portal/internal/domain"
)

// Store defines the interface for session storage, keyed by the opaque
// session token. This abstraction allows switching between in-memory
// sessions (single-node) and Redis-backed sessions (multi-node) without
// changing business logic.
type Store interface {
	// Put stores a session under its token until the session's expiry.
	Put(ctx context.Context, s *domain.Session) error

	// Get retrieves a session by token.
	// Returns domain.ErrSessionNotFound if the token is unknown or the
	// session has expired.
	Get(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session by token. Deleting an unknown token is not
	// an error.
	Delete(ctx context.Context, token string) error
}
