package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/session"
)

// MetricsRecorder receives portal activity counts. Implemented by the
// metrics package; a nil-safe no-op is used when metrics are disabled.
type MetricsRecorder interface {
	RecordLogin(success bool)
	RecordPasswordChange(success bool)
	RecordAccountCreated()
}

// nopMetrics discards all recordings.
type nopMetrics struct{}

func (nopMetrics) RecordLogin(bool)          {}
func (nopMetrics) RecordPasswordChange(bool) {}
func (nopMetrics) RecordAccountCreated()     {}

// PortalService is the session controller: it holds per-visitor session
// state keyed by an opaque token and routes each visitor to one of four
// views. All persistence is delegated to the AccountService; the portal
// never touches storage directly.
type PortalService struct {
	accounts   *AccountService
	sessions   session.Store
	sessionTTL time.Duration
	metrics    MetricsRecorder
	logger     zerolog.Logger
}

// NewPortalService creates a new PortalService. A nil recorder disables
// metrics.
func NewPortalService(accounts *AccountService, sessions session.Store, sessionTTL time.Duration, recorder MetricsRecorder, logger zerolog.Logger) *PortalService {
	if recorder == nil {
		recorder = nopMetrics{}
	}
	return &PortalService{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    recorder,
		logger:     logger.With().Str("service", "portal").Logger(),
	}
}

// LoginInput contains submitted credentials.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput contains the minted session and the view it routes to.
type LoginOutput struct {
	Session *domain.Session
	View    domain.View
}

// Login authenticates the visitor. On failure the visitor stays anonymous
// and no session state changes. On success the session is populated in full
// from the account and routed to the forced password change view when the
// account's flag is set.
func (s *PortalService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	account, err := s.accounts.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		s.metrics.RecordLogin(false)
		return nil, err
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		Token:              uuid.NewString(),
		AccountID:          account.ID,
		Username:           account.Username,
		IsAdmin:            account.IsAdmin,
		MustChangePassword: account.PasswordChangeRequired,
		CreatedAt:          now,
		ExpiresAt:          now.Add(s.sessionTTL),
	}

	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.Error().Err(err).Msg("failed to store session")
		return nil, err
	}

	s.metrics.RecordLogin(true)
	s.logger.Info().
		Int64("account_id", sess.AccountID).
		Str("username", sess.Username).
		Bool("must_change_password", sess.MustChangePassword).
		Msg("visitor logged in")

	return &LoginOutput{
		Session: sess,
		View:    domain.ViewFor(sess),
	}, nil
}

// ChangePasswordInput contains a submitted password change.
type ChangePasswordInput struct {
	Token       string
	NewPassword string
	Confirm     string
}

// ChangePasswordOutput contains the view the visitor routes to after a
// successful change.
type ChangePasswordOutput struct {
	View domain.View
}

// ChangePassword validates and applies a password change for the session's
// account. An empty new password or a new/confirmation mismatch fails
// before any store call. On success the session's must-change flag clears
// without otherwise altering the session; on failure state is unchanged.
func (s *PortalService) ChangePassword(ctx context.Context, input ChangePasswordInput) (*ChangePasswordOutput, error) {
	sess, err := s.sessions.Get(ctx, input.Token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	// Validation happens before any store call.
	if input.NewPassword == "" {
		s.metrics.RecordPasswordChange(false)
		return nil, domain.NewDomainError(domain.ErrValidation, "password cannot be empty")
	}
	if input.NewPassword != input.Confirm {
		s.metrics.RecordPasswordChange(false)
		return nil, domain.NewDomainError(domain.ErrValidation, "passwords do not match")
	}

	if err := s.accounts.ChangePassword(ctx, sess.AccountID, input.NewPassword); err != nil {
		s.metrics.RecordPasswordChange(false)
		return nil, err
	}

	// Clear the flag independently; the rest of the session is untouched.
	sess.MustChangePassword = false
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.Error().Err(err).Msg("failed to update session after password change")
		return nil, err
	}

	s.metrics.RecordPasswordChange(true)
	s.logger.Info().Int64("account_id", sess.AccountID).Msg("forced password change completed")

	return &ChangePasswordOutput{View: domain.ViewFor(sess)}, nil
}

// CreateAccountPortalInput contains an admin's create-account submission.
type CreateAccountPortalInput struct {
	Token         string
	Username      string
	Password      string
	IsAdmin       bool
	RequireChange bool
}

// CreateAccount creates a new account on behalf of an admin session.
// Failure (duplicate username or missing fields) makes no state change.
func (s *PortalService) CreateAccount(ctx context.Context, input CreateAccountPortalInput) (*domain.Account, error) {
	sess, err := s.adminSession(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, CreateAccountInput{
		Username:      input.Username,
		Password:      input.Password,
		IsAdmin:       input.IsAdmin,
		RequireChange: input.RequireChange,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAccountCreated()
	s.logger.Info().
		Str("created_by", sess.Username).
		Str("username", account.Username).
		Msg("account created via portal")

	return account, nil
}

// ListAccounts returns the account listing for an admin session.
func (s *PortalService) ListAccounts(ctx context.Context, token string) ([]domain.AccountSummary, error) {
	if _, err := s.adminSession(ctx, token); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx)
}

// Logout clears the session entirely and unconditionally.
func (s *PortalService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return err
	}
	return nil
}

// ViewOutput describes the visitor's current routing state. The
// presentation layer re-queries this after every mutation.
type ViewOutput struct {
	View           domain.View
	AvailableViews []domain.View
	Session        *domain.Session
}

// CurrentView routes the visitor based on session state. An unknown or
// expired token is anonymous.
func (s *PortalService) CurrentView(ctx context.Context, token string) (*ViewOutput, error) {
	if token == "" {
		return &ViewOutput{View: domain.ViewLogin, AvailableViews: domain.AvailableViews(nil)}, nil
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return &ViewOutput{View: domain.ViewLogin, AvailableViews: domain.AvailableViews(nil)}, nil
		}
		return nil, err
	}

	return &ViewOutput{
		View:           domain.ViewFor(sess),
		AvailableViews: domain.AvailableViews(sess),
		Session:        sess,
	}, nil
}

// Session returns the live session for a token, or ErrSessionNotFound.
func (s *PortalService) Session(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Get(ctx, token)
}

// adminSession resolves the token and requires an active admin session
// that is not parked in the forced password change state.
func (s *PortalService) adminSession(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if sess.MustChangePassword {
		// The forced-change view offers no other action.
		return nil, domain.ErrAccessDenied
	}
	if !sess.IsAdmin {
		return nil, domain.ErrAccessDenied
	}
	return sess, nil
}
