package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/session"
)

// countingMetrics records calls for assertion.
type countingMetrics struct {
	loginOK, loginFail   int
	changeOK, changeFail int
	created              int
}

func (m *countingMetrics) RecordLogin(success bool) {
	if success {
		m.loginOK++
	} else {
		m.loginFail++
	}
}

func (m *countingMetrics) RecordPasswordChange(success bool) {
	if success {
		m.changeOK++
	} else {
		m.changeFail++
	}
}

func (m *countingMetrics) RecordAccountCreated() { m.created++ }

func newTestPortal(t *testing.T, repo *MockAccountRepository) (*PortalService, *session.MemoryStore, *countingMetrics) {
	t.Helper()
	store := session.NewMemoryStore()
	t.Cleanup(store.Stop)
	metrics := &countingMetrics{}
	accounts := NewAccountService(repo, zerolog.Nop())
	portal := NewPortalService(accounts, store, time.Hour, metrics, zerolog.Nop())
	return portal, store, metrics
}

func TestPortalService_Login(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantView domain.View
		wantErr  error
	}{
		{
			name:     "regular account routes to user view",
			username: "alice",
			password: "alicepass",
			wantView: domain.ViewUser,
		},
		{
			name:     "admin account routes to admin view",
			username: "root",
			password: "rootpass",
			wantView: domain.ViewAdmin,
		},
		{
			name:     "forced change routes to change password view",
			username: "fresh",
			password: "freshpass",
			wantView: domain.ViewChangePassword,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "nope",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			username: "ghost",
			password: "nope",
			wantErr:  domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockAccountRepository()
			repo.seedAccount("alice", "alicepass", false, false)
			repo.seedAccount("root", "rootpass", true, false)
			repo.seedAccount("fresh", "freshpass", false, true)
			portal, store, _ := newTestPortal(t, repo)

			out, err := portal.Login(context.Background(), LoginInput{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// Failed login leaves no session behind.
				require.Zero(t, store.Len())
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantView, out.View)
			require.NotEmpty(t, out.Session.Token)
			require.Equal(t, tt.username, out.Session.Username)

			// The session is retrievable under its token.
			sess, err := portal.Session(context.Background(), out.Session.Token)
			require.NoError(t, err)
			require.Equal(t, out.Session.AccountID, sess.AccountID)
		})
	}
}

func TestPortalService_Login_DistinctTokens(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("alice", "alicepass", false, false)
	portal, _, _ := newTestPortal(t, repo)
	ctx := context.Background()

	first, err := portal.Login(ctx, LoginInput{Username: "alice", Password: "alicepass"})
	require.NoError(t, err)
	second, err := portal.Login(ctx, LoginInput{Username: "alice", Password: "alicepass"})
	require.NoError(t, err)

	require.NotEqual(t, first.Session.Token, second.Session.Token)
}

func TestPortalService_ChangePassword(t *testing.T) {
	tests := []struct {
		name        string
		newPassword string
		confirm     string
		wantErr     error
	}{
		{
			name:        "success",
			newPassword: "newpass123",
			confirm:     "newpass123",
		},
		{
			name:        "empty password",
			newPassword: "",
			confirm:     "",
			wantErr:     domain.ErrValidation,
		},
		{
			name:        "mismatch",
			newPassword: "newpass123",
			confirm:     "different",
			wantErr:     domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockAccountRepository()
			account := repo.seedAccount("fresh", "freshpass", false, true)
			portal, _, _ := newTestPortal(t, repo)
			ctx := context.Background()

			login, err := portal.Login(ctx, LoginInput{Username: "fresh", Password: "freshpass"})
			require.NoError(t, err)
			require.Equal(t, domain.ViewChangePassword, login.View)

			out, err := portal.ChangePassword(ctx, ChangePasswordInput{
				Token:       login.Session.Token,
				NewPassword: tt.newPassword,
				Confirm:     tt.confirm,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				// No state changed: session still parked on the change view
				// and the old password still works.
				view, err := portal.CurrentView(ctx, login.Session.Token)
				require.NoError(t, err)
				require.Equal(t, domain.ViewChangePassword, view.View)

				got, err := repo.GetByID(ctx, account.ID)
				require.NoError(t, err)
				require.True(t, got.PasswordChangeRequired)
				return
			}

			require.NoError(t, err)
			require.Equal(t, domain.ViewUser, out.View)

			// The session survives the change with its flag cleared.
			sess, err := portal.Session(ctx, login.Session.Token)
			require.NoError(t, err)
			require.False(t, sess.MustChangePassword)
			require.Equal(t, account.ID, sess.AccountID)
		})
	}
}

func TestPortalService_ChangePassword_AdminRoutesToAdminView(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("root", "rootpass", true, true)
	portal, _, _ := newTestPortal(t, repo)
	ctx := context.Background()

	login, err := portal.Login(ctx, LoginInput{Username: "root", Password: "rootpass"})
	require.NoError(t, err)
	require.Equal(t, domain.ViewChangePassword, login.View)

	out, err := portal.ChangePassword(ctx, ChangePasswordInput{
		Token:       login.Session.Token,
		NewPassword: "newpass123",
		Confirm:     "newpass123",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ViewAdmin, out.View)
}

func TestPortalService_ChangePassword_NoSession(t *testing.T) {
	repo := NewMockAccountRepository()
	portal, _, _ := newTestPortal(t, repo)

	_, err := portal.ChangePassword(context.Background(), ChangePasswordInput{
		Token:       "unknown",
		NewPassword: "x",
		Confirm:     "x",
	})
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPortalService_CreateAccount_AdminOnly(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("root", "rootpass", true, false)
	repo.seedAccount("alice", "alicepass", false, false)
	repo.seedAccount("pending", "pendingpass", true, true)
	portal, _, _ := newTestPortal(t, repo)
	ctx := context.Background()

	adminLogin, err := portal.Login(ctx, LoginInput{Username: "root", Password: "rootpass"})
	require.NoError(t, err)
	userLogin, err := portal.Login(ctx, LoginInput{Username: "alice", Password: "alicepass"})
	require.NoError(t, err)
	pendingLogin, err := portal.Login(ctx, LoginInput{Username: "pending", Password: "pendingpass"})
	require.NoError(t, err)

	// Non-admin session is denied.
	_, err = portal.CreateAccount(ctx, CreateAccountPortalInput{
		Token:    userLogin.Session.Token,
		Username: "x",
		Password: "x",
	})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	// An admin parked on the forced change view is denied too.
	_, err = portal.CreateAccount(ctx, CreateAccountPortalInput{
		Token:    pendingLogin.Session.Token,
		Username: "x",
		Password: "x",
	})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	// Anonymous token is denied.
	_, err = portal.CreateAccount(ctx, CreateAccountPortalInput{
		Token:    "nope",
		Username: "x",
		Password: "x",
	})
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Admin session succeeds.
	account, err := portal.CreateAccount(ctx, CreateAccountPortalInput{
		Token:         adminLogin.Session.Token,
		Username:      "bob",
		Password:      "pw1",
		RequireChange: true,
	})
	require.NoError(t, err)
	require.Equal(t, "bob", account.Username)
	require.True(t, account.PasswordChangeRequired)
}

func TestPortalService_ListAccounts_AdminOnly(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("root", "rootpass", true, false)
	repo.seedAccount("alice", "alicepass", false, false)
	portal, _, _ := newTestPortal(t, repo)
	ctx := context.Background()

	adminLogin, err := portal.Login(ctx, LoginInput{Username: "root", Password: "rootpass"})
	require.NoError(t, err)
	userLogin, err := portal.Login(ctx, LoginInput{Username: "alice", Password: "alicepass"})
	require.NoError(t, err)

	_, err = portal.ListAccounts(ctx, userLogin.Session.Token)
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	accounts, err := portal.ListAccounts(ctx, adminLogin.Session.Token)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}

func TestPortalService_Logout(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("alice", "alicepass", false, false)
	portal, store, _ := newTestPortal(t, repo)
	ctx := context.Background()

	login, err := portal.Login(ctx, LoginInput{Username: "alice", Password: "alicepass"})
	require.NoError(t, err)

	require.NoError(t, portal.Logout(ctx, login.Session.Token))
	require.Zero(t, store.Len())

	view, err := portal.CurrentView(ctx, login.Session.Token)
	require.NoError(t, err)
	require.Equal(t, domain.ViewLogin, view.View)

	// Logging out an already-anonymous token is a no-op, not an error.
	require.NoError(t, portal.Logout(ctx, login.Session.Token))
}

func TestPortalService_CurrentView_Anonymous(t *testing.T) {
	repo := NewMockAccountRepository()
	portal, _, _ := newTestPortal(t, repo)
	ctx := context.Background()

	for _, token := range []string{"", "unknown-token"} {
		view, err := portal.CurrentView(ctx, token)
		require.NoError(t, err)
		require.Equal(t, domain.ViewLogin, view.View)
		require.Equal(t, []domain.View{domain.ViewLogin}, view.AvailableViews)
		require.Nil(t, view.Session)
	}
}

func TestPortalService_Metrics(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("root", "rootpass", true, true)
	portal, _, metrics := newTestPortal(t, repo)
	ctx := context.Background()

	_, _ = portal.Login(ctx, LoginInput{Username: "root", Password: "wrong"})
	login, err := portal.Login(ctx, LoginInput{Username: "root", Password: "rootpass"})
	require.NoError(t, err)

	_, _ = portal.ChangePassword(ctx, ChangePasswordInput{
		Token:       login.Session.Token,
		NewPassword: "a",
		Confirm:     "b",
	})
	_, err = portal.ChangePassword(ctx, ChangePasswordInput{
		Token:       login.Session.Token,
		NewPassword: "newpass123",
		Confirm:     "newpass123",
	})
	require.NoError(t, err)

	_, err = portal.CreateAccount(ctx, CreateAccountPortalInput{
		Token:    login.Session.Token,
		Username: "bob",
		Password: "pw1",
	})
	require.NoError(t, err)

	require.Equal(t, 1, metrics.loginFail)
	require.Equal(t, 1, metrics.loginOK)
	require.Equal(t, 1, metrics.changeFail)
	require.Equal(t, 1, metrics.changeOK)
	require.Equal(t, 1, metrics.created)
}

// TestPortalService_FullLifecycle walks the portal from a seeded store through
// a forced admin password change, account creation, and a second visitor's
// first login.
func TestPortalService_FullLifecycle(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("admin", "adminpass", true, true)
	repo.seedAccount("user", "userpass", false, true)
	portal, _, _ := newTestPortal(t, repo)
	ctx := context.Background()

	// Admin's first login lands on the forced change view.
	adminLogin, err := portal.Login(ctx, LoginInput{Username: "admin", Password: "adminpass"})
	require.NoError(t, err)
	require.Equal(t, domain.ViewChangePassword, adminLogin.View)
	adminToken := adminLogin.Session.Token

	// Completing the change routes to the admin view.
	changed, err := portal.ChangePassword(ctx, ChangePasswordInput{
		Token:       adminToken,
		NewPassword: "newpass123",
		Confirm:     "newpass123",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ViewAdmin, changed.View)

	// Admin creates bob with a forced first-login change.
	_, err = portal.CreateAccount(ctx, CreateAccountPortalInput{
		Token:         adminToken,
		Username:      "bob",
		Password:      "pw1",
		RequireChange: true,
	})
	require.NoError(t, err)

	// The listing now shows all three accounts in insertion order.
	accounts, err := portal.ListAccounts(ctx, adminToken)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	require.Equal(t, "admin", accounts[0].Username)
	require.Equal(t, "user", accounts[1].Username)
	require.Equal(t, "bob", accounts[2].Username)
	require.True(t, accounts[2].PasswordChangeRequired)

	// Admin logs out and is anonymous again.
	require.NoError(t, portal.Logout(ctx, adminToken))
	view, err := portal.CurrentView(ctx, adminToken)
	require.NoError(t, err)
	require.Equal(t, domain.ViewLogin, view.View)

	// Bob's first login with the assigned password lands on the forced
	// change view.
	bobLogin, err := portal.Login(ctx, LoginInput{Username: "bob", Password: "pw1"})
	require.NoError(t, err)
	require.Equal(t, domain.ViewChangePassword, bobLogin.View)

	// The admin's new password sticks across sessions.
	adminAgain, err := portal.Login(ctx, LoginInput{Username: "admin", Password: "newpass123"})
	require.NoError(t, err)
	require.Equal(t, domain.ViewAdmin, adminAgain.View)
	_, err = portal.Login(ctx, LoginInput{Username: "admin", Password: "adminpass"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestPortalService_ExpiredSessionIsAnonymous(t *testing.T) {
	repo := NewMockAccountRepository()
	repo.seedAccount("alice", "alicepass", false, false)
	store := session.NewMemoryStore()
	t.Cleanup(store.Stop)
	accounts := NewAccountService(repo, zerolog.Nop())
	portal := NewPortalService(accounts, store, -time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	login, err := portal.Login(ctx, LoginInput{Username: "alice", Password: "alicepass"})
	require.NoError(t, err)

	// The TTL already elapsed, so the token resolves to nothing.
	view, err := portal.CurrentView(ctx, login.Session.Token)
	require.NoError(t, err)
	require.Equal(t, domain.ViewLogin, view.View)

	_, err = portal.Session(ctx, login.Session.Token)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}
