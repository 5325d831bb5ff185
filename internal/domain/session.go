package domain

import (
	"time"
)

// Session is the ephemeral per-visitor authentication state, keyed by an
// opaque token. Sessions are never persisted to the accounts store.
type Session struct {
	// Token is the opaque session identifier handed to the visitor.
	Token string `json:"token"`

	// AccountID is the authenticated account's ID.
	AccountID int64 `json:"account_id"`

	// Username is the authenticated account's username.
	Username string `json:"username"`

	// IsAdmin mirrors the account's admin flag at login time.
	IsAdmin bool `json:"is_admin"`

	// MustChangePassword routes the visitor to the forced password change
	// view. Cleared independently when the change succeeds; the rest of the
	// session is untouched.
	MustChangePassword bool `json:"must_change_password"`

	// CreatedAt is when the session was minted.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// View identifies which portal view a visitor should see.
type View string

const (
	// ViewLogin is the anonymous login view.
	ViewLogin View = "login"

	// ViewChangePassword is the forced password change view. While here the
	// visitor may only submit a password change.
	ViewChangePassword View = "change_password"

	// ViewUser is the authenticated view every account can reach.
	ViewUser View = "user"

	// ViewAdmin is the administrative view, available only to admin
	// accounts, alongside ViewUser.
	ViewAdmin View = "admin"
)

// ViewFor routes a session to its view. A nil session is anonymous.
// Admin accounts land on ViewAdmin; ViewUser remains selectable.
func ViewFor(s *Session) View {
	switch {
	case s == nil:
		return ViewLogin
	case s.MustChangePassword:
		return ViewChangePassword
	case s.IsAdmin:
		return ViewAdmin
	default:
		return ViewUser
	}
}

// AvailableViews returns the views a session may select between.
func AvailableViews(s *Session) []View {
	switch {
	case s == nil:
		return []View{ViewLogin}
	case s.MustChangePassword:
		return []View{ViewChangePassword}
	case s.IsAdmin:
		return []View{ViewUser, ViewAdmin}
	default:
		return []View{ViewUser}
	}
}
