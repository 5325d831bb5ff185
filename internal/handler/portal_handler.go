package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/domain"
	"github.com/prn-tf/sentinel-portal/internal/service"
)

// PortalHandler exposes the portal boundary over HTTP: submit-login,
// submit-password-change, submit-create-account, request-listing, logout,
// and the current-view query the presentation re-runs after each call.
type PortalHandler struct {
	portal     *service.PortalService
	cookieName string
	logger     zerolog.Logger
}

// PortalConfig contains configuration for the portal handler.
type PortalConfig struct {
	Portal     *service.PortalService
	CookieName string
	Logger     zerolog.Logger
}

// NewPortalHandler creates a new portal handler.
func NewPortalHandler(cfg PortalConfig) *PortalHandler {
	return &PortalHandler{
		portal:     cfg.Portal,
		cookieName: cfg.CookieName,
		logger:     cfg.Logger.With().Str("handler", "portal").Logger(),
	}
}

// RegisterRoutes registers portal routes.
func (h *PortalHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)
	r.Get("/api/session", h.handleSession)
	r.Post("/api/password", h.handleChangePassword)
	r.Get("/api/accounts", h.handleListAccounts)
	r.Post("/api/accounts", h.handleCreateAccount)
}

// =============================================================================
// Request/Response Types
// =============================================================================

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	View    domain.View           `json:"view"`
	Account domain.AccountSummary `json:"account"`
}

type changePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type changePasswordResponse struct {
	View domain.View `json:"view"`
}

type createAccountRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	IsAdmin       bool   `json:"is_admin"`
	RequireChange bool   `json:"require_change"`
}

type sessionResponse struct {
	View           domain.View   `json:"view"`
	AvailableViews []domain.View `json:"available_views"`
	Username       string        `json:"username,omitempty"`
	IsAdmin        bool          `json:"is_admin,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (h *PortalHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewDomainError(domain.ErrValidation, "invalid request body"))
		return
	}

	output, err := h.portal.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Debug().Err(err).Str("username", req.Username).Msg("login failed")
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, output.Session)

	writeJSON(w, http.StatusOK, loginResponse{
		View: output.View,
		Account: domain.AccountSummary{
			ID:                     output.Session.AccountID,
			Username:               output.Session.Username,
			IsAdmin:                output.Session.IsAdmin,
			CreatedAt:              output.Session.CreatedAt,
			PasswordChangeRequired: output.Session.MustChangePassword,
		},
	})
}

func (h *PortalHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.sessionToken(r); token != "" {
		if err := h.portal.Logout(r.Context(), token); err != nil {
			h.logger.Error().Err(err).Msg("logout failed")
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *PortalHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	output, err := h.portal.CurrentView(r.Context(), h.sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sessionResponse{
		View:           output.View,
		AvailableViews: output.AvailableViews,
	}
	if output.Session != nil {
		resp.Username = output.Session.Username
		resp.IsAdmin = output.Session.IsAdmin
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PortalHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewDomainError(domain.ErrValidation, "invalid request body"))
		return
	}

	output, err := h.portal.ChangePassword(r.Context(), service.ChangePasswordInput{
		Token:       h.sessionToken(r),
		NewPassword: req.NewPassword,
		Confirm:     req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, changePasswordResponse{View: output.View})
}

func (h *PortalHandler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.portal.ListAccounts(r.Context(), h.sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *PortalHandler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewDomainError(domain.ErrValidation, "invalid request body"))
		return
	}

	account, err := h.portal.CreateAccount(r.Context(), service.CreateAccountPortalInput{
		Token:         h.sessionToken(r),
		Username:      req.Username,
		Password:      req.Password,
		IsAdmin:       req.IsAdmin,
		RequireChange: req.RequireChange,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account.Summary())
}

// =============================================================================
// Helpers
// =============================================================================

func (h *PortalHandler) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *PortalHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(sess.ExpiresAt) / time.Second),
	})
}

func (h *PortalHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
