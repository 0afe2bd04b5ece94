package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/service"
)

// tokenCookieAge matches the JWT lifetime: one login per study day.
const tokenCookieAge = 24 * time.Hour

// AuthHandler manages registration, login, logout, the current-user
// endpoint, and the GitHub OAuth flow.
type AuthHandler struct {
	service *service.AuthService
	github  *auth.GitHubProvider // nil when OAuth is not configured
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. github may be nil, in which
// case the OAuth routes should not be registered.
func NewAuthHandler(svc *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		github:  github,
		logger:  logger,
	}
}

// HandleRegister creates an email/password account and logs it in.
//
// HTTP: POST /api/auth/register
// BODY: {"email":"a@b.c","name":"Sakif","password":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin verifies credentials and issues the session cookie.
//
// HTTP: POST /api/auth/login
// BODY: {"email":"a@b.c","password":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout deletes the session cookie.
//
// POST, not GET — logout is a state-changing operation, and since sessions
// are stateless JWTs, "logout" simply means the browser forgets the token.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated user. The frontend calls this on load
// to decide between the app and the login screen.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin starts the OAuth flow.
//
// CSRF PROTECTION:
// We generate a random state string, store it in a short-lived HttpOnly
// cookie, and send the same value to GitHub. HandleGitHubCallback verifies
// the two match — a forged callback can't know the cookie value.
//
// HTTP: GET /auth/github
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — plenty for one round trip to GitHub
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "GitHub authentication failed", http.StatusBadGateway)
		return
	}

	result, err := h.service.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	setTokenCookie(w, result.Token)

	// Back to the app — a browser navigation started this flow, so the
	// response is a redirect, not JSON.
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// setTokenCookie installs the JWT session cookie.
//
//   - HttpOnly: JavaScript can't read it (XSS can't steal the token)
//   - SameSite=Lax: sent on top-level navigations, not cross-site POSTs
//   - Secure is left off for local dev; set it when serving HTTPS
func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(tokenCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable in production (requires HTTPS)
	})
}
