// Package handlers is the HTTP layer.
//
// Handlers stay thin: decode the request, call a service, write the
// envelope from pkg. They hold no business logic and never touch the
// database. The authenticated user is always taken from the request
// context, never from the body.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/pkg/ratelimit"
	"github.com/akinalp/scribe/services"
	"github.com/akinalp/scribe/ws"
)

// AuthHandler serves /api/auth/* and /api/me.
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
	cookieSecure bool
}

// NewAuthHandler builds the handler. A nil loginLimiter disables login throttling.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.LoginRateLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		cookieSecure: cookieSecure,
	}
}

// Register godoc
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	h.setAccessCookie(w, tokens)
	pkg.JSON(w, http.StatusCreated, tokens)
}

// Login godoc
// POST /api/auth/login
//
// Throttled per client IP. A successful login resets the counter.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many login attempts, please try again in %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	h.setAccessCookie(w, tokens)
	pkg.JSON(w, http.StatusOK, tokens)
}

// Refresh godoc
// POST /api/auth/refresh
// Body: { "refresh_token": "..." }
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	h.setAccessCookie(w, tokens)
	pkg.JSON(w, http.StatusOK, tokens)
}

// Logout godoc
// POST /api/auth/logout
// Body: { "refresh_token": "..." } (optional; the cookie is cleared either way)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// An empty body is fine here.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.RefreshToken != "" {
		if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
			pkg.Error(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ws.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me godoc
// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setAccessCookie(w http.ResponseWriter, tokens *services.AuthTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     ws.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.ExpiresAt,
		MaxAge:   int(time.Until(tokens.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// contextKey keeps context values set by this module from colliding with
// other packages' keys.
type contextKey string

const UserContextKey contextKey = "user"
