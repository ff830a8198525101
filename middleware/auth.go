// Package middleware holds the http.Handler wrappers that run before the
// handlers: authentication and role checks.
//
// A middleware is func(next http.Handler) http.Handler. It either calls next
// or writes an error response and stops the chain.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/scribe/handlers"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/repository"
	"github.com/akinalp/scribe/services"
	"github.com/akinalp/scribe/ws"
)

// AuthMiddleware verifies the access token and loads the user into the
// request context.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require rejects the request with 401 unless it carries a valid access
// token, either as "Authorization: Bearer <token>" or in the access_token
// cookie. The header wins when both are present.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		if tokenString == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization required")
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// The token may outlive the account.
		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}
		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken returns the token from the Authorization header or the cookie.
// ok is false when an Authorization header is present but malformed.
func bearerToken(r *http.Request) (token string, ok bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return "", false
		}
		return strings.TrimSpace(token), true
	}

	if cookie, err := r.Cookie(ws.AccessTokenCookie); err == nil {
		return cookie.Value, true
	}
	return "", true
}
