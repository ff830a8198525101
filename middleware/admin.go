package middleware

import (
	"net/http"

	"github.com/akinalp/scribe/handlers"
	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
)

// AdminMiddleware runs after AuthMiddleware and lets only admins through.
//
//	authMw.Require(adminMw.Require(http.HandlerFunc(userHandler.List)))
type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

func (m *AdminMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		if !user.IsAdmin() {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
