package main

import (
	"net/http"

	"github.com/akinalp/scribe/middleware"
	"github.com/akinalp/scribe/repository"
	"github.com/akinalp/scribe/services"
)

// initRoutes registers every endpoint on mux.
//
// Literal segments ("mine", "peers", "unread", "me") win over wildcards in
// ServeMux, so their order here is cosmetic.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
) {
	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	adminMw := middleware.NewAdminMiddleware()

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	authAdmin := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(adminMw.Require(handler))
	}

	mux.HandleFunc("GET /api/health", h.Stats.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.Handle("GET /api/me", auth(h.Auth.Me))

	// Users
	mux.Handle("GET /api/users", authAdmin(h.User.List))
	mux.Handle("PATCH /api/users/me", auth(h.User.UpdateMe))
	mux.Handle("GET /api/users/{id}", auth(h.User.Get))
	mux.Handle("POST /api/users/{id}/follow", auth(h.User.ToggleFollow))

	// Articles
	mux.HandleFunc("GET /api/articles", h.Article.ListAll)
	mux.Handle("GET /api/articles/mine", auth(h.Article.ListMine))
	mux.Handle("POST /api/articles", auth(h.Article.Create))
	mux.HandleFunc("GET /api/articles/{id}", h.Article.Get)
	mux.Handle("PATCH /api/articles/{id}", auth(h.Article.Update))
	mux.Handle("DELETE /api/articles/{id}", auth(h.Article.Delete))
	mux.Handle("GET /api/articles/{id}/versions", auth(h.Article.Versions))
	mux.Handle("POST /api/articles/{id}/like", auth(h.Article.ToggleLike))
	mux.Handle("PUT /api/articles/{id}/like", auth(h.Article.Like))
	mux.Handle("DELETE /api/articles/{id}/like", auth(h.Article.Unlike))

	// Messages
	mux.Handle("POST /api/messages", auth(h.Message.Send))
	mux.Handle("GET /api/messages/peers", auth(h.Message.Peers))
	mux.Handle("GET /api/messages/unread", auth(h.Message.Unread))
	mux.Handle("GET /api/messages/{peerId}", auth(h.Message.History))
	mux.Handle("POST /api/messages/{peerId}/read", auth(h.Message.MarkRead))

	// Notifications
	mux.Handle("GET /api/notifications", auth(h.Notification.List))
	mux.Handle("POST /api/notifications/read", auth(h.Notification.MarkAllRead))

	// Presence
	mux.Handle("GET /api/online", auth(h.Stats.Online))

	// AI
	mux.Handle("POST /api/ai/describe", auth(h.AI.Describe))

	// Admin
	mux.Handle("GET /api/admin/stats", authAdmin(h.Stats.AdminStats))

	// The websocket handler authenticates on its own: browsers cannot set
	// headers on the upgrade request, so the token may come as ?token=.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
