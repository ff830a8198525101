package ws

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/akinalp/scribe/models"
)

// AccessTokenCookie is the cookie the HTTP API sets on login; browsers send
// it on the upgrade request too.
const AccessTokenCookie = "access_token"

// TokenValidator verifies an access token. AuthService implements it.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// UserGetter loads the account a token was issued for. UserRepository
// implements it.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Handler upgrades authenticated HTTP requests to websocket connections.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	users          UserGetter
	upgrader       websocket.Upgrader
}

// NewHandler builds the upgrade handler. allowedOrigins restricts the Origin
// header of browser clients; an empty list accepts any origin.
func NewHandler(hub *Hub, tokenValidator TokenValidator, users UserGetter, allowedOrigins []string) *Handler {
	h := &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		users:          users,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// HandleConnection authenticates the request, upgrades it and serves the
// connection until it closes. Requests without a valid token get 401 and
// never reach the registry.
//
// GET /ws?token=<access_token>
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// The token may outlive the account.
	if _, err := h.users.GetByID(r.Context(), claims.UserID); err != nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := newClient(h.hub, conn, claims.UserID)
	h.hub.Register(claims.UserID, client)

	go client.WritePump()
	client.ReadPump()
}

// tokenFromRequest checks the query string, the Authorization header and the
// access cookie, in that order.
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		_, ok := set[origin]
		return ok
	}
}
