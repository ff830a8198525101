package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/pkg/ratelimit"
	"github.com/akinalp/scribe/services"
)

// MessageHandler serves /api/messages/*.
type MessageHandler struct {
	conversationService services.ConversationService
	sendLimiter         *ratelimit.MessageRateLimiter
}

// NewMessageHandler builds the handler. A nil sendLimiter disables send throttling.
func NewMessageHandler(conversationService services.ConversationService, sendLimiter *ratelimit.MessageRateLimiter) *MessageHandler {
	return &MessageHandler{
		conversationService: conversationService,
		sendLimiter:         sendLimiter,
	}
}

// Send godoc
// POST /api/messages
// Body: { "receiver_id": "...", "text": "..." }
//
// The sender is the authenticated user.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if h.sendLimiter != nil && !h.sendLimiter.Allow(user.ID) {
		wait := h.sendLimiter.CooldownSeconds(user.ID)
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("you are sending messages too fast, please wait %s",
				ratelimit.FormatRetryMessage(wait)))
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.conversationService.SendMessage(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}

// History godoc
// GET /api/messages/{peerId}?limit=20&skip=0
//
// Pages are counted from the newest message; each page is returned oldest
// first. limit=0 (the default) returns the whole thread.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, err := queryInt(r, "skip")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.conversationService.FetchHistory(r.Context(), user.ID, r.PathValue("peerId"), limit, skip)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Peers godoc
// GET /api/messages/peers
//
// Everyone except the caller, most recent conversation partners first.
func (h *MessageHandler) Peers(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	peers, err := h.conversationService.ListPeers(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, peers)
}

// Unread godoc
// GET /api/messages/unread
// Response data: { "<senderId>": <count>, ... }
func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	counts, err := h.conversationService.UnreadCounts(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, counts)
}

// MarkRead godoc
// POST /api/messages/{peerId}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	updated, err := h.conversationService.MarkThreadRead(r.Context(), user.ID, r.PathValue("peerId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.ReadResult{Updated: updated})
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
