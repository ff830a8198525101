package handlers

import (
	"net/http"

	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/repository"
	"github.com/akinalp/scribe/ws"
)

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	TotalUsers    int `json:"total_users"`
	TotalArticles int `json:"total_articles"`
	OnlineUsers   int `json:"online_users"`
}

// StatsHandler serves the health check, the online list and admin stats.
type StatsHandler struct {
	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	presence    ws.EventPublisher
}

func NewStatsHandler(userRepo repository.UserRepository, articleRepo repository.ArticleRepository, presence ws.EventPublisher) *StatsHandler {
	return &StatsHandler{
		userRepo:    userRepo,
		articleRepo: articleRepo,
		presence:    presence,
	}
}

// Health godoc
// GET /api/health
func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Online godoc
// GET /api/online
// Response data: ["<userId>", ...]
func (h *StatsHandler) Online(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.presence.OnlineUserIDs())
}

// AdminStats godoc
// GET /api/admin/stats (admin)
func (h *StatsHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.Count(r.Context())
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	articles, err := h.articleRepo.Count(r.Context())
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	pkg.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:    users,
		TotalArticles: articles,
		OnlineUsers:   len(h.presence.OnlineUserIDs()),
	})
}
