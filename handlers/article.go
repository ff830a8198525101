package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/services"
)

// ArticleHandler serves /api/articles/*.
type ArticleHandler struct {
	articleService services.ArticleService
}

func NewArticleHandler(articleService services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// ListAll godoc
// GET /api/articles
func (h *ArticleHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.ListAll(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, articles)
}

// ListMine godoc
// GET /api/articles/mine
func (h *ArticleHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	articles, err := h.articleService.ListForUser(r.Context(), user)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, articles)
}

// Create godoc
// POST /api/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := h.articleService.Create(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, article)
}

// Get godoc
// GET /api/articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, article)
}

// Update godoc
// PATCH /api/articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := h.articleService.Update(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, article)
}

// Delete godoc
// DELETE /api/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.articleService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

// Versions godoc
// GET /api/articles/{id}/versions
func (h *ArticleHandler) Versions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.articleService.ListVersions(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, versions)
}

// ToggleLike godoc
// POST /api/articles/{id}/like
func (h *ArticleHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.likeAction(w, r, h.articleService.ToggleLike)
}

// Like godoc
// PUT /api/articles/{id}/like
func (h *ArticleHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.likeAction(w, r, h.articleService.Like)
}

// Unlike godoc
// DELETE /api/articles/{id}/like
func (h *ArticleHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.likeAction(w, r, h.articleService.Unlike)
}

type likeFunc func(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error)

func (h *ArticleHandler) likeAction(w http.ResponseWriter, r *http.Request, action likeFunc) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	result, err := action(r.Context(), user, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}
