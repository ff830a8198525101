package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/services"
)

// AIHandler serves /api/ai/describe.
type AIHandler struct {
	aiService services.AIService
}

func NewAIHandler(aiService services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Describe godoc
// POST /api/ai/describe
// Body: { "topic": "..." }
// Response data: { "description": "..." }
func (h *AIHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	description, err := h.aiService.Describe(r.Context(), req.Topic)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"description": description})
}
